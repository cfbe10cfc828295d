package s2_signals

import (
	"math"
	"math/rand"
	"time"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
)

var seriesStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func defaultScoring() strategyconfig.Scoring {
	return strategyconfig.Default().Scoring
}

// seriesFromCloses builds bars with a fixed intrabar range around each close
func seriesFromCloses(symbol string, closes []float64, spread float64) *contracts.PriceSeries {
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.Bar{
			Date:   seriesStart.AddDate(0, 0, i),
			Open:   c,
			High:   c + spread,
			Low:    math.Max(c-spread, 0),
			Close:  c,
			Volume: 1000,
		}
	}
	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}
}

func flatCloses(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func risingCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func randomWalk(r *rand.Rand, symbol string, n int) *contracts.PriceSeries {
	price := 50 + r.Float64()*200
	bars := make([]contracts.Bar, n)
	for i := range bars {
		price *= 1 + (r.Float64()-0.5)*0.08
		if price < 1 {
			price = 1
		}
		spread := price * r.Float64() * 0.04
		bars[i] = contracts.Bar{
			Date:   seriesStart.AddDate(0, 0, i),
			Open:   price,
			High:   price + spread,
			Low:    math.Max(price-spread, 0),
			Close:  price,
			Volume: r.Float64() * 1e6,
		}
	}
	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}
}
