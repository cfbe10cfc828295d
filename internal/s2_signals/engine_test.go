package s2_signals

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
)

func TestEngine_Determinism(t *testing.T) {
	engine := NewEngine(defaultScoring(), nil)
	r := rand.New(rand.NewSource(7))
	series := randomWalk(r, "AAA.NS", 90)

	first := engine.Score(series)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Score(series))
	}
}

func TestEngine_ScoreBounds(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	generous := defaultScoring()
	generous.Base = 200
	harsh := defaultScoring()
	harsh.Base = -200

	engines := []*Engine{
		NewEngine(defaultScoring(), nil),
		NewEngine(generous, nil),
		NewEngine(harsh, nil),
	}

	for i := 0; i < 200; i++ {
		series := randomWalk(r, "SYM", 10+r.Intn(120))
		for _, e := range engines {
			res := e.Score(series)
			assert.GreaterOrEqual(t, res.Score, 0)
			assert.LessOrEqual(t, res.Score, 100)
			assert.GreaterOrEqual(t, res.VolumeRatio, 0.0)
			assert.True(t, res.Health.Valid())
		}
	}
}

func TestEngine_FlatSeries(t *testing.T) {
	engine := NewEngine(defaultScoring(), nil)
	res := engine.Score(seriesFromCloses("FLAT", flatCloses(40, 100), 0))

	assert.Equal(t, 50.0, res.RSI)
	assert.Equal(t, contracts.HealthHealthy, res.Health)
	assert.Equal(t, 1.0, res.VolumeRatio)
	assert.False(t, res.IsSqueezed)
	assert.False(t, res.IsBreakout)
	// +5 neutral momentum, +10 healthy
	assert.Equal(t, 15, res.Score)
}

func TestEngine_ShortSeriesUsesDefaults(t *testing.T) {
	engine := NewEngine(defaultScoring(), nil)
	res := engine.Score(seriesFromCloses("SHORT", risingCloses(10, 100, 1), 1))

	assert.Equal(t, 50.0, res.RSI)
	assert.Equal(t, contracts.HealthUnknown, res.Health)
	assert.Equal(t, 1.0, res.VolumeRatio)
	assert.False(t, res.IsSqueezed)
	assert.False(t, res.IsBreakout)
	assert.Equal(t, 5, res.Score)
}

func TestEngine_EmptySeries(t *testing.T) {
	engine := NewEngine(defaultScoring(), nil)
	res := engine.Score(&contracts.PriceSeries{Symbol: "NONE"})

	assert.Equal(t, "NONE", res.Symbol)
	assert.Equal(t, contracts.HealthUnknown, res.Health)
	assert.Equal(t, 5, res.Score)
}

func TestEngine_RisingSeriesMomentum(t *testing.T) {
	engine := NewEngine(defaultScoring(), nil)
	ind := engine.Compute(seriesFromCloses("UP", risingCloses(40, 100, 0.1), 0.5))

	assert.InDelta(t, 100.0, ind.RSI, 1e-9)
	assert.Equal(t, contracts.HealthHealthy, ind.Health)
}

func TestEngine_Breakout(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 100.5
		}
	}
	closes[39] = 110

	engine := NewEngine(defaultScoring(), nil)
	ind := engine.Compute(seriesFromCloses("JUMP", closes, 0.5))

	require.True(t, ind.BandsOK)
	assert.True(t, ind.IsBreakout)
	assert.Greater(t, ind.Close, ind.BBUpper)
	assert.Equal(t, contracts.HealthOverstretched, ind.Health)
}

func TestEngine_Squeeze(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 100.2
		}
	}

	// tight closes, wide intrabar ranges: Bollinger sits inside Keltner
	engine := NewEngine(defaultScoring(), nil)
	res := engine.Score(seriesFromCloses("COIL", closes, 3))

	assert.True(t, res.IsSqueezed)
	assert.False(t, res.IsBreakout)
}

func TestEngine_Assemble(t *testing.T) {
	engine := NewEngine(defaultScoring(), nil)

	tests := []struct {
		name string
		ind  Indicators
		want int
	}{
		{"strong momentum healthy surge", Indicators{RSI: 72, Health: contracts.HealthHealthy, VolumeRatio: 2.6}, 55},
		{"all components", Indicators{RSI: 72, Health: contracts.HealthHealthy, VolumeRatio: 2.6, IsSqueezed: true}, 60},
		{"mild momentum confirm", Indicators{RSI: 55, Health: contracts.HealthHealthy, VolumeRatio: 1.5}, 35},
		{"rsi exactly 60 is mild", Indicators{RSI: 60, Health: contracts.HealthUnknown, VolumeRatio: 1}, 15},
		{"rsi exactly 50 is weak", Indicators{RSI: 50, Health: contracts.HealthUnknown, VolumeRatio: 1}, 5},
		{"ratio exactly 2 is surge", Indicators{RSI: 40, Health: contracts.HealthDeepPullback, VolumeRatio: 2.0}, 20},
		{"overstretched penalty", Indicators{RSI: 80, Health: contracts.HealthOverstretched, VolumeRatio: 1}, 10},
		{"clamped at zero", Indicators{RSI: 30, Health: contracts.HealthOverstretched, VolumeRatio: 0.5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Assemble(tt.ind))
		})
	}
}

func TestEngine_Classify(t *testing.T) {
	engine := NewEngine(defaultScoring(), nil)

	tests := []struct {
		stretch float64
		want    contracts.TrendHealth
	}{
		{0, contracts.HealthHealthy},
		{4, contracts.HealthHealthy},
		{4.01, contracts.HealthOverstretched},
		{-2, contracts.HealthHealthy},
		{-2.01, contracts.HealthDeepPullback},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.classify(tt.stretch), "stretch=%v", tt.stretch)
	}
}

func TestVolumeRatio(t *testing.T) {
	tests := []struct {
		name    string
		volumes []float64
		window  int
		want    float64
	}{
		{"empty", nil, 20, 1.0},
		{"all zero", []float64{0, 0, 0}, 20, 1.0},
		{"constant", []float64{100, 100, 100, 100}, 4, 1.0},
		{"spike", []float64{100, 100, 100, 400}, 4, 400.0 / 175.0},
		{"window trims", []float64{1e9, 100, 100, 100, 400}, 4, 400.0 / 175.0},
		{"short history uses what exists", []float64{100, 300}, 20, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, volumeRatio(tt.volumes, tt.window), 1e-9)
		})
	}
}
