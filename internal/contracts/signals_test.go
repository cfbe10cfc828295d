package contracts

import (
	"testing"
	"time"
)

func TestBucket_Rank(t *testing.T) {
	tests := []struct {
		bucket     Bucket
		rank       int
		deployable bool
	}{
		{BucketStrongBuy, 3, true},
		{BucketBuy, 2, true},
		{BucketWatchlist, 1, true},
		{BucketAvoid, 0, false},
		{Bucket("HOLD"), 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			if got := tt.bucket.Rank(); got != tt.rank {
				t.Errorf("Rank() = %d, want %d", got, tt.rank)
			}
			if got := tt.bucket.Deployable(); got != tt.deployable {
				t.Errorf("Deployable() = %v, want %v", got, tt.deployable)
			}
		})
	}
}

func TestTrendHealth_Valid(t *testing.T) {
	for _, h := range []TrendHealth{HealthHealthy, HealthOverstretched, HealthDeepPullback, HealthUnknown} {
		if !h.Valid() {
			t.Errorf("%s should be valid", h)
		}
	}
	if TrendHealth("STRETCHED").Valid() {
		t.Error("STRETCHED should be invalid")
	}
}

func TestResultsBySymbol(t *testing.T) {
	byS := ResultsBySymbol([]SignalResult{
		{Symbol: "TCS.NS", Score: 60},
		{Symbol: "ITC.NS", Score: 45},
	})

	if len(byS) != 2 || byS["ITC.NS"].Score != 45 {
		t.Errorf("ResultsBySymbol() = %v", byS)
	}
}

func TestExitEvent_Detail(t *testing.T) {
	e := ExitEvent{Symbol: "TCS.NS", Action: ActionExit, OldScore: 90, NewScore: 70}

	if got := e.Detail(); got != "90 → 70" {
		t.Errorf("Detail() = %q", got)
	}
	if e.Drop() != 20 {
		t.Errorf("Drop() = %d, want 20", e.Drop())
	}
}

func TestSentiment_RiskOn(t *testing.T) {
	if !NeutralSentiment().RiskOn(0.6) {
		t.Error("neutral sentiment should be risk-on")
	}
	if !(Sentiment{Noise: 0.6}).RiskOn(0.6) {
		t.Error("noise at the limit should be risk-on")
	}
	if (Sentiment{Noise: 0.61}).RiskOn(0.6) {
		t.Error("noise above the limit should be risk-off")
	}
}

func TestUniverse_SectorOf(t *testing.T) {
	u := &Universe{
		Symbols: []string{"TCS.NS", "ITC.NS"},
		Sectors: map[string]string{"TCS.NS": "IT", "ITC.NS": ""},
	}

	if got := u.SectorOf("TCS.NS"); got != "IT" {
		t.Errorf("SectorOf(TCS.NS) = %q", got)
	}
	if got := u.SectorOf("ITC.NS"); got != UnknownSector {
		t.Errorf("SectorOf(ITC.NS) = %q, want %q", got, UnknownSector)
	}
	if got := u.SectorOf("LT.NS"); got != UnknownSector {
		t.Errorf("SectorOf(LT.NS) = %q, want %q", got, UnknownSector)
	}
	if u.Count() != 2 {
		t.Errorf("Count() = %d", u.Count())
	}
}

func TestPriceSeries_Columns(t *testing.T) {
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	s := &PriceSeries{Symbol: "TCS.NS", Bars: []Bar{
		{Date: day, Open: 1, High: 3, Low: 0.5, Close: 2, Volume: 100},
		{Date: day.AddDate(0, 0, 1), Open: 2, High: 4, Low: 1.5, Close: 3, Volume: 200},
	}}

	last, ok := s.Last()
	if !ok || last.Close != 3 {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
	if c := s.Closes(); c[0] != 2 || c[1] != 3 {
		t.Errorf("Closes() = %v", c)
	}
	if h := s.Highs(); h[1] != 4 {
		t.Errorf("Highs() = %v", h)
	}
	if l := s.Lows(); l[0] != 0.5 {
		t.Errorf("Lows() = %v", l)
	}
	if v := s.Volumes(); v[1] != 200 {
		t.Errorf("Volumes() = %v", v)
	}

	var empty *PriceSeries
	if empty.Len() != 0 {
		t.Error("nil series should have zero length")
	}
	if _, ok := empty.Last(); ok {
		t.Error("nil series has no last bar")
	}
}
