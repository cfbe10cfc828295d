package contracts

import (
	"encoding/json"
	"testing"
)

func samplePlan() *AllocationPlan {
	return &AllocationPlan{
		Date: "2024-05-02",
		Entries: []AllocationEntry{
			{Symbol: "TCS.NS", Bucket: BucketStrongBuy, SizeFraction: 0.25, Score: 85, Sector: "IT"},
			{Symbol: "INFY.NS", Bucket: BucketBuy, SizeFraction: 0.15, Score: 70, Sector: "IT"},
			{Symbol: "SBIN.NS", Bucket: BucketWatchlist, SizeFraction: 0.05, Score: 52, Sector: "BANK"},
		},
		GlobalCap: 0.90,
		SectorCap: 0.50,
	}
}

func TestAllocationPlan_TotalExposure(t *testing.T) {
	plan := samplePlan()

	expected := 0.25 + 0.15 + 0.05
	if total := plan.TotalExposure(); total != expected {
		t.Errorf("TotalExposure() = %v, want %v", total, expected)
	}
}

func TestAllocationPlan_SectorExposure(t *testing.T) {
	exposure := samplePlan().SectorExposure()

	if got, want := exposure["IT"], 0.25+0.15; got != want {
		t.Errorf("SectorExposure()[IT] = %v, want %v", got, want)
	}
	if got := exposure["BANK"]; got != 0.05 {
		t.Errorf("SectorExposure()[BANK] = %v, want 0.05", got)
	}
}

func TestAllocationPlan_Lookup(t *testing.T) {
	plan := samplePlan()

	if plan.Count() != 3 || plan.IsEmpty() {
		t.Fatalf("Count() = %d, IsEmpty() = %v", plan.Count(), plan.IsEmpty())
	}

	entry, ok := plan.Get("INFY.NS")
	if !ok || entry.Score != 70 {
		t.Errorf("Get(INFY.NS) = %+v, %v", entry, ok)
	}
	if _, ok := plan.Get("ITC.NS"); ok {
		t.Error("Get(ITC.NS) should not exist")
	}

	if scores := plan.Scores(); scores["TCS.NS"] != 85 || len(scores) != 3 {
		t.Errorf("Scores() = %v", scores)
	}

	symbols := plan.Symbols()
	if len(symbols) != 3 || symbols[0] != "TCS.NS" || symbols[2] != "SBIN.NS" {
		t.Errorf("Symbols() = %v, want plan order", symbols)
	}
}

func TestAllocationPlan_Empty(t *testing.T) {
	var plan AllocationPlan

	if !plan.IsEmpty() {
		t.Error("zero plan should be empty")
	}
	if plan.TotalExposure() != 0 {
		t.Errorf("TotalExposure() = %v, want 0", plan.TotalExposure())
	}
}

func TestAllocationPlan_JSONRoundTrip(t *testing.T) {
	plan := samplePlan()

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded AllocationPlan
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Count() != plan.Count() || decoded.Entries[0].Bucket != BucketStrongBuy {
		t.Errorf("decoded plan = %+v", decoded)
	}
}
