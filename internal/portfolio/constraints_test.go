package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
)

func TestEffectiveCaps(t *testing.T) {
	base := Caps{Global: 0.90, Sector: 0.50}

	tests := []struct {
		name    string
		overall float64
		want    Caps
	}{
		{"neutral", 0, Caps{Global: 0.90, Sector: 0.50}},
		{"at threshold", -0.2, Caps{Global: 0.90, Sector: 0.50}},
		{"risk off", -0.5, Caps{Global: 0.45, Sector: 0.45}},
		{"positive", 0.8, Caps{Global: 0.90, Sector: 0.50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveCaps(base, contracts.Sentiment{Overall: tt.overall}, -0.2, 0.5)
			assert.InDelta(t, tt.want.Global, got.Global, 1e-12)
			assert.InDelta(t, tt.want.Sector, got.Sector, 1e-12)
		})
	}
}

func TestEffectiveCaps_SectorClamped(t *testing.T) {
	got := EffectiveCaps(Caps{Global: 0.30, Sector: 0.50}, contracts.NeutralSentiment(), -0.2, 0.5)
	assert.Equal(t, 0.30, got.Sector)
}
