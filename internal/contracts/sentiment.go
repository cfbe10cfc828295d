package contracts

// Sentiment is the pre-computed news signal
type Sentiment struct {
	Overall   float64  `json:"overall"` // -1 ~ 1
	Noise     float64  `json:"noise"`   // 0 ~ 1 (mean subjectivity)
	Headlines []string `json:"headlines"`
}

// NeutralSentiment is used whenever news is unavailable
func NeutralSentiment() Sentiment {
	return Sentiment{}
}

// RiskOn reports whether STRONG_BUY may be assigned
func (s Sentiment) RiskOn(maxNoise float64) bool {
	return s.Noise <= maxNoise
}
