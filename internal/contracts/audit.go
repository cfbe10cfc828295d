package contracts

// Outcome grades a pick after one session
type Outcome string

const (
	OutcomeCorrect   Outcome = "CORRECT"
	OutcomeIncorrect Outcome = "INCORRECT"
	OutcomeNoEdge    Outcome = "NO_EDGE"
)

// PickOutcome is one evaluated pick, persisted in the pick history blob
type PickOutcome struct {
	Date       string       `json:"date"`
	Symbol     string       `json:"symbol"`
	Bucket     Bucket       `json:"bucket"`
	Score      int          `json:"score"`
	Regime     MarketRegime `json:"regime,omitempty"`
	EntryPrice float64      `json:"entry_price"`
	ExitPrice  float64      `json:"exit_price"`
	DeltaPct   float64      `json:"delta_pct"`
	Result     Outcome      `json:"result"`
}

// Graded reports whether the outcome counts toward accuracy
func (o PickOutcome) Graded() bool {
	return o.Result == OutcomeCorrect || o.Result == OutcomeIncorrect
}
