package contracts

import "fmt"

// ActionExit is the only action the drift monitor emits
const ActionExit = "EXIT"

// ExitEvent records a score collapse in a previously selected symbol
type ExitEvent struct {
	Date     string `json:"date"`
	Symbol   string `json:"symbol"`
	Action   string `json:"action"`
	OldScore int    `json:"old_score"`
	NewScore int    `json:"new_score"`
}

// Detail renders the score transition, e.g. "90 → 70"
func (e ExitEvent) Detail() string {
	return fmt.Sprintf("%d → %d", e.OldScore, e.NewScore)
}

// Drop returns how many points the score fell
func (e ExitEvent) Drop() int {
	return e.OldScore - e.NewScore
}
