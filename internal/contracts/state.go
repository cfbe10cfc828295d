package contracts

// Logical RunState keys
const (
	KeyLastMorningRun = "last_morning_run"
	KeyLastEODRun     = "last_eod_run"
	KeyHealthState    = "health_state"
	KeyLastPlan       = "last_plan"
	KeyPickHistory    = "pick_history"
	KeyLastAuditedRun = "last_audited_run"
)

// SentKey builds the dedupe key for a notification event
func SentKey(event string) string {
	return "sent_" + event
}

// RunState is the deduplicated key → value view of the state store
type RunState map[string]string

// SymbolHealthMemory remembers the last trend health per symbol
type SymbolHealthMemory map[string]TrendHealth
