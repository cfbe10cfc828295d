package contracts

// DefaultSector labels symbols loaded from the fallback universe
const DefaultSector = "DEFAULT"

// UnknownSector labels symbols missing from the sector lookup
const UnknownSector = "UNKNOWN"

// Universe is the symbol list and sector lookup for a run
// ⭐ SSOT: universe loader → builder / ranker
type Universe struct {
	Symbols  []string          `json:"symbols"`
	Sectors  map[string]string `json:"sectors"`
	Fallback bool              `json:"fallback"` // true when the hard-coded list was used
}

// SectorOf returns the sector for a symbol, or UnknownSector
func (u *Universe) SectorOf(symbol string) string {
	if s, ok := u.Sectors[symbol]; ok && s != "" {
		return s
	}
	return UnknownSector
}

// Count returns the number of symbols
func (u *Universe) Count() int {
	return len(u.Symbols)
}
