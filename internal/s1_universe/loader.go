package s1_universe

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/internal/strategyconfig"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/httputil"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// ErrEmptyUniverse is returned by Parse when no symbol survives filtering
var ErrEmptyUniverse = errors.New("empty universe")

// Loader downloads the index constituent list
// ⭐ SSOT: universe loading lives here only
type Loader struct {
	httpClient *httputil.Client
	url        string
	config     strategyconfig.Universe
	logger     *logger.Logger
}

// NewLoader creates a new universe loader
func NewLoader(httpClient *httputil.Client, url string, config strategyconfig.Universe, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{httpClient: httpClient, url: url, config: config, logger: log}
}

// Load returns the downloaded universe, or the fallback list when the
// download fails or yields nothing
func (l *Loader) Load(ctx context.Context) *contracts.Universe {
	if l.url == "" {
		return l.fallback("no universe URL configured")
	}

	body, err := l.httpClient.GetBody(ctx, l.url)
	if err != nil {
		return l.fallback(err.Error())
	}

	universe, excluded, err := Parse(body, l.config)
	if err != nil {
		return l.fallback(err.Error())
	}

	l.logger.WithFields(map[string]interface{}{
		"symbols":  universe.Count(),
		"excluded": len(excluded),
	}).Info("Universe loaded")

	return universe
}

func (l *Loader) fallback(reason string) *contracts.Universe {
	u := Fallback(l.config)
	l.logger.WithFields(map[string]interface{}{
		"reason":  reason,
		"symbols": u.Count(),
	}).Warn("Using fallback universe")
	return u
}

// Fallback returns the configured hard-coded universe with one sector label
func Fallback(cfg strategyconfig.Universe) *contracts.Universe {
	u := &contracts.Universe{
		Symbols:  make([]string, 0, len(cfg.Fallback)),
		Sectors:  make(map[string]string, len(cfg.Fallback)),
		Fallback: true,
	}
	for _, s := range cfg.Fallback {
		if _, dup := u.Sectors[s]; dup || s == "" {
			continue
		}
		u.Symbols = append(u.Symbols, s)
		u.Sectors[s] = contracts.DefaultSector
	}
	return u
}

// Parse reads a constituent CSV. Symbols get the configured suffix; rows
// in excluded sectors, blank and duplicate symbols are dropped and
// reported in the returned map (symbol or row → reason).
func Parse(data []byte, cfg strategyconfig.Universe) (*contracts.Universe, map[string]string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	symCol := column(header, cfg.SymbolColumn)
	if symCol < 0 {
		return nil, nil, fmt.Errorf("column %q not found", cfg.SymbolColumn)
	}
	secCol := column(header, cfg.SectorColumn)

	excludedSectors := make(map[string]bool, len(cfg.ExcludeSectors))
	for _, s := range cfg.ExcludeSectors {
		excludedSectors[strings.ToUpper(strings.TrimSpace(s))] = true
	}

	u := &contracts.Universe{
		Symbols: make([]string, 0),
		Sectors: make(map[string]string),
	}
	excluded := make(map[string]string)

	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if symCol >= len(rec) {
			excluded[fmt.Sprintf("line %d", line)] = "missing symbol column"
			continue
		}

		symbol := normalizeSymbol(rec[symCol], cfg.SymbolSuffix)
		if symbol == "" {
			excluded[fmt.Sprintf("line %d", line)] = "blank symbol"
			continue
		}
		if _, dup := u.Sectors[symbol]; dup {
			excluded[symbol] = "duplicate"
			continue
		}

		sector := contracts.UnknownSector
		if secCol >= 0 && secCol < len(rec) && strings.TrimSpace(rec[secCol]) != "" {
			sector = strings.TrimSpace(rec[secCol])
		}
		if excludedSectors[strings.ToUpper(sector)] {
			excluded[symbol] = "excluded sector " + sector
			continue
		}

		if cfg.MaxSymbols > 0 && len(u.Symbols) >= cfg.MaxSymbols {
			excluded[symbol] = "max symbols reached"
			continue
		}

		u.Symbols = append(u.Symbols, symbol)
		u.Sectors[symbol] = sector
	}

	if len(u.Symbols) == 0 {
		return nil, excluded, ErrEmptyUniverse
	}
	return u, excluded, nil
}

func column(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func normalizeSymbol(raw, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || strings.ContainsAny(s, " \t") {
		return ""
	}
	if suffix != "" && !strings.HasSuffix(s, strings.ToUpper(suffix)) {
		s += strings.ToUpper(suffix)
	}
	return s
}
