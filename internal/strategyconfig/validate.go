package strategyconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidationError is a fatal policy error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a recommended-range violation (logged only)
type Warning struct {
	Code    string
	Message string
}

// Validate checks tag rules first, then cross-field constraints
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{fieldPath(fe.Namespace()), ruleMessage(fe)}
		}
		return err
	}

	// === Validation ===
	if cfg.Validation.MinBars < cfg.Scoring.LargestWindow() {
		return ValidationError{"validation.min_bars", fmt.Sprintf("must be >= largest indicator window %d", cfg.Scoring.LargestWindow())}
	}

	// === Scoring ===
	if cfg.Scoring.OverstretchedPct <= cfg.Scoring.DeepPullbackPct {
		return ValidationError{"scoring", "overstretched_pct must be > deep_pullback_pct"}
	}
	if cfg.Scoring.RSIStrong <= cfg.Scoring.RSINeutral {
		return ValidationError{"scoring", "rsi_strong must be > rsi_neutral"}
	}
	if cfg.Scoring.VolumeSurge <= cfg.Scoring.VolumeConfirm {
		return ValidationError{"scoring", "volume_surge must be > volume_confirm"}
	}

	// === Ranking ===
	r := cfg.Ranking
	if !(r.StrongBuyMin > r.BuyMin && r.BuyMin > r.WatchlistMin) {
		return ValidationError{"ranking", "must satisfy strong_buy_min > buy_min > watchlist_min"}
	}

	// === Portfolio ===
	p := cfg.Portfolio
	if p.SectorCap > p.GlobalCap {
		return ValidationError{"portfolio.sector_cap", "must be <= global_cap"}
	}
	if !(p.Sizes.StrongBuy >= p.Sizes.Buy && p.Sizes.Buy >= p.Sizes.Watchlist) {
		return ValidationError{"portfolio.sizes", "must satisfy strong_buy >= buy >= watchlist"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Fetch.Workers < 4 || cfg.Fetch.Workers > 6 {
		warnings = append(warnings, Warning{
			Code:    "WORKERS_OUT_OF_RANGE",
			Message: fmt.Sprintf("fetch.workers=%d outside the recommended 4-6", cfg.Fetch.Workers),
		})
	}

	if cfg.Portfolio.SectorCap == cfg.Portfolio.GlobalCap {
		warnings = append(warnings, Warning{
			Code:    "SECTOR_CAP_INERT",
			Message: "sector_cap equals global_cap: sector limit never binds",
		})
	}

	if float64(cfg.Portfolio.MaxPositions)*cfg.Portfolio.Sizes.Watchlist > cfg.Portfolio.GlobalCap {
		warnings = append(warnings, Warning{
			Code:    "CAP_BELOW_MIN_BOOK",
			Message: "global_cap cannot hold max_positions even at watchlist size",
		})
	}

	if cfg.Scoring.MaxScore() < cfg.Ranking.BuyMin {
		warnings = append(warnings, Warning{
			Code:    "SCORE_CEILING",
			Message: fmt.Sprintf("max score %d < buy_min %d: only WATCHLIST is reachable", cfg.Scoring.MaxScore(), cfg.Ranking.BuyMin),
		})
	}

	return warnings
}

// fieldPath drops the root struct name: "Config.portfolio.sector_cap" → "portfolio.sector_cap"
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min", "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be < %s", fe.Param())
	default:
		return fmt.Sprintf("failed rule %s", fe.Tag())
	}
}
