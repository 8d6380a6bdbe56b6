package delegation

import (
	"fmt"

	"commons/client/internal/api"
)

// Warnings are the advisory signals attached to one creation response.
// Levels, percentages, and reasons come from the server verbatim; nothing
// is recomputed client-side.
type Warnings struct {
	Concentration     *ConcentrationWarning
	SuperDelegateRisk *SuperDelegateRisk
}

type ConcentrationWarning struct {
	Level   string // "warn" or "high"
	Percent float64
}

type SuperDelegateRisk struct {
	Reason string
}

// BannerKind identifies a warning banner.
type BannerKind string

const (
	BannerConcentration BannerKind = "concentration"
	BannerSuperDelegate BannerKind = "super_delegate"
)

// Banner is one inline, non-blocking warning to surface after a creation.
type Banner struct {
	Kind    BannerKind
	Level   string
	Message string
}

// EvaluateWarnings decides the ordered banners for a creation response.
// Both banners may appear; neither suppresses the other. An absent field
// means its banner is not rendered.
func EvaluateWarnings(w *Warnings) []Banner {
	if w == nil {
		return nil
	}
	var banners []Banner
	if c := w.Concentration; c != nil {
		banners = append(banners, Banner{
			Kind:  BannerConcentration,
			Level: c.Level,
			Message: fmt.Sprintf("%.0f%% of this field's delegations already point to this delegatee.",
				c.Percent*100),
		})
	}
	if r := w.SuperDelegateRisk; r != nil {
		banners = append(banners, Banner{
			Kind:    BannerSuperDelegate,
			Level:   "warn",
			Message: r.Reason,
		})
	}
	return banners
}

func warningsFromWire(w *api.Warnings) *Warnings {
	if w == nil {
		return nil
	}
	out := &Warnings{}
	if w.Concentration != nil {
		out.Concentration = &ConcentrationWarning{
			Level:   w.Concentration.Level,
			Percent: w.Concentration.Percent,
		}
	}
	if w.SuperDelegateRisk != nil {
		out.SuperDelegateRisk = &SuperDelegateRisk{Reason: w.SuperDelegateRisk.Reason}
	}
	if out.Concentration == nil && out.SuperDelegateRisk == nil {
		return nil
	}
	return out
}
