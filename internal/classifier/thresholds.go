package classifier

import (
	"errors"
	"fmt"
)

// Thresholds holds every numeric constant the classifier uses. All windows are
// calendar days unless the name says otherwise.
type Thresholds struct {
	ClusterWindowDays    int     `yaml:"cluster_window_days"`    // max gap between clustered purchase dates
	ForwardDays          int     `yaml:"forward_days"`           // cluster forward-return horizon
	BreakoutPct          float64 `yaml:"breakout_pct"`           // forward rise that counts as "worked out"
	SlumpLookbackDays    int     `yaml:"slump_lookback_days"`    // how far back to look for a slump
	SlumpPct             float64 `yaml:"slump_pct"`              // prior price this much higher = slump
	FlatWindowDays       int     `yaml:"flat_window_days"`       // plateau look-back window
	FlatPct              float64 `yaml:"flat_pct"`               // max pre-trade move for a plateau
	ReactionDays         int     `yaml:"reaction_days"`          // singleton forward-return horizon
	MidRiseLookbackDays  int     `yaml:"mid_rise_lookback_days"` // uptrend look-back window
	MidRiseMinPct        float64 `yaml:"mid_rise_min_pct"`
	MidRiseMaxPct        float64 `yaml:"mid_rise_max_pct"`
	FollowUpBusinessDays int     `yaml:"follow_up_business_days"` // plateau confirmation window
	RestockSpanDays      int     `yaml:"restock_span_days"`
	RestockMinPurchases  int     `yaml:"restock_min_purchases"`
	ProbeDays            int     `yaml:"probe_days"` // extra days searched around a missing offset price
}

// DefaultThresholds returns the canonical threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ClusterWindowDays:    7,
		ForwardDays:          7,
		BreakoutPct:          10,
		SlumpLookbackDays:    30,
		SlumpPct:             15,
		FlatWindowDays:       5,
		FlatPct:              5,
		ReactionDays:         3,
		MidRiseLookbackDays:  30,
		MidRiseMinPct:        10,
		MidRiseMaxPct:        30,
		FollowUpBusinessDays: 7,
		RestockSpanDays:      30,
		RestockMinPurchases:  3,
		ProbeDays:            5,
	}
}

// WithDefaults fills zero-valued fields from DefaultThresholds. Zero is never
// a usable setting: Validate rejects it, so a loaded config must spell out
// every value it overrides.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.ClusterWindowDays == 0 {
		t.ClusterWindowDays = d.ClusterWindowDays
	}
	if t.ForwardDays == 0 {
		t.ForwardDays = d.ForwardDays
	}
	if t.BreakoutPct == 0 {
		t.BreakoutPct = d.BreakoutPct
	}
	if t.SlumpLookbackDays == 0 {
		t.SlumpLookbackDays = d.SlumpLookbackDays
	}
	if t.SlumpPct == 0 {
		t.SlumpPct = d.SlumpPct
	}
	if t.FlatWindowDays == 0 {
		t.FlatWindowDays = d.FlatWindowDays
	}
	if t.FlatPct == 0 {
		t.FlatPct = d.FlatPct
	}
	if t.ReactionDays == 0 {
		t.ReactionDays = d.ReactionDays
	}
	if t.MidRiseLookbackDays == 0 {
		t.MidRiseLookbackDays = d.MidRiseLookbackDays
	}
	if t.MidRiseMinPct == 0 {
		t.MidRiseMinPct = d.MidRiseMinPct
	}
	if t.MidRiseMaxPct == 0 {
		t.MidRiseMaxPct = d.MidRiseMaxPct
	}
	if t.FollowUpBusinessDays == 0 {
		t.FollowUpBusinessDays = d.FollowUpBusinessDays
	}
	if t.RestockSpanDays == 0 {
		t.RestockSpanDays = d.RestockSpanDays
	}
	if t.RestockMinPurchases == 0 {
		t.RestockMinPurchases = d.RestockMinPurchases
	}
	if t.ProbeDays == 0 {
		t.ProbeDays = d.ProbeDays
	}
	return t
}

// Validate rejects threshold sets the classifier cannot run with.
func (t Thresholds) Validate() error {
	var errs []error
	days := []struct {
		name string
		v    int
	}{
		{"cluster_window_days", t.ClusterWindowDays},
		{"forward_days", t.ForwardDays},
		{"slump_lookback_days", t.SlumpLookbackDays},
		{"flat_window_days", t.FlatWindowDays},
		{"reaction_days", t.ReactionDays},
		{"mid_rise_lookback_days", t.MidRiseLookbackDays},
		{"follow_up_business_days", t.FollowUpBusinessDays},
		{"restock_span_days", t.RestockSpanDays},
		{"probe_days", t.ProbeDays},
	}
	for _, f := range days {
		if f.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", f.name))
		}
	}
	pcts := []struct {
		name string
		v    float64
	}{
		{"breakout_pct", t.BreakoutPct},
		{"slump_pct", t.SlumpPct},
		{"flat_pct", t.FlatPct},
		{"mid_rise_min_pct", t.MidRiseMinPct},
		{"mid_rise_max_pct", t.MidRiseMaxPct},
	}
	for _, f := range pcts {
		if !(f.v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive", f.name))
		}
	}
	if t.RestockMinPurchases < 2 {
		errs = append(errs, errors.New("restock_min_purchases must be at least 2"))
	}
	if t.MidRiseMinPct >= t.MidRiseMaxPct {
		errs = append(errs, errors.New("mid_rise_min_pct must be below mid_rise_max_pct"))
	}
	return errors.Join(errs...)
}
