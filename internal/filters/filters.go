// Package filters owns the serializable filter state of a dashboard table and
// the deterministic resolution of date presets into effective windows.
package filters

import (
	"strings"
	"time"

	"coinlens/internal/aggregate"
	"coinlens/internal/domain"
	"coinlens/internal/util"
)

// DatePreset names a predefined date window anchored at "now".
type DatePreset string

const (
	PresetAllTime    DatePreset = "all-time"
	PresetMostRecent DatePreset = "most-recent"
	PresetToday      DatePreset = "today"
	PresetYesterday  DatePreset = "yesterday"
	PresetLast7Days  DatePreset = "last-7-days"
	PresetLast30Days DatePreset = "last-30-days"
	PresetCustom     DatePreset = "custom"
)

// Range is an explicit date window; zero times mean an unbounded end.
type Range struct {
	From time.Time
	To   time.Time
}

// Resolved is the effective window a preset resolves to. Zero From/To mean
// unbounded. MostRecent switches row selection to the per-channel
// latest-date mode and always takes precedence over explicit bounds.
type Resolved struct {
	From       time.Time
	To         time.Time
	MostRecent bool
}

// ResolvePreset maps a preset (and, for PresetCustom, an explicit range) to
// the effective window anchored at now. Unknown presets resolve like
// all-time.
func ResolvePreset(preset DatePreset, explicit Range, now time.Time) Resolved {
	switch preset {
	case PresetMostRecent:
		return Resolved{MostRecent: true}
	case PresetToday:
		return Resolved{From: util.StartOfDay(now), To: util.EndOfDay(now)}
	case PresetYesterday:
		y := now.AddDate(0, 0, -1)
		return Resolved{From: util.StartOfDay(y), To: util.EndOfDay(y)}
	case PresetLast7Days:
		return Resolved{From: util.StartOfDay(now.AddDate(0, 0, -7)), To: util.EndOfDay(now)}
	case PresetLast30Days:
		return Resolved{From: util.StartOfDay(now.AddDate(0, 0, -30)), To: util.EndOfDay(now)}
	case PresetCustom:
		return Resolved{From: explicit.From, To: explicit.To}
	default: // PresetAllTime and anything unrecognized
		return Resolved{}
	}
}

// FilterState is the full, serializable set of active filters for one table.
type FilterState struct {
	SelectedChannels []string   `json:"selected_channels,omitempty"` // empty = all channels
	DatePreset       DatePreset `json:"date_preset,omitempty"`
	DateRange        Range      `json:"date_range,omitzero"` // meaningful only for PresetCustom
	Categories       []string   `json:"categories,omitempty"` // normalized ids; empty = all
	SearchTerm       string     `json:"search_term,omitempty"`

	MarketCapMin   *float64 `json:"market_cap_min,omitempty"`
	MarketCapMax   *float64 `json:"market_cap_max,omitempty"`
	PriceChangeMin *float64 `json:"price_change_min,omitempty"`
	PriceChangeMax *float64 `json:"price_change_max,omitempty"`
	VolumeMin      *float64 `json:"volume_min,omitempty"`
	VolumeMax      *float64 `json:"volume_max,omitempty"`
}

// SelectMentions returns the mentions passing the channel, date, and category
// filters, resolving the date preset at now. In most-recent mode each
// selected channel contributes only mentions dated on that channel's own
// latest available date; channels publish on independent schedules, so there
// is no single global cutoff.
func SelectMentions(mentions []domain.Mention, fs FilterState, now time.Time) []domain.Mention {
	window := ResolvePreset(fs.DatePreset, fs.DateRange, now)

	channelOK := channelPredicate(fs.SelectedChannels)
	categoryOK := categoryPredicate(fs.Categories)

	var latestByChannel map[string]string
	if window.MostRecent {
		latestByChannel = make(map[string]string)
		for i := range mentions {
			m := &mentions[i]
			if !channelOK(m.Channel) {
				continue
			}
			if m.Date > latestByChannel[m.Channel] {
				latestByChannel[m.Channel] = m.Date
			}
		}
	}

	var out []domain.Mention
	for i := range mentions {
		m := &mentions[i]
		if !channelOK(m.Channel) || !categoryOK(m.Categories) {
			continue
		}

		if window.MostRecent {
			if m.Date == "" || m.Date != latestByChannel[m.Channel] {
				continue
			}
		} else if !window.From.IsZero() || !window.To.IsZero() {
			d, ok := util.ParseDay(m.Date)
			if !ok {
				continue
			}
			if !window.From.IsZero() && d.Before(util.StartOfDay(window.From)) {
				continue
			}
			if !window.To.IsZero() && d.After(window.To) {
				continue
			}
		}

		out = append(out, *m)
	}
	return out
}

// FilterRows applies the search term and numeric bounds to reconciled rows.
// The search is a case-insensitive substring match against coin name and
// symbol.
func FilterRows(rows []domain.ReconciledCoinRow, fs FilterState) []domain.ReconciledCoinRow {
	term := strings.ToLower(strings.TrimSpace(fs.SearchTerm))

	out := make([]domain.ReconciledCoinRow, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Coin.Name), term) &&
			!strings.Contains(strings.ToLower(r.Coin.Symbol), term) {
			continue
		}
		if !within(r.Coin.MarketCap, fs.MarketCapMin, fs.MarketCapMax) {
			continue
		}
		if !within(r.Coin.PercentChange24h, fs.PriceChangeMin, fs.PriceChangeMax) {
			continue
		}
		if !within(r.Coin.Volume24h, fs.VolumeMin, fs.VolumeMax) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

func within(v float64, min, max *float64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

func channelPredicate(selected []string) func(string) bool {
	if len(selected) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(selected))
	for _, ch := range selected {
		set[ch] = struct{}{}
	}
	return func(ch string) bool {
		_, ok := set[ch]
		return ok
	}
}

func categoryPredicate(selected []string) func([]string) bool {
	if len(selected) == 0 {
		return func([]string) bool { return true }
	}
	set := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		set[aggregate.NormalizeCategory(c)] = struct{}{}
	}
	return func(categories []string) bool {
		for _, raw := range categories {
			if _, ok := set[aggregate.NormalizeCategory(raw)]; ok {
				return true
			}
		}
		return false
	}
}
