package filters

import (
	"testing"
	"time"

	"coinlens/internal/domain"
)

func TestResolvePresetToday(t *testing.T) {
	now := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	r := ResolvePreset(PresetToday, Range{}, now)

	wantFrom := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, 3, 5, 23, 59, 59, 999_000_000, time.UTC)
	if !r.From.Equal(wantFrom) {
		t.Errorf("From = %v, want %v", r.From, wantFrom)
	}
	if !r.To.Equal(wantTo) {
		t.Errorf("To = %v, want %v", r.To, wantTo)
	}
	if r.MostRecent {
		t.Error("MostRecent should be false for today preset")
	}
}

func TestResolvePresetTable(t *testing.T) {
	now := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		preset   DatePreset
		wantFrom time.Time
		wantTo   time.Time
		mostRec  bool
	}{
		{PresetAllTime, time.Time{}, time.Time{}, false},
		{PresetMostRecent, time.Time{}, time.Time{}, true},
		{PresetYesterday,
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 23, 59, 59, 999_000_000, time.UTC), false},
		{PresetLast7Days,
			time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 5, 23, 59, 59, 999_000_000, time.UTC), false},
		{PresetLast30Days,
			time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 5, 23, 59, 59, 999_000_000, time.UTC), false},
	}

	for _, tt := range tests {
		r := ResolvePreset(tt.preset, Range{}, now)
		if !r.From.Equal(tt.wantFrom) || !r.To.Equal(tt.wantTo) || r.MostRecent != tt.mostRec {
			t.Errorf("ResolvePreset(%s) = %+v, want from=%v to=%v mostRecent=%v",
				tt.preset, r, tt.wantFrom, tt.wantTo, tt.mostRec)
		}
	}
}

func TestResolvePresetCustom(t *testing.T) {
	now := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Each end of a custom range is independently optional.
	r := ResolvePreset(PresetCustom, Range{From: from}, now)
	if !r.From.Equal(from) || !r.To.IsZero() {
		t.Errorf("custom resolve = %+v, want from=%v to=zero", r, from)
	}
}

func TestMostRecentOverridesExplicitRange(t *testing.T) {
	now := time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC)
	explicit := Range{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	r := ResolvePreset(PresetMostRecent, explicit, now)
	if !r.MostRecent || !r.From.IsZero() || !r.To.IsZero() {
		t.Errorf("most-recent must ignore explicit bounds entirely, got %+v", r)
	}
}

func TestSelectMentionsMostRecentPerChannel(t *testing.T) {
	// Channel A's latest date is 2024-03-04; channel B's is 2024-03-02.
	mentions := []domain.Mention{
		{RawText: "Bitcoin", Channel: "A", Date: "2024-03-01"},
		{RawText: "Ethereum", Channel: "A", Date: "2024-03-04"},
		{RawText: "Solana", Channel: "B", Date: "2024-03-02"},
		{RawText: "Dogecoin", Channel: "B", Date: "2024-02-20"},
	}
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	out := SelectMentions(mentions, FilterState{DatePreset: PresetMostRecent}, now)
	if len(out) != 2 {
		t.Fatalf("got %d mentions, want 2: %v", len(out), out)
	}
	got := map[string]string{}
	for _, m := range out {
		got[m.Channel] = m.Date
	}
	if got["A"] != "2024-03-04" {
		t.Errorf("channel A selected date = %q, want its own latest 2024-03-04", got["A"])
	}
	if got["B"] != "2024-03-02" {
		t.Errorf("channel B selected date = %q, want its own latest 2024-03-02", got["B"])
	}
}

func TestSelectMentionsChannelAndWindow(t *testing.T) {
	mentions := []domain.Mention{
		{RawText: "Bitcoin", Channel: "A", Date: "2024-03-05"},
		{RawText: "Ethereum", Channel: "B", Date: "2024-03-05"},
		{RawText: "Solana", Channel: "A", Date: "2024-02-01"},
		{RawText: "Pepe", Channel: "A", Date: "not-a-date"},
	}
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	fs := FilterState{SelectedChannels: []string{"A"}, DatePreset: PresetToday}
	out := SelectMentions(mentions, fs, now)
	if len(out) != 1 || out[0].RawText != "Bitcoin" {
		t.Errorf("SelectMentions = %v, want only today's channel-A mention", out)
	}
}

func TestSelectMentionsCategoryFilter(t *testing.T) {
	mentions := []domain.Mention{
		{RawText: "Dogecoin", Channel: "A", Date: "2024-03-05", Categories: []string{"Meme Coins"}},
		{RawText: "Aave", Channel: "A", Date: "2024-03-05", Categories: []string{"DeFi"}},
		{RawText: "Bitcoin", Channel: "A", Date: "2024-03-05"},
	}
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	// Filter spelled differently from the mention label; both normalize to
	// the same id.
	fs := FilterState{Categories: []string{"memecoin"}}
	out := SelectMentions(mentions, fs, now)
	if len(out) != 1 || out[0].RawText != "Dogecoin" {
		t.Errorf("SelectMentions = %v, want only the meme mention", out)
	}
}

func TestFilterRows(t *testing.T) {
	rows := []domain.ReconciledCoinRow{
		{Coin: domain.CanonicalCoin{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCap: 1e12, Volume24h: 1e10, PercentChange24h: 2}},
		{Coin: domain.CanonicalCoin{ID: "pepe", Symbol: "pepe", Name: "Pepe", MarketCap: 1e9, Volume24h: 1e8, PercentChange24h: -12}},
	}

	// Case-insensitive substring search.
	out := FilterRows(rows, FilterState{SearchTerm: "BIT"})
	if len(out) != 1 || out[0].Coin.ID != "bitcoin" {
		t.Errorf("search filter = %v, want bitcoin only", out)
	}

	// Numeric bounds.
	minCap := 1e10
	out = FilterRows(rows, FilterState{MarketCapMin: &minCap})
	if len(out) != 1 || out[0].Coin.ID != "bitcoin" {
		t.Errorf("market-cap bound = %v, want bitcoin only", out)
	}

	maxChange := 0.0
	out = FilterRows(rows, FilterState{PriceChangeMax: &maxChange})
	if len(out) != 1 || out[0].Coin.ID != "pepe" {
		t.Errorf("price-change bound = %v, want pepe only", out)
	}

	// No filters: all rows pass.
	if out := FilterRows(rows, FilterState{}); len(out) != 2 {
		t.Errorf("empty filter dropped rows: %v", out)
	}
}
