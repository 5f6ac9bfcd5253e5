package domain

import (
	"testing"
	"time"
)

func TestTypesExist(t *testing.T) {
	// Verify Mention can be instantiated with zero values.
	m := Mention{}
	if m.RawText != "" || m.Channel != "" || m.Date != "" {
		t.Error("expected empty strings for zero-value Mention")
	}
	if m.MentionCount != 0 || m.RelevanceScore != 0 {
		t.Error("expected zero counts for zero-value Mention")
	}
	if m.Categories != nil {
		t.Error("expected nil Categories for zero-value Mention")
	}

	// Verify CanonicalCoin zero values.
	c := CanonicalCoin{}
	if c.ID != "" || c.Symbol != "" || c.Name != "" {
		t.Error("expected empty identity fields for zero-value CanonicalCoin")
	}
	if c.Price != 0 || c.MarketCap != 0 || c.Volume24h != 0 {
		t.Error("expected zero market fields for zero-value CanonicalCoin")
	}

	// Verify enum constants are defined correctly.
	if SourcePrimary != "primary" || SourceSecondary != "secondary" {
		t.Error("Source constants have unexpected values")
	}
	if CapLarge != "large" || CapMedium != "medium" || CapSmall != "small" {
		t.Error("MarketCapBucket constants have unexpected values")
	}

	// Verify structs can be constructed with real values.
	now := time.Now()
	item := KnowledgeItem{
		ID:         "a1",
		Channel:    "CoinDesk",
		Date:       "2024-03-05",
		VideoTitle: "Top picks this week",
		Link:       "https://youtube.com/watch?v=abc",
		Mentions: []Mention{
			{RawText: "Bitcoin ($BTC)", Channel: "CoinDesk", Date: "2024-03-05", MentionCount: 2, RelevanceScore: 10},
		},
		IngestedAt: now,
	}
	if item.Mentions[0].RawText != "Bitcoin ($BTC)" {
		t.Errorf("item.Mentions[0].RawText = %q, want %q", item.Mentions[0].RawText, "Bitcoin ($BTC)")
	}

	row := ReconciledCoinRow{
		Coin:          CanonicalCoin{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Source: SourcePrimary},
		TotalMentions: 2,
		Relevance:     10,
	}
	if row.Coin.ID != "bitcoin" {
		t.Errorf("row.Coin.ID = %q, want %q", row.Coin.ID, "bitcoin")
	}
}
