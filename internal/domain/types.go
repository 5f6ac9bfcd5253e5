// Package domain defines the core value types shared across coinlens:
// transcript-derived mentions, canonical market-data records, reconciled
// table rows, and knowledge corpus items.
package domain

import "time"

// Source identifies which market-data provider issued a record.
type Source string

const (
	// SourcePrimary is the fast provider (1-minute cache TTL).
	SourcePrimary Source = "primary"
	// SourceSecondary is the CMC-like provider (15-minute cache TTL).
	SourceSecondary Source = "secondary"
)

// MarketCapBucket classifies a mentioned project by rough market cap.
type MarketCapBucket string

const (
	CapLarge  MarketCapBucket = "large"
	CapMedium MarketCapBucket = "medium"
	CapSmall  MarketCapBucket = "small"
)

// Mention is one occurrence of a project name inside one transcript-derived
// item. Mentions are immutable once loaded.
type Mention struct {
	RawText        string          `json:"coin_or_project"`
	Channel        string          `json:"channel"`
	Date           string          `json:"date"` // YYYY-MM-DD
	Categories     []string        `json:"category"`
	MarketCap      MarketCapBucket `json:"marketcap,omitempty"`
	MentionCount   int             `json:"total_count"`
	RelevanceScore float64         `json:"rpoints"`
}

// CanonicalCoin is one market-data record from a provider.
type CanonicalCoin struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	MarketCap         float64 `json:"market_cap"`
	Volume24h         float64 `json:"volume_24h"`
	PercentChange24h  float64 `json:"percent_change_24h"`
	CirculatingSupply float64 `json:"circulating_supply"`
	ImageURL          string  `json:"image_url,omitempty"`
	Source            Source  `json:"source"`
}

// ReconciledCoinRow is one row of the dashboard table: a matched canonical
// coin with mention counts aggregated across all contributing mentions.
// Coin IDs are unique within one reconciliation pass.
type ReconciledCoinRow struct {
	Coin                 CanonicalCoin `json:"coin"`
	TotalMentions        int           `json:"total_mentions"`
	Relevance            float64       `json:"relevance"`
	PrimaryChannel       string        `json:"primary_channel"`
	ContributingChannels []string      `json:"contributing_channels"` // sorted
}

// KnowledgeItem is one transcript-derived corpus entry: a video with the
// mentions extracted from its transcript.
type KnowledgeItem struct {
	ID         string    `json:"id"`
	Channel    string    `json:"channel"`
	Date       string    `json:"date"` // YYYY-MM-DD
	VideoTitle string    `json:"video_title"`
	Link       string    `json:"link"`
	Summary    string    `json:"summary,omitempty"`
	Mentions   []Mention `json:"mentions"`
	IngestedAt time.Time `json:"ingested_at"`
}

// CategorySummary is one normalized-category bucket aggregated over mentions.
type CategorySummary struct {
	ID           string   `json:"id"`           // normalized identifier
	DisplayName  string   `json:"display_name"` // curated or first-seen
	Coins        []string `json:"coins"`        // distinct raw coin names, sorted
	MentionCount int      `json:"mention_count"`
	TotalRPoints float64  `json:"total_rpoints"`
}

// ChannelMentionSummary is the per-channel rollup for a single target coin.
type ChannelMentionSummary struct {
	Channel      string  `json:"channel"`
	MentionCount int     `json:"mention_count"`
	TotalRPoints float64 `json:"total_rpoints"`
}
