package httpapi

import "coinlens/internal/domain"

// CoinsResponse is the paginated reconciled coin table.
type CoinsResponse struct {
	Data      []domain.ReconciledCoinRow `json:"data"`
	Page      int                        `json:"page"`
	PageCount int                        `json:"page_count"`
	Total     int                        `json:"total"`
	SortMode  int                        `json:"sort_mode"`
	SortLabel string                     `json:"sort_label"`
	Timestamp int64                      `json:"timestamp"` // unix milliseconds
}

// CoinDetailResponse is one coin's row plus its per-channel mention rollup.
type CoinDetailResponse struct {
	Row      domain.ReconciledCoinRow       `json:"row"`
	Channels []domain.ChannelMentionSummary `json:"channels"`
}

// CategoriesResponse lists aggregated category buckets.
type CategoriesResponse struct {
	Categories []domain.CategorySummary `json:"categories"`
}

// ChannelsResponse lists the corpus channels with each channel's latest date.
type ChannelsResponse struct {
	Channels    []string          `json:"channels"`
	LatestDates map[string]string `json:"latest_dates"`
}

// KnowledgeResponse lists corpus items.
type KnowledgeResponse struct {
	Items []domain.KnowledgeItem `json:"items"`
}

// HistoryResponse is one archived day's reconciled rows.
type HistoryResponse struct {
	Date      string                     `json:"date"`
	Rows      []domain.ReconciledCoinRow `json:"rows"`
	SortMode  int                        `json:"sort_mode"`
	SortLabel string                     `json:"sort_label"`
}

// DatesResponse lists the archived snapshot dates.
type DatesResponse struct {
	Dates []string `json:"dates"`
}
