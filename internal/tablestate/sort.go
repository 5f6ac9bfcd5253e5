package tablestate

import (
	"sort"

	"coinlens/internal/domain"
)

// SortMode defines the sort order for the reconciled coin table.
const (
	SortRelevance  = 0 // by relevance score (default)
	SortMentions   = 1 // by total mentions
	SortName       = 2 // by coin name, ascending
	SortPrice      = 3 // by price
	SortMarketCap  = 4 // by market cap
	SortVolume     = 5 // by 24h volume
	SortChange24h  = 6 // by 24h percent change
	SortModeCount  = 7
)

// SortModeLabel returns a short label for the given sort mode.
func SortModeLabel(mode int) string {
	switch mode {
	case SortRelevance:
		return "RPOINTS"
	case SortMentions:
		return "MENTIONS"
	case SortName:
		return "NAME"
	case SortPrice:
		return "PRICE"
	case SortMarketCap:
		return "MCAP"
	case SortVolume:
		return "VOL"
	case SortChange24h:
		return "CHG24H"
	default:
		return "?"
	}
}

// Sort orders rows in place by the given mode.
func Sort(rows []domain.ReconciledCoinRow, mode int) {
	sortRows(rows, mode)
}

// sortRows orders rows by the given mode. Ties fall back to coin id so the
// order is stable across refetches of identical data.
func sortRows(rows []domain.ReconciledCoinRow, mode int) {
	less := func(a, b *domain.ReconciledCoinRow) bool {
		switch mode {
		case SortMentions:
			if a.TotalMentions != b.TotalMentions {
				return a.TotalMentions > b.TotalMentions
			}
		case SortName:
			if a.Coin.Name != b.Coin.Name {
				return a.Coin.Name < b.Coin.Name
			}
		case SortPrice:
			if a.Coin.Price != b.Coin.Price {
				return a.Coin.Price > b.Coin.Price
			}
		case SortMarketCap:
			if a.Coin.MarketCap != b.Coin.MarketCap {
				return a.Coin.MarketCap > b.Coin.MarketCap
			}
		case SortVolume:
			if a.Coin.Volume24h != b.Coin.Volume24h {
				return a.Coin.Volume24h > b.Coin.Volume24h
			}
		case SortChange24h:
			if a.Coin.PercentChange24h != b.Coin.PercentChange24h {
				return a.Coin.PercentChange24h > b.Coin.PercentChange24h
			}
		default: // SortRelevance
			if a.Relevance != b.Relevance {
				return a.Relevance > b.Relevance
			}
			if a.TotalMentions != b.TotalMentions {
				return a.TotalMentions > b.TotalMentions
			}
		}
		return a.Coin.ID < b.Coin.ID
	}
	sort.Slice(rows, func(i, j int) bool {
		return less(&rows[i], &rows[j])
	})
}
