// Package reconcile maps free-text coin/project mentions extracted from video
// transcripts onto canonical market-data records. Matching is best-effort and
// deliberately conservative: a curated alias table and exact matching run
// before the substring fallback, so a noisy mention stays unmatched rather
// than matching the wrong coin.
package reconcile

import (
	"regexp"
	"sort"
	"strings"

	"coinlens/internal/domain"
)

// minSubstringLen is the shortest normalized clean name allowed to use the
// substring fallback. Two-character names match too many unrelated assets.
const minSubstringLen = 3

var tickerRe = regexp.MustCompile(`\(\s*\$?\s*([A-Za-z0-9]{1,10})\s*\)`)

// ExtractTicker extracts a parenthesized ticker from raw mention text, e.g.
// "Solana ($SOL)" yields ("sol", "Solana"). The ticker is case-folded with
// the "$" and surrounding whitespace stripped. When no parenthesized ticker
// is present the ticker is empty and cleanName is the trimmed input.
func ExtractTicker(raw string) (ticker, cleanName string) {
	m := tickerRe.FindStringSubmatchIndex(raw)
	if m == nil {
		return "", strings.TrimSpace(raw)
	}
	ticker = strings.ToLower(raw[m[2]:m[3]])
	cleanName = strings.TrimSpace(raw[:m[0]] + raw[m[1]:])
	return ticker, cleanName
}

// normalizeKey lower-cases s, folds hyphens into spaces, and collapses runs
// of whitespace, so "Ethereum-Classic" and "ethereum  classic" compare equal.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Stats reports how a reconciliation pass went. Unmatched mentions are
// excluded from the output rows but still counted here for "total processed"
// statistics.
type Stats struct {
	Processed int
	Matched   int
	Unmatched int
	Skipped   int // malformed mentions (empty text or channel)
}

// coinIndex provides the lookup structures for one canonical coin list.
type coinIndex struct {
	coins    []domain.CanonicalCoin
	byID     map[string]int
	bySymbol map[string]int
	byName   map[string]int
}

func buildIndex(coins []domain.CanonicalCoin) *coinIndex {
	idx := &coinIndex{
		coins:    coins,
		byID:     make(map[string]int, len(coins)),
		bySymbol: make(map[string]int, len(coins)),
		byName:   make(map[string]int, len(coins)),
	}
	for i := range coins {
		if _, ok := idx.byID[coins[i].ID]; !ok {
			idx.byID[coins[i].ID] = i
		}
		// First occurrence wins: canonical input order is the provider's
		// ranking, so duplicate symbols resolve to the larger asset.
		sym := normalizeKey(coins[i].Symbol)
		if _, ok := idx.bySymbol[sym]; !ok && sym != "" {
			idx.bySymbol[sym] = i
		}
		name := normalizeKey(coins[i].Name)
		if _, ok := idx.byName[name]; !ok && name != "" {
			idx.byName[name] = i
		}
	}
	return idx
}

// match resolves one mention to a coin index position, or -1. The priority
// order is fixed: ticker/alias, exact, substring.
func (idx *coinIndex) match(rawText string) int {
	ticker, clean := ExtractTicker(rawText)
	cleanKey := normalizeKey(clean)

	// Static alias table, ticker first then clean name.
	for _, key := range []string{ticker, cleanKey} {
		if key == "" {
			continue
		}
		if id, ok := lookupAlias(key); ok {
			if i, ok := idx.byID[id]; ok {
				return i
			}
		}
	}

	// Exact symbol/name match, ignoring case and hyphen/space differences.
	for _, key := range []string{ticker, cleanKey} {
		if key == "" {
			continue
		}
		if i, ok := idx.bySymbol[key]; ok {
			return i
		}
		if i, ok := idx.byName[key]; ok {
			return i
		}
	}

	// Substring fallback, lower confidence. Symbol checked before name;
	// first hit in canonical input order wins.
	if len(cleanKey) < minSubstringLen {
		return -1
	}
	for i := range idx.coins {
		sym := normalizeKey(idx.coins[i].Symbol)
		if len(sym) >= minSubstringLen && (strings.Contains(cleanKey, sym) || strings.Contains(sym, cleanKey)) {
			return i
		}
	}
	for i := range idx.coins {
		name := normalizeKey(idx.coins[i].Name)
		if len(name) >= minSubstringLen && (strings.Contains(cleanKey, name) || strings.Contains(name, cleanKey)) {
			return i
		}
	}
	return -1
}

// rowAgg accumulates mentions resolved to one canonical coin. The relevance
// winner carries its channel and date so the tie-break rules can be applied
// pairwise as mentions arrive.
type rowAgg struct {
	coin          domain.CanonicalCoin
	totalMentions int
	relevance     float64
	winnerChannel string
	winnerDate    string
	channels      map[string]struct{}
}

// ReconcileWithStats matches every mention against the canonical list and
// aggregates the matches into one row per distinct coin. It is total: empty
// inputs yield an empty result, malformed mentions are skipped, and identical
// inputs always produce identical output (rows sorted by relevance, then
// total mentions, then coin id).
func ReconcileWithStats(mentions []domain.Mention, coins []domain.CanonicalCoin) ([]domain.ReconciledCoinRow, Stats) {
	var stats Stats
	if len(mentions) == 0 || len(coins) == 0 {
		stats.Processed = len(mentions)
		stats.Unmatched = len(mentions)
		return []domain.ReconciledCoinRow{}, stats
	}

	idx := buildIndex(coins)
	aggs := make(map[string]*rowAgg)

	for i := range mentions {
		m := &mentions[i]
		stats.Processed++

		if strings.TrimSpace(m.RawText) == "" || m.Channel == "" {
			stats.Skipped++
			stats.Unmatched++
			continue
		}

		pos := idx.match(m.RawText)
		if pos < 0 {
			stats.Unmatched++
			continue
		}
		stats.Matched++

		coin := coins[pos]
		count := m.MentionCount
		if count < 1 {
			count = 1
		}

		agg, ok := aggs[coin.ID]
		if !ok {
			aggs[coin.ID] = &rowAgg{
				coin:          coin,
				totalMentions: count,
				relevance:     m.RelevanceScore,
				winnerChannel: m.Channel,
				winnerDate:    m.Date,
				channels:      map[string]struct{}{m.Channel: {}},
			}
			continue
		}

		agg.totalMentions += count
		agg.channels[m.Channel] = struct{}{}

		if m.Channel == agg.winnerChannel {
			// Same channel: the later-dated mention wins relevance.
			// Dates are ISO strings, so lexicographic order is date order.
			if m.Date > agg.winnerDate {
				agg.relevance = m.RelevanceScore
				agg.winnerDate = m.Date
			}
		} else if m.RelevanceScore > agg.relevance {
			// Cross channel: the strictly higher score wins relevance and
			// primary-channel attribution.
			agg.relevance = m.RelevanceScore
			agg.winnerChannel = m.Channel
			agg.winnerDate = m.Date
		}
	}

	rows := make([]domain.ReconciledCoinRow, 0, len(aggs))
	for _, agg := range aggs {
		channels := make([]string, 0, len(agg.channels))
		for ch := range agg.channels {
			channels = append(channels, ch)
		}
		sort.Strings(channels)
		rows = append(rows, domain.ReconciledCoinRow{
			Coin:                 agg.coin,
			TotalMentions:        agg.totalMentions,
			Relevance:            agg.relevance,
			PrimaryChannel:       agg.winnerChannel,
			ContributingChannels: channels,
		})
	}

	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Relevance != rows[b].Relevance {
			return rows[a].Relevance > rows[b].Relevance
		}
		if rows[a].TotalMentions != rows[b].TotalMentions {
			return rows[a].TotalMentions > rows[b].TotalMentions
		}
		return rows[a].Coin.ID < rows[b].Coin.ID
	})

	return rows, stats
}

// Reconcile is ReconcileWithStats without the statistics.
func Reconcile(mentions []domain.Mention, coins []domain.CanonicalCoin) []domain.ReconciledCoinRow {
	rows, _ := ReconcileWithStats(mentions, coins)
	return rows
}

// AliasID resolves a mention text through the curated alias table alone,
// trying the extracted ticker and then the clean name. Callers use it to rule
// out mentions that the alias table attributes to a different coin before
// falling back to weaker matching.
func AliasID(rawText string) (string, bool) {
	ticker, clean := ExtractTicker(rawText)
	for _, key := range []string{ticker, normalizeKey(clean)} {
		if key == "" {
			continue
		}
		if id, ok := lookupAlias(key); ok {
			return id, true
		}
	}
	return "", false
}

// Matcher resolves free-text mentions against one canonical coin list,
// reusing the lookup index across calls.
type Matcher struct {
	idx *coinIndex
}

// NewMatcher builds a Matcher over the given canonical list.
func NewMatcher(coins []domain.CanonicalCoin) *Matcher {
	return &Matcher{idx: buildIndex(coins)}
}

// Match resolves one mention text to a canonical coin, reporting whether a
// match was found.
func (m *Matcher) Match(rawText string) (domain.CanonicalCoin, bool) {
	if strings.TrimSpace(rawText) == "" || len(m.idx.coins) == 0 {
		return domain.CanonicalCoin{}, false
	}
	pos := m.idx.match(rawText)
	if pos < 0 {
		return domain.CanonicalCoin{}, false
	}
	return m.idx.coins[pos], true
}

// MatchCoin resolves a single free-text mention against the canonical list,
// for callers that need the identity without aggregation (e.g. the
// per-channel rollup for one target coin).
func MatchCoin(rawText string, coins []domain.CanonicalCoin) (domain.CanonicalCoin, bool) {
	if len(coins) == 0 {
		return domain.CanonicalCoin{}, false
	}
	return NewMatcher(coins).Match(rawText)
}
