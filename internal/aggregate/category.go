package aggregate

import (
	"sort"
	"strings"

	"coinlens/internal/domain"
	"coinlens/internal/reconcile"
)

// AggregateByCategory groups mentions into normalized category buckets. Two
// free-text labels normalizing to the same id merge into one summary. The
// summary keeps a human-readable display name (curated, else first-seen),
// the union of distinct mentioned coins, a running mention count, and the
// running sum of relevance scores. Mentions with no categories contribute to
// no bucket; malformed labels are skipped, never fatal. Output is sorted by
// total rpoints descending, then id, so identical inputs produce identical
// output.
func AggregateByCategory(mentions []domain.Mention) []domain.CategorySummary {
	type bucket struct {
		display      string
		coins        map[string]struct{}
		mentionCount int
		totalRPoints float64
	}
	buckets := make(map[string]*bucket)

	for i := range mentions {
		m := &mentions[i]
		if len(m.Categories) == 0 {
			continue
		}

		_, coinName := reconcile.ExtractTicker(m.RawText)
		count := m.MentionCount
		if count < 1 {
			count = 1
		}

		for _, raw := range m.Categories {
			id := NormalizeCategory(raw)
			if id == "" {
				continue
			}

			b, ok := buckets[id]
			if !ok {
				b = &bucket{
					display: DisplayName(id, strings.TrimSpace(raw)),
					coins:   make(map[string]struct{}),
				}
				buckets[id] = b
			}
			if coinName != "" {
				b.coins[coinName] = struct{}{}
			}
			b.mentionCount += count
			b.totalRPoints += m.RelevanceScore
		}
	}

	summaries := make([]domain.CategorySummary, 0, len(buckets))
	for id, b := range buckets {
		coins := make([]string, 0, len(b.coins))
		for c := range b.coins {
			coins = append(coins, c)
		}
		sort.Strings(coins)
		summaries = append(summaries, domain.CategorySummary{
			ID:           id,
			DisplayName:  b.display,
			Coins:        coins,
			MentionCount: b.mentionCount,
			TotalRPoints: b.totalRPoints,
		})
	}

	sort.Slice(summaries, func(a, b int) bool {
		if summaries[a].TotalRPoints != summaries[b].TotalRPoints {
			return summaries[a].TotalRPoints > summaries[b].TotalRPoints
		}
		return summaries[a].ID < summaries[b].ID
	})

	return summaries
}
