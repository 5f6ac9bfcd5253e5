package aggregate

import (
	"sort"
	"strings"

	"coinlens/internal/domain"
	"coinlens/internal/reconcile"
)

// AggregateByChannel produces one row per distinct channel that mentioned the
// target coin, with summed mention counts, sorted descending by count (ties
// by channel name). Mention texts are resolved with the same matching logic
// as reconciliation, restricted to the single target coin.
func AggregateByChannel(mentions []domain.Mention, target domain.CanonicalCoin) []domain.ChannelMentionSummary {
	matcher := reconcile.NewMatcher([]domain.CanonicalCoin{target})

	type bucket struct {
		count   int
		rpoints float64
	}
	buckets := make(map[string]*bucket)

	for i := range mentions {
		m := &mentions[i]
		if m.Channel == "" || strings.TrimSpace(m.RawText) == "" {
			continue
		}
		// A mention the alias table attributes to another coin must not
		// substring-match the target.
		if id, ok := reconcile.AliasID(m.RawText); ok && id != target.ID {
			continue
		}
		if _, ok := matcher.Match(m.RawText); !ok {
			continue
		}

		count := m.MentionCount
		if count < 1 {
			count = 1
		}
		b, ok := buckets[m.Channel]
		if !ok {
			b = &bucket{}
			buckets[m.Channel] = b
		}
		b.count += count
		b.rpoints += m.RelevanceScore
	}

	rows := make([]domain.ChannelMentionSummary, 0, len(buckets))
	for ch, b := range buckets {
		rows = append(rows, domain.ChannelMentionSummary{
			Channel:      ch,
			MentionCount: b.count,
			TotalRPoints: b.rpoints,
		})
	}

	sort.Slice(rows, func(a, b int) bool {
		if rows[a].MentionCount != rows[b].MentionCount {
			return rows[a].MentionCount > rows[b].MentionCount
		}
		return rows[a].Channel < rows[b].Channel
	})

	return rows
}
