// Package ingest is the validated boundary between raw corpus JSON and the
// typed domain shapes. Raw records carry optional fields and inconsistent
// casing; everything is rejected or defaulted here, so the core never guards
// against malformed data.
package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"coinlens/internal/domain"
	"coinlens/internal/util"
)

// rawItem is one corpus entry as exported by the transcript pipeline.
type rawItem struct {
	ID                  string     `json:"id"`
	Channel             string     `json:"channel"`
	Date                string     `json:"date"`
	VideoTitle          string     `json:"video_title"`
	Link                string     `json:"link"`
	Summary             string     `json:"summary"`
	CorrectedTranscript string     `json:"corrected_transcript"`
	LLMAnswer           *rawAnswer `json:"llm_answer"`
}

type rawAnswer struct {
	Projects []rawProject `json:"projects"`
}

// rawProject mirrors one mention record. Fields are json.RawMessage where
// the pipeline emits inconsistent types (string vs number, string vs array).
type rawProject struct {
	CoinOrProject json.RawMessage `json:"coin_or_project"`
	Category      json.RawMessage `json:"category"`
	MarketCap     string          `json:"marketcap"`
	TotalCount    json.RawMessage `json:"total_count"`
	RPoints       json.RawMessage `json:"rpoints"`
}

// Stats reports what one ingestion pass accepted and dropped.
type Stats struct {
	Items           int
	ItemsSkipped    int
	Mentions        int
	MentionsSkipped int
}

// Parse maps a raw corpus JSON document (an array of items) into typed
// knowledge items. Items without a channel or a parseable date are skipped;
// mentions without a usable project name are skipped; missing counts default
// to 1. Malformed records never abort the pass.
func Parse(data []byte, log *slog.Logger) ([]domain.KnowledgeItem, Stats, error) {
	var raw []rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Stats{}, fmt.Errorf("parsing corpus document: %w", err)
	}

	var stats Stats
	items := make([]domain.KnowledgeItem, 0, len(raw))
	for i, r := range raw {
		item, ok := convertItem(r, &stats, log)
		if !ok {
			stats.ItemsSkipped++
			log.Warn("skipping corpus item", "index", i, "channel", r.Channel, "date", r.Date)
			continue
		}
		stats.Items++
		items = append(items, item)
	}
	return items, stats, nil
}

func convertItem(r rawItem, stats *Stats, log *slog.Logger) (domain.KnowledgeItem, bool) {
	channel := strings.TrimSpace(r.Channel)
	date := strings.TrimSpace(r.Date)
	if channel == "" {
		return domain.KnowledgeItem{}, false
	}
	if _, ok := util.ParseDay(date); !ok {
		return domain.KnowledgeItem{}, false
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = uuid.NewString()
	}

	item := domain.KnowledgeItem{
		ID:         id,
		Channel:    channel,
		Date:       date,
		VideoTitle: strings.TrimSpace(r.VideoTitle),
		Link:       strings.TrimSpace(r.Link),
		Summary:    strings.TrimSpace(r.Summary),
		IngestedAt: time.Now().UTC(),
	}

	if r.LLMAnswer != nil {
		for _, p := range r.LLMAnswer.Projects {
			m, ok := convertMention(p, channel, date)
			if !ok {
				stats.MentionsSkipped++
				continue
			}
			stats.Mentions++
			item.Mentions = append(item.Mentions, m)
		}
	}
	return item, true
}

func convertMention(p rawProject, channel, date string) (domain.Mention, bool) {
	name := decodeString(p.CoinOrProject)
	if strings.TrimSpace(name) == "" {
		return domain.Mention{}, false
	}

	count := int(decodeNumber(p.TotalCount, 1))
	if count < 1 {
		count = 1
	}

	return domain.Mention{
		RawText:        strings.TrimSpace(name),
		Channel:        channel,
		Date:           date,
		Categories:     decodeStringList(p.Category),
		MarketCap:      bucketFor(p.MarketCap),
		MentionCount:   count,
		RelevanceScore: decodeNumber(p.RPoints, 0),
	}, true
}

// decodeString accepts a JSON string or number; anything else is empty.
func decodeString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", n), "0"), ".")
	}
	return ""
}

// decodeStringList accepts a JSON array of strings or a single string.
func decodeStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		return []string{s}
	}
	return nil
}

// decodeNumber accepts a JSON number or a numeric string.
func decodeNumber(raw json.RawMessage, fallback float64) float64 {
	if len(raw) == 0 {
		return fallback
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var parsed float64
		if _, serr := fmt.Sscanf(strings.TrimSpace(s), "%f", &parsed); serr == nil {
			return parsed
		}
	}
	return fallback
}

func bucketFor(s string) domain.MarketCapBucket {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "large", "large cap":
		return domain.CapLarge
	case "medium", "mid", "mid cap":
		return domain.CapMedium
	case "small", "small cap", "micro":
		return domain.CapSmall
	default:
		return ""
	}
}
