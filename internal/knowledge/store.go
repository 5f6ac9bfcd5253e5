// Package knowledge persists the transcript-derived corpus: one row per
// ingested video, with the extracted mentions stored as a JSON document.
package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"coinlens/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Store is the SQLite-backed corpus of knowledge items.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS knowledge_items (
	id          TEXT PRIMARY KEY,
	channel     TEXT NOT NULL,
	date        TEXT NOT NULL,
	video_title TEXT NOT NULL,
	link        TEXT NOT NULL,
	summary     TEXT NOT NULL DEFAULT '',
	llm_answer  TEXT NOT NULL DEFAULT '[]',
	ingested_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_knowledge_channel_date ON knowledge_items (channel, date);
CREATE INDEX IF NOT EXISTS idx_knowledge_date ON knowledge_items (date);
`

// NewStore opens (or creates) the corpus database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating knowledge schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or replaces one knowledge item keyed by id.
func (s *Store) Upsert(ctx context.Context, item domain.KnowledgeItem) error {
	mentions, err := json.Marshal(item.Mentions)
	if err != nil {
		return fmt.Errorf("marshalling mentions for %s: %w", item.ID, err)
	}

	ingested := item.IngestedAt
	if ingested.IsZero() {
		ingested = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO knowledge_items (id, channel, date, video_title, link, summary, llm_answer, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			channel = excluded.channel,
			date = excluded.date,
			video_title = excluded.video_title,
			link = excluded.link,
			summary = excluded.summary,
			llm_answer = excluded.llm_answer,
			ingested_at = excluded.ingested_at`,
		item.ID, item.Channel, item.Date, item.VideoTitle, item.Link, item.Summary, string(mentions), ingested)
	if err != nil {
		return fmt.Errorf("upserting knowledge item %s: %w", item.ID, err)
	}
	return nil
}

// QueryOptions narrows a corpus query. Zero values mean no constraint; dates
// are YYYY-MM-DD strings compared lexically.
type QueryOptions struct {
	Channels []string
	FromDate string
	ToDate   string
}

// Query returns corpus items matching opts, ordered by date descending then
// channel. A row whose mentions document does not parse is returned with no
// mentions rather than failing the query.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]domain.KnowledgeItem, error) {
	q := `SELECT id, channel, date, video_title, link, summary, llm_answer, ingested_at
		FROM knowledge_items WHERE 1=1`
	var args []any

	if len(opts.Channels) > 0 {
		q += " AND channel IN (?" + repeatPlaceholder(len(opts.Channels)-1) + ")"
		for _, ch := range opts.Channels {
			args = append(args, ch)
		}
	}
	if opts.FromDate != "" {
		q += " AND date >= ?"
		args = append(args, opts.FromDate)
	}
	if opts.ToDate != "" {
		q += " AND date <= ?"
		args = append(args, opts.ToDate)
	}
	q += " ORDER BY date DESC, channel ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge items: %w", err)
	}
	defer rows.Close()

	var items []domain.KnowledgeItem
	for rows.Next() {
		var item domain.KnowledgeItem
		var mentions string
		if err := rows.Scan(&item.ID, &item.Channel, &item.Date, &item.VideoTitle,
			&item.Link, &item.Summary, &mentions, &item.IngestedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(mentions), &item.Mentions); err != nil {
			item.Mentions = nil
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Mentions flattens the mentions of all items matching opts into one slice.
func (s *Store) Mentions(ctx context.Context, opts QueryOptions) ([]domain.Mention, error) {
	items, err := s.Query(ctx, opts)
	if err != nil {
		return nil, err
	}
	var mentions []domain.Mention
	for _, item := range items {
		mentions = append(mentions, item.Mentions...)
	}
	return mentions, nil
}

// Channels returns the distinct channel names in the corpus, sorted.
func (s *Store) Channels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT channel FROM knowledge_items ORDER BY channel`)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var ch string
		if err := rows.Scan(&ch); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// LatestDates returns each channel's most recent corpus date.
func (s *Store) LatestDates(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel, MAX(date) FROM knowledge_items GROUP BY channel`)
	if err != nil {
		return nil, fmt.Errorf("querying latest dates: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]string)
	for rows.Next() {
		var ch, date string
		if err := rows.Scan(&ch, &date); err != nil {
			return nil, err
		}
		latest[ch] = date
	}
	return latest, rows.Err()
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
