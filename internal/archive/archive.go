// Package archive persists daily reconciliation snapshots as Parquet files,
// one file per calendar day, for the history drill-down endpoints.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"coinlens/internal/domain"
	"coinlens/internal/util"
)

// Store writes and reads per-date snapshot files.
// Layout: <dataDir>/knowledge/rows/<YYYY-MM-DD>.parquet
type Store struct {
	DataDir string
}

// NewStore creates a Store rooted at the given data directory.
func NewStore(dataDir string) *Store {
	return &Store{DataDir: dataDir}
}

// rowRecord is the Parquet schema for one archived reconciled row.
type rowRecord struct {
	CoinID               string  `parquet:"coin_id"`
	Symbol               string  `parquet:"symbol"`
	Name                 string  `parquet:"name"`
	Price                float64 `parquet:"price"`
	MarketCap            float64 `parquet:"market_cap"`
	Volume24h            float64 `parquet:"volume_24h"`
	PercentChange24h     float64 `parquet:"percent_change_24h"`
	CirculatingSupply    float64 `parquet:"circulating_supply"`
	ImageURL             string  `parquet:"image_url"`
	Source               string  `parquet:"source"`
	TotalMentions        int32   `parquet:"total_mentions"`
	Relevance            float64 `parquet:"relevance"`
	PrimaryChannel       string  `parquet:"primary_channel"`
	ContributingChannels string  `parquet:"contributing_channels"` // pipe-joined
}

// WriteSnapshot archives one day's reconciled rows, replacing any existing
// snapshot for that date. The date must be YYYY-MM-DD.
func (s *Store) WriteSnapshot(date string, rows []domain.ReconciledCoinRow) error {
	if _, ok := util.ParseDay(date); !ok {
		return fmt.Errorf("invalid snapshot date %q", date)
	}

	records := make([]rowRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, rowRecord{
			CoinID:               r.Coin.ID,
			Symbol:               r.Coin.Symbol,
			Name:                 r.Coin.Name,
			Price:                r.Coin.Price,
			MarketCap:            r.Coin.MarketCap,
			Volume24h:            r.Coin.Volume24h,
			PercentChange24h:     r.Coin.PercentChange24h,
			CirculatingSupply:    r.Coin.CirculatingSupply,
			ImageURL:             r.Coin.ImageURL,
			Source:               string(r.Coin.Source),
			TotalMentions:        int32(r.TotalMentions),
			Relevance:            r.Relevance,
			PrimaryChannel:       r.PrimaryChannel,
			ContributingChannels: strings.Join(r.ContributingChannels, "|"),
		})
	}

	path := s.snapshotPath(date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("writing snapshot for %s: %w", date, err)
	}
	return nil
}

// ReadSnapshot returns the archived rows for one date. A missing snapshot is
// (nil, nil), not an error.
func (s *Store) ReadSnapshot(date string) ([]domain.ReconciledCoinRow, error) {
	if _, ok := util.ParseDay(date); !ok {
		return nil, fmt.Errorf("invalid snapshot date %q", date)
	}

	path := s.snapshotPath(date)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	records, err := parquet.ReadFile[rowRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot for %s: %w", date, err)
	}

	rows := make([]domain.ReconciledCoinRow, 0, len(records))
	for _, rec := range records {
		var channels []string
		if rec.ContributingChannels != "" {
			channels = strings.Split(rec.ContributingChannels, "|")
		}
		rows = append(rows, domain.ReconciledCoinRow{
			Coin: domain.CanonicalCoin{
				ID:                rec.CoinID,
				Symbol:            rec.Symbol,
				Name:              rec.Name,
				Price:             rec.Price,
				MarketCap:         rec.MarketCap,
				Volume24h:         rec.Volume24h,
				PercentChange24h:  rec.PercentChange24h,
				CirculatingSupply: rec.CirculatingSupply,
				ImageURL:          rec.ImageURL,
				Source:            domain.Source(rec.Source),
			},
			TotalMentions:        int(rec.TotalMentions),
			Relevance:            rec.Relevance,
			PrimaryChannel:       rec.PrimaryChannel,
			ContributingChannels: channels,
		})
	}
	return rows, nil
}

// ListDates returns the dates with an archived snapshot, sorted ascending.
func (s *Store) ListDates() ([]string, error) {
	dir := filepath.Join(s.DataDir, "knowledge", "rows")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".parquet") {
			continue
		}
		date := strings.TrimSuffix(name, ".parquet")
		if _, ok := util.ParseDay(date); ok {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *Store) snapshotPath(date string) string {
	return filepath.Join(s.DataDir, "knowledge", "rows", date+".parquet")
}
