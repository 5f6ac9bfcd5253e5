package archive

import (
	"reflect"
	"testing"

	"coinlens/internal/domain"
)

func sampleRows() []domain.ReconciledCoinRow {
	return []domain.ReconciledCoinRow{
		{
			Coin: domain.CanonicalCoin{
				ID: "bitcoin", Symbol: "btc", Name: "Bitcoin",
				Price: 50000, MarketCap: 1e12, Volume24h: 3e10,
				PercentChange24h: 2.5, CirculatingSupply: 19e6,
				ImageURL: "https://img/btc.png", Source: domain.SourcePrimary,
			},
			TotalMentions:        4,
			Relevance:            12,
			PrimaryChannel:       "A",
			ContributingChannels: []string{"A", "B"},
		},
		{
			Coin:          domain.CanonicalCoin{ID: "pepe", Symbol: "pepe", Name: "Pepe", Source: domain.SourceSecondary},
			TotalMentions: 1,
			Relevance:     2,
		},
	}
}

func TestWriteReadSnapshot(t *testing.T) {
	s := NewStore(t.TempDir())
	rows := sampleRows()

	if err := s.WriteSnapshot("2024-03-05", rows); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadSnapshot("2024-03-05")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, rows)
	}
}

func TestWriteSnapshotReplaces(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.WriteSnapshot("2024-03-05", sampleRows()); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteSnapshot("2024-03-05", sampleRows()[:1]); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadSnapshot("2024-03-05")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d rows after rewrite, want 1", len(got))
	}
}

func TestReadSnapshotMissing(t *testing.T) {
	s := NewStore(t.TempDir())

	rows, err := s.ReadSnapshot("2024-03-05")
	if err != nil {
		t.Fatalf("missing snapshot should not error, got %v", err)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestInvalidDateRejected(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.WriteSnapshot("03/05/2024", nil); err == nil {
		t.Error("expected error for non-ISO date")
	}
	if _, err := s.ReadSnapshot("../../etc/passwd"); err == nil {
		t.Error("expected error for path-shaped date")
	}
}

func TestListDates(t *testing.T) {
	s := NewStore(t.TempDir())

	if dates, err := s.ListDates(); err != nil || dates != nil {
		t.Errorf("empty archive ListDates = %v, %v", dates, err)
	}

	for _, d := range []string{"2024-03-05", "2024-03-01", "2024-03-03"} {
		if err := s.WriteSnapshot(d, sampleRows()); err != nil {
			t.Fatal(err)
		}
	}

	dates, err := s.ListDates()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-03-01", "2024-03-03", "2024-03-05"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("ListDates = %v, want %v", dates, want)
	}
}
