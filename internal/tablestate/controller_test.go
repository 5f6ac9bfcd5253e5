package tablestate

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"coinlens/internal/domain"
	"coinlens/internal/filters"
)

func makeRows(n int) []domain.ReconciledCoinRow {
	rows := make([]domain.ReconciledCoinRow, n)
	for i := range rows {
		rows[i] = domain.ReconciledCoinRow{
			Coin: domain.CanonicalCoin{
				ID:     fmt.Sprintf("coin-%03d", i),
				Symbol: fmt.Sprintf("c%d", i),
				Name:   fmt.Sprintf("Coin %03d", i),
			},
			TotalMentions: n - i,
			Relevance:     float64(n - i),
		}
	}
	return rows
}

type fakeSession struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeSession() *fakeSession {
	return &fakeSession{data: map[string]string{}}
}

func (s *fakeSession) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *fakeSession) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *fakeSession) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func TestNewDefaults(t *testing.T) {
	c := New(Options{})
	if c.Page() != 1 {
		t.Errorf("Page = %d, want 1", c.Page())
	}
	if c.PageSize() != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", c.PageSize(), DefaultPageSize)
	}
	if c.PageCount() != 1 {
		t.Errorf("PageCount = %d, want 1 with no rows", c.PageCount())
	}
	if c.HasData() {
		t.Error("HasData = true before any rows arrived")
	}
}

func TestSetPageClamping(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(35), gen) // 4 pages

	c.SetPage(3)
	if c.Page() != 3 {
		t.Errorf("Page = %d, want 3", c.Page())
	}

	// Past the end clamps to the last page.
	c.SetPage(99)
	if c.Page() != 4 {
		t.Errorf("Page = %d, want clamp to 4", c.Page())
	}

	// Zero and negative are ignored, not clamped to 1.
	c.SetPage(0)
	if c.Page() != 4 {
		t.Errorf("Page = %d after SetPage(0), want unchanged 4", c.Page())
	}
	c.SetPage(-3)
	if c.Page() != 4 {
		t.Errorf("Page = %d after SetPage(-3), want unchanged 4", c.Page())
	}
}

func TestSetPageQueryNonNumeric(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(30), gen)
	c.SetPage(2)

	c.SetPageQuery("abc")
	if c.Page() != 2 {
		t.Errorf("Page = %d after non-numeric query, want unchanged 2", c.Page())
	}

	c.SetPageQuery("3")
	if c.Page() != 3 {
		t.Errorf("Page = %d after numeric query, want 3", c.Page())
	}
}

func TestShrinkClampsToLastPage(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(50), gen) // 5 pages
	c.SetPage(5)

	// Refetch returns fewer rows; page 5 no longer exists.
	gen = c.BeginRefresh()
	c.SetRows(makeRows(22), gen) // 3 pages
	if c.Page() != 3 {
		t.Errorf("Page = %d after shrink, want clamp to 3", c.Page())
	}
	if got := c.CurrentRows(); len(got) != 2 {
		t.Errorf("last page has %d rows, want 2", len(got))
	}
}

func TestStaleWhileRevalidate(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(30), gen)
	c.SetPage(2)

	// An empty set mid-refetch must not blank the table or move the page.
	gen = c.BeginRefresh()
	c.SetRows(nil, gen)
	if c.TotalRows() != 30 {
		t.Errorf("TotalRows = %d after empty interim set, want previous 30", c.TotalRows())
	}
	if c.Page() != 2 {
		t.Errorf("Page = %d after empty interim set, want unchanged 2", c.Page())
	}

	// The completed refetch replaces rows without touching the page.
	c.SetRows(makeRows(30), gen)
	if c.TotalRows() != 30 || c.Page() != 2 {
		t.Errorf("TotalRows=%d Page=%d after refetch, want 30 and 2", c.TotalRows(), c.Page())
	}
}

func TestEmptyRowsBeforeFirstData(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(nil, gen)
	if c.HasData() {
		t.Error("HasData = true after an initial empty set")
	}
	if c.TotalRows() != 0 {
		t.Errorf("TotalRows = %d, want 0", c.TotalRows())
	}
}

func TestStaleGenerationIgnored(t *testing.T) {
	c := New(Options{PageSize: 10})
	oldGen := c.BeginRefresh()
	newGen := c.BeginRefresh()

	c.SetRows(makeRows(30), newGen)
	c.SetRows(makeRows(5), oldGen) // slow old response lands last
	if c.TotalRows() != 30 {
		t.Errorf("TotalRows = %d, want 30 rows from the newer generation", c.TotalRows())
	}
}

func TestSortKeepsPage(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(30), gen)
	c.SetPage(3)

	c.SetSort(SortName)
	if c.Page() != 3 {
		t.Errorf("Page = %d after sort change, want unchanged 3", c.Page())
	}
	rows := c.CurrentRows()
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Coin.Name > rows[i].Coin.Name {
			t.Errorf("rows not name-sorted at %d: %q > %q", i, rows[i-1].Coin.Name, rows[i].Coin.Name)
		}
	}
}

func TestFilterAndSearchResetPage(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(30), gen)

	c.SetPage(3)
	c.SetFilters(filters.FilterState{SelectedChannels: []string{"A"}})
	if c.Page() != 1 {
		t.Errorf("Page = %d after filter change, want reset to 1", c.Page())
	}

	c.SetPage(2)
	c.SetSearch("btc")
	if c.Page() != 1 {
		t.Errorf("Page = %d after search change, want reset to 1", c.Page())
	}
	if c.Filters().SearchTerm != "btc" {
		t.Errorf("SearchTerm = %q, want %q", c.Filters().SearchTerm, "btc")
	}
}

func TestSetPageSize(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(30), gen)
	c.SetPage(3)

	// Larger size shrinks the page count; the current page clamps.
	c.SetPageSize(50)
	if c.PageSize() != 50 {
		t.Errorf("PageSize = %d, want 50", c.PageSize())
	}
	if c.Page() != 1 {
		t.Errorf("Page = %d after size change, want clamp to 1", c.Page())
	}

	// Disallowed sizes are ignored.
	c.SetPageSize(37)
	if c.PageSize() != 50 {
		t.Errorf("PageSize = %d after disallowed size, want unchanged 50", c.PageSize())
	}
}

func TestControlledModeForwardsPageRequests(t *testing.T) {
	var mu sync.Mutex
	var pushed []int
	c := New(Options{
		Mode:     Controlled,
		PageSize: 10,
		OnPageChange: func(p int) {
			mu.Lock()
			pushed = append(pushed, p)
			mu.Unlock()
		},
	})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(30), gen)

	// The request goes to the owner; local state waits for the sync.
	c.SetPage(2)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pushed) == 1 && pushed[0] == 2
	})
	if c.Page() != 1 {
		t.Errorf("Page = %d before external sync, want still 1", c.Page())
	}

	c.SyncExternalPage(2)
	if c.Page() != 2 {
		t.Errorf("Page = %d after external sync, want 2", c.Page())
	}

	// Repeating the same request must not push again.
	c.SetPage(2)
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	n := len(pushed)
	mu.Unlock()
	if n != 1 {
		t.Errorf("callback fired %d times, want 1", n)
	}
}

func TestControlledShrinkPushesClampOnce(t *testing.T) {
	var mu sync.Mutex
	var pushed []int
	c := New(Options{
		Mode:     Controlled,
		PageSize: 10,
		OnPageChange: func(p int) {
			mu.Lock()
			pushed = append(pushed, p)
			mu.Unlock()
		},
	})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(50), gen)
	c.SyncExternalPage(5)

	// Shrink to 3 pages. The clamp to page 3 must reach the owner exactly
	// once, and the owner echoing it back must not re-trigger.
	gen = c.BeginRefresh()
	c.SetRows(makeRows(25), gen)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pushed) == 1 && pushed[0] == 3
	})
	if c.Page() != 3 {
		t.Errorf("Page = %d after shrink clamp, want 3", c.Page())
	}

	c.SyncExternalPage(3)
	gen = c.BeginRefresh()
	c.SetRows(makeRows(25), gen)
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	n := len(pushed)
	mu.Unlock()
	if n != 1 {
		t.Errorf("callback fired %d times after echo, want 1 (no oscillation)", n)
	}
}

func TestUpdateInitialPage(t *testing.T) {
	c := New(Options{PageSize: 10, InitialPage: 2})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(50), gen)
	if c.Page() != 2 {
		t.Fatalf("Page = %d, want seeded 2", c.Page())
	}

	// User pages away; re-feeding the same initial value must not snap back.
	c.SetPage(4)
	c.UpdateInitialPage(2)
	if c.Page() != 4 {
		t.Errorf("Page = %d after redundant initial-page update, want 4", c.Page())
	}

	// A genuinely changed initial value is honored.
	c.UpdateInitialPage(3)
	if c.Page() != 3 {
		t.Errorf("Page = %d after changed initial page, want 3", c.Page())
	}
}

func TestSessionRestoreConsumedOnce(t *testing.T) {
	sess := newFakeSession()
	sess.Set("table:main:page", "3")

	c := New(Options{PageSize: 10, Session: sess, InstanceKey: "main"})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(50), gen)
	if c.Page() != 3 {
		t.Errorf("Page = %d, want restored 3", c.Page())
	}

	// The restore entry was consumed at construction; the stored value now
	// only tracks subsequent navigation.
	c2 := New(Options{PageSize: 10, InstanceKey: "other", Session: sess})
	if c2.Page() != 1 {
		t.Errorf("unrelated instance Page = %d, want 1", c2.Page())
	}

	c.SetPage(2)
	if v, ok := sess.Get("table:main:page"); !ok || v != "2" {
		t.Errorf("persisted page = %q (%v), want %q", v, ok, "2")
	}
}

func TestSessionRestoreMalformed(t *testing.T) {
	sess := newFakeSession()
	sess.Set("table:main:page", "not-a-number")

	c := New(Options{PageSize: 10, Session: sess, InstanceKey: "main"})
	if c.Page() != 1 {
		t.Errorf("Page = %d with malformed session value, want 1", c.Page())
	}
	if _, ok := sess.Get("table:main:page"); ok {
		t.Error("malformed session entry not cleared")
	}
}

func TestCurrentRowsBounds(t *testing.T) {
	c := New(Options{PageSize: 10})
	gen := c.BeginRefresh()
	c.SetRows(makeRows(15), gen)

	if got := c.CurrentRows(); len(got) != 10 {
		t.Errorf("page 1 has %d rows, want 10", len(got))
	}
	c.SetPage(2)
	if got := c.CurrentRows(); len(got) != 5 {
		t.Errorf("page 2 has %d rows, want 5", len(got))
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
