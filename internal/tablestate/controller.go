// Package tablestate owns the combined sorting, pagination, and filter state
// of one dashboard table whose row set is refreshed asynchronously. The
// controller keeps the visible page stable across refetches: user-driven
// state changes apply synchronously, data arrivals only ever update row
// contents, and stale responses are discarded by generation comparison.
package tablestate

import (
	"log/slog"
	"strconv"
	"sync"

	"coinlens/internal/domain"
	"coinlens/internal/filters"
)

// AllowedPageSizes is the fixed set of page sizes the controller accepts.
var AllowedPageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is used when the configured size is not an allowed value.
const DefaultPageSize = 25

// Mode selects who owns the current page of a table instance.
type Mode int

const (
	// Uncontrolled: the controller manages its own page, optionally seeded
	// by an initial page value.
	Uncontrolled Mode = iota
	// Controlled: the owner (URL) dictates the page; page-change requests
	// are forwarded through OnPageChange and only applied when the owner
	// feeds them back via SyncExternalPage.
	Controlled
)

// SessionStore is the persistence port for session-scoped state (last page,
// selected channels). Implementations must treat malformed or missing
// entries as absent, never as errors.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key string, value string)
	Clear(key string)
}

// Options configures a Controller.
type Options struct {
	Mode         Mode
	PageSize     int
	InitialPage  int // 1-based; seeds uncontrolled mode
	OnPageChange func(page int)
	Session      SessionStore // optional
	InstanceKey  string       // scopes session keys per table instance
	Logger       *slog.Logger
}

// Controller is the table state machine. One instance exclusively owns the
// reconciled row set and filter state of one visible table.
type Controller struct {
	mu   sync.Mutex
	log  *slog.Logger
	mode Mode

	pageIndex int // zero-based, always clamped
	pageSize  int
	sortMode  int
	fs        filters.FilterState

	rows     []domain.ReconciledCoinRow
	haveData bool

	generation   uint64
	onPageChange func(page int)
	lastPushed   int // last page reported via callback, 1-based; 0 = none

	session     SessionStore
	instanceKey string
	seededPage  int // last effective page accepted from the initial-page input
}

// New creates a Controller. If a session store holds a persisted page for
// this instance key, it seeds the current page and is consumed (cleared) so
// a later visit starts fresh.
func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	size := opts.PageSize
	if !allowedSize(size) {
		size = DefaultPageSize
	}

	c := &Controller{
		log:          log,
		mode:         opts.Mode,
		pageSize:     size,
		sortMode:     SortRelevance,
		onPageChange: opts.OnPageChange,
		session:      opts.Session,
		instanceKey:  opts.InstanceKey,
	}

	page := opts.InitialPage
	if restored, ok := c.consumeSessionPage(); ok {
		page = restored
	}
	if page < 1 {
		page = 1
	}
	c.pageIndex = page - 1
	c.seededPage = page
	return c
}

func allowedSize(size int) bool {
	for _, s := range AllowedPageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// consumeSessionPage reads and clears the persisted page for this instance.
// Malformed entries are treated as absent.
func (c *Controller) consumeSessionPage() (int, bool) {
	if c.session == nil || c.instanceKey == "" {
		return 0, false
	}
	key := c.pageKey()
	raw, ok := c.session.Get(key)
	if !ok {
		return 0, false
	}
	c.session.Clear(key)
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		c.log.Warn("discarding malformed session page", "key", key, "value", raw)
		return 0, false
	}
	return page, true
}

func (c *Controller) pageKey() string {
	return "table:" + c.instanceKey + ":page"
}

// persistPage records the current page for restoration after a detail-view
// round trip.
func (c *Controller) persistPage() {
	if c.session == nil || c.instanceKey == "" {
		return
	}
	c.session.Set(c.pageKey(), strconv.Itoa(c.pageIndex+1))
}

// BeginRefresh starts a new fetch generation and returns its tag. Responses
// carrying an older tag are discarded by SetRows.
func (c *Controller) BeginRefresh() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// Generation returns the current fetch generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetRows delivers a fetched row set tagged with the generation that
// requested it. Stale generations are ignored. An empty set arriving while
// previous data is rendered is treated as an in-flight refetch artifact and
// the previous rows are preserved (stale-render-while-revalidating); the
// page index never moves on data arrival except to clamp.
func (c *Controller) SetRows(rows []domain.ReconciledCoinRow, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		c.log.Debug("ignoring stale row set", "generation", generation, "current", c.generation)
		return
	}

	if len(rows) == 0 && c.haveData {
		return
	}

	c.rows = rows
	c.haveData = c.haveData || len(rows) > 0
	sortRows(c.rows, c.sortMode)
	c.clampLocked()
}

// clampLocked clamps pageIndex into [0, pageCount-1] and, in controlled
// mode, reports the move to the owner at most once per transition.
func (c *Controller) clampLocked() {
	last := c.pageCountLocked() - 1
	if last < 0 {
		last = 0
	}
	if c.pageIndex <= last {
		return
	}
	c.pageIndex = last

	if c.mode == Controlled && c.onPageChange != nil && c.lastPushed != c.pageIndex+1 {
		c.lastPushed = c.pageIndex + 1
		go c.onPageChange(c.lastPushed)
	}
	c.persistPage()
}

// SetPage requests a 1-based page. Zero or negative pages are ignored and
// logged; out-of-range pages clamp into [1, pageCount]. In controlled mode
// the request is forwarded to the owner instead of being applied locally.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if page < 1 {
		c.log.Warn("ignoring invalid page request", "page", page)
		return
	}

	if count := c.pageCountLocked(); page > count {
		page = count
	}

	if c.mode == Controlled {
		if c.onPageChange != nil && page != c.lastPushed {
			c.lastPushed = page
			cb := c.onPageChange
			go cb(page)
		}
		return
	}

	c.pageIndex = page - 1
	c.persistPage()
}

// SetPageQuery parses a page number from a query-parameter string. Values
// that do not parse as an integer (the NaN case) are ignored and logged,
// and never reach the URL or persisted state.
func (c *Controller) SetPageQuery(raw string) {
	page, err := strconv.Atoi(raw)
	if err != nil {
		c.log.Warn("ignoring non-numeric page request", "value", raw)
		return
	}
	c.SetPage(page)
}

// SyncExternalPage applies a page dictated by the owner (typically from the
// URL, including history navigation). Only meaningful in controlled mode.
// The value is clamped but otherwise authoritative, and is not re-pushed
// through the callback.
func (c *Controller) SyncExternalPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != Controlled {
		return
	}
	if page < 1 {
		c.log.Warn("ignoring invalid external page", "page", page)
		return
	}
	if count := c.pageCountLocked(); page > count {
		page = count
	}
	c.pageIndex = page - 1
	c.lastPushed = page
	c.persistPage()
}

// UpdateInitialPage feeds a changed initial-page input to an uncontrolled
// controller. It is honored only when it would actually change the effective
// page, so it cannot fight a user who is actively paging.
func (c *Controller) UpdateInitialPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != Uncontrolled || page < 1 {
		return
	}
	if count := c.pageCountLocked(); page > count {
		page = count
	}
	if page == c.seededPage {
		return
	}
	c.seededPage = page
	c.pageIndex = page - 1
	c.persistPage()
}

// SetPageSize switches to one of the allowed page sizes and re-clamps the
// current page. Unknown sizes are ignored and logged.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !allowedSize(size) {
		c.log.Warn("ignoring disallowed page size", "size", size)
		return
	}
	c.pageSize = size
	c.clampLocked()
}

// SetSort re-sorts the rows. Sorting never changes the current page.
func (c *Controller) SetSort(mode int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode < 0 || mode >= SortModeCount {
		mode = SortRelevance
	}
	c.sortMode = mode
	sortRows(c.rows, c.sortMode)
}

// SetFilters replaces the filter state and resets to page 1. The row set
// itself is refreshed asynchronously by the caller via BeginRefresh/SetRows.
func (c *Controller) SetFilters(fs filters.FilterState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fs = fs
	c.resetToFirstPageLocked()
}

// SetSearch updates the search term and resets to page 1.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fs.SearchTerm = term
	c.resetToFirstPageLocked()
}

func (c *Controller) resetToFirstPageLocked() {
	c.pageIndex = 0
	if c.mode == Controlled && c.onPageChange != nil && c.lastPushed != 1 {
		c.lastPushed = 1
		cb := c.onPageChange
		go cb(1)
	}
	c.persistPage()
}

// Filters returns the active filter state.
func (c *Controller) Filters() filters.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fs
}

// SortMode returns the active sort mode.
func (c *Controller) SortMode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortMode
}

// Page returns the current 1-based page number.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageIndex + 1
}

// PageSize returns the active page size.
func (c *Controller) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSize
}

// PageCount returns the number of pages for the current row set; at least 1.
func (c *Controller) PageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageCountLocked()
}

func (c *Controller) pageCountLocked() int {
	if len(c.rows) == 0 {
		return 1
	}
	return (len(c.rows) + c.pageSize - 1) / c.pageSize
}

// TotalRows returns the size of the current (possibly stale-preserved) row
// set.
func (c *Controller) TotalRows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// HasData reports whether any non-empty row set has ever been delivered,
// distinguishing "no coin data available" from a loading state.
func (c *Controller) HasData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.haveData
}

// CurrentRows returns a copy of the rows on the current page.
func (c *Controller) CurrentRows() []domain.ReconciledCoinRow {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.pageIndex * c.pageSize
	if start >= len(c.rows) {
		return []domain.ReconciledCoinRow{}
	}
	end := start + c.pageSize
	if end > len(c.rows) {
		end = len(c.rows)
	}
	out := make([]domain.ReconciledCoinRow, end-start)
	copy(out, c.rows[start:end])
	return out
}
