// Package httpapi serves the dashboard HTTP API: the reconciled coin table,
// per-coin detail, category and channel aggregates, the knowledge corpus,
// and the archived history snapshots.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"coinlens/internal/aggregate"
	"coinlens/internal/archive"
	"coinlens/internal/domain"
	"coinlens/internal/filters"
	"coinlens/internal/knowledge"
	"coinlens/internal/marketdata"
	"coinlens/internal/reconcile"
	"coinlens/internal/tablestate"
	"coinlens/internal/util"
)

// MarketQuerier resolves symbol batches to canonical records.
type MarketQuerier interface {
	Query(ctx context.Context, symbols []string, generation uint64, mode marketdata.Mode) (marketdata.Result, error)
}

// channelsSessionKey mirrors the last explicit channel selection.
const channelsSessionKey = "dashboard:channels"

// DashboardServer serves the dashboard HTTP API.
type DashboardServer struct {
	corpus  *knowledge.Store
	market  MarketQuerier
	archive *archive.Store
	session tablestate.SessionStore // optional
	log     *slog.Logger

	generation atomic.Uint64
	now        func() time.Time
}

// NewDashboardServer creates a dashboard HTTP server over the corpus store,
// the market-data service, and the snapshot archive. A nil session disables
// channel-selection mirroring.
func NewDashboardServer(corpus *knowledge.Store, market MarketQuerier, arch *archive.Store, sess tablestate.SessionStore, log *slog.Logger) *DashboardServer {
	return &DashboardServer{
		corpus:  corpus,
		market:  market,
		archive: arch,
		session: sess,
		log:     log,
		now:     time.Now,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *DashboardServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/coins", s.handleCoins)
	mux.HandleFunc("GET /api/coins/{id}", s.handleCoinDetail)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/channels", s.handleChannels)
	mux.HandleFunc("GET /api/knowledge", s.handleKnowledge)
	mux.HandleFunc("GET /api/history/{date}", s.handleHistory)
	mux.HandleFunc("GET /api/dates", s.handleDates)
}

// Handler returns an http.Handler with CORS middleware.
func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parseSortMode extracts the sort mode from the "sort" query param.
func parseSortMode(r *http.Request) int {
	s := r.URL.Query().Get("sort")
	if s == "" {
		return tablestate.SortRelevance
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= tablestate.SortModeCount {
		return tablestate.SortRelevance
	}
	return n
}

// parseFilterState builds the filter state from query params. Recognized
// params: channels (comma-separated), preset, from, to, categories, search.
func parseFilterState(r *http.Request) filters.FilterState {
	q := r.URL.Query()
	fs := filters.FilterState{
		DatePreset: filters.DatePreset(q.Get("preset")),
		SearchTerm: q.Get("search"),
	}
	if v := q.Get("channels"); v != "" {
		fs.SelectedChannels = strings.Split(v, ",")
	}
	if v := q.Get("categories"); v != "" {
		fs.Categories = strings.Split(v, ",")
	}
	if from, ok := parseDayParam(q.Get("from")); ok {
		fs.DateRange.From = from
	}
	if to, ok := parseDayParam(q.Get("to")); ok {
		fs.DateRange.To = to
	}
	return fs
}

func parseDayParam(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// selectedMentions loads the corpus mentions passing the filter state. The
// corpus query narrows by channel; date and category filtering happens in
// filters.SelectMentions so preset resolution stays in one place.
func (s *DashboardServer) selectedMentions(ctx context.Context, fs filters.FilterState) ([]domain.Mention, error) {
	mentions, err := s.corpus.Mentions(ctx, knowledge.QueryOptions{Channels: fs.SelectedChannels})
	if err != nil {
		return nil, err
	}
	return filters.SelectMentions(mentions, fs, s.now()), nil
}

// candidateSymbols derives the market-data query batch from the mentions:
// extracted tickers first, then single-token clean names.
func candidateSymbols(mentions []domain.Mention) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(sym string) {
		sym = strings.ToLower(strings.TrimSpace(sym))
		if sym == "" {
			return
		}
		if _, ok := seen[sym]; ok {
			return
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}

	for _, m := range mentions {
		ticker, clean := reconcile.ExtractTicker(m.RawText)
		if ticker != "" {
			add(ticker)
		}
		if id, ok := reconcile.AliasID(m.RawText); ok {
			add(id)
		}
		if clean != "" && !strings.ContainsAny(clean, " \t") {
			add(clean)
		}
	}
	return out
}

// reconciledRows runs the full pipeline for one request: select mentions,
// resolve market data, reconcile.
func (s *DashboardServer) reconciledRows(ctx context.Context, fs filters.FilterState, mode marketdata.Mode) ([]domain.ReconciledCoinRow, []domain.Mention, int64, error) {
	mentions, err := s.selectedMentions(ctx, fs)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(mentions) == 0 {
		return nil, nil, s.now().UnixMilli(), nil
	}

	gen := s.generation.Add(1)
	result, err := s.market.Query(ctx, candidateSymbols(mentions), gen, mode)
	if err != nil {
		return nil, nil, 0, err
	}

	rows := reconcile.Reconcile(mentions, result.Data)
	return rows, mentions, result.Timestamp, nil
}

// applySessionChannels mirrors an explicit channel selection into the
// session store, and restores the mirrored selection when the request
// carries none.
func (s *DashboardServer) applySessionChannels(fs *filters.FilterState) {
	if s.session == nil {
		return
	}
	if len(fs.SelectedChannels) > 0 {
		s.session.Set(channelsSessionKey, strings.Join(fs.SelectedChannels, ","))
		return
	}
	if v, ok := s.session.Get(channelsSessionKey); ok && v != "" {
		fs.SelectedChannels = strings.Split(v, ",")
	}
}

func (s *DashboardServer) handleCoins(w http.ResponseWriter, r *http.Request) {
	fs := parseFilterState(r)
	s.applySessionChannels(&fs)
	sortMode := parseSortMode(r)

	rows, _, ts, err := s.reconciledRows(r.Context(), fs, marketdata.ModeFull)
	if err != nil {
		s.log.Error("building coin table", "error", err)
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}
	rows = filters.FilterRows(rows, fs)
	tablestate.Sort(rows, sortMode)

	pageSize := tablestate.DefaultPageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pageSize = n
		}
	}

	// A throwaway controller gives the same clamping and page math the
	// interactive tables use; a missing or malformed page param leaves it
	// on page 1.
	ctrl := tablestate.New(tablestate.Options{PageSize: pageSize, Logger: s.log})
	gen := ctrl.BeginRefresh()
	ctrl.SetRows(rows, gen)
	ctrl.SetPageQuery(r.URL.Query().Get("page"))

	writeJSON(w, CoinsResponse{
		Data:      ctrl.CurrentRows(),
		Page:      ctrl.Page(),
		PageCount: ctrl.PageCount(),
		Total:     len(rows),
		SortMode:  sortMode,
		SortLabel: tablestate.SortModeLabel(sortMode),
		Timestamp: ts,
	})
}

func (s *DashboardServer) handleCoinDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	fs := parseFilterState(r)

	rows, mentions, _, err := s.reconciledRows(r.Context(), fs, marketdata.ModeFull)
	if err != nil {
		s.log.Error("building coin detail", "error", err, "id", id)
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}

	for _, row := range rows {
		if row.Coin.ID != id {
			continue
		}
		writeJSON(w, CoinDetailResponse{
			Row:      row,
			Channels: aggregate.AggregateByChannel(mentions, row.Coin),
		})
		return
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("no reconciled coin %q", id))
}

func (s *DashboardServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	fs := parseFilterState(r)
	mentions, err := s.selectedMentions(r.Context(), fs)
	if err != nil {
		s.log.Error("querying corpus for categories", "error", err)
		writeError(w, http.StatusInternalServerError, "corpus unavailable")
		return
	}

	categories := aggregate.AggregateByCategory(mentions)
	if categories == nil {
		categories = []domain.CategorySummary{}
	}
	writeJSON(w, CategoriesResponse{Categories: categories})
}

func (s *DashboardServer) handleChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.corpus.Channels(r.Context())
	if err != nil {
		s.log.Error("querying channels", "error", err)
		writeError(w, http.StatusInternalServerError, "corpus unavailable")
		return
	}
	latest, err := s.corpus.LatestDates(r.Context())
	if err != nil {
		s.log.Error("querying latest dates", "error", err)
		writeError(w, http.StatusInternalServerError, "corpus unavailable")
		return
	}
	if channels == nil {
		channels = []string{}
	}
	writeJSON(w, ChannelsResponse{Channels: channels, LatestDates: latest})
}

func (s *DashboardServer) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := knowledge.QueryOptions{
		FromDate: q.Get("from"),
		ToDate:   q.Get("to"),
	}
	if v := q.Get("channels"); v != "" {
		opts.Channels = strings.Split(v, ",")
	}

	items, err := s.corpus.Query(r.Context(), opts)
	if err != nil {
		s.log.Error("querying knowledge items", "error", err)
		writeError(w, http.StatusInternalServerError, "corpus unavailable")
		return
	}
	if items == nil {
		items = []domain.KnowledgeItem{}
	}
	writeJSON(w, KnowledgeResponse{Items: items})
}

func (s *DashboardServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	sortMode := parseSortMode(r)

	rows, err := s.archive.ReadSnapshot(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if rows == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no snapshot for %s", date))
		return
	}

	tablestate.Sort(rows, sortMode)
	writeJSON(w, HistoryResponse{
		Date:      date,
		Rows:      rows,
		SortMode:  sortMode,
		SortLabel: tablestate.SortModeLabel(sortMode),
	})
}

// ArchiveSnapshot reconciles each channel's latest corpus mentions and
// archives the rows under today's date, replacing any earlier snapshot for
// the day. Called periodically by the server's refresh loop.
func (s *DashboardServer) ArchiveSnapshot(ctx context.Context) error {
	fs := filters.FilterState{DatePreset: filters.PresetMostRecent}
	rows, _, _, err := s.reconciledRows(ctx, fs, marketdata.ModeFull)
	if err != nil {
		return fmt.Errorf("reconciling snapshot rows: %w", err)
	}
	date := s.now().Format(util.DayDate)
	if err := s.archive.WriteSnapshot(date, rows); err != nil {
		return err
	}
	s.log.Info("archived snapshot", "date", date, "rows", len(rows))
	return nil
}

func (s *DashboardServer) handleDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.archive.ListDates()
	if err != nil {
		s.log.Error("listing archive dates", "error", err)
		writeError(w, http.StatusInternalServerError, "archive unavailable")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, DatesResponse{Dates: dates})
}
