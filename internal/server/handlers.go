package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/foliotrack/folio/internal/models"
	"github.com/foliotrack/folio/internal/services/performance"
)

// parseDateParam parses an optional YYYY-MM-DD query parameter. A missing
// parameter returns fallback; a malformed one reports false after writing
// the error response.
func parseDateParam(w http.ResponseWriter, r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	parsed, err := time.Parse(models.DateKeyLayout, raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid "+name+" date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return parsed, true
}

// currencyParam resolves the reporting currency, defaulting to the engine's
// default currency.
func (s *Server) currencyParam(r *http.Request) string {
	if cur := r.URL.Query().Get("currency"); cur != "" {
		return cur
	}
	return s.app.Config.Engine.DefaultCurrency
}

// handleAccountList handles GET /api/accounts.
func (s *Server) handleAccountList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	accounts := append([]string{}, s.app.Config.Accounts...)
	accounts = append(accounts, models.OverallAccount)
	WriteJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// handleDaily handles GET /api/accounts/{account}/daily.
// ?date=YYYY-MM-DD returns a single record; ?from=&to= returns a range.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request, account string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	store := s.app.Storage.PerformanceStore()

	if raw := r.URL.Query().Get("date"); raw != "" {
		date, ok := parseDateParam(w, r, "date", time.Time{})
		if !ok {
			return
		}
		record, err := store.GetDaily(r.Context(), account, date)
		if err != nil {
			WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "missing_data")
			return
		}
		if err := models.MigrateDailyRecord(record); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, record)
		return
	}

	from, ok := parseDateParam(w, r, "from", time.Now().AddDate(0, -1, 0))
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r, "to", time.Now())
	if !ok {
		return
	}

	records, err := store.GetDailyRange(r.Context(), account, from, to)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for i := range records {
		if err := models.MigrateDailyRecord(&records[i]); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"account": account, "records": records})
}

// handlePeriods handles GET /api/accounts/{account}/periods?type=month|year.
func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request, account string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	periodType := models.PeriodType(r.URL.Query().Get("type"))
	if periodType == "" {
		periodType = models.PeriodMonth
	}
	if periodType != models.PeriodMonth && periodType != models.PeriodYear {
		WriteError(w, http.StatusBadRequest, "Invalid period type, expected month or year")
		return
	}

	records, err := s.app.Storage.PerformanceStore().ListPeriods(r.Context(), account, periodType)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for i := range records {
		if err := models.MigratePeriodRecord(&records[i]); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"account":     account,
		"period_type": periodType,
		"records":     records,
	})
}

// handleWindows handles GET /api/accounts/{account}/windows.
func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request, account string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	currency := s.currencyParam(r)
	results, err := s.app.PerformanceService.Windows(r.Context(), account, currency, time.Now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Stable window order for clients.
	ordered := make([]models.TrailingWindowResult, 0, len(models.AllWindows))
	for _, id := range models.AllWindows {
		ordered = append(ordered, results[id])
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"account":  account,
		"currency": currency,
		"windows":  ordered,
	})
}

// handleStatistics handles GET /api/accounts/{account}/statistics.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request, account string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	from, ok := parseDateParam(w, r, "from", time.Now().AddDate(-1, 0, 0))
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r, "to", time.Now())
	if !ok {
		return
	}

	stats, err := s.app.PerformanceService.Statistics(r.Context(), account, s.currencyParam(r), from, to)
	if err != nil {
		if errors.Is(err, performance.ErrNoData) {
			WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "missing_data")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// handleChart handles GET /api/accounts/{account}/chart, returning a PNG.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request, account string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	from, ok := parseDateParam(w, r, "from", time.Now().AddDate(-1, 0, 0))
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r, "to", time.Now())
	if !ok {
		return
	}

	png, err := s.app.PerformanceService.RenderChart(r.Context(), account, s.currencyParam(r), from, to)
	if err != nil {
		if errors.Is(err, performance.ErrNoData) {
			WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "missing_data")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// transactionRequest is the POST body for recording a ledger transaction.
type transactionRequest struct {
	AssetName      string  `json:"asset_name"`
	AssetType      string  `json:"asset_type"`
	Type           string  `json:"type"`
	Units          float64 `json:"units"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	Date           string  `json:"date"`
	HistoricalRate float64 `json:"historical_rate"`
}

// handleTransactions handles GET and POST /api/accounts/{account}/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request, account string) {
	switch r.Method {
	case http.MethodGet:
		txs, err := s.app.Storage.LedgerStore().List(r.Context(), account)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"account": account, "transactions": txs})

	case http.MethodPost:
		var req transactionRequest
		if !DecodeJSON(w, r, &req) {
			return
		}

		date, err := time.Parse(models.DateKeyLayout, req.Date)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}

		tx, err := models.NewTransaction(account, req.AssetName, models.AssetType(req.AssetType),
			models.TransactionType(req.Type), req.Units, req.Price, req.Currency, date)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		tx.HistoricalRate = req.HistoricalRate

		if err := s.app.PerformanceService.RecordTransaction(r.Context(), tx); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, tx)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// closeRequest is the POST body for a manual daily close.
type closeRequest struct {
	Date    string `json:"date"`
	Account string `json:"account,omitempty"`
}

// handleClose handles POST /api/close: a manual daily close for one account
// or, with no account, for all configured accounts plus the overall record.
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req closeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(models.DateKeyLayout, req.Date)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	if req.Account != "" {
		record, err := s.app.PerformanceService.CloseAccountDay(r.Context(), req.Account, date)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, record)
		return
	}

	if err := s.app.PerformanceService.RunDailyClose(r.Context(), date); err != nil {
		writeEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "closed",
		"date":   date.Format(models.DateKeyLayout),
	})
}

// consolidateRequest is the POST body for a manual consolidation run.
type consolidateRequest struct {
	Account string `json:"account"`
}

// handleConsolidate handles POST /api/consolidate.
func (s *Server) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req consolidateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Account == "" {
		WriteError(w, http.StatusBadRequest, "account is required")
		return
	}

	written, err := s.app.PerformanceService.ConsolidateClosed(r.Context(), req.Account, time.Now())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"account": req.Account,
		"written": written,
	})
}

// writeEngineError maps engine sentinel errors onto API error codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, performance.ErrOversell):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "invariant_violation")
	case errors.Is(err, performance.ErrOpenPeriod):
		WriteErrorWithCode(w, http.StatusConflict, err.Error(), "open_period")
	case errors.Is(err, performance.ErrOutsidePeriod):
		WriteErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), "invariant_violation")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
