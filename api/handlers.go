package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/seenimoa/stockdash/internal/query"
	"github.com/seenimoa/stockdash/internal/report"
	"github.com/seenimoa/stockdash/internal/view"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string     `json:"status"`
	Phase   view.Phase `json:"phase"`
	Clients int        `json:"ws_clients"`
	Time    string     `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:  "ok",
			Phase:   s.ctrl.Machine().Current().Phase,
			Clients: s.wsHub.ClientCount(),
			Time:    utils.FormatDateTimeIST(utils.NowIST()),
		},
	})
}

// ============================================================
// Dashboard
// ============================================================

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, http.StatusOK, "")
}

// handleDashboardAnalyze applies the submitted form fields and starts an
// analysis. Invalid input re-renders the page with the error next to the
// form and leaves the view state alone.
func (s *Server) handleDashboardAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderDashboard(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	if err := s.ctrl.Form().Apply(formEdit(r)); err != nil {
		s.renderDashboard(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.ctrl.Analyze(s.ctx); err != nil {
		s.renderDashboard(w, http.StatusBadRequest, inputMessage(err))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderDashboard(w http.ResponseWriter, status int, inputErr string) {
	page := report.NewPage(s.ctrl.Form().Query(), s.ctrl.Machine().Current())
	page.InputError = inputErr
	page.Live = true
	page.WSPath = WSPath

	html, err := report.GenerateHTML(page)
	if err != nil {
		s.logger.Error("rendering dashboard", "error", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	io.WriteString(w, html) //nolint:errcheck
}

// formEdit collects the fields present in a submitted form.
func formEdit(r *http.Request) query.Edit {
	var e query.Edit
	if _, ok := r.PostForm["stock_symbol"]; ok {
		v := r.PostForm.Get("stock_symbol")
		e.Symbol = &v
	}
	if _, ok := r.PostForm["start_date"]; ok {
		v := r.PostForm.Get("start_date")
		e.StartDate = &v
	}
	if _, ok := r.PostForm["end_date"]; ok {
		v := r.PostForm.Get("end_date")
		e.EndDate = &v
	}
	return e
}

// inputMessage strips the sentinel prefix from validation errors.
func inputMessage(err error) string {
	if !errors.Is(err, query.ErrInvalidQuery) {
		return err.Error()
	}
	return strings.TrimPrefix(err.Error(), query.ErrInvalidQuery.Error()+": ")
}

// ============================================================
// Query
// ============================================================

func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.ctrl.Form().Query()})
}

// handlePutQuery applies a partial edit. Edits never start a request.
func (s *Server) handlePutQuery(w http.ResponseWriter, r *http.Request) {
	var edit query.Edit
	if err := decodeOptionalJSON(r, &edit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ctrl.Form().Apply(edit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.ctrl.Form().Query()})
}

// ============================================================
// Analysis lifecycle
// ============================================================

// handleAnalyze applies an optional edit from the body and starts a request.
// It answers 202 with the Loading state; the outcome is read from /state or
// pushed over the WebSocket.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var edit query.Edit
	if err := decodeOptionalJSON(r, &edit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ctrl.Form().Apply(edit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.ctrl.Analyze(s.ctx); err != nil {
		writeError(w, http.StatusBadRequest, inputMessage(err))
		return
	}
	writeJSON(w, http.StatusAccepted, APIResponse{Success: true, Data: s.ctrl.Machine().Current()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.ctrl.Machine().Current()})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadedReport(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
}

func (s *Server) handleNewsFeed(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.loadedReport(w)
	if !ok {
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	data, err := report.NewsFeed(rep, fmt.Sprintf("%s://%s/", scheme, r.Host))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// loadedReport builds the report of the current state, or writes 409 when
// nothing is loaded.
func (s *Server) loadedReport(w http.ResponseWriter) (report.Report, bool) {
	st := s.ctrl.Machine().Current()
	if st.Phase != view.PhaseLoaded || st.Query == nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("no analysis loaded (phase: %s)", st.Phase))
		return report.Report{}, false
	}
	return report.Build(*st.Query, st.Result), true
}

// decodeOptionalJSON decodes r's body into v; an empty body leaves v alone.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
