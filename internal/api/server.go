// Package api exposes the published state over a JSON HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/observability"
	"solana-pool-radar/internal/report"
	"solana-pool-radar/internal/state"
)

// Server serves read endpoints over the state container and write
// endpoints for alert rules and the history view.
type Server struct {
	container *state.Container
	reports   *report.Generator
	log       zerolog.Logger
	started   time.Time
	now       func() time.Time
}

// NewServer creates an API server over the container.
func NewServer(container *state.Container, reports *report.Generator, logger zerolog.Logger) *Server {
	return &Server{
		container: container,
		reports:   reports,
		log:       logger,
		started:   time.Now(),
		now:       time.Now,
	}
}

// Routes returns the HTTP handler with all routes registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)

	mux.HandleFunc("GET /api/pools", s.handlePools)
	mux.HandleFunc("GET /api/opportunities", s.handleOpportunities)
	mux.HandleFunc("GET /api/report", s.handleReport)

	mux.HandleFunc("GET /api/alerts", s.handleListAlerts)
	mux.HandleFunc("POST /api/alerts", s.handleAddAlert)
	mux.HandleFunc("DELETE /api/alerts/{id}", s.handleRemoveAlert)
	mux.HandleFunc("POST /api/alerts/{id}/toggle", s.handleToggleAlert)

	mux.HandleFunc("GET /api/triggered", s.handleTriggered)
	mux.HandleFunc("POST /api/triggered/read", s.handleMarkTriggeredRead)
	mux.HandleFunc("DELETE /api/triggered", s.handleClearTriggered)

	mux.HandleFunc("GET /api/pools/{id}/history", s.handleHistory)
	mux.HandleFunc("POST /api/pools/{id}/expand", s.handleExpand)
	mux.HandleFunc("POST /api/pools/collapse", s.handleCollapse)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for the status endpoint.
type StatusResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	Pools         int    `json:"pools"`
	Opportunities int    `json:"opportunities"`
	Alerts        int    `json:"alerts"`
	Triggered     int    `json:"triggered"`
	ActivePool    string `json:"active_pool,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        "running",
		Uptime:        s.now().Sub(s.started).String(),
		Pools:         len(s.container.Pools()),
		Opportunities: len(s.container.Opportunities()),
		Alerts:        len(s.container.Alerts()),
		Triggered:     s.container.Triggered().Len(),
		ActivePool:    s.container.History().Active(),
	})
}

// PoolResponse is the JSON shape of one pool.
type PoolResponse struct {
	ID          string  `json:"id"`
	Address     string  `json:"address"`
	Name        string  `json:"name"`
	Protocol    string  `json:"protocol"`
	MintX       string  `json:"mint_x"`
	MintY       string  `json:"mint_y"`
	TVL         float64 `json:"tvl"`
	Volume24h   float64 `json:"volume_24h"`
	Apr         string  `json:"apr"`
	Fees24h     float64 `json:"fees_24h"`
	HasFarm     bool    `json:"has_farm"`
	FarmActive  bool    `json:"farm_active"`
	APIVerified bool    `json:"api_verified"`
	Safety      string  `json:"safety"`
	Score       int     `json:"score"`
}

func poolResponse(p *domain.Pool) PoolResponse {
	return PoolResponse{
		ID:          p.ID,
		Address:     p.Address,
		Name:        p.Name,
		Protocol:    p.Protocol,
		MintX:       p.MintX,
		MintY:       p.MintY,
		TVL:         p.TVL,
		Volume24h:   p.Volume24h,
		Apr:         p.Apr,
		Fees24h:     p.Fees24h,
		HasFarm:     p.HasFarm,
		FarmActive:  p.FarmActive,
		APIVerified: p.APIVerified,
		Safety:      string(p.Safety),
		Score:       p.Score,
	}
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	pools := s.container.Pools()
	out := make([]PoolResponse, 0, len(pools))
	for i := range pools {
		out = append(out, poolResponse(&pools[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// OpportunityResponse is the JSON shape of one ranked opportunity.
type OpportunityResponse struct {
	Pool   PoolResponse `json:"pool"`
	Type   string       `json:"type"`
	Reason string       `json:"reason"`
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	opps := s.container.Opportunities()
	out := make([]OpportunityResponse, 0, len(opps))
	for i := range opps {
		out = append(out, OpportunityResponse{
			Pool:   poolResponse(&opps[i].Pool),
			Type:   string(opps[i].Type),
			Reason: opps[i].Reason,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep := s.reports.Generate(s.container.Pools(), s.container.Opportunities(), s.container.Triggered().All())

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte(report.RenderCSV(rep.Opportunities)))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(report.RenderMarkdown(rep)))
}

// AlertRequest is the JSON body for creating an alert rule.
type AlertRequest struct {
	ID        string  `json:"id"`
	PoolID    string  `json:"pool_id"`
	PoolName  string  `json:"pool_name"`
	Metric    string  `json:"metric"`
	Condition string  `json:"condition"`
	Value     float64 `json:"value"`
	Enabled   bool    `json:"enabled"`
}

// AlertResponse is the JSON shape of one alert rule.
type AlertResponse struct {
	ID        string  `json:"id"`
	PoolID    string  `json:"pool_id"`
	PoolName  string  `json:"pool_name,omitempty"`
	Metric    string  `json:"metric"`
	Condition string  `json:"condition"`
	Value     float64 `json:"value"`
	Enabled   bool    `json:"enabled"`
	CreatedAt int64   `json:"created_at"`
}

func alertResponse(a *domain.Alert) AlertResponse {
	return AlertResponse{
		ID:        a.ID,
		PoolID:    a.PoolID,
		PoolName:  a.PoolName,
		Metric:    string(a.Metric),
		Condition: string(a.Condition),
		Value:     a.Value,
		Enabled:   a.Enabled,
		CreatedAt: a.CreatedAt,
	}
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.container.Alerts()
	out := make([]AlertResponse, 0, len(alerts))
	for i := range alerts {
		out = append(out, alertResponse(&alerts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var req AlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	a := domain.Alert{
		ID:        req.ID,
		PoolID:    req.PoolID,
		PoolName:  req.PoolName,
		Metric:    domain.AlertMetric(req.Metric),
		Condition: domain.AlertCondition(req.Condition),
		Value:     req.Value,
		Enabled:   req.Enabled,
		CreatedAt: s.now().UnixMilli(),
	}

	if err := s.container.AddAlert(a); err != nil {
		switch {
		case errors.Is(err, state.ErrAlertExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, state.ErrInvalidAlert):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, alertResponse(&a))
}

func (s *Server) handleRemoveAlert(w http.ResponseWriter, r *http.Request) {
	if !s.container.RemoveAlert(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !s.container.ToggleAlert(r.PathValue("id"), req.Enabled) {
		writeError(w, http.StatusNotFound, "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TriggeredResponse is the JSON shape of one triggered alert.
type TriggeredResponse struct {
	Alert        AlertResponse `json:"alert"`
	TriggeredAt  int64         `json:"triggered_at"`
	CurrentValue float64       `json:"current_value"`
	Read         bool          `json:"read"`
}

func (s *Server) handleTriggered(w http.ResponseWriter, r *http.Request) {
	entries := s.container.Triggered().All()
	out := make([]TriggeredResponse, 0, len(entries))
	for i := range entries {
		out = append(out, TriggeredResponse{
			Alert:        alertResponse(&entries[i].Alert),
			TriggeredAt:  entries[i].TriggeredAt,
			CurrentValue: entries[i].CurrentValue,
			Read:         entries[i].Read,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkTriggeredRead(w http.ResponseWriter, r *http.Request) {
	s.container.Triggered().MarkAllRead()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearTriggered(w http.ResponseWriter, r *http.Request) {
	s.container.Triggered().Clear()
	w.WriteHeader(http.StatusNoContent)
}

// TransactionResponse is the JSON shape of one pool transaction.
type TransactionResponse struct {
	Signature string  `json:"signature"`
	PoolID    string  `json:"pool_id"`
	Kind      string  `json:"kind"`
	AmountUSD float64 `json:"amount_usd"`
	Wallet    string  `json:"wallet"`
	BlockTime int64   `json:"block_time"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	txs := s.container.History().History(r.PathValue("id"))
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionResponse{
			Signature: tx.Signature,
			PoolID:    tx.PoolID,
			Kind:      string(tx.Kind),
			AmountUSD: tx.AmountUSD,
			Wallet:    tx.Wallet,
			BlockTime: tx.BlockTime,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	s.container.History().SetActive(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	s.container.History().Collapse()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
