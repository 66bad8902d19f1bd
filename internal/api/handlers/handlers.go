package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/spendsense/internal/api/middleware"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/jobs"
	"github.com/dvloznov/spendsense/internal/parser"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Ingester parses and stores messages.
type Ingester interface {
	IngestSMS(ctx context.Context, body string) (*domain.TransactionRecord, error)
	IngestNotification(ctx context.Context, pkg, title, body string) (*domain.TransactionRecord, error)
}

// MessagesHandler handles SMS and notification endpoints.
type MessagesHandler struct {
	ingester Ingester
	parser   *parser.Parser
	log      zerolog.Logger
}

// NewMessagesHandler creates a new messages handler. p is used for dry runs
// and should be the parser the ingester uses.
func NewMessagesHandler(ingester Ingester, p *parser.Parser, log zerolog.Logger) *MessagesHandler {
	return &MessagesHandler{
		ingester: ingester,
		parser:   p,
		log:      log,
	}
}

type smsRequest struct {
	Body string `json:"body"`
}

type notificationRequest struct {
	Package string `json:"package"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

type parseRequest struct {
	Source string `json:"source"` // "sms" or "notification"
	Sender string `json:"sender"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type ingestResponse struct {
	Accepted    bool                      `json:"accepted"`
	Transaction *domain.TransactionRecord `json:"transaction,omitempty"`
}

type parseResponse struct {
	Accepted    bool                      `json:"accepted"`
	Reason      parser.Rejection          `json:"reason,omitempty"`
	Transaction *domain.ParsedTransaction `json:"transaction,omitempty"`
}

// IngestSMS handles POST /api/sms
func (h *MessagesHandler) IngestSMS(w http.ResponseWriter, r *http.Request) {
	var req smsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.ingester.IngestSMS(r.Context(), req.Body)
	h.writeIngestResult(w, rec, err)
}

// IngestNotification handles POST /api/notifications
func (h *MessagesHandler) IngestNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Package == "" {
		middleware.WriteError(w, http.StatusBadRequest, "package is required")
		return
	}

	rec, err := h.ingester.IngestNotification(r.Context(), req.Package, req.Title, req.Body)
	h.writeIngestResult(w, rec, err)
}

func (h *MessagesHandler) writeIngestResult(w http.ResponseWriter, rec *domain.TransactionRecord, err error) {
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store transaction")
		return
	}

	if rec == nil {
		middleware.WriteJSON(w, http.StatusOK, ingestResponse{Accepted: false})
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, ingestResponse{Accepted: true, Transaction: rec})
}

// Parse handles POST /api/parse. Nothing is stored.
func (h *MessagesHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		text   string
		origin domain.Origin
	)
	switch strings.ToLower(req.Source) {
	case "", "sms":
		text = req.Body
		origin = domain.Origin{Source: domain.SourceSMS}
	case "notification":
		text = parser.JoinNotification(req.Title, req.Body)
		origin = domain.Origin{Source: domain.SourceNotification, Sender: req.Sender}
	default:
		middleware.WriteError(w, http.StatusBadRequest, "source must be sms or notification")
		return
	}

	tx, reason := h.parser.ParseWithReason(text, origin)
	middleware.WriteJSON(w, http.StatusOK, parseResponse{
		Accepted:    tx != nil,
		Reason:      reason,
		Transaction: tx,
	})
}

// JobsHandler handles periodic job endpoints.
type JobsHandler struct {
	runner jobs.Runner
	store  jobs.RunStore
	log    zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(runner jobs.Runner, store jobs.RunStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		runner: runner,
		store:  store,
		log:    log,
	}
}

// RunJob returns a handler that runs the named job synchronously, e.g. for
// POST /api/recurring/run. A run that was skipped because the job is already
// in progress answers 409.
func (h *JobsHandler) RunJob(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := h.runner.RunNow(r.Context(), name)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				middleware.WriteError(w, http.StatusNotFound, "Job not found")
				return
			}
			h.log.Error().Err(err).Str("job", name).Msg("Failed to run job")
			middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to run job")
			return
		}

		status := http.StatusOK
		switch run.Status {
		case jobs.RunStatusSkipped:
			status = http.StatusConflict
		case jobs.RunStatusFailed:
			status = http.StatusInternalServerError
		}
		middleware.WriteJSON(w, status, run)
	}
}

// ListRuns handles GET /api/jobs/runs
func (h *JobsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.RunFilter{
		JobName: query.Get("job"),
		Status:  jobs.RunStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	runs, err := h.store.ListRuns(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list job runs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list job runs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// Health handles GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// RegisterRoutes wires every endpoint onto router. Each route also accepts
// OPTIONS so that CORS preflight requests reach the middleware chain.
func RegisterRoutes(router *mux.Router, msgs *MessagesHandler, jobsHandler *JobsHandler) {
	router.HandleFunc("/healthz", Health).Methods(http.MethodGet)

	router.HandleFunc("/api/sms", msgs.IngestSMS).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/notifications", msgs.IngestNotification).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/parse", msgs.Parse).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/recurring/run", jobsHandler.RunJob(jobs.JobNameRecurringBilling)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/budget/check", jobsHandler.RunJob(jobs.JobNameBudgetCheck)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/jobs/runs", jobsHandler.ListRuns).Methods(http.MethodGet, http.MethodOptions)
}

// NewRouter builds the API router with the standard middleware chain.
func NewRouter(msgs *MessagesHandler, jobsHandler *JobsHandler, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
		middleware.MaxBody(64*1024),
	)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	RegisterRoutes(router, msgs, jobsHandler)
	return router
}
