// Package api serves the analyzer's HTTP surface: stored reports, analysis
// statistics, reputation scores, archive download, health, and metrics.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/archive"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/engine"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/metrics"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
	"github.com/RishabhS-dev/ai-msme-honeypot/internal/store"
)

// HTTPAPI provides HTTP endpoints for the analyzer service.
type HTTPAPI struct {
	store    *store.MemoryStore
	engine   *engine.Engine
	metrics  *metrics.Metrics
	natsConn *nats.Conn
	logger   *slog.Logger
	router   *mux.Router
}

// NewHTTPAPI creates a new HTTP API instance.
func NewHTTPAPI(memStore *store.MemoryStore, analysisEngine *engine.Engine, m *metrics.Metrics, natsConn *nats.Conn, logger *slog.Logger) *HTTPAPI {
	api := &HTTPAPI{
		store:    memStore,
		engine:   analysisEngine,
		metrics:  m,
		natsConn: natsConn,
		logger:   logger,
		router:   mux.NewRouter(),
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures the HTTP routes. The archive route registers before
// the {report_id} route so mux matches it first.
func (api *HTTPAPI) setupRoutes() {
	api.router.HandleFunc("/reports", api.handleListReports).Methods("GET")
	api.router.HandleFunc("/reports/archive", api.handleArchive).Methods("GET")
	api.router.HandleFunc("/reports/{report_id}", api.handleGetReport).Methods("GET")
	api.router.HandleFunc("/stats", api.handleStats).Methods("GET")
	api.router.HandleFunc("/reputation", api.handleReputation).Methods("GET")
	api.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	api.router.HandleFunc("/healthz", api.handleHealth).Methods("GET")
	api.router.HandleFunc("/readyz", api.handleReady).Methods("GET")
}

// ServeHTTP implements the http.Handler interface.
func (api *HTTPAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

// handleListReports handles GET /reports with optional limit and severity
// query parameters.
func (api *HTTPAPI) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			api.writeErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	severity := r.URL.Query().Get("severity")
	if severity != "" && model.SeverityRank(severity) == 0 {
		api.writeErrorResponse(w, http.StatusBadRequest, "severity must be one of low, medium, high, critical")
		return
	}

	reports := api.store.GetReports(limit, severity)

	api.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"reports":   reports,
		"count":     len(reports),
		"timestamp": time.Now().UTC(),
	})
}

// handleGetReport handles GET /reports/{report_id}.
func (api *HTTPAPI) handleGetReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reportID := vars["report_id"]

	report, found := api.store.GetReport(reportID)
	if !found {
		api.writeErrorResponse(w, http.StatusNotFound, "Report not found")
		return
	}

	api.writeJSONResponse(w, http.StatusOK, report)
}

// handleArchive handles GET /reports/archive, streaming the stored reports as
// a tar.zst download.
func (api *HTTPAPI) handleArchive(w http.ResponseWriter, r *http.Request) {
	reports := api.store.All()

	filename := fmt.Sprintf("reports_%s.tar.zst", time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := archive.Write(w, reports); err != nil {
		// Headers are gone at this point; all we can do is log.
		api.logger.Error("Failed to stream report archive", "error", err)
		return
	}

	api.logger.Info("Report archive downloaded", "reports", len(reports))
}

// handleStats handles GET /stats with classification, store, and pattern
// history statistics.
func (api *HTTPAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	storeStats := api.store.GetStats()
	if totalReports, ok := storeStats["total_reports"].(int); ok {
		api.metrics.SetReportsStored(totalReports)
	}

	api.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"classification": api.engine.ClassificationStats(),
		"store":          storeStats,
		"patterns":       api.engine.PatternCounts(),
		"timestamp":      time.Now().UTC(),
	})
}

// handleReputation handles GET /reputation.
func (api *HTTPAPI) handleReputation(w http.ResponseWriter, r *http.Request) {
	scores := api.engine.ReputationScores()

	api.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"scores":    scores,
		"count":     len(scores),
		"timestamp": time.Now().UTC(),
	})
}

// handleHealth handles GET /healthz.
func (api *HTTPAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"stats":     api.store.GetStats(),
	})
}

// handleReady handles GET /readyz. The analyzer is ready once its NATS
// connection is up; everything else is constructed before the server starts.
func (api *HTTPAPI) handleReady(w http.ResponseWriter, r *http.Request) {
	natsConnected := api.natsConn != nil && api.natsConn.IsConnected()

	status := "ready"
	statusCode := http.StatusOK
	if !natsConnected {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	api.writeJSONResponse(w, statusCode, map[string]interface{}{
		"status":         status,
		"timestamp":      time.Now().UTC(),
		"nats_connected": natsConnected,
	})
}

// writeJSONResponse writes a JSON response with the given status code.
func (api *HTTPAPI) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		api.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// writeErrorResponse writes an error response.
func (api *HTTPAPI) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	api.writeJSONResponse(w, statusCode, map[string]interface{}{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
