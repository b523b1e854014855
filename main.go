package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"odireport/agent"
	"odireport/chart"
	"odireport/config"
	"odireport/dataset"
	"odireport/export"
	"odireport/logger"
)

func configPath() string {
	if p := os.Getenv("ODIREPORT_CONFIG"); p != "" {
		return p
	}
	return "config.json"
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = filepath.Join(cfg.DataCacheDir, "logs")
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatalf("failed to create log dir: %v", err)
	}
	appLog := logger.NewLogger()
	if err := appLog.Init(logDir); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer appLog.Close()

	logSink := func(string) {}
	if cfg.DetailedLog {
		logSink = appLog.Log
	}

	store, err := dataset.Open(cfg.DatasetPath, cfg.DataCacheDir, logSink)
	if err != nil {
		log.Fatalf("failed to import dataset: %v", err)
	}
	defer store.Close()

	requester, err := agent.NewSpecRequester(cfg, logSink)
	if err != nil {
		log.Fatalf("failed to initialize chat model: %v", err)
	}

	service := &ReportService{
		Requester: requester,
		Store:     store,
		Renderer:  chart.NewRenderer(filepath.Join(cfg.DataCacheDir, "charts"), logSink),
		PDF:       export.NewPDFExportService(),
		Log:       appLog.Log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/columns", handleColumns(store))
	mux.HandleFunc("/api/report", handleReport(service))
	mux.HandleFunc("/api/report/download", handleReportDownload(service))

	appLog.Logf("listening on %s (dataset: %s)", cfg.ListenAddr, cfg.DatasetPath)
	log.Printf("odireport listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "time": time.Now().Format(time.RFC3339)})
}

func handleColumns(store *dataset.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]string{"columns": store.Columns()})
	}
}

type reportRequest struct {
	Query string `json:"query"`
}

type reportResponse struct {
	FileName  string           `json:"fileName"`
	Query     string           `json:"query"`
	Spec      *agent.ChartSpec `json:"spec"`
	RawOutput string           `json:"rawOutput"`
	PDFBase64 string           `json:"pdfBase64"`
}

func handleReport(service *ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, ok := runReport(service, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reportResponse{
			FileName:  result.FileName,
			Query:     result.Query,
			Spec:      result.Spec,
			RawOutput: result.RawModelOutput,
			PDFBase64: result.PDFDataURI(),
		})
	}
}

func handleReportDownload(service *ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, ok := runReport(service, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
		w.Write(result.PDFBytes)
	}
}

// runReport decodes the request, runs the pipeline, and writes the error
// response when the request fails.
func runReport(service *ReportService, w http.ResponseWriter, r *http.Request) (*ReportResult, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}

	result, err := service.GenerateReport(r.Context(), req.Query)
	if err != nil {
		service.log(fmt.Sprintf("report failed: %v", err))
		http.Error(w, err.Error(), statusForError(err))
		return nil, false
	}
	return result, true
}

// statusForError maps the pipeline error taxonomy to HTTP statuses:
// unparseable model output and validation failures are the client's to fix
// by rephrasing; model transport errors are upstream failures.
func statusForError(err error) int {
	var validationErr *ValidationError
	var svcErr *ServiceError
	switch {
	case errors.Is(err, agent.ErrUnparseable):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &svcErr) && svcErr.Operation == "RequestChartSpec":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
