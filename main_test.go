package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"odireport/agent"
)

func TestHandleReport(t *testing.T) {
	svc, _ := newTestService(t, &mockChatModel{
		reply: `{"x":"toss_winner","y":"count","chart_type":"pie"}`,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/report",
		strings.NewReader(`{"query":"Show total toss wins by team in a pie chart"}`))
	rec := httptest.NewRecorder()
	handleReport(svc)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp reportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.FileName != ReportFileName {
		t.Errorf("unexpected file name %q", resp.FileName)
	}
	if !strings.HasPrefix(resp.PDFBase64, "data:application/pdf;base64,") {
		t.Error("response missing PDF data URI")
	}
	if resp.Spec == nil || resp.Spec.ChartType != "pie" {
		t.Errorf("unexpected spec in response: %+v", resp.Spec)
	}
}

func TestHandleReportRejectsGet(t *testing.T) {
	svc, _ := newTestService(t, &mockChatModel{reply: "{}"})

	req := httptest.NewRequest(http.MethodGet, "/api/report", nil)
	rec := httptest.NewRecorder()
	handleReport(svc)(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandleReportUnparseableIs422(t *testing.T) {
	svc, _ := newTestService(t, &mockChatModel{reply: "no json here"})

	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader(`{"query":"q"}`))
	rec := httptest.NewRecorder()
	handleReport(svc)(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestHandleReportDownload(t *testing.T) {
	svc, _ := newTestService(t, &mockChatModel{
		reply: `{"x":"winner","y":"win_by_runs","chart_type":"bar","limit":2}`,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/report/download",
		strings.NewReader(`{"query":"Top winners by total runs margin"}`))
	rec := httptest.NewRecorder()
	handleReportDownload(svc)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ReportFileName) {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("body is not a PDF")
	}
}

func TestHandleColumns(t *testing.T) {
	svc, _ := newTestService(t, &mockChatModel{reply: "{}"})

	req := httptest.NewRequest(http.MethodGet, "/api/columns", nil)
	rec := httptest.NewRecorder()
	handleColumns(svc.Store)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if len(resp["columns"]) != 7 {
		t.Errorf("expected 7 columns, got %v", resp["columns"])
	}
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unparseable", WrapError("report", "ParseChartSpec", agent.ErrUnparseable), http.StatusUnprocessableEntity},
		{"validation", WrapError("report", "ValidateSpec", &ValidationError{Err: errors.New("missing x")}), http.StatusBadRequest},
		{"model failure", WrapError("report", "RequestChartSpec", errors.New("timeout")), http.StatusBadGateway},
		{"render failure", WrapError("report", "RenderChart", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusForError(tc.err); got != tc.want {
				t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
