package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"bullion-hq/assay/pkg/llm"
)

func TestProviderMetrics_Counters(t *testing.T) {
	c := NewCollector()

	c.Provider.RecordRequest("groq", "llama-3.3-70b-versatile")
	c.Provider.RecordRequest("groq", "llama-3.3-70b-versatile")
	c.Provider.RecordFailover("groq", "openai")
	c.Provider.RecordGeneration("openai", 12.5)

	if got := testutil.ToFloat64(c.Provider.requests.WithLabelValues("groq", "llama-3.3-70b-versatile")); got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(c.Provider.failovers.WithLabelValues("groq", "openai")); got != 1 {
		t.Errorf("expected 1 failover, got %v", got)
	}
}

func TestProviderMetrics_ErrorClassification(t *testing.T) {
	c := NewCollector()

	c.Provider.RecordError("piapi", &llm.HTTPError{Provider: "piapi", StatusCode: 429})
	c.Provider.RecordError("piapi", &llm.HTTPError{Provider: "piapi", StatusCode: 503})
	c.Provider.RecordError("groq", &llm.TransportError{Provider: "groq", Err: errors.New("dial tcp: timeout")})

	if got := testutil.ToFloat64(c.Provider.errors.WithLabelValues("piapi", "rate_limit")); got != 1 {
		t.Errorf("expected 1 rate_limit error, got %v", got)
	}
	if got := testutil.ToFloat64(c.Provider.errors.WithLabelValues("piapi", "server_error")); got != 1 {
		t.Errorf("expected 1 server_error, got %v", got)
	}
	if got := testutil.ToFloat64(c.Provider.errors.WithLabelValues("groq", "network")); got != 1 {
		t.Errorf("expected 1 network error, got %v", got)
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limit", &llm.HTTPError{StatusCode: 429}, "rate_limit"},
		{"unauthorized", &llm.HTTPError{StatusCode: 401}, "auth"},
		{"forbidden", &llm.HTTPError{StatusCode: 403}, "auth"},
		{"server", &llm.HTTPError{StatusCode: 502}, "server_error"},
		{"bad request", &llm.HTTPError{StatusCode: 400}, "client_error"},
		{"transport", &llm.TransportError{Err: errors.New("refused")}, "network"},
		{"response", &llm.ResponseError{Message: "no choices"}, "response"},
		{"plain", errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorType(tt.err); got != tt.want {
			t.Errorf("%s: ErrorType = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestReportMetrics(t *testing.T) {
	c := NewCollector()

	c.Report.RecordRun("gold", RunSent, 42)
	c.Report.RecordRun("gold", RunSkipped, 0.1)
	c.Report.RecordSend(true)
	c.Report.RecordSend(false)
	c.Report.RecordFetch("yahoo", true)

	if got := testutil.ToFloat64(c.Report.runs.WithLabelValues("gold", RunSent)); got != 1 {
		t.Errorf("expected 1 sent run, got %v", got)
	}
	if got := testutil.ToFloat64(c.Report.sends.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed send, got %v", got)
	}
	if got := testutil.ToFloat64(c.Report.fetches.WithLabelValues("yahoo", "ok")); got != 1 {
		t.Errorf("expected 1 yahoo fetch, got %v", got)
	}
}

func TestMux_ServesMetricsAndHealth(t *testing.T) {
	c := NewCollector()
	c.Report.RecordRun("silver", RunSent, 30)

	srv := httptest.NewServer(c.Mux("/metrics"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "assay_report_runs_total") {
		t.Error("exposition output missing assay_report_runs_total")
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /healthz, got %d", resp.StatusCode)
	}
}
