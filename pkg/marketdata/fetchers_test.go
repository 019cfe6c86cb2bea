package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bullion-hq/assay/pkg/config"
)

const goldChartBody = `{"chart":{"result":[{"meta":{"regularMarketPrice":3683.5},
"indicators":{"quote":[{"close":[null,3683.3249]}]}}],"error":null}}`

func TestQuote_LastCloseRounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("range") != "1d" || r.URL.Query().Get("interval") != "1d" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(goldChartBody))
	}))
	defer srv.Close()

	c := newClient(config.MarketDataConfig{YahooBaseURL: srv.URL})
	price, err := c.Quote(context.Background(), SymbolGoldSpot)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if price != 3683.32 {
		t.Errorf("price = %v, want 3683.32", price)
	}
}

func TestQuote_FallsBackToMetaPrice(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"regularMarketPrice":2387.4},
"indicators":{"quote":[{"close":[null,null]}]}}],"error":null}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newClient(config.MarketDataConfig{YahooBaseURL: srv.URL})
	price, err := c.Quote(context.Background(), SymbolGoldFutures)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if price != 2387.4 {
		t.Errorf("price = %v, want 2387.4", price)
	}
}

func TestQuote_ChartError(t *testing.T) {
	body := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newClient(config.MarketDataConfig{YahooBaseURL: srv.URL})
	if _, err := c.Quote(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for chart error payload")
	}
}

func TestQuotes_SkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "GLD") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(goldChartBody))
	}))
	defer srv.Close()

	c := newClient(config.MarketDataConfig{YahooBaseURL: srv.URL})
	quotes := c.Quotes(context.Background(), []string{SymbolGoldSpot, SymbolGLD})
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}
	if _, ok := quotes[SymbolGoldSpot]; !ok {
		t.Error("expected the spot quote to survive")
	}
}

func TestDollarIndex_LastNumericWins(t *testing.T) {
	body := `{"observations":[
		{"date":"2025-08-25","value":"120.4905"},
		{"date":"2025-08-26","value":"121.01"},
		{"date":"2025-08-27","value":"."}]}`

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newClient(config.MarketDataConfig{FREDBaseURL: srv.URL, FREDAPIKey: "k"})
	obs, err := c.DollarIndex(context.Background())
	if err != nil {
		t.Fatalf("DollarIndex failed: %v", err)
	}
	if obs.Date != "2025-08-26" || obs.Value != 121.01 {
		t.Errorf("unexpected observation: %+v", obs)
	}

	if !strings.Contains(gotQuery, "series_id=DTWEXBGS") {
		t.Errorf("missing series id in query: %s", gotQuery)
	}
	wantStart := "observation_start=" + firstOfMonth(time.Now().UTC())
	if !strings.Contains(gotQuery, wantStart) {
		t.Errorf("missing %s in query: %s", wantStart, gotQuery)
	}
}

func TestDollarIndex_NoKeySkips(t *testing.T) {
	c := newClient(config.MarketDataConfig{})
	if _, err := c.DollarIndex(context.Background()); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestFirstOfMonth(t *testing.T) {
	got := firstOfMonth(time.Date(2025, 8, 28, 13, 0, 0, 0, time.UTC))
	if got != "2025-08-01" {
		t.Errorf("firstOfMonth = %q, want 2025-08-01", got)
	}
}

func TestWorldReserves(t *testing.T) {
	totalBody := `[{"page":1},[{"date":"2024","value":null},{"date":"2023","value":1.6e13}]]`
	goldBody := `[{"page":1},[{"date":"2023","value":2.1e12}]]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" || r.URL.Query().Get("per_page") != "2" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		switch {
		case strings.Contains(r.URL.Path, indicatorTotalReserves):
			_, _ = w.Write([]byte(totalBody))
		case strings.Contains(r.URL.Path, indicatorGoldReserves):
			_, _ = w.Write([]byte(goldBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newClient(config.MarketDataConfig{WorldBankBaseURL: srv.URL})
	reserves, err := c.WorldReserves(context.Background())
	if err != nil {
		t.Fatalf("WorldReserves failed: %v", err)
	}
	// Null rows are skipped.
	if reserves.Total == nil || reserves.Total.Date != "2023" {
		t.Errorf("unexpected total: %+v", reserves.Total)
	}
	if reserves.Gold == nil || reserves.Gold.Value != 2.1e12 {
		t.Errorf("unexpected gold: %+v", reserves.Gold)
	}
}

func TestWorldReserves_GoldBestEffort(t *testing.T) {
	totalBody := `[{"page":1},[{"date":"2023","value":1.6e13}]]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, indicatorGoldReserves) {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(totalBody))
	}))
	defer srv.Close()

	c := newClient(config.MarketDataConfig{WorldBankBaseURL: srv.URL})
	reserves, err := c.WorldReserves(context.Background())
	if err != nil {
		t.Fatalf("WorldReserves failed: %v", err)
	}
	if reserves.Total == nil || reserves.Gold != nil {
		t.Errorf("expected total only, got %+v", reserves)
	}
}

func TestSpotFallback_SendsTokenHeader(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("x-access-token")
		if r.URL.Path != "/api/XAU/USD" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"price":3683.329}`))
	}))
	defer srv.Close()

	c := newClient(config.MarketDataConfig{GoldAPIBaseURL: srv.URL, GoldAPIKey: "tok"})
	price, err := c.SpotFallback(context.Background(), "XAU")
	if err != nil {
		t.Fatalf("SpotFallback failed: %v", err)
	}
	if price != 3683.33 {
		t.Errorf("price = %v, want 3683.33", price)
	}
	if gotToken != "tok" {
		t.Errorf("token header = %q, want tok", gotToken)
	}
}

func TestCommitmentOfTraders_Unavailable(t *testing.T) {
	c := newClient(config.MarketDataConfig{})
	if err := c.CommitmentOfTraders(context.Background(), "XAU"); !errors.Is(err, ErrCOTUnavailable) {
		t.Errorf("expected ErrCOTUnavailable, got %v", err)
	}
}

func TestSnapshot_BestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(goldChartBody))
	}))
	defer srv.Close()

	// Only Yahoo is reachable; FRED has no key, reserves not requested.
	c := newClient(config.MarketDataConfig{YahooBaseURL: srv.URL})
	snap := c.Snapshot(context.Background(), SnapshotRequest{
		Symbols:    []string{SymbolGoldSpot, SymbolGoldFutures},
		SpotSymbol: SymbolGoldSpot,
		MetalCode:  "XAU",
	})

	if len(snap.Quotes) != 2 {
		t.Errorf("expected 2 quotes, got %d", len(snap.Quotes))
	}
	if snap.DollarIndex != nil {
		t.Error("dollar index should be missing without a key")
	}
	if !snap.COTUnavailable {
		t.Error("COT should be flagged unavailable")
	}
	if snap.Empty() {
		t.Error("snapshot with quotes is not empty")
	}
}

func TestSnapshot_SpotFallbackFills(t *testing.T) {
	yahoo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer yahoo.Close()
	goldapi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"price":3690.0}`))
	}))
	defer goldapi.Close()

	c := newClient(config.MarketDataConfig{
		YahooBaseURL:   yahoo.URL,
		GoldAPIBaseURL: goldapi.URL,
		GoldAPIKey:     "tok",
	})
	snap := c.Snapshot(context.Background(), SnapshotRequest{
		Symbols:    []string{SymbolGoldSpot},
		SpotSymbol: SymbolGoldSpot,
		MetalCode:  "XAU",
	})

	if snap.Quotes[SymbolGoldSpot] != 3690.0 {
		t.Errorf("expected fallback spot, got %v", snap.Quotes)
	}
}
