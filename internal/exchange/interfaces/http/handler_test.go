package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/spotexchange/internal/exchange/application"
	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
	"github.com/wyfcoding/spotexchange/internal/exchange/infrastructure/persistence/memory"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	seq := 0
	nextID := func(prefix string) func() string {
		return func() string {
			seq++
			return fmt.Sprintf("%s%d", prefix, seq)
		}
	}

	engine := domain.NewMatchingEngine(nextID("TRD"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	command := application.NewExchangeCommandService(store, engine, store, nil, nextID("ORD"), "BTC-USDT")
	query := application.NewExchangeQueryService(store, store, "BTC-USDT")
	market := application.NewMarketQueryService(store, store, nil, 0, "BTC-USDT")

	router := gin.New()
	NewHandler(command, query, market).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitOrderEndpoint(t *testing.T) {
	router := newTestRouter()

	t.Run("created", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/v1/orders",
			`{"user_id":"alice","side":"BUY","price":10.5,"quantity":2}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Data application.SubmitOrderResult `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response body: %v", err)
		}
		if resp.Data.Order.Status != "OPEN" {
			t.Fatalf("status = %s, want OPEN", resp.Data.Order.Status)
		}
	})

	t.Run("invalid side rejected", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/v1/orders",
			`{"user_id":"alice","side":"HOLD","price":10.5,"quantity":2}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/v1/orders", `{"user_id":`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	router := newTestRouter()
	do(t, router, http.MethodPost, "/api/v1/orders",
		`{"user_id":"alice","side":"SELL","price":11,"quantity":1}`)

	if w := do(t, router, http.MethodGet, "/api/v1/orders/ORD1", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/api/v1/orders/ORD404", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestOrderbookAndHistoryEndpoints(t *testing.T) {
	router := newTestRouter()
	do(t, router, http.MethodPost, "/api/v1/orders",
		`{"user_id":"maker","side":"SELL","price":10,"quantity":1}`)
	do(t, router, http.MethodPost, "/api/v1/orders",
		`{"user_id":"taker","side":"BUY","price":10,"quantity":1}`)

	w := do(t, router, http.MethodGet, "/api/v1/orderbook", "")
	if w.Code != http.StatusOK {
		t.Fatalf("orderbook status = %d, want 200", w.Code)
	}

	w = do(t, router, http.MethodGet, "/api/v1/trades/history?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d, want 200", w.Code)
	}
	var resp struct {
		Data []application.TradeDTO `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("got %d trades, want 1", len(resp.Data))
	}

	if w := do(t, router, http.MethodGet, "/api/v1/trades/history?limit=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d, want 400", w.Code)
	}
}

func TestTradeHistoryDefaultReturnsAllTrades(t *testing.T) {
	router := newTestRouter()

	const total = 55
	for i := 0; i < total; i++ {
		w := do(t, router, http.MethodPost, "/api/v1/orders",
			`{"user_id":"maker","side":"SELL","price":10,"quantity":1}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("maker %d status = %d, want 201", i, w.Code)
		}
		w = do(t, router, http.MethodPost, "/api/v1/orders",
			`{"user_id":"taker","side":"BUY","price":10,"quantity":1}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("taker %d status = %d, want 201", i, w.Code)
		}
	}

	w := do(t, router, http.MethodGet, "/api/v1/trades/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Data []application.TradeDTO `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Data) != total {
		t.Fatalf("default history returned %d trades, want all %d", len(resp.Data), total)
	}

	w = do(t, router, http.MethodGet, "/api/v1/trades/history?limit=10", "")
	resp.Data = nil
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Data) != 10 {
		t.Fatalf("bounded history returned %d trades, want 10", len(resp.Data))
	}
}

func TestMarketSummaryEndpoint(t *testing.T) {
	router := newTestRouter()
	w := do(t, router, http.MethodGet, "/api/v1/market/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()
	w := do(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
