package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"floe/domain/orderbook"
	"floe/infra/memory"
	"floe/infra/sequence"
	"floe/service"
	"floe/wire"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pool := memory.NewPool(func() *orderbook.Order { return &orderbook.Order{} })
	svc := service.New(orderbook.NewOrderBook(), pool, sequence.New(0), nil, nil, nil)
	return New(svc)
}

func postOrder(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPlaceOrderMatches(t *testing.T) {
	r := newTestServer(t).Router()

	w := postOrder(t, r, `{"type":"Limit","direction":"Sell","id":1,"price":100,"quantity":10}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = postOrder(t, r, `{"type":"Limit","direction":"Buy","id":2,"price":100,"quantity":4}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp PlaceOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, wire.Transaction{BuyOrderID: 2, SellOrderID: 1, Price: 100, Quantity: 4}, resp.Transactions[0])
	require.Len(t, resp.Book.SellOrders, 1)
	assert.Equal(t, wire.SnapshotEntry{ID: 1, Price: 100, Quantity: 6}, resp.Book.SellOrders[0])
	assert.Empty(t, resp.Book.BuyOrders)
}

func TestPlaceOrderValidation(t *testing.T) {
	r := newTestServer(t).Router()

	cases := map[string]string{
		"bad body":       `{`,
		"unknown type":   `{"type":"Stop","direction":"Buy","id":1,"price":10,"quantity":5}`,
		"zero quantity":  `{"type":"Limit","direction":"Buy","id":1,"price":10,"quantity":0}`,
		"missing fields": `{"type":"Limit"}`,
		"negative peak":  `{"type":"Iceberg","direction":"Buy","id":1,"price":10,"quantity":5,"peak":-1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := postOrder(t, r, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestIcebergWithoutPeakRejected(t *testing.T) {
	r := newTestServer(t).Router()
	w := postOrder(t, r, `{"type":"Iceberg","direction":"Buy","id":1,"price":10,"quantity":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBook(t *testing.T) {
	r := newTestServer(t).Router()

	postOrder(t, r, `{"type":"Iceberg","direction":"Buy","id":1,"price":15,"quantity":50,"peak":20}`)

	req := httptest.NewRequest(http.MethodGet, "/book", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var snap wire.BookSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.BuyOrders, 1)
	assert.Equal(t, wire.SnapshotEntry{ID: 1, Price: 15, Quantity: 20}, snap.BuyOrders[0])
}

func TestHealthz(t *testing.T) {
	r := newTestServer(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
