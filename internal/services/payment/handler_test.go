package payment

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-ordering/internal/adapter/web"
	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/models"
)

func newTestServer(t *testing.T, f *fixture) *httptest.Server {
	t.Helper()
	log := logger.NewWithWriter("test", io.Discard, slog.LevelDebug)
	mux := http.NewServeMux()
	NewHandler(f.service, log).Register(mux)
	srv := httptest.NewServer(web.WithLogging(log, 0, mux))
	t.Cleanup(srv.Close)
	return srv
}

func send(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHandler_CreateAndApprove(t *testing.T) {
	f := newFixture(t)
	orderID := f.addOrder(t, models.OrderInProgress)
	srv := newTestServer(t, f)

	status, body := send(t, http.MethodPost, srv.URL+"/pagamentos",
		fmt.Sprintf(`{"pedidoId":%d,"valor":71.80,"tipoPagamento":"A_VISTA","status":"PENDENTE"}`, orderID))
	require.Equal(t, http.StatusCreated, status, string(body))

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "PENDENTE", created["status"])
	assert.Equal(t, 71.8, created["valor"])
	assert.NotContains(t, created, "approvedAt")
	id, err := strconv.ParseInt(created["id"].(string), 10, 64)
	require.NoError(t, err, "ids are written as JSON strings")

	status, body = send(t, http.MethodPut, fmt.Sprintf("%s/pagamentos/%d/aprovar", srv.URL, id), "")
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"status":"APROVADO"`)
	assert.Contains(t, string(body), `"approvedAt"`)

	status, body = send(t, http.MethodGet, fmt.Sprintf("%s/payments/%d", srv.URL, id), "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"APROVADO"`)

	status, body = send(t, http.MethodPut, fmt.Sprintf("%s/payments/%d/approve", srv.URL, id), "")
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, body = send(t, http.MethodGet, fmt.Sprintf("%s/orders/%d/payments", srv.URL, orderID), "")
	require.Equal(t, http.StatusOK, status)
	var payments []models.Payment
	require.NoError(t, json.Unmarshal(body, &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentApproved, payments[0].Status)
}

func TestHandler_Errors(t *testing.T) {
	f := newFixture(t)
	orderID := f.addOrder(t, models.OrderInProgress)
	srv := newTestServer(t, f)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantField  string
	}{
		{"unknown order", http.MethodPost, "/payments", `{"pedidoId":999,"valor":50.00,"tipoPagamento":"A_VISTA","status":"PENDENTE"}`, http.StatusBadRequest, "pedidoId"},
		{"negative amount", http.MethodPost, "/payments", fmt.Sprintf(`{"pedidoId":%d,"valor":-5,"tipoPagamento":"PIX"}`, orderID), http.StatusBadRequest, "valor"},
		{"unknown payment", http.MethodGet, "/payments/999", "", http.StatusNotFound, ""},
		{"approve unknown payment", http.MethodPut, "/payments/999/approve", "", http.StatusNotFound, ""},
		{"non numeric payment", http.MethodGet, "/payments/xyz", "", http.StatusNotFound, ""},
		{"payments of unknown order", http.MethodGet, "/orders/999/payments", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := send(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status, string(body))

			var envelope web.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &envelope))
			assert.Equal(t, tt.wantField, envelope.Field)
		})
	}

	payments, err := f.service.ListByOrder(t.Context(), orderID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}
