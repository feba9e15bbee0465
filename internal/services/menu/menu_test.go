package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-ordering/internal/adapter/web"
	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/models"
	"restaurant-ordering/internal/store/memory"
)

func newTestService() *Service {
	return NewService(memory.New(), logger.NewWithWriter("test", io.Discard, slog.LevelDebug))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.NewWithWriter("test", io.Discard, slog.LevelDebug)
	mux := http.NewServeMux()
	NewHandler(NewService(memory.New(), log), log).Register(mux)
	srv := httptest.NewServer(web.WithLogging(log, 0, mux))
	t.Cleanup(srv.Close)
	return srv
}

func pizzaRequest(name string) *models.MenuItemRequest {
	price := decimal.RequireFromString("35.90")
	return &models.MenuItemRequest{Name: name, Price: &price, Category: "PIZZA"}
}

func TestService_CreateDefaultsAvailability(t *testing.T) {
	svc := newTestService()

	item, err := svc.Create(context.Background(), pizzaRequest("Pizza Margherita"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.ID)
	assert.True(t, item.Available)
	assert.Equal(t, models.CategoryPizza, item.Category)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc := newTestService()

	req := pizzaRequest("")
	_, err := svc.Create(context.Background(), req)
	assert.True(t, models.IsValidation(err))

	page, err := svc.List(context.Background(), models.PageRequest{Page: 0, Size: 20})
	require.NoError(t, err)
	assert.True(t, page.Empty)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	created, err := svc.Create(ctx, pizzaRequest("Pizza Margherita"))
	require.NoError(t, err)

	unavailable := false
	update := pizzaRequest("Pizza Calabresa")
	update.Available = &unavailable

	updated, err := svc.Update(ctx, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Pizza Calabresa", updated.Name)
	assert.False(t, updated.Available)

	_, err = svc.Update(ctx, 999, update)
	assert.True(t, models.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(svc.Delete(ctx, created.ID)))
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
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
	return resp, data
}

func TestHandler_CRUD(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/menu-items",
		`{"nome":"Pizza Margherita","descricao":"Molho, mussarela e manjericao","preco":35.90,"categoria":"PIZZA"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Pizza Margherita", created["nome"])
	assert.Equal(t, 35.9, created["preco"])
	assert.Equal(t, true, created["disponivel"])
	id, err := strconv.ParseInt(created["id"].(string), 10, 64)
	require.NoError(t, err, "ids are written as JSON strings")

	resp, body = do(t, http.MethodGet, fmt.Sprintf("%s/menu-items/%d", srv.URL, id), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"categoria":"PIZZA"`)

	resp, body = do(t, http.MethodPut, fmt.Sprintf("%s/cardapio/itens/%d", srv.URL, id),
		`{"nome":"Pizza Margherita Grande","preco":45.00,"categoria":"PIZZA","disponivel":false}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"disponivel":false`)

	resp, _ = do(t, http.MethodDelete, fmt.Sprintf("%s/menu-items/%d", srv.URL, id), "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, fmt.Sprintf("%s/menu-items/%d", srv.URL, id), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantField  string
	}{
		{"missing name", http.MethodPost, "/menu-items", `{"preco":10,"categoria":"PIZZA"}`, http.StatusBadRequest, "nome"},
		{"negative price", http.MethodPost, "/menu-items", `{"nome":"X","preco":-1,"categoria":"PIZZA"}`, http.StatusBadRequest, "preco"},
		{"unknown category", http.MethodPost, "/menu-items", `{"nome":"X","preco":1,"categoria":"SUSHI"}`, http.StatusBadRequest, "categoria"},
		{"malformed json", http.MethodPost, "/menu-items", `{"nome":`, http.StatusBadRequest, ""},
		{"unknown id", http.MethodGet, "/menu-items/999", "", http.StatusNotFound, ""},
		{"non numeric id", http.MethodGet, "/menu-items/abc", "", http.StatusNotFound, ""},
		{"update unknown id", http.MethodPut, "/menu-items/999", `{"nome":"X","preco":1,"categoria":"PIZZA"}`, http.StatusNotFound, ""},
		{"delete unknown id", http.MethodDelete, "/menu-items/999", "", http.StatusNotFound, ""},
		{"bad page", http.MethodGet, "/menu-items?page=-1", "", http.StatusBadRequest, "page"},
		{"bad size", http.MethodGet, "/menu-items?size=0", "", http.StatusBadRequest, "size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(body))

			var envelope web.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &envelope))
			assert.NotEmpty(t, envelope.Error)
			assert.NotEmpty(t, envelope.RequestID)
			assert.Equal(t, tt.wantField, envelope.Field)
		})
	}
}

func TestHandler_WrongContentType(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/menu-items", "text/plain", strings.NewReader(`{"nome":"X"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestHandler_Pagination(t *testing.T) {
	srv := newTestServer(t)

	for i := 1; i <= 5; i++ {
		resp, body := do(t, http.MethodPost, srv.URL+"/menu-items",
			fmt.Sprintf(`{"nome":"Item %d","preco":10.00,"categoria":"LANCHE"}`, i))
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	var page models.Page[models.MenuItem]

	resp, body := do(t, http.MethodGet, srv.URL+"/menu-items?page=0&size=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Content, 3)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.First)
	assert.False(t, page.Last)
	assert.Equal(t, "Item 1", page.Content[0].Name)

	resp, body = do(t, http.MethodGet, srv.URL+"/menu-items?page=1&size=3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Content, 2)
	assert.False(t, page.First)
	assert.True(t, page.Last)

	resp, body = do(t, http.MethodGet, srv.URL+"/cardapio/itens", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 20, page.Size)
	assert.Len(t, page.Content, 5)
}

func TestHandler_PageFarPastTheEnd(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/menu-items", `{"nome":"Pizza","preco":30.00,"categoria":"PIZZA"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = do(t, http.MethodGet, srv.URL+"/menu-items?page=4611686018427387904&size=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var page models.Page[models.MenuItem]
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Content)
	assert.True(t, page.Empty)
	assert.Equal(t, int64(1), page.TotalElements)

	resp, _ = do(t, http.MethodGet, srv.URL+"/menu-items?page=99999999999999999999", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
