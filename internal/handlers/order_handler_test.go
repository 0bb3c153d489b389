package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/angkor-pos/internal/config"
	"github.com/example/angkor-pos/internal/database"
	"github.com/example/angkor-pos/internal/handlers"
	"github.com/example/angkor-pos/internal/routes"
)

// newTestApp wires the full HTTP surface over an in-memory database and
// registers one admin account, returning its bearer token.
func newTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
		ExchangeRate: 4100,
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Register(app, db, cfg)

	status, body := request(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "Sokha",
		"phone":    "012000111",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	return app, token
}

func request(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func TestCreateOrderEndpoint(t *testing.T) {
	app, token := newTestApp(t)

	status, body := request(t, app, http.MethodPost, "/api/orders/", token, fiber.Map{
		"customer_name": "Dara",
		"items": []fiber.Map{
			{"name": "Amok Trey", "quantity": 2, "unit_price": 15000},
			{"name": "Beef Lok Lak", "quantity": 1, "unit_price": 20000},
		},
		"discount_percent": 10,
	})

	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	bills, ok := data["bills"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 45000, bills["total_after_discount"], 1e-9)
	assert.InDelta(t, 10.98, bills["total_after_discount_usd"], 1e-9)
	assert.Equal(t, "Sokha", data["staff_name"], "creating staff is stamped onto the order")
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := request(t, app, http.MethodPost, "/api/orders/", "", fiber.Map{
		"items": []fiber.Map{{"name": "Amok", "quantity": 1, "unit_price": 15000}},
	})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestCreateOrderValidationEnvelope(t *testing.T) {
	app, token := newTestApp(t)

	status, body := request(t, app, http.MethodPost, "/api/orders/", token, fiber.Map{
		"customer_name": "Dara",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "item")
}

func TestGetUnknownOrder(t *testing.T) {
	app, token := newTestApp(t)

	status, body := request(t, app, http.MethodGet,
		"/api/orders/6b1e8f1a-0000-4000-8000-000000000000", token, nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestDuplicateTableNumberConflict(t *testing.T) {
	app, token := newTestApp(t)

	status, _ := request(t, app, http.MethodPost, "/api/tables/", token, fiber.Map{
		"table_number": 5, "seats": 4,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := request(t, app, http.MethodPost, "/api/tables/", token, fiber.Map{
		"table_number": 5, "seats": 2,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])
}

func TestAdminRoutesRejectStaff(t *testing.T) {
	app, adminToken := newTestApp(t)

	// A second account registers as plain staff.
	status, body := request(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "Chan",
		"phone":    "012000222",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status)
	staffToken, _ := body["token"].(string)
	require.NotEmpty(t, staffToken)

	status, _ = request(t, app, http.MethodGet, "/api/dashboard", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = request(t, app, http.MethodGet, "/api/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}

func TestPayCashEndpoint(t *testing.T) {
	app, token := newTestApp(t)

	status, body := request(t, app, http.MethodPost, "/api/orders/", token, fiber.Map{
		"customer_name": "Dara",
		"items":         []fiber.Map{{"name": "Banquet", "quantity": 1, "unit_price": 45050}},
	})
	require.Equal(t, http.StatusCreated, status)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	orderID, _ := data["id"].(string)
	require.NotEmpty(t, orderID)

	status, body = request(t, app, http.MethodPost, "/api/orders/"+orderID+"/pay-cash", token, fiber.Map{
		"cash_received": 50000,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	data, ok = body["data"].(map[string]any)
	require.True(t, ok)
	payment, ok := data["payment"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 45100, payment["amount_due"], 1e-9)
	assert.InDelta(t, 4900, payment["change_due"], 1e-9)

	order, ok := data["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "paid", order["status"])
}

func TestListOrdersEnvelope(t *testing.T) {
	app, token := newTestApp(t)

	for i := 0; i < 3; i++ {
		status, _ := request(t, app, http.MethodPost, "/api/orders/", token, fiber.Map{
			"customer_name": fmt.Sprintf("Guest %d", i+1),
			"items":         []fiber.Map{{"name": "Amok", "quantity": 1, "unit_price": 15000}},
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := request(t, app, http.MethodGet, "/api/orders/?limit=2", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.InDelta(t, 3, body["count"], 1e-9)

	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
}
