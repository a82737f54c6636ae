package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ev-admin-backend/config"
	"ev-admin-backend/internal/booking"
	"ev-admin-backend/internal/db"
	"ev-admin-backend/internal/model"
	"ev-admin-backend/internal/mw"
	"ev-admin-backend/internal/store"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.Migrate(gdb))

	orch := booking.NewOrchestrator(gdb, "ops@example.com", nil, nil)
	h := NewHandler(store.New(gdb), orch, time.UTC, nil)
	// Cache TTL is kept tiny so list tests never observe each other's pages.
	router := NewRouter(h, &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	})
	return router, gdb
}

func seedBookings(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	require.NoError(t, gdb.Create(&model.User{ID: 7, Name: "Lena Ortiz", Email: "lena@example.com"}).Error)
	require.NoError(t, gdb.Create(&model.Agent{ID: "RSA-1", Name: "Agent One", DeviceToken: "tok-1"}).Error)

	for i := 1; i <= 14; i++ {
		require.NoError(t, gdb.Create(&model.PortableChargerBooking{
			ID:       fmt.Sprintf("PCB%04d", i),
			UserID:   7,
			UserName: "Lena Ortiz",
			Status:   booking.StatusConfirmed,
			SlotDate: fmt.Sprintf("2025-06-%02d", i),
			SlotTime: "10:00",
			Address:  "Marina Walk 4",
		}).Error)
	}
	// Two failed records, excluded from the active view.
	for i := 15; i <= 16; i++ {
		require.NoError(t, gdb.Create(&model.PortableChargerBooking{
			ID:       fmt.Sprintf("PCB%04d", i),
			UserID:   7,
			UserName: "Lena Ortiz",
			Status:   booking.StatusPaymentFailed,
			SlotDate: fmt.Sprintf("2025-06-%02d", i),
			SlotTime: "10:00",
		}).Error)
	}
}

func doGET(t *testing.T, router *gin.Engine, url string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func doPOST(t *testing.T, router *gin.Engine, url string, payload any, actor string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(mw.ActorHeader, actor)
	}
	router.ServeHTTP(w, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func dataRows(t *testing.T, env Envelope) []any {
	t.Helper()
	if env.Data == nil {
		return nil
	}
	rows, ok := env.Data.([]any)
	require.True(t, ok, "data is not a list")
	return rows
}

func TestListBookings_Pagination(t *testing.T) {
	router, gdb := setupRouter(t)
	seedBookings(t, gdb)

	w, env := doGET(t, router, "/api/portable-charger/bookings?page_no=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Status)
	assert.Equal(t, int64(14), env.Total)
	assert.Equal(t, int64(2), env.TotalPage)
	assert.Len(t, dataRows(t, env), 10)

	_, env = doGET(t, router, "/api/portable-charger/bookings?page_no=2")
	assert.Len(t, dataRows(t, env), 4)

	// A page beyond the last returns an empty set, totals unchanged, no error.
	w, env = doGET(t, router, "/api/portable-charger/bookings?page_no=9")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Status)
	assert.Equal(t, int64(14), env.Total)
	assert.Empty(t, dataRows(t, env))
}

func TestListBookings_RequiresPageNo(t *testing.T) {
	router, gdb := setupRouter(t)
	seedBookings(t, gdb)

	w, env := doGET(t, router, "/api/portable-charger/bookings")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, env.Status)
	assert.NotEmpty(t, env.Errors)
}

func TestListBookings_FailedViewIsolatesPNR(t *testing.T) {
	router, gdb := setupRouter(t)
	seedBookings(t, gdb)

	_, env := doGET(t, router, "/api/portable-charger/bookings/failed?page_no=1")
	assert.Equal(t, int64(2), env.Total)
	for _, raw := range dataRows(t, env) {
		row := raw.(map[string]any)
		assert.Equal(t, booking.StatusPaymentFailed, row["status"])
	}
}

func TestListBookings_SearchAndDateRange(t *testing.T) {
	router, gdb := setupRouter(t)
	seedBookings(t, gdb)

	_, env := doGET(t, router, "/api/portable-charger/bookings?page_no=1&search_text=PCB0003")
	assert.Equal(t, int64(1), env.Total)

	_, env = doGET(t, router, "/api/portable-charger/bookings?page_no=1&start_date=2025-06-05&end_date=2025-06-08")
	assert.Equal(t, int64(4), env.Total)

	w, env := doGET(t, router, "/api/portable-charger/bookings?page_no=1&start_date=junk")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, env.Status)
}

func TestListBookings_RejectsUnknownSortColumn(t *testing.T) {
	router, gdb := setupRouter(t)
	seedBookings(t, gdb)

	w, env := doGET(t, router, "/api/portable-charger/bookings?page_no=1&sort_by=vehicle_no")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, env.Status)
}

func TestAssignAndCancelEndpoints(t *testing.T) {
	router, gdb := setupRouter(t)
	seedBookings(t, gdb)

	// Mutations require the forwarded identity.
	w, _ := doPOST(t, router, "/api/portable-charger/bookings/assign",
		gin.H{"booking_id": "PCB0001", "agent_id": "RSA-1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := doPOST(t, router, "/api/portable-charger/bookings/assign",
		gin.H{"booking_id": "PCB0001", "agent_id": "RSA-1"}, "ops-amira")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Status)

	// Same-agent re-assignment surfaces as a conflict naming the agent.
	w, env = doPOST(t, router, "/api/portable-charger/bookings/assign",
		gin.H{"booking_id": "PCB0001", "agent_id": "RSA-1"}, "ops-amira")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Status)
	assert.Equal(t, http.StatusConflict, env.Code)
	assert.Contains(t, env.Message, "RSA-1")

	// Cancel with a missing reason is a validation failure.
	w, env = doPOST(t, router, "/api/portable-charger/bookings/cancel",
		gin.H{"booking_id": "PCB0001", "user_id": 7}, "ops-amira")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, env.Status)

	_, env = doPOST(t, router, "/api/portable-charger/bookings/cancel",
		gin.H{"booking_id": "PCB0001", "user_id": 7, "reason": "changed mind"}, "ops-amira")
	assert.Equal(t, 1, env.Status)

	// The booking is terminal now; a second cancel reports not found.
	_, env = doPOST(t, router, "/api/portable-charger/bookings/cancel",
		gin.H{"booking_id": "PCB0001", "user_id": 7, "reason": "again"}, "ops-amira")
	assert.Equal(t, 0, env.Status)
	assert.Equal(t, "booking not found", env.Message)
}

func TestGetBookingDetail(t *testing.T) {
	router, gdb := setupRouter(t)
	seedBookings(t, gdb)

	_, env := doPOST(t, router, "/api/portable-charger/bookings/assign",
		gin.H{"booking_id": "PCB0002", "agent_id": "RSA-1"}, "ops-amira")
	require.Equal(t, 1, env.Status)

	w, env := doGET(t, router, "/api/portable-charger/bookings/PCB0002")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Status)

	detail := env.Data.(map[string]any)
	bookingRow := detail["booking"].(map[string]any)
	assert.Equal(t, "PCB0002", bookingRow["id"])
	history := detail["history"].([]any)
	assert.Len(t, history, 1) // the CNF -> A transition

	_, env = doGET(t, router, "/api/portable-charger/bookings/PCB9999")
	assert.Equal(t, 0, env.Status)
	assert.Equal(t, "booking not found", env.Message)
}

func TestUnknownService(t *testing.T) {
	router, _ := setupRouter(t)

	w, env := doGET(t, router, "/api/jetski/bookings?page_no=1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, env.Status)
}
