package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"time"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-service/internal/archive"
	"relay-service/internal/mocks"
	"relay-service/internal/models"
)

func TestDebugAncestryRoute(t *testing.T) {
	store := mocks.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, models.Transmission{ID: "a", ReceiverMsgID: 1, ReceiverChatID: 2, ReceiverBotID: 3}))
	replacement := models.Transmission{ID: "b", OriginalTransmissionID: ptr("a"), ReceiverMsgID: 5, ReceiverChatID: 2, ReceiverBotID: 3}
	require.NoError(t, store.Supersede(ctx, "a", replacement))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterDebugRoutes(router, store, archive.Noop{}, true)

	req := httptest.NewRequest(http.MethodGet, "/debug/transmissions/b/ancestry", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Chain []models.Transmission `json:"chain"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chain, 2)
	assert.Equal(t, "b", resp.Chain[0].ID)
	assert.Equal(t, "a", resp.Chain[1].ID)
	assert.Equal(t, models.StatusSuperseded, resp.Chain[1].Status)
}

func TestDebugAncestryUnknownTransmission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterDebugRoutes(router, mocks.NewMemoryStore(), archive.Noop{}, true)

	req := httptest.NewRequest(http.MethodGet, "/debug/transmissions/zzz/ancestry", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugRoutesDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterDebugRoutes(router, mocks.NewMemoryStore(), archive.Noop{}, false)

	req := httptest.NewRequest(http.MethodGet, "/debug/transmissions/a/ancestry", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugAncestryAfterRetention(t *testing.T) {
	store := mocks.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, models.Transmission{ID: "a", ReceiverMsgID: 1, ReceiverChatID: 2, ReceiverBotID: 3}))
	require.NoError(t, store.Supersede(ctx, "a", models.Transmission{ID: "b", OriginalTransmissionID: ptr("a"), ReceiverMsgID: 5, ReceiverChatID: 2, ReceiverBotID: 3}))
	_, err := store.PruneSuperseded(ctx, time.Now().AddDate(100, 0, 0))
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterDebugRoutes(router, store, archive.Noop{}, true)

	req := httptest.NewRequest(http.MethodGet, "/debug/transmissions/b/ancestry", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Chain     []models.Transmission `json:"chain"`
		Truncated bool                  `json:"truncated"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chain, 1)
	assert.Equal(t, "b", resp.Chain[0].ID)
	assert.True(t, resp.Truncated)
}

func TestDebugPayloadRoute(t *testing.T) {
	payloads, err := archive.Open(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)
	defer payloads.Close()
	ref, err := payloads.Put(context.Background(), archive.UpdateKey("audit/upd1_x"), map[string]int{"update_id": 1})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterDebugRoutes(router, mocks.NewMemoryStore(), payloads, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/payloads/"+ref, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"update_id":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/payloads/audit/missing.json", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func ptr(s string) *string { return &s }
