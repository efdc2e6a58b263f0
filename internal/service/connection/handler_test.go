package connection_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/recoveryconnect/match-backend/internal/app"
	"github.com/recoveryconnect/match-backend/internal/cache"
	"github.com/recoveryconnect/match-backend/internal/config"
	"github.com/recoveryconnect/match-backend/internal/db"
	"github.com/recoveryconnect/match-backend/internal/server"
	"github.com/recoveryconnect/match-backend/internal/service/connection"
)

// setupRouter wires a full HTTP router around an isolated DB + Redis,
// mirroring the production registrar path.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbName := fmt.Sprintf("file:%s_http?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(
		&db.ConnectionRequest{}, &db.MatchGroup{}, &db.PeerSupportMatch{},
	))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.App.ENV = "test"
	cfg.Redis.Addr = mr.Addr()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, cache.NewRedisCache(cfg), log)

	return server.NewRouter(cfg, connection.NewRegistrar(appCtx))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeRequest(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Request map[string]any `json:"request"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Request)
	return resp.Request
}

func TestHTTPCreateApproveFlow(t *testing.T) {
	router := setupRouter(t)

	createBody := gin.H{
		"requester_type": "applicant",
		"requester_id":   "A1",
		"recipient_type": "peer_support",
		"recipient_id":   "P1",
		"request_type":   "peer_support",
		"message":        "Looking for a peer specialist.",
	}

	w := doJSON(t, router, http.MethodPost, "/api/requests", createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeRequest(t, w)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	// duplicate pair → 409
	w = doJSON(t, router, http.MethodPost, "/api/requests", createBody)
	assert.Equal(t, http.StatusConflict, w.Code)

	// pending count for the recipient
	w = doJSON(t, router, http.MethodGet, "/api/requests/pending/count?profile_id=P1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	// approve with the specialist's profile id hint
	w = doJSON(t, router, http.MethodPost, "/api/requests/"+id+"/approve", gin.H{
		"profile_ids": gin.H{"peer_support": "P1"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decodeRequest(t, w)
	assert.Equal(t, "accepted", approved["status"])

	// listing shows the accepted request for either participant
	w = doJSON(t, router, http.MethodGet, "/api/requests?profile_id=A1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)
}

func TestHTTPErrorMapping(t *testing.T) {
	router := setupRouter(t)

	// unknown id → 404
	w := doJSON(t, router, http.MethodPost, "/api/requests/nope/reject", gin.H{"reason": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// missing required binding field → 400
	w = doJSON(t, router, http.MethodPost, "/api/requests", gin.H{"requester_id": "A1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// invalid role value → 400
	w = doJSON(t, router, http.MethodPost, "/api/requests", gin.H{
		"requester_type": "alien",
		"requester_id":   "A1",
		"recipient_type": "applicant",
		"recipient_id":   "B1",
		"request_type":   "roommate",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing profile_id query → 400
	w = doJSON(t, router, http.MethodGet, "/api/requests", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTPHealthz(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
