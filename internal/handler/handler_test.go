package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"honeypot-service/internal/auth"
	"honeypot-service/internal/config"
	"honeypot-service/internal/models"
	"honeypot-service/internal/repository"
	"honeypot-service/internal/repository/memory"
	"honeypot-service/internal/service"
)

const testAdminPassword = "honeyadmin123"

type testEnv struct {
	store  *memory.AttackStore
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewAttackStore()
	logger := zap.NewNop()
	services := service.NewServiceFactory(store, nil, logger)

	authenticator, err := auth.NewAdminAuthenticator(config.AdminConfig{
		Password: testAdminPassword,
		TokenTTL: time.Minute,
	}, auth.NewMemoryTokenStore())
	require.NoError(t, err)

	honeypotHandler := NewHoneypotHandler(services.Recorder(), "/login", logger)
	adminHandler := NewAdminHandler(services.Aggregator(), services.Store(), authenticator, logger)
	router := NewRouter(honeypotHandler, adminHandler, []string{"*"}, logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{store: store, server: server}
}

func (e *testEnv) postJSON(t *testing.T, path string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (e *testEnv) getJSON(t *testing.T, path string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func (e *testEnv) submitLogin(t *testing.T, username, password, realIP string) map[string]interface{} {
	t.Helper()
	resp, body := e.postJSON(t, "/api/honeypot/login",
		models.HoneypotLoginRequest{Username: username, Password: password},
		map[string]string{"X-Real-IP": realIP},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body
}

func TestHoneypotLoginReturnsFixedDecoyResponse(t *testing.T) {
	env := newTestEnv(t)

	benign := env.submitLogin(t, "admin", "password123", "203.0.113.1")
	hostile := env.submitLogin(t, "admin' OR '1'='1", "x", "203.0.113.1")

	// Identical body regardless of classification outcome.
	for _, body := range []map[string]interface{}{benign, hostile} {
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid credentials. Please try again.", body["message"])
		assert.Equal(t, "AUTH_FAILED", body["error_code"])
	}
}

func TestHoneypotLoginRecordsClassifiedEvent(t *testing.T) {
	env := newTestEnv(t)

	env.submitLogin(t, "admin' OR '1'='1", "x", "203.0.113.5")

	events, err := env.store.Find(context.Background(), repository.EventFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, models.CategorySQLInjection, event.AttackType)
	assert.Equal(t, models.SeverityCritical, event.Severity)
	assert.NotEmpty(t, event.DetectedPatterns)
	assert.Equal(t, "203.0.113.5", event.IPAddress)
	assert.Equal(t, "/login", event.Endpoint)
	assert.Equal(t, "admin' OR '1'='1", event.UsernameAttempted)
}

func TestHoneypotLoginRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/api/honeypot/login", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatsEmptyStore(t *testing.T) {
	env := newTestEnv(t)

	var stats models.AttackStats
	resp := env.getJSON(t, "/api/attacks/stats", &stats)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, stats.TotalAttacks)
	assert.Zero(t, stats.UniqueIPs)
	assert.Empty(t, stats.AttackTypes)
	assert.Empty(t, stats.RecentAttacks)
}

func TestStatsAfterRepeatedBenignAttempts(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 30; i++ {
		env.submitLogin(t, fmt.Sprintf("user%d", i), "guess", "198.51.100.7")
	}

	var stats models.AttackStats
	env.getJSON(t, "/api/attacks/stats", &stats)

	assert.Equal(t, int64(30), stats.TotalAttacks)
	assert.Equal(t, int64(1), stats.UniqueIPs)
	assert.Equal(t, int64(30), stats.AttackTypes["brute_force"])
	assert.Len(t, stats.AttackTypes, 1)
	assert.Len(t, stats.RecentAttacks, 20)
}

func TestAttackListingPagination(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		env.submitLogin(t, fmt.Sprintf("user%d", i), "guess", "198.51.100.7")
	}

	var page models.AttackPage
	env.getJSON(t, "/api/attacks?limit=2&offset=1", &page)

	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Attacks, 2)
}

func TestLiveFeedLimit(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		env.submitLogin(t, fmt.Sprintf("user%d", i), "guess", "198.51.100.7")
	}

	var events []models.AttackEvent
	env.getJSON(t, "/api/attacks/live?limit=3", &events)
	assert.Len(t, events, 3)
}

func TestTimelineEndpointFlattensCategories(t *testing.T) {
	env := newTestEnv(t)
	env.submitLogin(t, "admin' OR '1'='1", "x", "203.0.113.5")

	var timeline []map[string]interface{}
	env.getJSON(t, "/api/attacks/timeline?days=7", &timeline)

	require.Len(t, timeline, 1)
	entry := timeline[0]
	assert.Contains(t, entry, "date")
	assert.Equal(t, float64(1), entry["total"])
	assert.Equal(t, float64(1), entry["sql_injection"])
}

func TestAdminLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.postJSON(t, "/api/admin/login", models.AdminLoginRequest{Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.postJSON(t, "/api/admin/login", models.AdminLoginRequest{Password: testAdminPassword}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
}

func TestClearAttacksRequiresAdminToken(t *testing.T) {
	env := newTestEnv(t)
	env.submitLogin(t, "user", "guess", "198.51.100.7")

	// No token: rejected.
	req, err := http.NewRequest(http.MethodDelete, env.server.URL+"/api/attacks", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Login, then clear with the bearer token.
	_, body := env.postJSON(t, "/api/admin/login", models.AdminLoginRequest{Password: testAdminPassword}, nil)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	req, err = http.NewRequest(http.MethodDelete, env.server.URL+"/api/attacks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var cleared map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cleared))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), cleared["deleted"])

	count, err := env.store.Count(context.Background(), repository.EventFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAPIBannerAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	var banner map[string]string
	resp := env.getJSON(t, "/api/", &banner)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Secure System API", banner["message"])

	missing, err := http.Get(env.server.URL + "/api/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
