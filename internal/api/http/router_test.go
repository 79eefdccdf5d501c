package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/spec-kit/bug-tracker/internal/api/http"
	"github.com/spec-kit/bug-tracker/internal/config"
	"github.com/spec-kit/bug-tracker/internal/observability"
	"github.com/spec-kit/bug-tracker/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "bug-tracker-test", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "router-test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()
	return apihttp.NewApp(apihttp.ServerDependencies{
		Config:   cfg,
		Metrics:  observability.NewMetrics(),
		BugRepo:  repository.NewMemoryBugRepository(),
		UserRepo: repository.NewMemoryUserRepository(),
	})
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func createBug(t *testing.T, app *fiber.App, body map[string]any) map[string]any {
	t.Helper()
	status, out := doJSON(t, app, http.MethodPost, "/api/bugs", body, "")
	require.Equal(t, http.StatusCreated, status, out)
	return out["data"].(map[string]any)
}

func TestHealthAndNotFound(t *testing.T) {
	app := newTestApp(t, testConfig())

	status, out := doJSON(t, app, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"status": "UP"}, out)

	status, out = doJSON(t, app, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, map[string]any{"message": "Not found"}, out)

	status, out = doJSON(t, app, http.MethodGet, "/api/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", out["status"])
}

func TestCreateBugDefaults(t *testing.T) {
	app := newTestApp(t, testConfig())

	status, out := doJSON(t, app, http.MethodPost, "/api/bugs", map[string]any{
		"title":       "Login broken",
		"description": "Button does nothing",
		"reportedBy":  "alice",
	}, "")

	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Bug created successfully", out["message"])
	data := out["data"].(map[string]any)
	assert.Equal(t, "open", data["status"])
	assert.Equal(t, "medium", data["severity"])
	assert.Equal(t, float64(3), data["priority"])
	assert.NotEmpty(t, data["id"])
	assert.NotEmpty(t, data["createdAt"])
}

func TestCreateBugAcceptsStringPriority(t *testing.T) {
	app := newTestApp(t, testConfig())

	data := createBug(t, app, map[string]any{
		"title":       "Slow search",
		"description": "Search takes ten seconds",
		"reportedBy":  "bob",
		"priority":    "5",
		"severity":    "high",
	})
	assert.Equal(t, float64(5), data["priority"])
	assert.Equal(t, "high", data["severity"])
}

func TestCreateBugValidation(t *testing.T) {
	app := newTestApp(t, testConfig())

	status, out := doJSON(t, app, http.MethodPost, "/api/bugs", map[string]any{"title": "X"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Missing required fields: description, reportedBy", out["message"])

	status, out = doJSON(t, app, http.MethodPost, "/api/bugs", map[string]any{
		"title":       "X",
		"description": "short",
		"reportedBy":  "bob",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Description must be at least 10 characters", out["message"])
	assert.Equal(t, []any{"Description must be at least 10 characters"}, out["errors"])

	status, out = doJSON(t, app, http.MethodPost, "/api/bugs", `{"title":`, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid JSON payload", out["message"])

	_, out = doJSON(t, app, http.MethodGet, "/api/bugs", nil, "")
	assert.Equal(t, float64(0), out["count"])
}

func TestListBugsFiltersAndSort(t *testing.T) {
	app := newTestApp(t, testConfig())

	status, out := doJSON(t, app, http.MethodGet, "/api/bugs", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), out["count"])
	assert.Equal(t, []any{}, out["data"])

	first := createBug(t, app, map[string]any{"title": "First", "description": "First bug description", "reportedBy": "a"})
	second := createBug(t, app, map[string]any{"title": "Second", "description": "Second bug description", "reportedBy": "b", "status": "closed", "priority": 1})

	_, out = doJSON(t, app, http.MethodGet, "/api/bugs", nil, "")
	assert.Equal(t, float64(2), out["count"])
	items := out["data"].([]any)
	assert.Equal(t, first["id"], items[0].(map[string]any)["id"])

	_, out = doJSON(t, app, http.MethodGet, "/api/bugs?sortBy=recent", nil, "")
	items = out["data"].([]any)
	assert.Equal(t, second["id"], items[0].(map[string]any)["id"])

	_, out = doJSON(t, app, http.MethodGet, "/api/bugs?status=closed", nil, "")
	assert.Equal(t, float64(1), out["count"])

	_, out = doJSON(t, app, http.MethodGet, "/api/bugs?priority=3", nil, "")
	assert.Equal(t, float64(1), out["count"])
	assert.Equal(t, first["id"], out["data"].([]any)[0].(map[string]any)["id"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/bugs?priority=9", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetBug(t *testing.T) {
	app := newTestApp(t, testConfig())
	created := createBug(t, app, map[string]any{"title": "Get me", "description": "Fetch this one by id", "reportedBy": "c"})

	status, out := doJSON(t, app, http.MethodGet, "/api/bugs/"+created["id"].(string), nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, created, out["data"])

	status, out = doJSON(t, app, http.MethodGet, "/api/bugs/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid bug ID format", out["message"])

	status, out = doJSON(t, app, http.MethodGet, "/api/bugs/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Bug not found", out["message"])
}

func TestBugRoutesAcceptAlternateIDSpellings(t *testing.T) {
	app := newTestApp(t, testConfig())
	created := createBug(t, app, map[string]any{"title": "Any case", "description": "Lookup ignores id spelling", "reportedBy": "c"})
	id := created["id"].(string)

	status, out := doJSON(t, app, http.MethodGet, "/api/bugs/"+strings.ToUpper(id), nil, "")
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, created, out["data"])

	status, out = doJSON(t, app, http.MethodPut, "/api/bugs/urn:uuid:"+id, map[string]any{"status": "in-progress"}, "")
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, id, out["data"].(map[string]any)["id"])
	assert.Equal(t, "in-progress", out["data"].(map[string]any)["status"])

	status, out = doJSON(t, app, http.MethodDelete, "/api/bugs/"+strings.ToUpper(id), nil, "")
	require.Equal(t, http.StatusOK, status, out)

	status, _ = doJSON(t, app, http.MethodGet, "/api/bugs/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateBugPartial(t *testing.T) {
	app := newTestApp(t, testConfig())
	created := createBug(t, app, map[string]any{"title": "Broken link", "description": "Footer link returns 404", "reportedBy": "d"})
	id := created["id"].(string)

	status, out := doJSON(t, app, http.MethodPut, "/api/bugs/"+id, map[string]any{"status": "closed"}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bug updated successfully", out["message"])
	data := out["data"].(map[string]any)
	assert.Equal(t, "closed", data["status"])
	assert.Equal(t, "Broken link", data["title"])
	assert.Equal(t, created["createdAt"], data["createdAt"])

	status, out = doJSON(t, app, http.MethodPut, "/api/bugs/"+id, map[string]any{"severity": "critical"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Severity must be one of: low, medium, high", out["message"])

	status, _ = doJSON(t, app, http.MethodPut, "/api/bugs/"+uuid.NewString(), map[string]any{"title": "New"}, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodPut, "/api/bugs/bad-id", map[string]any{"title": "New"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeleteBugTwice(t *testing.T) {
	app := newTestApp(t, testConfig())
	created := createBug(t, app, map[string]any{"title": "Delete me", "description": "Removed permanently", "reportedBy": "e"})
	path := "/api/bugs/" + created["id"].(string)

	status, out := doJSON(t, app, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"success": true, "message": "Bug deleted successfully"}, out)

	status, _ = doJSON(t, app, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t, testConfig())

	status, out := doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]any{"email": "a@b.com"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please provide all fields", out["message"])

	status, out = doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Ann", "email": "not-an-email", "password": "secret12",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please provide a valid email", out["message"])

	status, out = doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Ann", "email": "ann@example.com", "password": "secret12",
	}, "")
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, out["token"])
	assert.Equal(t, "ann@example.com", out["user"].(map[string]any)["email"])

	status, out = doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Ann", "email": "ann@example.com", "password": "secret12",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", out["message"])

	status, out = doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Bo", "email": "bo@example.com", "password": strings.Repeat("p", 73),
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password cannot exceed 72 bytes", out["message"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Cy", "email": "cy@example.com", "password": "abc",
	}, "")
	assert.Equal(t, http.StatusCreated, status)

	status, out = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]any{"email": "ann@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please provide email and password", out["message"])

	status, out = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]any{"email": "ann@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", out["message"])

	status, out = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]any{"email": "ann@example.com", "password": "secret12"}, "")
	require.Equal(t, http.StatusOK, status)
	token := out["token"].(string)

	status, out = doJSON(t, app, http.MethodGet, "/api/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ann", out["user"].(map[string]any)["name"])

	status, out = doJSON(t, app, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", out["message"])

	status, out = doJSON(t, app, http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", out["message"])
}

func TestProtectedBugMutations(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.RequireForBugMutations = true
	app := newTestApp(t, cfg)
	body := map[string]any{"title": "Guarded", "description": "Requires a bearer token", "reportedBy": "f"}

	status, out := doJSON(t, app, http.MethodPost, "/api/bugs", body, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", out["message"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/bugs", nil, "")
	assert.Equal(t, http.StatusOK, status)

	_, out = doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Gus", "email": "gus@example.com", "password": "secret12",
	}, "")
	token := out["token"].(string)

	status, _ = doJSON(t, app, http.MethodPost, "/api/bugs", body, token)
	assert.Equal(t, http.StatusCreated, status)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, testConfig())
	doJSON(t, app, http.MethodGet, "/api/bugs/abc", nil, "")

	status, out := doJSON(t, app, http.MethodGet, "/api/metrics", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, out["totalRequests"], float64(1))
	assert.NotEmpty(t, out["errors"])
}
