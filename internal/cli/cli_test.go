package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/fatih/color"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/spec-kit/bug-tracker/internal/api/http"
	"github.com/spec-kit/bug-tracker/internal/config"
	"github.com/spec-kit/bug-tracker/internal/repository"
	"github.com/spec-kit/bug-tracker/pkg/client"
)

func init() {
	color.NoColor = true
}

func startAPI(t *testing.T) string {
	t.Helper()
	app := apihttp.NewApp(apihttp.ServerDependencies{
		Config: &config.Config{
			App:  config.AppConfig{Name: "bugctl-test"},
			Auth: config.AuthConfig{JWTSecret: "cli-test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		},
		BugRepo:  repository.NewMemoryBugRepository(),
		UserRepo: repository.NewMemoryUserRepository(),
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func run(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(&out)
	root.SetArgs(append([]string{"--api-url", apiURL}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestBugsCommands(t *testing.T) {
	apiURL := startAPI(t)

	out, err := run(t, apiURL, "bugs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No bugs found")

	out, err = run(t, apiURL, "bugs", "create",
		"--title", "Login broken",
		"--description", "Button does nothing at all",
		"--reported-by", "alice",
		"--severity", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Bug created successfully")
	assert.Contains(t, out, "HIGH")

	bugs, err := client.New(apiURL).ListBugs(context.Background(), client.Filters{})
	require.NoError(t, err)
	require.Len(t, bugs, 1)
	id := bugs[0].ID

	out, err = run(t, apiURL, "bugs", "update", id, "--status", "closed")
	require.NoError(t, err)
	assert.Contains(t, out, "Closed")
	assert.Contains(t, out, "Login broken")

	out, err = run(t, apiURL, "bugs", "list", "--status", "closed")
	require.NoError(t, err)
	assert.Contains(t, out, "Bugs (1)")

	out, err = run(t, apiURL, "bugs", "get", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Button does nothing at all")

	out, err = run(t, apiURL, "bugs", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Bug deleted successfully")

	_, err = run(t, apiURL, "bugs", "get", id)
	assert.ErrorContains(t, err, "Bug not found")
}

func TestBugsCreateValidationError(t *testing.T) {
	apiURL := startAPI(t)

	_, err := run(t, apiURL, "bugs", "create", "--title", "Only a title")
	assert.ErrorContains(t, err, "Missing required fields")
}

func TestAuthCommands(t *testing.T) {
	apiURL := startAPI(t)

	out, err := run(t, apiURL, "auth", "register", "--name", "Demo", "--email", "demo@test.com", "--password", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered demo@test.com")

	out, err = run(t, apiURL, "auth", "login", "--email", "demo@test.com", "--password", "password123")
	require.NoError(t, err)
	match := regexp.MustCompile(envToken + `=(\S+)`).FindStringSubmatch(out)
	require.Len(t, match, 2)

	out, err = run(t, apiURL, "--token", match[1], "auth", "me")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo <demo@test.com>")

	_, err = run(t, apiURL, "auth", "me")
	assert.ErrorContains(t, err, "No token provided")
}
