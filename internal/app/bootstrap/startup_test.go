package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	userstore "github.com/felix-ong/volunteer-board/internal/app/store/users"
	"github.com/felix-ong/volunteer-board/internal/app/store/memory"
	"github.com/felix-ong/volunteer-board/internal/app/system/auditlog"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"github.com/felix-ong/volunteer-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func memoryConfig() AppConfig {
	return AppConfig{
		StoreBackend:       backendMemory,
		JWTSecret:          "test-secret-0123456789",
		JWTTTL:             time.Hour,
		CORSAllowedOrigins: []string{"*"},
		DefaultPageLimit:   10,
		LoginRatePerMinute: 100,
		AuditLog:           auditlog.ModeLog,
	}
}

func TestValidateConfig(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}

	require.NoError(t, ValidateConfig(core, memoryConfig(), testLogger()))

	mongoCfg := memoryConfig()
	mongoCfg.StoreBackend = backendMongo
	mongoCfg.MongoURI = "mongodb://localhost:27017"
	mongoCfg.MongoDatabase = "volunteer_board"
	require.NoError(t, ValidateConfig(core, mongoCfg, testLogger()))

	tests := []struct {
		name string
		edit func(*AppConfig)
	}{
		{"unknown backend", func(c *AppConfig) { c.StoreBackend = "postgres" }},
		{"bad mongo uri", func(c *AppConfig) { *c = mongoCfg; c.MongoURI = "" }},
		{"no database", func(c *AppConfig) { *c = mongoCfg; c.MongoDatabase = "" }},
		{"short secret", func(c *AppConfig) { c.JWTSecret = "short" }},
		{"page limit too big", func(c *AppConfig) { c.DefaultPageLimit = 500 }},
		{"bad audit mode", func(c *AppConfig) { c.AuditLog = "sometimes" }},
		{"memory admin without password", func(c *AppConfig) { c.AdminEmail = "root@example.com" }},
		{"memory admin short password", func(c *AppConfig) { c.AdminEmail = "root@example.com"; c.AdminPassword = "short" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := memoryConfig()
			tc.edit(&cfg)
			assert.Error(t, ValidateConfig(core, cfg, testLogger()))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, splitList(" http://a.test, ,http://b.test "))
	assert.Nil(t, splitList(""))
}

func TestEnsureAdmin_Memory(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	u, err := users.Create(ctx, models.User{Name: "Root", Email: "root@example.com", Role: models.RoleOrganization})
	require.NoError(t, err)

	require.NoError(t, ensureAdmin(ctx, users, nil, "ROOT@example.com", testLogger()))
	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	// idempotent
	require.NoError(t, ensureAdmin(ctx, users, nil, "root@example.com", testLogger()))

	// unknown account is only a warning
	assert.NoError(t, ensureAdmin(ctx, users, nil, "nobody@example.com", testLogger()))
}

func TestStartup_MemorySeedsAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	cfg.AdminEmail = "Root@Example.com"
	cfg.AdminPassword = "correct-horse"
	require.NoError(t, ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, testLogger()))

	users := memory.NewUserStore()
	deps := DBDeps{Users: users, Audit: memory.NewAuditStore()}
	require.NoError(t, Startup(ctx, nil, cfg, deps, testLogger()))

	u, err := users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.NoError(t, auth.NewPasswordServiceForTest().Verify(u.PasswordHash, "correct-horse"))

	// a second start keeps the existing account
	require.NoError(t, Startup(ctx, nil, cfg, deps, testLogger()))
	again, err := users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
}

func TestSeedAdmin_KeepsExistingAccount(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserStore()
	u, err := users.Create(ctx, models.User{Name: "Root", Email: "root@example.com", PasswordHash: "kept", Role: models.RoleOrganization})
	require.NoError(t, err)

	require.NoError(t, seedAdmin(ctx, users, auth.NewPasswordServiceForTest(), "root@example.com", "another-pass", testLogger()))
	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.PasswordHash)
	assert.Equal(t, models.RoleOrganization, got.Role)
}

func TestEnsureAdmin_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	u, err := store.Create(ctx, models.User{Name: "Existing User", Email: "existing@test.com", Role: models.RoleStudent})
	require.NoError(t, err)

	require.NoError(t, ensureAdmin(ctx, store, nil, "existing@test.com", testLogger()))

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

// TestBuildHandler_EndToEnd drives the full router on the memory backend:
// sign up, post, moderate, search and register.
func TestBuildHandler_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	deps, err := ConnectDB(ctx, &config.CoreConfig{Env: "dev"}, cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Shutdown(ctx, nil, cfg, deps, testLogger()) })

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, testLogger())
	require.NoError(t, err)

	call := func(method, path, token string, body any) *httptest.ResponseRecorder {
		t.Helper()
		var rdr *strings.Reader
		if body != nil {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			rdr = strings.NewReader(string(b))
		} else {
			rdr = strings.NewReader("")
		}
		req := httptest.NewRequest(method, path, rdr)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
	signup := func(name, email, role string) string {
		t.Helper()
		rec := call(http.MethodPost, "/api/user/signup", "", map[string]string{
			"name": name, "email": email, "password": "password123", "role": role,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var out struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out.Token
	}

	rec := call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	orgToken := signup("Green Earth", "org@example.com", "organization")
	studentToken := signup("Sam", "sam@example.com", "student")
	signup("Ada Admin", "admin@example.com", "student")
	require.NoError(t, ensureAdmin(ctx, deps.Users, nil, "admin@example.com", testLogger()))
	// role is read from the token, so log in again after promotion
	rec = call(http.MethodPost, "/api/user/login", "", map[string]string{"email": "admin@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	adminToken := login.Token

	rec = call(http.MethodPost, "/api/jobs", orgToken, map[string]any{
		"title": "Beach Cleanup", "purpose": "Collect litter", "categories": []string{"Environment"}, "hours": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var job struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))

	rec = call(http.MethodGet, "/api/jobs?search=beach", "", nil)
	assert.Contains(t, rec.Body.String(), `"total":0`)

	rec = call(http.MethodPatch, "/api/jobs/"+job.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(http.MethodGet, "/api/jobs?search=beach", "", nil)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = call(http.MethodPost, "/api/jobs/"+job.ID+"/registrations", studentToken, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = call(http.MethodPost, "/api/jobs/"+job.ID+"/registrations", studentToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(http.MethodGet, "/api/user/me/jobs", studentToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), job.ID)

	rec = call(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "volunteerboard_jobs_registrations_total")
}
