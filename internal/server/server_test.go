package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-forge/internal/config"
	"github.com/jonathan/resume-forge/internal/db"
	"github.com/jonathan/resume-forge/internal/llm"
	"github.com/jonathan/resume-forge/internal/pipeline"
	"github.com/jonathan/resume-forge/internal/server/ratelimit"
	"github.com/jonathan/resume-forge/internal/storage"
	"github.com/jonathan/resume-forge/internal/types"
)

const testUserID = "user_2abc"

const skillsTemplate = `
document:
  start: START
  end: END
sections:
  - order: 1
    type: skills
    header: SKILLS
    loop: __SKILL__
    after-each: ","
`

// mockStore is an in-memory Store with the same not-found and last-write-wins behavior as
// the PostgreSQL store.
type mockStore struct {
	mu          sync.Mutex
	users       map[string]*types.User
	profiles    map[uuid.UUID]*types.Profile
	templates   map[uuid.UUID]*types.Template
	generations map[uuid.UUID]*types.Generation
	pingErr     error
}

func newMockStore() *mockStore {
	return &mockStore{
		users:       make(map[string]*types.User),
		profiles:    make(map[uuid.UUID]*types.Profile),
		templates:   make(map[uuid.UUID]*types.Template),
		generations: make(map[uuid.UUID]*types.Generation),
	}
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

func (m *mockStore) GetUser(_ context.Context, id string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockStore) FindOrCreateUser(_ context.Context, user *types.User) (*types.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[user.ID]; ok {
		cp := *u
		return &cp, false, nil
	}
	stored := *user
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.users[user.ID] = &stored
	cp := stored
	return &cp, true, nil
}

// requireUser mirrors the users foreign key. The caller holds m.mu.
func (m *mockStore) requireUser(userID string) error {
	if _, ok := m.users[userID]; !ok {
		return fmt.Errorf("insert violates foreign key: user %q does not exist", userID)
	}
	return nil
}

func (m *mockStore) IncrementGenerations(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.GenerationsUsed++
		return nil
	}
	return db.ErrNotFound
}

func (m *mockStore) SaveProfile(_ context.Context, p *types.Profile) (*types.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireUser(p.UserID); err != nil {
		return nil, err
	}
	stored := *p
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}
	stored.UpdatedAt = stored.UpdatedAt.UTC().Truncate(time.Microsecond)

	if existing, ok := m.profiles[stored.ID]; ok {
		if existing.UserID != stored.UserID {
			return nil, db.ErrNotFound
		}
		if !stored.NewerThan(existing) {
			return nil, db.ErrStaleWrite
		}
	}
	m.profiles[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (m *mockStore) GetProfile(_ context.Context, userID string, id uuid.UUID) (*types.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok && p.UserID == userID {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *mockStore) ListProfiles(_ context.Context, userID string) ([]types.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Profile
	for _, p := range m.profiles {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockStore) DeleteProfile(_ context.Context, userID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok && p.UserID == userID {
		delete(m.profiles, id)
		return nil
	}
	return db.ErrNotFound
}

func (m *mockStore) CreateTemplate(_ context.Context, t *types.Template) (*types.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.UserID != "" {
		if err := m.requireUser(t.UserID); err != nil {
			return nil, err
		}
	}
	stored := *t
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	m.templates[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (m *mockStore) GetTemplate(_ context.Context, userID string, id uuid.UUID) (*types.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.templates[id]; ok && (t.UserID == "" || t.UserID == userID) {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *mockStore) ListTemplates(_ context.Context, userID string) ([]types.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Template
	for _, t := range m.templates {
		if t.UserID == "" || t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].UserID == "") != (out[j].UserID == "") {
			return out[i].UserID == ""
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *mockStore) CreateGeneration(_ context.Context, g *types.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireUser(g.UserID); err != nil {
		return err
	}
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	cp := *g
	m.generations[g.ID] = &cp
	return nil
}

func (m *mockStore) UpdateGeneration(_ context.Context, g *types.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.generations[g.ID]; !ok {
		return db.ErrNotFound
	}
	cp := *g
	m.generations[g.ID] = &cp
	return nil
}

func (m *mockStore) GetGeneration(_ context.Context, userID string, id uuid.UUID) (*types.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.generations[id]; ok && g.UserID == userID {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (m *mockStore) ListGenerations(_ context.Context, userID string, _ int) ([]types.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Generation
	for _, g := range m.generations {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteGeneration(_ context.Context, userID string, id uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.generations[id]; ok && g.UserID == userID {
		delete(m.generations, id)
		return g.PDFKey, nil
	}
	return "", db.ErrNotFound
}

func (m *mockStore) seedTemplate(userID, name, source string) *types.Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &types.Template{ID: uuid.New(), UserID: userID, Name: name, Source: source, CreatedAt: time.Now()}
	m.templates[t.ID] = t
	return t
}

type fakeCompiler struct {
	err error
}

func (c *fakeCompiler) Compile(_ context.Context, document string) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return []byte("%PDF-1.5\n" + document), nil
}

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier)
}

func (f *fakeLLM) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }

func (f *fakeLLM) Close() error { return nil }

type testEnv struct {
	server   *Server
	handler  http.Handler
	store    *mockStore
	objects  *storage.MemoryStore
	compiler *fakeCompiler
	llm      *fakeLLM
	jwt      *JWTService
	hook     *test.Hook
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	store := newMockStore()
	objects := storage.NewMemoryStore()
	compiler := &fakeCompiler{}
	model := &fakeLLM{}
	jwtService := NewJWTService(&config.JWTConfig{Secret: "test-secret", Issuer: "resume-forge", ExpirationHours: 1})

	limiter := ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	t.Cleanup(limiter.Stop)

	s, err := New(Config{
		Store: store,
		JWT:   jwtService,
		Generator: &pipeline.Generator{
			Store:    store,
			Compiler: compiler,
			Objects:  objects,
			Logger:   logger,
		},
		Objects: objects,
		LLM:     model,
		Limiter: limiter,
		Logger:  logger,
	})
	require.NoError(t, err)

	token, err := jwtService.GenerateToken(testUserID, "jane@example.com")
	require.NoError(t, err)

	return &testEnv{
		server:   s,
		handler:  s.Handler(),
		store:    store,
		objects:  objects,
		compiler: compiler,
		llm:      model,
		jwt:      jwtService,
		hook:     hook,
		token:    token,
	}
}

// do sends an authenticated request with body encoded as JSON (or sent raw when it is a
// string).
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.doAs(t, e.token, method, path, body)
}

func (e *testEnv) doAs(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresStoreAndJWT(t *testing.T) {
	_, err := New(Config{JWT: NewJWTService(&config.JWTConfig{Secret: "s", ExpirationHours: 1})})
	assert.Error(t, err)

	_, err = New(Config{Store: newMockStore()})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.doAs(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])

	env.store.pingErr = errors.New("connection refused")
	w = env.doAs(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/templates"},
		{http.MethodPost, "/render"},
		{http.MethodGet, "/generations"},
		{http.MethodGet, "/profiles"},
		{http.MethodGet, "/users/me"},
	} {
		w := env.doAs(t, "", route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}

	w := env.doAs(t, "not-a-jwt", http.MethodGet, "/templates", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	w := env.doAs(t, "", http.MethodOptions, "/generations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRequestLogging(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/templates", nil)

	var found bool
	for _, entry := range env.hook.AllEntries() {
		if entry.Message == "request completed" {
			found = true
			assert.Equal(t, "/templates", entry.Data["path"])
			assert.Equal(t, http.StatusOK, entry.Data["status"])
		}
	}
	assert.True(t, found)
}

func TestRateLimitResponse(t *testing.T) {
	env := newTestEnv(t)
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
	})
	t.Cleanup(limiter.Stop)
	env.server.rateLimiter = limiter
	env.handler = env.server.Handler()

	w := env.do(t, http.MethodGet, "/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = env.do(t, http.MethodGet, "/templates", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody[map[string]any](t, w)["error"])
}
