package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/caasmo/accounts/auth"
	"github.com/caasmo/accounts/cache/ristretto"
	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/crypto"
	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/db/zombiezen"
	"github.com/caasmo/accounts/otp"
	"github.com/caasmo/accounts/router/httprouter"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// MockAuth implements the Authenticator interface for testing
type MockAuth struct {
	AuthenticateFunc func(r *http.Request) (*db.User, jsonResponse, error)
}

func (m *MockAuth) Authenticate(r *http.Request) (*db.User, jsonResponse, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(r)
	}
	return nil, errorNoAuthHeader, errAuth
}

// MockValidator implements the Validator interface for testing
type MockValidator struct {
	ContentTypeFunc func(r *http.Request, allowedType string) (jsonResponse, error)
}

func (m *MockValidator) ContentType(r *http.Request, allowedType string) (jsonResponse, error) {
	return m.ContentTypeFunc(r, allowedType)
}

func acceptAll(r *http.Request, allowedType string) (jsonResponse, error) {
	return jsonResponse{}, nil
}

// memCache is a synchronous cache.Cache for tests.
type memCache struct {
	mu    sync.Mutex
	items map[string]*db.User
	dels  []string
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string]*db.User)}
}

func (c *memCache) Get(key string) (*db.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.items[key]
	return u, ok
}

func (c *memCache) Set(key string, value *db.User, cost int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return true
}

func (c *memCache) SetWithTTL(key string, value *db.User, cost int64, ttl time.Duration) bool {
	return c.Set(key, value, cost)
}

func (c *memCache) Del(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	c.dels = append(c.dels, key)
}

// memStorage is an in-memory storage.Storage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *memStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

func (s *memStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *memStorage) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type recordingDispatcher struct {
	mu    sync.Mutex
	codes map[string][]string
}

func (d *recordingDispatcher) SendOtp(ctx context.Context, email, code string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.codes == nil {
		d.codes = make(map[string][]string)
	}
	d.codes[email] = append(d.codes[email], code)
	return nil
}

func (d *recordingDispatcher) last(email string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	codes := d.codes[email]
	if len(codes) == 0 {
		return ""
	}
	return codes[len(codes)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// testApp is an App over the in-memory sqlite store with real auth flows,
// routed like production.
type testApp struct {
	app        *App
	handler    http.Handler
	store      *zombiezen.Db
	hasher     *crypto.Hasher
	tokens     *auth.Tokens
	clock      *fakeClock
	dispatcher *recordingDispatcher
	storage    *memStorage
	logs       *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store, err := zombiezen.Open(context.Background(), "file::memory:", 1)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hasher, err := crypto.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := auth.NewTokens(testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	userCache, err := ristretto.New[*db.User]("small")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(userCache.Close)

	cfg := config.NewDefaultConfig()
	cfg.Jwt.AuthSecret = testSecret
	cfg.Metrics.Enabled = true

	ta := &testApp{
		store:      store,
		hasher:     hasher,
		tokens:     tokens,
		clock:      &fakeClock{t: time.Now().UTC()},
		dispatcher: &recordingDispatcher{},
		storage:    newMemStorage(),
		logs:       &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(ta.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rt := httprouter.New()
	app, err := NewApp(
		WithDbApp(store),
		WithHasher(hasher),
		WithCache(userCache),
		WithConfigProvider(config.NewProvider(cfg)),
		WithLogger(logger),
		WithRouter(rt),
		WithParamGeter(httprouter.NewParamGeter()),
		WithStorage(ta.storage),
		WithAuthenticator(NewDefaultAuthenticator(store, tokens, userCache, time.Minute, logger)),
	)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	var seq atomic.Int64
	issuer := otp.NewIssuer(store, hasher,
		otp.WithNow(ta.clock.Now),
		otp.WithGenerator(func() (string, error) {
			return fmt.Sprintf("%06d", 730000+seq.Add(1)), nil
		}),
	)
	svc, err := auth.NewService(store, hasher, issuer, tokens, ta.dispatcher,
		auth.WithLogger(logger),
		auth.WithUserChanged(app.EvictUser),
	)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	app.SetAuthService(svc)

	e := cfg.Endpoints
	routes := []struct {
		endpoint string
		handler  http.Handler
	}{
		{e.Register, http.HandlerFunc(app.RegisterHandler)},
		{e.Login, http.HandlerFunc(app.LoginHandler)},
		{e.ForgotPassword, http.HandlerFunc(app.ForgotPasswordHandler)},
		{e.ResetPassword, http.HandlerFunc(app.ResetPasswordHandler)},
		{e.VerifyOtp, http.HandlerFunc(app.VerifyOtpHandler)},
		{e.Profile, app.RequireAuth(http.HandlerFunc(app.ProfileHandler))},
		{e.UpdateProfile, app.RequireAuth(http.HandlerFunc(app.UpdateProfileHandler))},
		{e.UploadAvatar, app.RequireAuth(http.HandlerFunc(app.UploadAvatarHandler))},
		{e.CreateUser, app.RequireAdmin(http.HandlerFunc(app.CreateUserHandler))},
		{e.ListUsers, app.RequireAdmin(http.HandlerFunc(app.ListUsersHandler))},
		{e.GetUser, app.RequireAdmin(http.HandlerFunc(app.GetUserHandler))},
		{e.UpdateUser, app.RequireAdmin(http.HandlerFunc(app.UpdateUserHandler))},
		{e.DeleteUser, app.RequireAdmin(http.HandlerFunc(app.DeleteUserHandler))},
	}
	for _, r := range routes {
		method, path := config.Split(r.endpoint)
		rt.Handle(method, path, r.handler)
	}
	rt.NotFound(http.HandlerFunc(app.NotFoundHandler))

	ta.app = app
	ta.handler = rt
	return ta
}

// createUser inserts a user directly in the store.
func (ta *testApp) createUser(t *testing.T, email, password string, role db.Role) *db.User {
	t.Helper()
	hash, err := ta.hasher.Hash(password)
	if err != nil {
		t.Fatal(err)
	}
	u, err := ta.store.CreateUser(context.Background(), db.User{Name: "Test", Email: email, Password: hash, Role: role})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

// token returns a valid session token for userID.
func (ta *testApp) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := ta.tokens.Issue(userID)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
