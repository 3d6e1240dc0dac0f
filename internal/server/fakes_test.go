package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/career-compass/internal/config"
	"github.com/jonathan/career-compass/internal/db"
	"github.com/jonathan/career-compass/internal/llm"
	"github.com/jonathan/career-compass/internal/mail"
	"github.com/jonathan/career-compass/internal/seed"
	"github.com/jonathan/career-compass/internal/server/ratelimit"
	"github.com/jonathan/career-compass/internal/types"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

type fakeToken struct {
	accountID uuid.UUID
	expires   time.Time
	used      bool
}

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu       sync.Mutex
	now      func() time.Time
	accounts map[uuid.UUID]*db.Account
	tokens   map[string]*fakeToken
	profiles map[uuid.UUID][]byte
	jobs     []types.JobListing
	courses  []types.Course
	// failWith makes every call return this error.
	failWith error
	// createCalls counts CreateAccount calls, including failed ones.
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:      time.Now,
		accounts: make(map[uuid.UUID]*db.Account),
		tokens:   make(map[string]*fakeToken),
		profiles: make(map[uuid.UUID][]byte),
	}
}

func (f *fakeStore) byEmail(email string) *db.Account {
	email = db.NormalizeEmail(email)
	for _, a := range f.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func copyAccount(a *db.Account) *db.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (f *fakeStore) CreateAccount(_ context.Context, in *db.AccountCreateInput) (*db.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.byEmail(in.Email) != nil {
		return nil, db.ErrEmailExists
	}
	now := f.now()
	a := &db.Account{
		ID:           uuid.New(),
		Email:        db.NormalizeEmail(in.Email),
		FullName:     in.FullName,
		PhotoURL:     in.PhotoURL,
		PasswordHash: in.PasswordHash,
		Provider:     in.Provider,
		Role:         types.RoleUser,
		Verified:     in.Verified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.accounts[a.ID] = a
	return copyAccount(a), nil
}

func (f *fakeStore) GetAccountByEmail(_ context.Context, email string) (*db.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return copyAccount(f.byEmail(email)), nil
}

func (f *fakeStore) GetAccountByID(_ context.Context, id uuid.UUID) (*db.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return copyAccount(f.accounts[id]), nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return errors.New("account not found")
	}
	a.PasswordHash = hash
	a.FailedAttempts = 0
	a.LockedUntil = nil
	return nil
}

func (f *fakeStore) MarkVerified(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[id]; ok {
		a.Verified = true
	}
	return nil
}

func (f *fakeStore) RecordLoginFailure(_ context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration) (*db.LoginFailure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, errors.New("account not found")
	}
	a.FailedAttempts++
	if a.FailedAttempts >= maxAttempts {
		until := f.now().Add(lockFor)
		a.LockedUntil = &until
		a.FailedAttempts = 0
	}
	return &db.LoginFailure{FailedAttempts: a.FailedAttempts, LockedUntil: a.LockedUntil}, nil
}

func (f *fakeStore) ResetLoginFailures(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[id]; ok && a.FailedAttempts > 0 {
		a.FailedAttempts = 0
		a.LockedUntil = nil
	}
	return nil
}

func (f *fakeStore) CreateAuthToken(_ context.Context, accountID uuid.UUID, purpose, token string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, t := range f.tokens {
		if t.accountID == accountID && strings.HasPrefix(key, purpose+":") && !t.used {
			delete(f.tokens, key)
		}
	}
	f.tokens[purpose+":"+db.HashToken(token)] = &fakeToken{accountID: accountID, expires: f.now().Add(ttl)}
	return nil
}

func (f *fakeStore) ConsumeAuthToken(_ context.Context, purpose, token string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[purpose+":"+db.HashToken(token)]
	if !ok || t.used || !f.now().Before(t.expires) {
		return uuid.Nil, db.ErrTokenInvalid
	}
	t.used = true
	return t.accountID, nil
}

func (f *fakeStore) GetProfile(_ context.Context, accountID uuid.UUID) (*types.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	data, ok := f.profiles[accountID]
	if !ok {
		return nil, nil
	}
	var p types.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *fakeStore) CreateProfileIfMissing(ctx context.Context, accountID uuid.UUID, p *types.UserProfile) (*types.UserProfile, bool, error) {
	f.mu.Lock()
	_, exists := f.profiles[accountID]
	if !exists {
		data, err := json.Marshal(p)
		if err != nil {
			f.mu.Unlock()
			return nil, false, err
		}
		f.profiles[accountID] = data
	}
	f.mu.Unlock()
	stored, err := f.GetProfile(ctx, accountID)
	return stored, !exists, err
}

// SaveProfile merges top-level keys the way the JSONB || update does.
func (f *fakeStore) SaveProfile(ctx context.Context, accountID uuid.UUID, p *types.UserProfile) (*types.UserProfile, error) {
	f.mu.Lock()
	merged := map[string]json.RawMessage{}
	if old, ok := f.profiles[accountID]; ok {
		if err := json.Unmarshal(old, &merged); err != nil {
			f.mu.Unlock()
			return nil, err
		}
	}
	data, err := json.Marshal(p)
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	update := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &update); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	for k, v := range update {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.profiles[accountID] = out
	f.mu.Unlock()
	return f.GetProfile(ctx, accountID)
}

func (f *fakeStore) ListJobs(_ context.Context) ([]types.JobListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]types.JobListing, len(f.jobs))
	copy(out, f.jobs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*types.JobListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == id.String() {
			return &j, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateJob(_ context.Context, job *types.JobListing) (*types.JobListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := *job
	j.ID = uuid.NewString()
	j.CreatedAt = f.now()
	f.jobs = append(f.jobs, j)
	return &j, nil
}

func (f *fakeStore) DeleteJob(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.jobs {
		if j.ID == id.String() {
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CountJobs(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	return len(f.jobs), nil
}

func (f *fakeStore) InsertJobsIfEmpty(_ context.Context, jobs []types.JobListing) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.jobs) > 0 {
		return 0, seed.ErrNotEmpty
	}
	for _, job := range jobs {
		job.ID = uuid.NewString()
		job.CreatedAt = f.now()
		f.jobs = append(f.jobs, job)
	}
	return len(jobs), nil
}

func (f *fakeStore) ListCourses(_ context.Context, query string) ([]types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	out := []types.Course{}
	for _, c := range f.courses {
		if q == "" || strings.Contains(strings.ToLower(c.Title+" "+c.Category+" "+c.Description), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCourse(_ context.Context, id uuid.UUID) (*types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.courses {
		if c.ID == id.String() {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateCourse(_ context.Context, course *types.Course) (*types.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *course
	c.ID = uuid.NewString()
	c.CreatedAt = f.now()
	f.courses = append(f.courses, c)
	return &c, nil
}

func (f *fakeStore) DeleteCourse(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.courses {
		if c.ID == id.String() {
			f.courses = append(f.courses[:i], f.courses[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CountCourses(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.courses), nil
}

type notification struct {
	channel string
	change  db.Change
}

// fakeNotifier delivers notifications pushed on events to the active
// listener. The first failFirst Listen calls fail straight away.
type fakeNotifier struct {
	events    chan notification
	listening chan []string
	calls     atomic.Int32
	failFirst int32
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(chan notification), listening: make(chan []string, 4)}
}

func (n *fakeNotifier) Listen(ctx context.Context, channels []string, fn func(string, db.Change)) error {
	if n.calls.Add(1) <= n.failFirst {
		return errors.New("connection reset")
	}
	select {
	case n.listening <- channels:
	default:
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-n.events:
			fn(ev.channel, ev.change)
		}
	}
}

// fakeMailer records sent messages.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var tokenParam = regexp.MustCompile(`token=([0-9a-f-]+)`)

// lastToken returns the token from the most recent message to addr.
func (m *fakeMailer) lastToken(t *testing.T, addr string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == addr {
			match := tokenParam.FindStringSubmatch(m.sent[i].Body)
			require.Len(t, match, 2, "message has no token link")
			return match[1]
		}
	}
	t.Fatalf("no message sent to %s", addr)
	return ""
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// mockLLM implements llm.Client with a canned response function.
type mockLLM struct {
	mu       sync.Mutex
	respond  func(req llm.Request) (string, error)
	requests []llm.Request
}

func (m *mockLLM) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return "", nil
}

func (m *mockLLM) GenerateStructured(_ context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	respond := m.respond
	m.mu.Unlock()
	if respond == nil {
		return "{}", nil
	}
	return respond(req)
}

func (m *mockLLM) GetModel(_ llm.ModelTier) string { return "mock-model" }

func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ""
	}
	return m.requests[len(m.requests)-1].Prompt
}

// fakeGoogle is a GoogleIdentity that accepts the code "good".
type fakeGoogle struct {
	user *GoogleUser
}

func (g *fakeGoogle) AuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (g *fakeGoogle) Identify(_ context.Context, code string) (*GoogleUser, error) {
	if code != "good" {
		return nil, errors.New("bad code")
	}
	return g.user, nil
}

type testEnv struct {
	server   *Server
	store    *fakeStore
	notifier *fakeNotifier
	mailer   *fakeMailer
	llm      *mockLLM
	google   *fakeGoogle
}

func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: testJWTSecret, Issuer: "career-compass-test", ExpirationHours: 24}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    newFakeStore(),
		notifier: newFakeNotifier(),
		mailer:   &fakeMailer{},
		llm:      &mockLLM{},
		google: &fakeGoogle{user: &GoogleUser{
			Email: "g.user@example.com", Name: "G User", Picture: "https://example.com/g.png", VerifiedEmail: true,
		}},
	}
	s, err := NewWithDeps(Deps{
		Store:      env.store,
		Notifier:   env.notifier,
		LLM:        env.llm,
		Passwords:  testPasswordConfig(),
		JWT:        testJWTConfig(),
		Mailer:     env.mailer,
		Google:     env.google,
		RateLimit:  &ratelimit.Config{Enabled: false},
		AppBaseURL: "https://app.example.com",
		Heartbeat:  time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	env.server = s
	return env
}

// addAccount creates a verified password account with a default profile.
func (e *testEnv) addAccount(t *testing.T, email, password, role string) *db.Account {
	t.Helper()
	hash, err := testPasswordConfig().HashPassword(password)
	require.NoError(t, err)
	a, err := e.store.CreateAccount(context.Background(), &db.AccountCreateInput{
		Email: email, FullName: "Test User", PasswordHash: hash, Provider: db.ProviderPassword, Verified: true,
	})
	require.NoError(t, err)
	e.store.mu.Lock()
	e.store.accounts[a.ID].Role = role
	e.store.mu.Unlock()
	a.Role = role
	return a
}

// login returns a session token for a new account with role.
func (e *testEnv) login(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()
	a := e.addAccount(t, uuid.NewString()+"@example.com", "secret1", role)
	token, err := e.server.jwtService.GenerateToken(a.ID, role)
	require.NoError(t, err)
	return a.ID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[ErrorBody](t, w).Code
}

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
