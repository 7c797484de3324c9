package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/melo-app/accounts/internal/apperr"
	"github.com/melo-app/accounts/internal/auth"
	"github.com/melo-app/accounts/internal/events"
	"github.com/melo-app/accounts/internal/store"
	"github.com/melo-app/accounts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo is an in-memory UserRepository with the same uniqueness
// semantics as the postgres store.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, id int, fields map[string]any) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	for column, value := range fields {
		str, _ := value.(string)
		switch column {
		case "email":
			for otherID, other := range f.users {
				if otherID != id && other.Email == str {
					return types.User{}, store.ErrConflict
				}
			}
			user.Email = str
		case "password_hash":
			user.PasswordHash = str
		case "full_name":
			user.FullName = str
		case "role":
			user.Role = str
		}
	}
	user.UpdatedAt = time.Now()
	f.users[id] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

// recordingBackend captures published events.
type recordingBackend struct {
	mu        sync.Mutex
	published []map[string]string
}

func (r *recordingBackend) Publish(_ context.Context, channel string, _ []byte, attrs map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := map[string]string{"channel": channel}
	for k, v := range attrs {
		record[k] = v
	}
	r.published = append(r.published, record)
	return nil
}

func (r *recordingBackend) Close() error { return nil }

func (r *recordingBackend) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.published))
	for _, record := range r.published {
		out = append(out, record["type"])
	}
	return out
}

func newTestService(t *testing.T) (*UserService, *fakeUserRepo, *recordingBackend) {
	t.Helper()
	repo := newFakeUserRepo()
	backend := &recordingBackend{}
	tokens := auth.NewTokenService([]byte("unit-test-secret"), time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewUserService(repo, tokens, events.NewPublisher(backend), logger)
	return svc, repo, backend
}

func mustCreate(t *testing.T, svc *UserService, email, password, fullName string) types.User {
	t.Helper()
	user, err := svc.Create(context.Background(), CreateUserParams{
		Email:    email,
		Password: password,
		FullName: fullName,
	})
	require.NoError(t, err)
	return user
}

func TestCreateNormalizesAndHashes(t *testing.T) {
	t.Parallel()

	svc, repo, backend := newTestService(t)
	user := mustCreate(t, svc, " Ada@EXAMPLE.COM ", "pw-secret", "Ada Lovelace")

	assert.Equal(t, "Ada@example.com", user.Email)
	assert.Equal(t, types.DefaultRole, user.Role)
	assert.NotEqual(t, "pw-secret", user.PasswordHash)

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	verified, err := auth.VerifyPassword("pw-secret", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, verified)

	assert.Equal(t, []string{events.TypeUserCreated}, backend.eventTypes())
}

func TestCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	mustCreate(t, svc, "dup@example.com", "pw", "First")

	_, err := svc.Create(context.Background(), CreateUserParams{
		Email:    "dup@example.com",
		Password: "pw2",
		FullName: "Second",
	})
	assert.True(t, apperr.IsConflict(err), "got %v", err)
}

func TestCreateConcurrentSameEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateUserParams{
				Email:    "race@example.com",
				Password: "pw",
				FullName: "Racer",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case apperr.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	user := mustCreate(t, svc, "login@example.com", "pw-secret", "Login User")

	token, expiry, err := svc.Login(context.Background(), "login@example.com", "pw-secret")
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	authenticated, err := svc.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	mustCreate(t, svc, "real@example.com", "rightpass", "Real User")

	_, _, errMissing := svc.Login(context.Background(), "missing@example.com", "whatever")
	_, _, errWrongPw := svc.Login(context.Background(), "real@example.com", "wrongpass")

	require.True(t, apperr.IsAuth(errMissing), "got %v", errMissing)
	require.True(t, apperr.IsAuth(errWrongPw), "got %v", errWrongPw)
	assert.Equal(t, apperr.MessageOf(errMissing), apperr.MessageOf(errWrongPw))
	assert.Equal(t, "Invalid credentials", apperr.MessageOf(errMissing))
}

func TestAuthenticateRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	user := mustCreate(t, svc, "tok@example.com", "pw", "Token User")

	token, _, err := svc.Login(context.Background(), "tok@example.com", "pw")
	require.NoError(t, err)

	headers := []string{
		"",
		token,
		"bearer " + token,
		"Bearer " + token + "x",
		"Bearer " + token[:len(token)-2],
	}
	for _, header := range headers {
		_, err := svc.Authenticate(context.Background(), header)
		require.True(t, apperr.IsAuth(err), "header %q: got %v", header, err)
		assert.Equal(t, "Invalid Token", apperr.MessageOf(err), "header %q", header)
	}

	// Deleted account: token verifies but the record is gone.
	require.NoError(t, svc.repo.Delete(context.Background(), user.ID))
	_, err = svc.Authenticate(context.Background(), "Bearer "+token)
	require.True(t, apperr.IsAuth(err), "got %v", err)
	assert.Equal(t, "Invalid Token", apperr.MessageOf(err))
}

func TestPatchEmail(t *testing.T) {
	t.Parallel()

	svc, _, backend := newTestService(t)
	user := mustCreate(t, svc, "old@example.com", "pw", "Patch User")

	updated, err := svc.Patch(context.Background(), user, map[string]any{"email": "New@EXAMPLE.com"})
	require.NoError(t, err)
	assert.Equal(t, "New@example.com", updated.Email)

	assert.Equal(t, []string{events.TypeUserCreated, events.TypeUserUpdated}, backend.eventTypes())
}

func TestPatchEmailConflict(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	mustCreate(t, svc, "taken@example.com", "pw", "Holder")
	user := mustCreate(t, svc, "mine@example.com", "pw", "Patcher")

	_, err := svc.Patch(context.Background(), user, map[string]any{"email": "taken@example.com"})
	assert.True(t, apperr.IsConflict(err), "got %v", err)
}

func TestPatchPassword(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	user := mustCreate(t, svc, "pw@example.com", "old-pass", "PW User")

	_, err := svc.Patch(context.Background(), user, map[string]any{
		"old_password": "old-pass",
		"new_password": "new-pass",
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	verified, err := auth.VerifyPassword("new-pass", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, verified)

	// Old password no longer logs in; new one does.
	_, _, err = svc.Login(context.Background(), "pw@example.com", "old-pass")
	assert.True(t, apperr.IsAuth(err), "got %v", err)
	_, _, err = svc.Login(context.Background(), "pw@example.com", "new-pass")
	assert.NoError(t, err)
}

func TestPatchEmptyPayloadIsNoop(t *testing.T) {
	t.Parallel()

	svc, _, backend := newTestService(t)
	user := mustCreate(t, svc, "noop@example.com", "pw", "Noop User")

	updated, err := svc.Patch(context.Background(), user, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, user, updated)

	// No user.updated event for a no-op patch.
	assert.Equal(t, []string{events.TypeUserCreated}, backend.eventTypes())
}
