package credentials

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/repositories/metadata"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "creds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteRepository(db)
}

func mint(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

type brokenRepo struct{ err error }

func (b brokenRepo) Get(context.Context, string) ([]byte, error)     { return nil, b.err }
func (b brokenRepo) Set(context.Context, string, []byte) error       { return b.err }
func (b brokenRepo) SetAll(context.Context, map[string][]byte) error { return b.err }
func (b brokenRepo) Delete(context.Context, string) error            { return b.err }
func (b brokenRepo) List(context.Context) (map[string][]byte, error) { return nil, b.err }
func (b brokenRepo) Clear(context.Context) error                     { return b.err }

func TestStore_StartsUnauthenticated(t *testing.T) {
	s := NewStore(nil)

	_, ok := s.Token()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), s.Epoch())
}

func TestStore_EveryMutationBumpsEpoch(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	require.NoError(t, s.SetToken(ctx, "opaque"))
	assert.Equal(t, uint64(1), s.Epoch())

	tok, ok := s.Token()
	require.True(t, ok)
	assert.Equal(t, "opaque", tok)

	s.ClearToken(ctx)
	assert.Equal(t, uint64(2), s.Epoch())
	_, ok = s.Token()
	assert.False(t, ok)

	assert.Equal(t, uint64(3), s.Reset())
	assert.Equal(t, uint64(3), s.Epoch())
}

func TestStore_SetToken_RejectsEmpty(t *testing.T) {
	s := NewStore(nil)

	require.ErrorIs(t, s.SetToken(context.Background(), ""), ErrEmptyToken)
	assert.Equal(t, uint64(0), s.Epoch())
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	first := NewStore(repo)
	require.NoError(t, first.SetToken(ctx, "persisted"))

	second := NewStore(repo)
	require.NoError(t, second.Load(ctx))
	tok, ok := second.Token()
	require.True(t, ok)
	assert.Equal(t, "persisted", tok)
	assert.Equal(t, uint64(0), second.Epoch())

	second.ClearToken(ctx)
	facts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts)

	third := NewStore(repo)
	require.NoError(t, third.Load(ctx))
	_, ok = third.Token()
	assert.False(t, ok)
}

func TestStore_PersistsTokenWithSubject(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.Set(ctx, "unrelated", []byte("x")))

	s := NewStore(repo)
	token := mint(t, "alice", time.Now().Add(time.Hour))
	require.NoError(t, s.SetToken(ctx, token))

	facts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, string(facts[TokenKey]))
	assert.Equal(t, "alice", string(facts[SubjectKey]))

	s.ClearToken(ctx)
	facts, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts, "logout erases every session fact")
}

func TestStore_LoadSkipsExpiredToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	repo := newRepo(t)
	require.NoError(t, repo.SetAll(ctx, map[string][]byte{
		TokenKey:   []byte(mint(t, "alice", now.Add(-time.Minute))),
		SubjectKey: []byte("alice"),
	}))

	s := NewStore(repo, WithClock(func() time.Time { return now }))
	require.NoError(t, s.Load(ctx))
	_, ok := s.Token()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), s.Epoch())
}

func TestStore_StorageFailureMeansNoToken(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk gone")

	s := NewStore(brokenRepo{err: boom})
	require.ErrorIs(t, s.Load(ctx), boom)
	_, ok := s.Token()
	assert.False(t, ok)

	require.NoError(t, s.SetToken(ctx, "in-memory"))
	tok, ok := s.Token()
	require.True(t, ok)
	assert.Equal(t, "in-memory", tok)
}

func TestStore_ExpiredJWTIsAbsent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	s := NewStore(nil, WithClock(func() time.Time { return now }))

	require.NoError(t, s.SetToken(ctx, mint(t, "alice", now.Add(-time.Second))))
	_, ok := s.Token()
	assert.False(t, ok)
	_, ok = s.Session()
	assert.False(t, ok)

	assert.Equal(t, uint64(2), s.Epoch(), "expiry counts as a session change")

	require.NoError(t, s.SetToken(ctx, mint(t, "alice", now.Add(time.Hour))))
	_, ok = s.Token()
	require.True(t, ok)
	assert.Equal(t, uint64(3), s.Epoch())

	sess, ok := s.Session()
	require.True(t, ok)
	assert.Equal(t, "alice", sess.Subject)
	assert.True(t, sess.ExpiresAt.Equal(now.Add(time.Hour)))
}

func TestStore_ExpiryBumpsEpochOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	clock := now
	s := NewStore(nil, WithClock(func() time.Time { return clock }))
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.SetToken(ctx, mint(t, "alice", now.Add(time.Minute))))
	<-ch
	_, ok := s.Token()
	require.True(t, ok)
	assert.Equal(t, uint64(1), s.Epoch())

	clock = now.Add(2 * time.Minute)
	_, ok = s.Token()
	assert.False(t, ok)
	assert.Equal(t, uint64(2), s.Epoch())

	select {
	case got := <-ch:
		assert.Equal(t, uint64(2), got)
	case <-time.After(time.Second):
		t.Fatal("expiry did not publish an epoch")
	}

	_, ok = s.Token()
	assert.False(t, ok)
	assert.Equal(t, uint64(2), s.Epoch(), "expiry is observed once")
}

func TestStore_OpaqueTokenHasEmptySession(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.SetToken(context.Background(), "not-a-jwt"))

	sess, ok := s.Session()
	require.True(t, ok)
	assert.Empty(t, sess.Subject)
	assert.True(t, sess.ExpiresAt.IsZero())
}

func TestStore_Subscribe_CoalescesToLatest(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.SetToken(ctx, "a"))
	s.ClearToken(ctx)
	s.Reset()

	select {
	case got := <-ch:
		assert.Equal(t, uint64(3), got)
	case <-time.After(time.Second):
		t.Fatal("no epoch delivered")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected extra epoch %d", got)
	default:
	}
}

func TestStore_Subscribe_CancelClosesChannel(t *testing.T) {
	s := NewStore(nil)
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	s.Reset()
}
