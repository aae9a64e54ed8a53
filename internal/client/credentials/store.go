// Package credentials holds the bearer token of the current session and the
// session epoch: a counter bumped on every login, logout and explicit reset.
// Views watch the epoch to know when to re-synchronize.
package credentials

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/pennywise/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pennywise/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Keys the session is persisted under. Both are written together and
// cleared together.
const (
	TokenKey   = "access_token"
	SubjectKey = "session_subject"
)

var ErrEmptyToken = errors.New("empty token")

// Session describes the holder of a JWT token. Tokens that are not JWTs are
// accepted as opaque and yield an empty Session.
type Session struct {
	Subject   string
	ExpiresAt time.Time
}

type Store struct {
	repo metadata.Repository
	log  logging.Logger
	now  func() time.Time

	mu      sync.RWMutex
	token   string
	epoch   uint64
	subs    map[int]chan uint64
	nextSub int
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a store persisting through repo. A nil repo keeps the
// token in memory only.
func NewStore(repo metadata.Repository, opts ...Option) *Store {
	s := &Store{
		repo: repo,
		log:  logging.Nop(),
		now:  time.Now,
		subs: make(map[int]chan uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores a persisted session. A read failure leaves the store
// unauthenticated and is returned for the caller to report; an expired token
// is ignored. Load does not bump the epoch: it runs before any view is
// mounted.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	facts, err := s.repo.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err != nil {
		return err
	}

	token := string(facts[TokenKey])
	if token == "" {
		return nil
	}
	if s.expired(token) {
		s.log.Info(ctx, "stored session expired", "subject", string(facts[SubjectKey]))
		return nil
	}
	s.token = token
	s.log.Info(ctx, "session restored", "subject", string(facts[SubjectKey]))
	return nil
}

// Token returns the current token, or false when there is none or it is a
// JWT that has already expired. The first call to see a token expired drops
// it and bumps the epoch, so views resynchronize as logged out.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return "", false
	}
	if s.expired(token) {
		s.expire(token)
		return "", false
	}
	return token, true
}

func (s *Store) expired(token string) bool {
	sess, ok := parseSession(token)
	return ok && !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt)
}

func (s *Store) expire(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		return
	}
	s.token = ""
	epoch := s.bumpLocked()
	s.log.Info(context.Background(), "session expired", "epoch", epoch)
}

// Session returns the claims of the current token when it is a JWT.
func (s *Store) Session() (Session, bool) {
	token, ok := s.Token()
	if !ok {
		return Session{}, false
	}
	sess, _ := parseSession(token)
	return sess, true
}

// SetToken installs token for a new login and bumps the epoch. Failing to
// persist it is logged; the session still holds for this process.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	s.token = token
	epoch := s.bumpLocked()
	s.mu.Unlock()

	if s.repo != nil {
		sess, _ := parseSession(token)
		err := s.repo.SetAll(ctx, map[string][]byte{
			TokenKey:   []byte(token),
			SubjectKey: []byte(sess.Subject),
		})
		if err != nil {
			s.log.Warn(ctx, "token not persisted", "error", err)
		}
	}
	s.log.Debug(ctx, "token set", "epoch", epoch)
	return nil
}

// ClearToken drops the token (logout), erases every persisted session fact
// and bumps the epoch.
func (s *Store) ClearToken(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	epoch := s.bumpLocked()
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Clear(ctx); err != nil {
			s.log.Warn(ctx, "persisted session not removed", "error", err)
		}
	}
	s.log.Debug(ctx, "token cleared", "epoch", epoch)
}

// Reset bumps the epoch without touching the token and returns the new value.
func (s *Store) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bumpLocked()
}

func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Subscribe returns a channel receiving the newest epoch after each change.
// Bursts coalesce: a slow reader sees only the latest value. The cancel func
// closes the channel.
func (s *Store) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) bumpLocked() uint64 {
	s.epoch++
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.epoch
	}
	return s.epoch
}

func parseSession(token string) (Session, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, false
	}
	sess := Session{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, true
}
