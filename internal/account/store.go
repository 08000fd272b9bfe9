package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned for a missing record and, deliberately, for an
	// expired verification code or reset token: an expired secret is
	// indistinguishable from one that never existed.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned by Insert when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrStoreUnavailable wraps transport failures talking to Redis.
	ErrStoreUnavailable = errors.New("account store unavailable")
)

// insertLua claims the email index and writes the document and the pending
// verification index atomically, so two concurrent signups for one email
// cannot both succeed and an inserted account's code is always resolvable.
// KEYS[1] = email index key, KEYS[2] = document key, KEYS[3] = verify index key
// ARGV[1] = account id, ARGV[2] = document json, ARGV[3] = verify TTL millis
var insertLua = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return {err='duplicate_email'}
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[3], ARGV[1], 'PX', ARGV[3])
end
return 1
`)

// Store keeps accounts as JSON documents with exact-match secondary indexes
// for email, pending verification code, and pending reset token. Index keys
// for the one-time secrets carry a TTL matching the secret's expiry, so an
// expired secret disappears from lookup without a sweeper.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore returns a Store using prefix for its key namespace
// (default "auth").
func NewStore(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "auth"
	}
	return &Store{rdb: rdb, prefix: prefix, now: time.Now}
}

// WithClock overrides the expiry clock. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) docKey(id string) string      { return s.prefix + ":acct:" + id }
func (s *Store) emailKey(email string) string { return s.prefix + ":email:" + email }
func (s *Store) verifyKey(code string) string { return s.prefix + ":verify:" + code }
func (s *Store) resetKey(tok string) string   { return s.prefix + ":reset:" + tok }

// Insert persists a new account. The email index acts as the unique
// constraint; a losing racer gets ErrDuplicateEmail.
func (s *Store) Insert(ctx context.Context, acct *Account) error {
	doc, err := json.Marshal(acct)
	if err != nil {
		return err
	}

	var verifyTTL int64
	if acct.VerificationCode != "" && acct.VerificationExpiresAt != nil {
		verifyTTL = acct.VerificationExpiresAt.Sub(s.now()).Milliseconds()
	}

	err = insertLua.Run(ctx, s.rdb,
		[]string{s.emailKey(acct.Email), s.docKey(acct.ID), s.verifyKey(acct.VerificationCode)},
		acct.ID, string(doc), verifyTTL,
	).Err()
	if err != nil {
		if err.Error() == "duplicate_email" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Save persists mutations to an existing account and re-syncs the secondary
// indexes: stale verification/reset index entries are dropped, current ones
// written with their remaining TTL. Concurrent saves of the same account are
// last-write-wins; the service layer documents that gap.
func (s *Store) Save(ctx context.Context, acct *Account) error {
	prev, err := s.getByID(ctx, acct.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	doc, mErr := json.Marshal(acct)
	if mErr != nil {
		return mErr
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.docKey(acct.ID), doc, 0)

	if prev != nil {
		if prev.VerificationCode != "" && prev.VerificationCode != acct.VerificationCode {
			pipe.Del(ctx, s.verifyKey(prev.VerificationCode))
		}
		if prev.ResetToken != "" && prev.ResetToken != acct.ResetToken {
			pipe.Del(ctx, s.resetKey(prev.ResetToken))
		}
	}
	// Expired secrets get no index rewrite: a non-positive TTL would make
	// the key persistent.
	if acct.VerificationCode != "" && acct.VerificationExpiresAt != nil {
		if ttl := acct.VerificationExpiresAt.Sub(s.now()); ttl > 0 {
			pipe.Set(ctx, s.verifyKey(acct.VerificationCode), acct.ID, ttl)
		}
	}
	if acct.ResetToken != "" && acct.ResetExpiresAt != nil {
		if ttl := acct.ResetExpiresAt.Sub(s.now()); ttl > 0 {
			pipe.Set(ctx, s.resetKey(acct.ResetToken), acct.ID, ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// FindByEmail looks up an account by exact email match.
func (s *Store) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findByIndex(ctx, s.emailKey(email))
}

// FindByVerificationCode looks up the account holding an unexpired
// verification code. Expired or unknown codes are ErrNotFound.
func (s *Store) FindByVerificationCode(ctx context.Context, code string) (*Account, error) {
	acct, err := s.findByIndex(ctx, s.verifyKey(code))
	if err != nil {
		return nil, err
	}
	if acct.VerificationCode != code || !s.unexpired(acct.VerificationExpiresAt) {
		return nil, ErrNotFound
	}
	return acct, nil
}

// FindByResetToken looks up the account holding an unexpired reset token.
func (s *Store) FindByResetToken(ctx context.Context, tok string) (*Account, error) {
	acct, err := s.findByIndex(ctx, s.resetKey(tok))
	if err != nil {
		return nil, err
	}
	if acct.ResetToken != tok || !s.unexpired(acct.ResetExpiresAt) {
		return nil, ErrNotFound
	}
	return acct, nil
}

func (s *Store) unexpired(at *time.Time) bool {
	return at != nil && at.After(s.now())
}

func (s *Store) findByIndex(ctx context.Context, indexKey string) (*Account, error) {
	id, err := s.rdb.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s.getByID(ctx, id)
}

func (s *Store) getByID(ctx context.Context, id string) (*Account, error) {
	doc, err := s.rdb.Get(ctx, s.docKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var acct Account
	if err := json.Unmarshal([]byte(doc), &acct); err != nil {
		return nil, fmt.Errorf("%w: corrupt document for %s: %v", ErrStoreUnavailable, id, err)
	}
	return &acct, nil
}
