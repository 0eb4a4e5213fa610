package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when the limiter has no Redis client
var ErrUnavailable = errors.New("redis client not available")

// Config defines the vote allowance per statement and client
type Config struct {
	MaxVotes int
	Window   time.Duration
}

// DefaultConfig returns the default vote allowance
func DefaultConfig() Config {
	return Config{
		MaxVotes: 5,
		Window:   10 * time.Minute,
	}
}

// VoteLimiter counts votes per statement and client in fixed Redis windows
type VoteLimiter struct {
	rdb *redis.Client
	cfg Config
}

// NewVoteLimiter creates a VoteLimiter; zero config fields take the defaults
func NewVoteLimiter(rdb *redis.Client, cfg Config) *VoteLimiter {
	def := DefaultConfig()
	if cfg.MaxVotes <= 0 {
		cfg.MaxVotes = def.MaxVotes
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	return &VoteLimiter{rdb: rdb, cfg: cfg}
}

func voteKey(statementID, clientKey string) string {
	return fmt.Sprintf("rate:vote:%s:%s", statementID, clientKey)
}

// reserveScript counts the vote and starts the window in one atomic step.
// The expiry is also repaired when a key somehow lost its TTL, so a client can
// never end up locked out of a statement for good.
var reserveScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// releaseScript returns a reserved vote without creating or underflowing the key
var releaseScript = redis.NewScript(`
local count = tonumber(redis.call("GET", KEYS[1]) or "0")
if count > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

// Reserve takes one vote from the client's allowance on the statement and
// reports whether it was within the limit. Parallel reservations are
// serialized by Redis, so at most MaxVotes succeed per window.
func (l *VoteLimiter) Reserve(ctx context.Context, statementID, clientKey string) (bool, error) {
	if l == nil || l.rdb == nil {
		return false, ErrUnavailable
	}

	count, err := reserveScript.Run(ctx, l.rdb, []string{voteKey(statementID, clientKey)}, l.cfg.Window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to reserve vote: %w", err)
	}
	return count <= int64(l.cfg.MaxVotes), nil
}

// Release hands back a reservation whose vote was never applied
func (l *VoteLimiter) Release(ctx context.Context, statementID, clientKey string) error {
	if l == nil || l.rdb == nil {
		return ErrUnavailable
	}

	if err := releaseScript.Run(ctx, l.rdb, []string{voteKey(statementID, clientKey)}).Err(); err != nil {
		return fmt.Errorf("failed to release vote: %w", err)
	}
	return nil
}

// ClientKey hashes a client address so raw IPs never reach Redis
func ClientKey(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:12])
}
