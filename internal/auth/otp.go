package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpTTL = 10 * time.Minute

// OTPStore keeps pending verification codes in Redis, one key per
// purpose+email, consumed on successful verify.
type OTPStore struct {
	Rdb *redis.Client
}

func otpKey(purpose, email string) string {
	return "otp:" + purpose + ":" + email
}

// Issue generates a 6-digit code and stores it for 10 minutes,
// replacing any previous code for the same purpose+email.
func (s *OTPStore) Issue(ctx context.Context, purpose, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.Rdb.Set(ctx, otpKey(purpose, email), code, otpTTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the code and deletes it on match. A missing, expired or
// mismatched code returns ErrInvalidOTP.
func (s *OTPStore) Verify(ctx context.Context, purpose, email, code string) error {
	key := otpKey(purpose, email)
	stored, err := s.Rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrInvalidOTP
	}
	return s.Rdb.Del(ctx, key).Err()
}
