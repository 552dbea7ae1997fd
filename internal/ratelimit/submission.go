package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"go.uber.org/zap"
)

const keySubmission = "rentaldesk:submit:%s:%s"

const (
	ScopeQuote   = "quote"
	ScopeContact = "contact"
)

// SubmissionLimiter throttles public form posts per client IP.
type SubmissionLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewSubmissionLimiter(client *redis.Client, cfg config.Config, log *zap.Logger) *SubmissionLimiter {
	limitCfg := cfg.RateLimit
	if client == nil || !limitCfg.Enabled || limitCfg.SubmissionRate <= 0 || limitCfg.SubmissionBurst <= 0 {
		return nil
	}
	return &SubmissionLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.SubmissionRate,
		burst:  limitCfg.SubmissionBurst,
		log:    log.Named("ratelimit.submission"),
	}
}

func (l *SubmissionLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow fails open: a redis outage never blocks a customer enquiry.
func (l *SubmissionLimiter) Allow(ctx context.Context, scope, clientIP string) Decision {
	if !l.Enabled() {
		return Decision{Allowed: true}
	}
	clientIP = strings.TrimSpace(clientIP)
	if clientIP == "" {
		clientIP = "unknown"
	}

	d, err := l.bucket.Allow(ctx, fmt.Sprintf(keySubmission, scope, clientIP), l.rate, l.burst)
	if err != nil {
		l.log.Warn("submission rate limit check failed", zap.String("scope", scope), zap.Error(err))
		return Decision{Allowed: true}
	}
	return d
}
