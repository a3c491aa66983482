package clients

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimits throttles outgoing responder calls. Unset limits are not applied.
type RateLimits struct {
	minuteRateLimiter *rate.Limiter
	dayRateLimiter    *rate.Limiter
}

func (l *RateLimits) SetMinuteRateLimit(maxRequestsPerMinute float32) {
	if maxRequestsPerMinute <= 0 {
		l.minuteRateLimiter = nil
		return
	}
	l.minuteRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerMinute/60), 1)
}

func (l *RateLimits) SetDayRateLimit(maxRequestsPerDay float32) {
	if maxRequestsPerDay <= 0 {
		l.dayRateLimiter = nil
		return
	}
	l.dayRateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerDay/86400), int(maxRequestsPerDay))
}

func (l *RateLimits) Wait(ctx context.Context) error {
	limiters := []*rate.Limiter{l.minuteRateLimiter, l.dayRateLimiter}
	for _, limiter := range limiters {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
