package application

import (
	"testing"
	"time"

	"crpt-gateway/client/crpt/domain"
)

type fakeLimiter struct {
	allow bool
}

func (f fakeLimiter) Allow() bool { return f.allow }

type fakeStore struct {
	lim domain.Limiter
}

func (s fakeStore) Get(domain.Key) domain.Limiter { return s.lim }

func TestCallerLimitService_AllowsWhenNoStore(t *testing.T) {
	dec := CallerLimitService{}.Decide("7700000000")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestCallerLimitService_AllowsWhenLimiterAllows(t *testing.T) {
	svc := CallerLimitService{Store: fakeStore{lim: fakeLimiter{allow: true}}, RetryAfter: 5 * time.Second}
	if !svc.Decide("k").Allowed {
		t.Fatalf("expected allowed")
	}
}

func TestCallerLimitService_BlocksWithDefaultRetryAfter(t *testing.T) {
	dec := CallerLimitService{Store: fakeStore{lim: fakeLimiter{allow: false}}}.Decide("k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != time.Second {
		t.Fatalf("expected default RetryAfter=1s, got %s", dec.RetryAfter)
	}
}

func TestCallerLimitService_BlocksWithConfiguredRetryAfter(t *testing.T) {
	dec := CallerLimitService{Store: fakeStore{lim: fakeLimiter{allow: false}}, RetryAfter: 2500 * time.Millisecond}.Decide("k")
	if dec.Allowed || dec.RetryAfter != 2500*time.Millisecond {
		t.Fatalf("expected blocked with 2.5s, got %+v", dec)
	}
}
