package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"poi-gateway/middleware/quota/domain"
)

type fakeCounter struct {
	mu       sync.Mutex
	values   map[string]int64
	incrs    int
	expires  map[string]int
	lastTTL  time.Duration
	incrErr  error
	expErr   error
	panicMsg string
	// expPanic faz só o Expire entrar em panic
	expPanic string
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{values: map[string]int64{}, expires: map[string]int{}}
}

func (f *fakeCounter) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.incrs++
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeCounter) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key]++
	f.lastTTL = ttl
	if f.expPanic != "" {
		panic(f.expPanic)
	}
	return f.expErr
}

type fakeAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (a *fakeAudit) Record(_ context.Context, ev domain.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return a.err
}

var errBoom = errors.New("boom")
