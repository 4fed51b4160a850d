package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"poi-gateway/middleware/quota/domain"

	"github.com/rs/zerolog"
)

var testSecrets = Secrets{
	Admin:    "admin-secret",
	TeamPark: "park-secret",
	TeamPOI:  "poi-secret",
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newService(counter domain.CounterStore, audit domain.AuditSink, c *clock) Service {
	return Service{
		Resolver: NewResolver(testSecrets.Bindings()),
		Policy:   Policy{Quotas: DefaultQuotas()},
		Counter:  counter,
		Audit:    audit,
		Now:      c.Now,
		Logger:   zerolog.Nop(),
	}
}

func TestService_Authorize_AdminNeverTouchesCounter(t *testing.T) {
	counter := newFakeCounter()
	svc := newService(counter, nil, &clock{t: time.Now()})

	for i := 0; i < 1000; i++ {
		v := svc.Authorize(context.Background(), domain.Request{Credential: "admin-secret"})
		if !v.Allowed() || !v.Unlimited || v.Used != 0 {
			t.Fatalf("expected unlimited allowed verdict, got %+v", v)
		}
	}
	if counter.incrs != 0 {
		t.Fatalf("expected no counter calls for admin, got %d", counter.incrs)
	}
}

func TestService_Authorize_TeamParkScenarioWithDayRollover(t *testing.T) {
	counter := newFakeCounter()
	c := &clock{t: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
	svc := newService(counter, nil, c)
	req := domain.Request{Credential: "park-secret"}

	for i := 1; i <= 200; i++ {
		v := svc.Authorize(context.Background(), req)
		if !v.Allowed() {
			t.Fatalf("call %d should be allowed, got %+v", i, v)
		}
		if v.Used != int64(i) || v.Remaining != int64(200-i) {
			t.Fatalf("call %d: unexpected counters used=%d remaining=%d", i, v.Used, v.Remaining)
		}
	}

	v := svc.Authorize(context.Background(), req)
	if v.Outcome != domain.OutcomeQuotaExceeded {
		t.Fatalf("expected call 201 to exceed, got %s", v.Outcome)
	}
	if v.Used != 201 || v.Remaining != 0 || v.Role != domain.RoleTeamPark {
		t.Fatalf("unexpected exceeded verdict %+v", v)
	}

	c.t = c.t.Add(24 * time.Hour)
	v = svc.Authorize(context.Background(), req)
	if !v.Allowed() || v.Used != 1 || v.Remaining != 199 {
		t.Fatalf("expected fresh window on the next day, got %+v", v)
	}
}

func TestService_Authorize_ExpirySetOnlyOnFirstIncrement(t *testing.T) {
	counter := newFakeCounter()
	c := &clock{t: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	svc := newService(counter, nil, c)

	for i := 0; i < 5; i++ {
		svc.Authorize(context.Background(), domain.Request{Credential: "poi-secret"})
	}

	key := domain.CounterKey(DefaultNamespace, domain.RoleTeamPOI, "poi-secret", c.t)
	if counter.expires[key] != 1 {
		t.Fatalf("expected expiry to be set exactly once, got %d", counter.expires[key])
	}
	if counter.lastTTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", counter.lastTTL)
	}
}

func TestService_Authorize_FailsOpenOnStoreError(t *testing.T) {
	counter := newFakeCounter()
	counter.incrErr = errBoom
	svc := newService(counter, nil, &clock{t: time.Now()})

	v := svc.Authorize(context.Background(), domain.Request{Credential: "park-secret"})
	if !v.Allowed() || !v.Degraded {
		t.Fatalf("expected degraded allowed verdict, got %+v", v)
	}
	if v.Used != 0 || v.Remaining != 200 {
		t.Fatalf("expected used=0 remaining=200, got used=%d remaining=%d", v.Used, v.Remaining)
	}
}

func TestService_Authorize_FailsOpenOnStorePanic(t *testing.T) {
	counter := newFakeCounter()
	counter.panicMsg = "connection reset"
	svc := newService(counter, nil, &clock{t: time.Now()})

	v := svc.Authorize(context.Background(), domain.Request{Credential: "park-secret"})
	if !v.Allowed() || !v.Degraded || v.Used != 0 {
		t.Fatalf("expected degraded allowed verdict, got %+v", v)
	}
}

func TestService_Authorize_FailsOpenWithoutCounter(t *testing.T) {
	svc := newService(nil, nil, &clock{t: time.Now()})

	v := svc.Authorize(context.Background(), domain.Request{Credential: "poi-secret"})
	if !v.Allowed() || !v.Degraded || v.Remaining != 500 {
		t.Fatalf("expected degraded allowed verdict, got %+v", v)
	}
}

func TestService_Authorize_ExpireErrorStillCounts(t *testing.T) {
	counter := newFakeCounter()
	counter.expErr = errBoom
	svc := newService(counter, nil, &clock{t: time.Now()})

	v := svc.Authorize(context.Background(), domain.Request{Credential: "park-secret"})
	if !v.Allowed() || v.Degraded || v.Used != 1 {
		t.Fatalf("expected counted verdict, got %+v", v)
	}
}

func TestService_Authorize_ExpirePanicStillCounts(t *testing.T) {
	counter := newFakeCounter()
	counter.expPanic = "connection reset during EXPIRE"
	audit := &fakeAudit{}
	svc := newService(counter, audit, &clock{t: time.Now()})

	v := svc.Authorize(context.Background(), domain.Request{Credential: "park-secret"})
	if !v.Allowed() || v.Degraded || v.Used != 1 || v.Remaining != 199 {
		t.Fatalf("expected counted verdict after expire panic, got %+v", v)
	}
	if len(audit.events) != 1 {
		t.Fatalf("expected the call to be audited, got %d events", len(audit.events))
	}

	v = svc.Authorize(context.Background(), domain.Request{Credential: "park-secret"})
	if v.Used != 2 {
		t.Fatalf("expected the counter to keep counting, got used=%d", v.Used)
	}
}

func TestService_Authorize_Unauthorized(t *testing.T) {
	audit := &fakeAudit{}
	svc := newService(newFakeCounter(), audit, &clock{t: time.Now()})

	for _, cred := range []domain.Credential{"", "abc123"} {
		v := svc.Authorize(context.Background(), domain.Request{Credential: cred})
		if v.Outcome != domain.OutcomeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %s", cred, v.Outcome)
		}
	}
	if len(audit.events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(audit.events))
	}
	if audit.events[0].Key != "NO_KEY" || audit.events[1].Key != "abc1***" {
		t.Fatalf("unexpected redacted keys %q %q", audit.events[0].Key, audit.events[1].Key)
	}
	if audit.events[1].Role != domain.RoleInvalid || audit.events[1].IP != "unknown" {
		t.Fatalf("unexpected audit event %+v", audit.events[1])
	}
}

func TestService_Authorize_ServerMisconfigured(t *testing.T) {
	audit := &fakeAudit{}
	counter := newFakeCounter()
	svc := Service{
		Resolver: NewResolver(Secrets{}.Bindings()),
		Policy:   Policy{Quotas: DefaultQuotas()},
		Counter:  counter,
		Audit:    audit,
		Logger:   zerolog.Nop(),
	}

	for _, cred := range []domain.Credential{"", "anything", "admin-secret"} {
		v := svc.Authorize(context.Background(), domain.Request{Credential: cred})
		if v.Outcome != domain.OutcomeServerMisconfigured {
			t.Fatalf("expected server_misconfigured, got %s", v.Outcome)
		}
	}
	if len(audit.events) != 0 || counter.incrs != 0 {
		t.Fatalf("expected no audit and no counter calls, got %d / %d", len(audit.events), counter.incrs)
	}
}

func TestService_Authorize_AuditsEveryOutcome(t *testing.T) {
	audit := &fakeAudit{err: errBoom}
	svc := newService(newFakeCounter(), audit, &clock{t: time.Now()})

	req := domain.Request{Credential: "admin-secret", ClientIP: "1.2.3.4", Franchise: "스타벅스", Status: "유지"}
	if v := svc.Authorize(context.Background(), req); !v.Allowed() {
		t.Fatalf("audit failure must not change the verdict, got %+v", v)
	}

	if len(audit.events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(audit.events))
	}
	ev := audit.events[0]
	if ev.Role != domain.RoleAdmin || ev.IP != "1.2.3.4" || ev.Key != "admi***" {
		t.Fatalf("unexpected audit event %+v", ev)
	}
	if ev.Franchise != "스타벅스" || ev.Status != "유지" {
		t.Fatalf("expected filters in audit event, got %+v", ev)
	}
}

func TestService_Authorize_ConcurrentSameCredential(t *testing.T) {
	counter := newFakeCounter()
	svc := newService(counter, nil, &clock{t: time.Now()})

	const goroutines = 250
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		allowed  int
		exceeded int
	)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			v := svc.Authorize(context.Background(), domain.Request{Credential: "park-secret"})
			mu.Lock()
			defer mu.Unlock()
			if v.Allowed() {
				allowed++
			} else {
				exceeded++
			}
		}()
	}
	wg.Wait()

	if allowed != 200 || exceeded != 50 {
		t.Fatalf("expected 200 allowed / 50 exceeded, got %d / %d", allowed, exceeded)
	}
}
