package infra

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"poi-gateway/middleware/quota/domain"

	"github.com/rs/zerolog"
)

func TestLogAuditSink_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	sink := LogAuditSink{Logger: zerolog.New(&buf)}

	err := sink.Record(context.Background(), domain.AuditEvent{
		At:        time.Date(2025, 1, 15, 1, 2, 3, 0, time.UTC),
		IP:        "1.2.3.4",
		Key:       "park***",
		Role:      domain.RoleTeamPark,
		Outcome:   domain.OutcomeAllowed,
		Franchise: "스타벅스",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"event":"FRANCHISE_API_CALL"`, `"ip":"1.2.3.4"`, `"key":"park***"`, `"role":"team_park"`, `"franchise":"스타벅스"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
	if strings.Contains(out, `"status"`) {
		t.Fatalf("expected empty status to be omitted: %s", out)
	}
}

type failingSink struct{}

func (failingSink) Record(context.Context, domain.AuditEvent) error { return errors.New("down") }

func TestMultiAuditSink_ContinuesAfterFailure(t *testing.T) {
	mem := NewMemoryAuditStore()
	multi := MultiAuditSink{failingSink{}, nil, mem}
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	err := multi.Record(context.Background(), domain.AuditEvent{At: at, Role: domain.RoleAdmin, Outcome: domain.OutcomeAllowed})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	usage, _ := mem.DailyUsage(context.Background(), at)
	if usage["admin:allowed"] != 1 {
		t.Fatalf("expected memory sink to still receive the event, got %+v", usage)
	}
}

func TestMemoryAuditStore_AggregatesPerUTCDay(t *testing.T) {
	s := NewMemoryAuditStore()
	ctx := context.Background()
	kst := time.FixedZone("KST", 9*60*60)
	// 2025-01-16 08:00 KST ainda é 2025-01-15 em UTC
	day1 := time.Date(2025, 1, 16, 8, 0, 0, 0, kst)
	day2 := time.Date(2025, 1, 16, 12, 0, 0, 0, time.UTC)

	for _, ev := range []domain.AuditEvent{
		{At: day1, Role: domain.RoleTeamPark, Outcome: domain.OutcomeAllowed},
		{At: day1, Role: domain.RoleTeamPark, Outcome: domain.OutcomeAllowed},
		{At: day1, Role: domain.RoleInvalid, Outcome: domain.OutcomeUnauthorized},
		{At: day2, Role: domain.RoleTeamPark, Outcome: domain.OutcomeQuotaExceeded},
	} {
		_ = s.Record(ctx, ev)
	}

	usage, err := s.DailyUsage(ctx, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("daily usage: %v", err)
	}
	if usage["team_park:allowed"] != 2 || usage["INVALID:unauthorized"] != 1 || len(usage) != 2 {
		t.Fatalf("unexpected usage for 2025-01-15: %+v", usage)
	}
	next, _ := s.DailyUsage(ctx, day2)
	if next["team_park:quota_exceeded"] != 1 {
		t.Fatalf("unexpected usage for 2025-01-16: %+v", next)
	}
}

func TestMemoryAuditStore_RetainsRecentDays(t *testing.T) {
	s := NewMemoryAuditStore(WithRetainDays(2))
	ctx := context.Background()
	first := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_ = s.Record(ctx, domain.AuditEvent{At: first.AddDate(0, 0, i), Role: domain.RoleTeamPOI, Outcome: domain.OutcomeAllowed})
	}

	if old, _ := s.DailyUsage(ctx, first); len(old) != 0 {
		t.Fatalf("expected oldest day to be pruned, got %+v", old)
	}
	if last, _ := s.DailyUsage(ctx, first.AddDate(0, 0, 2)); last["team_poi:allowed"] != 1 {
		t.Fatalf("expected newest day to be kept, got %+v", last)
	}
}

func TestRedisAuditStore_RecordsDailyUsage(t *testing.T) {
	mr, rdb := newMiniredis(t)
	s := NewRedisAuditStore(rdb, WithAuditPrefix("stats:"), WithAuditTTL(time.Hour), WithAuditTrackKeys(true))
	ctx := context.Background()
	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if err := s.Record(ctx, domain.AuditEvent{At: at, Key: "park***", Role: domain.RoleTeamPark, Outcome: domain.OutcomeAllowed}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	_ = s.Record(ctx, domain.AuditEvent{At: at, Key: "NO_KEY", Role: domain.RoleInvalid, Outcome: domain.OutcomeUnauthorized})

	usage, err := s.DailyUsage(ctx, at)
	if err != nil {
		t.Fatalf("daily usage: %v", err)
	}
	if usage["team_park:allowed"] != 2 || usage["INVALID:unauthorized"] != 1 {
		t.Fatalf("unexpected usage %+v", usage)
	}

	if got := mr.HGet("stats:total", "allowed"); got != "2" {
		t.Fatalf("expected total allowed=2, got %q", got)
	}
	if got := mr.HGet("stats:key:park***", "allowed"); got != "2" {
		t.Fatalf("expected per-key allowed=2, got %q", got)
	}
	if ttl := mr.TTL("stats:day:2025-01-15"); ttl != time.Hour {
		t.Fatalf("expected day bucket ttl 1h, got %s", ttl)
	}
}

func TestAuditStores_ImplementUsageReader(t *testing.T) {
	var _ domain.UsageReader = NewMemoryAuditStore()
	var _ domain.UsageReader = &RedisAuditStore{}
}
