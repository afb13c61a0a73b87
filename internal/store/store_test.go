package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/labanca/listero/internal/limits"
	"github.com/labanca/listero/internal/play"
)

func newTestStore(t *testing.T) (*HybridStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &HybridStore{redis: rdb, logger: zap.NewNop(), loc: time.UTC}, mr
}

func TestSetAndGetJSON(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)
	defer mr.Close()

	val := []limits.CapacityEntry{
		{ScheduleID: "H1", PlayType: play.Fijo, Number: "07", Limit: 100, Used: 80, PercentUsed: 80},
	}

	if err := st.SetJSON(ctx, "capacity:listero-1", val, time.Minute); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var got []limits.CapacityEntry
	if err := st.GetJSON(ctx, "capacity:listero-1", &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if len(got) != 1 || got[0].Number != "07" || got[0].PercentUsed != 80 {
		t.Errorf("got %+v", got)
	}
}

func TestGetJSON_Miss(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)
	defer mr.Close()

	var got map[string]string
	err := st.GetJSON(ctx, "missing", &got)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetJSON_Expiration(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)
	defer mr.Close()

	if err := st.SetJSON(ctx, "k", "v", 30*time.Second); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	mr.FastForward(time.Minute)

	var got string
	if err := st.GetJSON(ctx, "k", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestHealthCheck_RedisOnly(t *testing.T) {
	ctx := context.Background()
	st, mr := newTestStore(t)
	defer mr.Close()

	if err := st.HealthCheck(ctx); err != nil {
		t.Errorf("healthcheck failed: %v", err)
	}
}

func TestAggregateUsage(t *testing.T) {
	rows := []usageRow{
		{ScheduleID: "H1", PlayType: play.Fijo, Numbers: "07,08", AmountEach: 10},
		{ScheduleID: "H1", PlayType: play.Fijo, Numbers: "07", AmountEach: 5},
		{ScheduleID: "H2", PlayType: play.Fijo, Numbers: "07", AmountEach: 3},
		{ScheduleID: "H1", PlayType: play.Parle, Numbers: "2010", AmountEach: 4},
		{ScheduleID: "H1", PlayType: play.Parle, Numbers: "1020", AmountEach: 6},
	}

	got := aggregateUsage(rows)

	want := map[limits.Key]int{
		{ScheduleID: "H1", PlayType: play.Fijo, Number: "07"}:    15,
		{ScheduleID: "H1", PlayType: play.Fijo, Number: "08"}:    10,
		{ScheduleID: "H2", PlayType: play.Fijo, Number: "07"}:    3,
		{ScheduleID: "H1", PlayType: play.Parle, Number: "1020"}: 10,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("usage[%v] = %d, want %d", k, got[k], v)
		}
	}
}

func TestAggregateUsage_RepeatedNumberInOneBet(t *testing.T) {
	rows := []usageRow{
		{ScheduleID: "H1", PlayType: play.Fijo, Numbers: "07,07", AmountEach: 10},
	}

	got := aggregateUsage(rows)
	k := limits.Key{ScheduleID: "H1", PlayType: play.Fijo, Number: "07"}
	if got[k] != 20 {
		t.Errorf("usage = %d, want 20 (additive per occurrence)", got[k])
	}
}

func TestDayBounds_LocalCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("America/Havana")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// 2026-03-10 01:30 UTC is still 2026-03-09 in Havana (UTC-5/-4).
	now := time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)
	start, end := dayBounds(now, loc)

	if start.Day() != 9 || start.Month() != time.March {
		t.Errorf("start = %v, want local March 9", start)
	}
	if !start.Before(now) || !end.After(now) {
		t.Errorf("bounds [%v, %v) must contain %v", start, end, now)
	}
	if got := end.Sub(start); got < 23*time.Hour || got > 25*time.Hour {
		t.Errorf("day length = %v", got)
	}
}

func TestSplitNumbers(t *testing.T) {
	got := splitNumbers("07, 08 ,,09")
	want := []string{"07", "08", "09"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
