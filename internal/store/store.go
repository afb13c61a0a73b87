// Package store is the persistence collaborator of the ticket core: it
// loads limit/usage snapshots, loads existing bets for duplicate detection,
// and persists accepted tickets atomically.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/labanca/listero/internal/dedupe"
	"github.com/labanca/listero/internal/limits"
	"github.com/labanca/listero/internal/play"
	"github.com/labanca/listero/pkg/model"
)

// ErrNotFound is returned by GetJSON on a cache miss.
var ErrNotFound = errors.New("store: key not found")

// Store defines the persistence contract the ticket service depends on.
type Store interface {
	LoadLimitContext(ctx context.Context, scheduleIDs []string, listeroID string) (limits.Context, error)
	LoadExistingBets(ctx context.Context, scheduleIDs []string, listeroID string) ([]dedupe.ExistingBet, error)
	SaveTicket(ctx context.Context, t model.Ticket) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// HybridStore backs the contract with Postgres (source of truth) and Redis
// (short-lived caches such as capacity reports).
type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
	loc    *time.Location
}

// PGPoolConfig carries pgx pool tuning knobs.
type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid connects to Redis and Postgres. loc is the operator's local
// time zone; "today" windows for usage and duplicate queries are computed
// in it, never in UTC.
func NewHybrid(redisAddr string, redisDB int, redisPass, pgURL string, poolCfg PGPoolConfig, loc *time.Location, logger *zap.Logger) (*HybridStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		DB:       redisDB,
		Password: redisPass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	if poolCfg.MaxConns > 0 {
		cfg.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		cfg.MinConns = poolCfg.MinConns
	}
	if poolCfg.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = poolCfg.MaxConnLifetime
	}
	if poolCfg.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	}
	if poolCfg.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = poolCfg.HealthCheckPeriod
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &HybridStore{redis: rdb, PG: pool, logger: logger, loc: loc}, nil
}

// LoadLimitContext fetches the per-number caps for the target schedules,
// the listero's per-play-type caps, and today's usage aggregated by
// canonical number.
func (s *HybridStore) LoadLimitContext(ctx context.Context, scheduleIDs []string, listeroID string) (limits.Context, error) {
	out := limits.Context{
		PerNumber: make(map[limits.Key]int),
		Specific:  make(map[play.Type]int),
		Usage:     make(map[limits.Key]int),
	}

	rows, err := s.PG.Query(ctx, `
		SELECT schedule_id, play_type, number, max_amount
		FROM number_limits
		WHERE schedule_id = ANY($1)`, scheduleIDs)
	if err != nil {
		return out, fmt.Errorf("load number limits: %w", err)
	}
	for rows.Next() {
		var sid, typ, number string
		var max int
		if err := rows.Scan(&sid, &typ, &number, &max); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan number limit: %w", err)
		}
		pt := play.Type(typ)
		out.PerNumber[limits.Key{ScheduleID: sid, PlayType: pt, Number: play.Canonical(pt, number)}] = max
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("load number limits: %w", err)
	}

	rows, err = s.PG.Query(ctx, `
		SELECT play_type, max_amount
		FROM listero_limits
		WHERE listero_id = $1`, listeroID)
	if err != nil {
		return out, fmt.Errorf("load listero limits: %w", err)
	}
	for rows.Next() {
		var typ string
		var max int
		if err := rows.Scan(&typ, &max); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan listero limit: %w", err)
		}
		out.Specific[play.Type(typ)] = max
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("load listero limits: %w", err)
	}

	usage, err := s.loadUsage(ctx, scheduleIDs, listeroID)
	if err != nil {
		return out, err
	}
	out.Usage = usage
	return out, nil
}

type usageRow struct {
	ScheduleID string
	PlayType   play.Type
	Numbers    string // comma-joined
	AmountEach int
}

func (s *HybridStore) loadUsage(ctx context.Context, scheduleIDs []string, listeroID string) (map[limits.Key]int, error) {
	start, end := dayBounds(time.Now(), s.loc)

	rows, err := s.PG.Query(ctx, `
		SELECT schedule_id, play_type, numbers, amount_each
		FROM bets
		WHERE listero_id = $1
		  AND schedule_id = ANY($2)
		  AND created_at >= $3 AND created_at < $4`,
		listeroID, scheduleIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("load usage: %w", err)
	}
	defer rows.Close()

	var day []usageRow
	for rows.Next() {
		var r usageRow
		var typ string
		if err := rows.Scan(&r.ScheduleID, &typ, &r.Numbers, &r.AmountEach); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		r.PlayType = play.Type(typ)
		day = append(day, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load usage: %w", err)
	}
	return aggregateUsage(day), nil
}

// aggregateUsage sums amount-each per canonical number across the day's
// bets. A number repeated inside one bet counts once per occurrence.
func aggregateUsage(rows []usageRow) map[limits.Key]int {
	out := make(map[limits.Key]int)
	for _, r := range rows {
		for _, n := range splitNumbers(r.Numbers) {
			k := limits.Key{
				ScheduleID: r.ScheduleID,
				PlayType:   r.PlayType,
				Number:     play.Canonical(r.PlayType, n),
			}
			out[k] += r.AmountEach
		}
	}
	return out
}

// LoadExistingBets returns the listero's bets recorded today for the target
// schedules, for duplicate detection.
func (s *HybridStore) LoadExistingBets(ctx context.Context, scheduleIDs []string, listeroID string) ([]dedupe.ExistingBet, error) {
	start, end := dayBounds(time.Now(), s.loc)

	rows, err := s.PG.Query(ctx, `
		SELECT schedule_id, play_type, numbers, note
		FROM bets
		WHERE listero_id = $1
		  AND schedule_id = ANY($2)
		  AND created_at >= $3 AND created_at < $4`,
		listeroID, scheduleIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("load existing bets: %w", err)
	}
	defer rows.Close()

	var out []dedupe.ExistingBet
	for rows.Next() {
		var b dedupe.ExistingBet
		var typ, numbers string
		if err := rows.Scan(&b.ScheduleID, &typ, &numbers, &b.Note); err != nil {
			return nil, fmt.Errorf("scan existing bet: %w", err)
		}
		b.PlayType = play.Type(typ)
		b.Numbers = splitNumbers(numbers)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load existing bets: %w", err)
	}
	return out, nil
}

// SaveTicket persists the ticket header and all bet rows in one
// transaction. Partial application would desynchronize the usage
// aggregates, so any failure rolls everything back.
func (s *HybridStore) SaveTicket(ctx context.Context, t model.Ticket) error {
	tx, err := s.PG.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin ticket tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO tickets (id, listero_id, schedule_ids, note, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.ListeroID, t.ScheduleIDs, t.Note, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket %s: %w", t.ID, err)
	}

	for _, b := range t.Bets {
		_, err = tx.Exec(ctx, `
			INSERT INTO bets (id, ticket_id, listero_id, schedule_id, play_type,
				numbers, amount_each, total_amount, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			b.ID, b.TicketID, b.ListeroID, b.ScheduleID, string(b.PlayType),
			strings.Join(b.Numbers, ","), b.AmountEach, b.TotalAmount, b.Note, b.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert bet %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ticket %s: %w", t.ID, err)
	}

	s.logger.Info("store.ticket_saved",
		zap.String("ticket_id", t.ID.String()),
		zap.String("listero_id", t.ListeroID),
		zap.Int("bets", len(t.Bets)))
	return nil
}

// SetJSON stores value as JSON in Redis with a TTL.
func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

// GetJSON loads a JSON value from Redis into dest. Returns ErrNotFound on
// a cache miss.
func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	return s.redis.Close()
}

// dayBounds returns the start (inclusive) and end (exclusive) of now's
// calendar day in loc. Using AddDate keeps the bounds correct across DST
// transitions.
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func splitNumbers(joined string) []string {
	var out []string
	for _, n := range strings.Split(joined, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

var _ Store = (*HybridStore)(nil)
