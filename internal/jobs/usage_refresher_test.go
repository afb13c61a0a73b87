package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockDB struct {
	execErr error
	sqls    []string
}

func (m *mockDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	m.sqls = append(m.sqls, sql)
	return pgconn.CommandTag{}, m.execErr
}

type mockEventPublisher struct {
	published int
	err       error
}

func (m *mockEventPublisher) PublishUsageRefreshed(_ context.Context, _ time.Time, _ time.Duration) error {
	m.published++
	return m.err
}

func TestRunOnce_RefreshesAndPublishes(t *testing.T) {
	db := &mockDB{}
	pub := &mockEventPublisher{}
	r := NewUsageRefresher(zap.NewNop(), db, pub, time.Minute)

	r.runOnce(context.Background())

	assert.Len(t, db.sqls, 1)
	assert.Contains(t, db.sqls[0], "daily_usage")
	assert.Equal(t, 1, pub.published)
}

func TestRunOnce_DBErrorSkipsPublish(t *testing.T) {
	db := &mockDB{execErr: errors.New("view busy")}
	pub := &mockEventPublisher{}
	r := NewUsageRefresher(zap.NewNop(), db, pub, time.Minute)

	r.runOnce(context.Background())

	assert.Equal(t, 0, pub.published)
}

func TestRunOnce_PublishErrorIsNonFatal(t *testing.T) {
	db := &mockDB{}
	pub := &mockEventPublisher{err: errors.New("nats down")}
	r := NewUsageRefresher(zap.NewNop(), db, pub, time.Minute)

	// Must not panic or error — refresh already landed.
	r.runOnce(context.Background())

	assert.Equal(t, 1, pub.published)
}

func TestStop_HaltsLoop(t *testing.T) {
	db := &mockDB{}
	pub := &mockEventPublisher{}
	r := NewUsageRefresher(zap.NewNop(), db, pub, time.Hour)

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	r.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
}
