package health

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campusconnect/campus-connect-api/internal/database"
)

var errQueueSaturated = errors.New("notification queue saturated")

func resultOf(name string, err error) CheckResult {
	if err != nil {
		return CheckResult{Name: name, Healthy: false, Error: err.Error()}
	}
	return CheckResult{Name: name, Healthy: true}
}

// DBChecker fails when the database is unreachable or the account schema has
// not been migrated yet.
type DBChecker struct {
	db *gorm.DB
}

// NewDBChecker returns nil for a nil handle so the runner skips it.
func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	return resultOf("database", c.check(ctx))
}

func (c *DBChecker) check(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if pending := database.PendingMigrations(c.db.WithContext(ctx)); len(pending) > 0 {
		return fmt.Errorf("schema not migrated: %s", strings.Join(pending, ", "))
	}
	return nil
}

type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker returns nil when Redis is disabled.
func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	return resultOf("redis", c.client.Ping(ctx).Err())
}

// QueueBacklog reports the state of an outbound notification queue.
type QueueBacklog interface {
	Backlog() (queued, capacity int, closed bool)
}

// NotificationChecker marks the instance unready while the email queue is
// full or shut down, since registrations would lose their codes.
type NotificationChecker struct {
	queue QueueBacklog
}

func NewNotificationChecker(queue QueueBacklog) Checker {
	if queue == nil {
		return nil
	}
	return &NotificationChecker{queue: queue}
}

func (c *NotificationChecker) Check(context.Context) CheckResult {
	queued, capacity, closed := c.queue.Backlog()
	switch {
	case closed:
		return resultOf("notifications", errors.New("notification dispatcher closed"))
	case capacity > 0 && queued >= capacity:
		return resultOf("notifications", fmt.Errorf("%w: %d/%d", errQueueSaturated, queued, capacity))
	default:
		return resultOf("notifications", nil)
	}
}
