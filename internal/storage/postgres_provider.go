package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/lib/pq"
	"github.com/shaibs3/studyhub/internal/db"
	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const pqUniqueViolation = "23505"

// PostgresProvider runs raw SQL through lib/pq, guarded by a circuit breaker
// and per-statement retries.
type PostgresProvider struct {
	db     *sql.DB
	logger *zap.Logger
	cb     *gobreaker.CircuitBreaker
}

func NewPostgresProvider(config DbProviderConfig, logger *zap.Logger) (*PostgresProvider, error) {
	pgLogger := logger.Named("postgres")

	connStr, err := config.StringDetail("conn_str")
	if err != nil {
		return nil, err
	}
	pgLogger.Info("initializing Postgres provider")

	dbConn, err := sql.Open("postgres", connStr)
	if err != nil {
		pgLogger.Error("failed to open Postgres connection", zap.Error(err))
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}
	dbConn.SetMaxOpenConns(25)
	dbConn.SetMaxIdleConns(5)
	dbConn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		pgLogger.Error("failed to ping Postgres", zap.Error(err))
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	// Automatically create tables if they do not exist
	if _, err := dbConn.ExecContext(ctx, db.Schema); err != nil {
		pgLogger.Error("failed to create initial tables", zap.Error(err))
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to create initial tables: %w", err)
	}

	pgLogger.Info("Postgres provider initialized successfully")
	return &PostgresProvider{
		db:     dbConn,
		logger: pgLogger,
		cb:     newBreaker("PostgresDB"),
	}, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		// A constraint violation is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrDuplicate)
		},
	})
}

// translateError maps driver errors onto storage errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Message)
	}
	return err
}

func retryable(err error) bool {
	return !errors.Is(err, ErrDuplicate) &&
		!errors.Is(err, db.ErrNoAssignments) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// retryableInsert only retries when the driver reports that the statement
// was never sent. Any later failure may have committed the row.
func retryableInsert(err error) bool {
	return errors.Is(err, driver.ErrBadConn)
}

// withRetry runs fn through the circuit breaker with up to three attempts.
// fn must be safe to repeat.
func withRetry[T any](ctx context.Context, p *PostgresProvider, op string, fn func() (T, error)) (T, error) {
	return execute(ctx, p, op, retryable, fn)
}

// withInsertRetry is withRetry for INSERTs that create a new row.
func withInsertRetry[T any](ctx context.Context, p *PostgresProvider, op string, fn func() (T, error)) (T, error) {
	return execute(ctx, p, op, retryableInsert, fn)
}

func execute[T any](ctx context.Context, p *PostgresProvider, op string, retryIf retry.RetryIfFunc, fn func() (T, error)) (T, error) {
	var result T
	err := retry.Do(
		func() error {
			res, err := p.cb.Execute(func() (interface{}, error) {
				v, err := fn()
				return v, translateError(err)
			})
			if err != nil {
				return err
			}
			result = res.(T)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryIf),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("retrying "+op, zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	return result, err
}

func (p *PostgresProvider) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	return withInsertRetry(ctx, p, "CreateUser", func() (int64, error) {
		return db.InsertUser(ctx, p.db, username, passwordHash)
	})
}

func (p *PostgresProvider) GetUserByUsername(ctx context.Context, username string) (*db_model.User, error) {
	return withRetry(ctx, p, "GetUserByUsername", func() (*db_model.User, error) {
		return db.GetUserByUsername(ctx, p.db, username)
	})
}

func (p *PostgresProvider) CreateResource(ctx context.Context, r db_model.Resource) (int64, error) {
	return withInsertRetry(ctx, p, "CreateResource", func() (int64, error) {
		return db.InsertResource(ctx, p.db, r)
	})
}

func (p *PostgresProvider) ListResources(ctx context.Context) ([]db_model.Resource, error) {
	return withRetry(ctx, p, "ListResources", func() ([]db_model.Resource, error) {
		return db.GetResources(ctx, p.db)
	})
}

func (p *PostgresProvider) MarkViewed(ctx context.Context, userID, resourceID int64) (bool, error) {
	return withRetry(ctx, p, "MarkViewed", func() (bool, error) {
		return db.InsertMark(ctx, p.db, db.ViewedTable, userID, resourceID)
	})
}

func (p *PostgresProvider) ListViewed(ctx context.Context, userID int64) ([]int64, error) {
	return withRetry(ctx, p, "ListViewed", func() ([]int64, error) {
		return db.GetMarks(ctx, p.db, db.ViewedTable, userID)
	})
}

func (p *PostgresProvider) Pin(ctx context.Context, userID, resourceID int64) (bool, error) {
	return withRetry(ctx, p, "Pin", func() (bool, error) {
		return db.InsertMark(ctx, p.db, db.PinnedTable, userID, resourceID)
	})
}

func (p *PostgresProvider) Unpin(ctx context.Context, userID, resourceID int64) (bool, error) {
	return withRetry(ctx, p, "Unpin", func() (bool, error) {
		return db.DeleteMark(ctx, p.db, db.PinnedTable, userID, resourceID)
	})
}

func (p *PostgresProvider) ListPinned(ctx context.Context, userID int64) ([]int64, error) {
	return withRetry(ctx, p, "ListPinned", func() ([]int64, error) {
		return db.GetMarks(ctx, p.db, db.PinnedTable, userID)
	})
}

func (p *PostgresProvider) CreateTask(ctx context.Context, t db_model.Task) (int64, error) {
	return withInsertRetry(ctx, p, "CreateTask", func() (int64, error) {
		return db.InsertTask(ctx, p.db, t)
	})
}

func (p *PostgresProvider) ListTasks(ctx context.Context, userID int64) ([]db_model.Task, error) {
	return withRetry(ctx, p, "ListTasks", func() ([]db_model.Task, error) {
		return db.GetTasks(ctx, p.db, userID)
	})
}

func (p *PostgresProvider) UpdateTask(ctx context.Context, id, userID int64, update *db.UpdateBuilder) (int64, error) {
	return withRetry(ctx, p, "UpdateTask", func() (int64, error) {
		return db.UpdateTask(ctx, p.db, id, userID, update)
	})
}

func (p *PostgresProvider) DeleteTask(ctx context.Context, id, userID int64) (int64, error) {
	return withRetry(ctx, p, "DeleteTask", func() (int64, error) {
		return db.DeleteTask(ctx, p.db, id, userID)
	})
}

func (p *PostgresProvider) TaskExists(ctx context.Context, id int64) (bool, error) {
	return withRetry(ctx, p, "TaskExists", func() (bool, error) {
		return db.TaskExists(ctx, p.db, id)
	})
}

func (p *PostgresProvider) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresProvider) Close() error {
	return p.db.Close()
}
