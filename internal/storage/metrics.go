package storage

import (
	"context"

	"github.com/shaibs3/studyhub/internal/db"
	"github.com/shaibs3/studyhub/internal/db_model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instrumentedProvider counts every store call by operation and outcome.
type instrumentedProvider struct {
	next     Provider
	provider string
	ops      metric.Int64Counter
}

func newInstrumentedProvider(next Provider, provider string, meter metric.Meter) (*instrumentedProvider, error) {
	ops, err := meter.Int64Counter(
		"store_operations_total",
		metric.WithDescription("Storage provider calls by operation and outcome"),
	)
	if err != nil {
		return nil, err
	}
	return &instrumentedProvider{next: next, provider: provider, ops: ops}, nil
}

func (p *instrumentedProvider) record(ctx context.Context, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", p.provider),
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func (p *instrumentedProvider) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	id, err := p.next.CreateUser(ctx, username, passwordHash)
	p.record(ctx, "create_user", err)
	return id, err
}

func (p *instrumentedProvider) GetUserByUsername(ctx context.Context, username string) (*db_model.User, error) {
	u, err := p.next.GetUserByUsername(ctx, username)
	p.record(ctx, "get_user", err)
	return u, err
}

func (p *instrumentedProvider) CreateResource(ctx context.Context, r db_model.Resource) (int64, error) {
	id, err := p.next.CreateResource(ctx, r)
	p.record(ctx, "create_resource", err)
	return id, err
}

func (p *instrumentedProvider) ListResources(ctx context.Context) ([]db_model.Resource, error) {
	out, err := p.next.ListResources(ctx)
	p.record(ctx, "list_resources", err)
	return out, err
}

func (p *instrumentedProvider) MarkViewed(ctx context.Context, userID, resourceID int64) (bool, error) {
	added, err := p.next.MarkViewed(ctx, userID, resourceID)
	p.record(ctx, "mark_viewed", err)
	return added, err
}

func (p *instrumentedProvider) ListViewed(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := p.next.ListViewed(ctx, userID)
	p.record(ctx, "list_viewed", err)
	return ids, err
}

func (p *instrumentedProvider) Pin(ctx context.Context, userID, resourceID int64) (bool, error) {
	added, err := p.next.Pin(ctx, userID, resourceID)
	p.record(ctx, "pin", err)
	return added, err
}

func (p *instrumentedProvider) Unpin(ctx context.Context, userID, resourceID int64) (bool, error) {
	removed, err := p.next.Unpin(ctx, userID, resourceID)
	p.record(ctx, "unpin", err)
	return removed, err
}

func (p *instrumentedProvider) ListPinned(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := p.next.ListPinned(ctx, userID)
	p.record(ctx, "list_pinned", err)
	return ids, err
}

func (p *instrumentedProvider) CreateTask(ctx context.Context, t db_model.Task) (int64, error) {
	id, err := p.next.CreateTask(ctx, t)
	p.record(ctx, "create_task", err)
	return id, err
}

func (p *instrumentedProvider) ListTasks(ctx context.Context, userID int64) ([]db_model.Task, error) {
	out, err := p.next.ListTasks(ctx, userID)
	p.record(ctx, "list_tasks", err)
	return out, err
}

func (p *instrumentedProvider) UpdateTask(ctx context.Context, id, userID int64, update *db.UpdateBuilder) (int64, error) {
	n, err := p.next.UpdateTask(ctx, id, userID, update)
	p.record(ctx, "update_task", err)
	return n, err
}

func (p *instrumentedProvider) DeleteTask(ctx context.Context, id, userID int64) (int64, error) {
	n, err := p.next.DeleteTask(ctx, id, userID)
	p.record(ctx, "delete_task", err)
	return n, err
}

func (p *instrumentedProvider) TaskExists(ctx context.Context, id int64) (bool, error) {
	ok, err := p.next.TaskExists(ctx, id)
	p.record(ctx, "task_exists", err)
	return ok, err
}

func (p *instrumentedProvider) Ping(ctx context.Context) error {
	return p.next.Ping(ctx)
}

func (p *instrumentedProvider) Close() error {
	return p.next.Close()
}
