package changelog

import (
	"context"
	"sync"

	"github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/tool"
	"github.com/remedyhub/entitlement/pkg/types"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const queueSize = 1024

type job struct {
	ctx  context.Context
	row  any
	what string
}

// Service writes audit rows off the request path, one at a time in submission
// order so later states of an event log overwrite earlier ones. A Service with
// a nil db drops every row, which is what tests and the in-memory store use.
// Rows submitted while the queue is full or after Close are logged and dropped.
type Service struct {
	write  func(ctx context.Context, row any) error
	log    *zap.SugaredLogger
	queue  chan job
	start  sync.Once
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return newService(db, log, queueSize)
}

func newService(db *gorm.DB, log *zap.SugaredLogger, size int) *Service {
	s := &Service{log: log, queue: make(chan job, size)}
	if db != nil {
		s.write = func(ctx context.Context, row any) error {
			return db.WithContext(ctx).Save(row).Error
		}
	}
	return s
}

// SaveSubscriptionLog asynchronously persists a before/after snapshot of a record change.
func (s *Service) SaveSubscriptionLog(ctx context.Context, userID string, before, after *models.UserEntitlement, reason types.SubscriptionChangeReason) {
	row := &models.SubscriptionLog{
		UserID: userID,
		Reason: reason,
		Before: datatypes.NewJSONType(before.Clone()),
		After:  datatypes.NewJSONType(after.Clone()),
		Extra:  datatypes.JSONMap{"trace_id": logctx.TraceID(ctx)},
	}
	s.save(ctx, row, "subscription log")
}

// SaveEventLog asynchronously upserts a processor event log. Nil input is ignored.
func (s *Service) SaveEventLog(ctx context.Context, row *models.SubscriptionEventLog) {
	if row == nil {
		return
	}
	if row.ID == "" {
		row.ID = tool.GenerateUUIDV7()
	}
	if row.TraceID == "" {
		row.TraceID = logctx.TraceID(ctx)
	}
	cp := *row
	s.save(ctx, &cp, "subscription event log")
}

func (s *Service) save(ctx context.Context, row any, what string) {
	if s == nil || s.write == nil {
		return
	}
	if l, ok := row.(*models.SubscriptionLog); ok && l.ID == "" {
		l.ID = tool.GenerateUUIDV7()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		logctx.FromCtx(ctx, s.log).Warnf("changelog closed, dropping %s", what)
		return
	}
	s.start.Do(func() { go s.run() })
	s.wg.Add(1)
	// detach from request cancellation, keep trace values for the gorm logger
	select {
	case s.queue <- job{ctx: context.WithoutCancel(ctx), row: row, what: what}:
	default:
		s.wg.Done()
		logctx.FromCtx(ctx, s.log).Errorf("changelog queue full, dropping %s", what)
	}
}

func (s *Service) run() {
	for j := range s.queue {
		if err := s.write(j.ctx, j.row); err != nil {
			logctx.FromCtx(j.ctx, s.log).Errorf("failed to save %s: %v", j.what, err)
		}
		s.wg.Done()
	}
}

// Wait blocks until pending writes finish.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

// Close stops accepting rows, flushes the queue and stops the worker.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Service) {
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			s.Close()
			return nil
		}})
	}),
)
