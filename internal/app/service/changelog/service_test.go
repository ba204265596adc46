package changelog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNilServiceIsNoop(t *testing.T) {
	var s *Service
	assert.NotPanics(t, func() {
		s.SaveSubscriptionLog(context.Background(), "u1", nil, models.NewUserEntitlement("u1"), types.SubscriptionChangeReasonTrialStart)
		s.SaveEventLog(context.Background(), &models.SubscriptionEventLog{UserID: "u1"})
		s.Wait()
		s.Close()
	})
}

func TestNoDBAssignsIDs(t *testing.T) {
	s := New(nil, zap.NewNop().Sugar())
	row := &models.SubscriptionEventLog{UserID: "u1", Status: models.SubscriptionEventLogStatusReceived}
	s.SaveEventLog(context.Background(), row)
	s.Wait()
	assert.NotEmpty(t, row.ID, "callers reuse the id to update the row's status later")
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := newService(nil, zap.New(core).Sugar(), 1)

	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	var (
		mu      sync.Mutex
		written []string
	)
	s.write = func(_ context.Context, row any) error {
		entered <- struct{}{}
		<-release
		mu.Lock()
		written = append(written, row.(*models.SubscriptionEventLog).UserID)
		mu.Unlock()
		return nil
	}

	ctx := context.Background()
	s.SaveEventLog(ctx, &models.SubscriptionEventLog{UserID: "u1"})
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("worker never picked up the first row")
	}
	// worker is busy, so this one fills the single slot and the next is dropped
	s.SaveEventLog(ctx, &models.SubscriptionEventLog{UserID: "u2"})

	done := make(chan struct{})
	go func() {
		s.SaveEventLog(ctx, &models.SubscriptionEventLog{UserID: "u3"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("save blocked on a full queue")
	}
	assert.Equal(t, 1, logs.FilterMessage("changelog queue full, dropping subscription event log").Len())

	close(release)
	s.Close()
	assert.Equal(t, []string{"u1", "u2"}, written)

	assert.NotPanics(t, func() {
		s.SaveEventLog(ctx, &models.SubscriptionEventLog{UserID: "u4"})
		s.Close()
	})
	require.Equal(t, 1, logs.FilterMessage("changelog closed, dropping subscription event log").Len())
	assert.Len(t, written, 2)
}
