package changelog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/types"
)

func TestService_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SubscriptionLog{}, &models.SubscriptionEventLog{}))

	s := New(db, zap.NewNop().Sugar())

	t.Run("event log ends in its last saved state", func(t *testing.T) {
		row := &models.SubscriptionEventLog{EventID: "evt-1", UserID: "u1", Status: models.SubscriptionEventLogStatusReceived}
		s.SaveEventLog(ctx, row)
		final := *row
		final.Status = models.SubscriptionEventLogStatusHandled
		s.SaveEventLog(ctx, &final)
		s.Wait()

		var got models.SubscriptionEventLog
		require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
		require.Equal(t, models.SubscriptionEventLogStatusHandled, got.Status)
	})

	t.Run("subscription log keeps before and after", func(t *testing.T) {
		before := models.NewUserEntitlement("u2")
		after := before.Clone()
		after.PurchasedTier = types.SubscriptionTierGold
		s.SaveSubscriptionLog(ctx, "u2", before, after, types.SubscriptionChangeReasonProcessorEvent)
		s.Wait()

		var got models.SubscriptionLog
		require.NoError(t, db.First(&got, "user_id = ?", "u2").Error)
		require.Equal(t, types.SubscriptionChangeReasonProcessorEvent, got.Reason)
		require.Equal(t, types.SubscriptionTierBronze, got.Before.Data().PurchasedTier)
		require.Equal(t, types.SubscriptionTierGold, got.After.Data().PurchasedTier)
	})
}
