package dao

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// startPostgres boots a throwaway postgres container for tests that need
// the real unique indexes and transaction semantics. Skipped in -short
// runs and when docker is not reachable.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=tombola_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	_ = resource.Expire(300)

	dsn := fmt.Sprintf(
		"host=localhost port=%s user=postgres password=secret dbname=tombola_test sslmode=disable",
		resource.GetPort("5432/tcp"),
	)

	var db *gorm.DB
	require.NoError(t, pool.Retry(func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}

		return sqlDB.Ping()
	}))

	require.NoError(t, InitTables(db))

	return db
}

func TestIntegration_DrawAndUniqueConstraints(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	tombolaDAO := NewTombolaDAO(db)
	participantDAO := NewParticipantDAO(db)
	couponDAO := NewCouponDAO(db)
	commissionDAO := NewCommissionDAO(db)

	tombola, err := tombolaDAO.Insert(ctx, Tombola{
		Title:       "Grande Tombola",
		TicketPrice: 500,
		DrawDate:    time.Now().Add(-time.Hour),
		Jackpot:     "500 000 FCFA",
		MaxWinners:  1,
		Status:      "active",
	})
	require.NoError(t, err)

	coupon, err := couponDAO.Insert(ctx, Coupon{
		Code:               "MAR1234",
		TombolaID:          tombola.ID,
		CreatorName:        "Marie",
		CreatorPhone:       "074000001",
		DiscountPercentage: 25,
		IsActive:           true,
	})
	require.NoError(t, err)

	t.Run("duplicate coupon code", func(t *testing.T) {
		_, err := couponDAO.Insert(ctx, Coupon{
			Code:               "MAR1234",
			TombolaID:          tombola.ID,
			CreatorName:        "Paul",
			CreatorPhone:       "074000002",
			DiscountPercentage: 10,
			IsActive:           true,
		})
		assert.ErrorIs(t, err, ErrCouponCodeExists)
	})

	participant, err := participantDAO.Insert(ctx, Participant{
		Name:          "Jean Mba",
		Phone:         "066123456",
		TombolaID:     tombola.ID,
		TicketNumber:  "TK-000001-ABC",
		PaymentStatus: "confirmed",
	})
	require.NoError(t, err)

	t.Run("duplicate ticket number", func(t *testing.T) {
		_, err := participantDAO.Insert(ctx, Participant{
			Name:          "Autre",
			Phone:         "066123457",
			TombolaID:     tombola.ID,
			TicketNumber:  "TK-000001-ABC",
			PaymentStatus: "confirmed",
		})
		assert.ErrorIs(t, err, ErrTicketNumberExists)
	})

	_, err = couponDAO.InsertUse(ctx, CouponUse{
		CouponID:       coupon.ID,
		ParticipantID:  participant.ID,
		TombolaID:      tombola.ID,
		OriginalPrice:  500,
		DiscountAmount: 125,
		FinalPrice:     375,
	})
	require.NoError(t, err)

	t.Run("participant reload joins the redemption", func(t *testing.T) {
		reloaded, err := participantDAO.FindByID(ctx, participant.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.CouponUse)
		assert.Equal(t, 125, reloaded.CouponUse.DiscountAmount)
		assert.Equal(t, 375, reloaded.CouponUse.FinalPrice)
	})

	t.Run("sponsor payment is idempotent per tombola", func(t *testing.T) {
		payment := SponsorPayment{
			SponsorID:     coupon.ID,
			TombolaID:     tombola.ID,
			Amount:        506,
			SponsorName:   "Marie",
			SponsorPhone:  "074000001",
			PaymentStatus: "paid",
			PaymentDate:   time.Now(),
			ReceiptNumber: "REC-1700000000-AB12",
		}

		_, err := commissionDAO.InsertPayment(ctx, payment)
		require.NoError(t, err)

		payment.ReceiptNumber = "REC-1700000001-CD34"
		_, err = commissionDAO.InsertPayment(ctx, payment)
		assert.ErrorIs(t, err, ErrSponsorPaymentExists)
	})

	t.Run("draw completes once and archives used coupons", func(t *testing.T) {
		winners, err := tombolaDAO.CompleteDraw(ctx, tombola.ID, []Winner{
			{ParticipantID: participant.ID, TombolaID: tombola.ID, PrizeAmount: "500 000 FCFA", PrizeRank: 1},
		})
		require.NoError(t, err)
		require.Len(t, winners, 1)
		assert.NotZero(t, winners[0].ID)

		_, err = tombolaDAO.CompleteDraw(ctx, tombola.ID, []Winner{
			{ParticipantID: participant.ID, TombolaID: tombola.ID, PrizeAmount: "500 000 FCFA", PrizeRank: 1},
		})
		assert.ErrorIs(t, err, ErrTombolaNotActive)

		archived, err := couponDAO.FindByID(ctx, coupon.ID)
		require.NoError(t, err)
		assert.True(t, archived.Archived)
		assert.False(t, archived.IsActive)
	})
}
