package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gytx-dev/tombola-api/internal/domain"
)

func activeTombola(id uint, price int) *domain.Tombola {
	return &domain.Tombola{
		ID:          id,
		Title:       "Grande Tombola",
		TicketPrice: price,
		DrawDate:    time.Now().Add(24 * time.Hour),
		Status:      domain.TombolaStatusActive,
	}
}

func TestDiscountAmount_RoundsDown(t *testing.T) {
	assert.Equal(t, 125, DiscountAmount(500, 25))
	assert.Equal(t, 249, DiscountAmount(999, 25))
	assert.Equal(t, 0, DiscountAmount(500, 0))
	assert.Equal(t, 500, DiscountAmount(500, 100))
}

func TestCouponService_Create_GeneratesCodeFromName(t *testing.T) {
	repo := newFakeCouponRepo()
	svc := NewCouponService(repo, newFakeCommissionRepo(testTiers), newTestRNG())

	created, err := svc.Create(context.Background(), domain.Coupon{
		TombolaID:          7,
		CreatorName:        "Marie-Claire Ondo",
		CreatorPhone:       "074 00 00 01",
		DiscountPercentage: 25,
	})
	require.NoError(t, err)

	assert.Len(t, created.Code, 7)
	assert.Equal(t, "MAR", created.Code[:3])
	assert.True(t, created.IsActive)
}

func TestCouponService_Create_ShortName(t *testing.T) {
	svc := NewCouponService(newFakeCouponRepo(), newFakeCommissionRepo(testTiers), newTestRNG())

	created, err := svc.Create(context.Background(), domain.Coupon{
		TombolaID:          7,
		CreatorName:        "Bo",
		CreatorPhone:       "074000001",
		DiscountPercentage: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "BOX", created.Code[:3])
}

func TestCouponService_Create_RejectsBadDiscount(t *testing.T) {
	svc := NewCouponService(newFakeCouponRepo(), newFakeCommissionRepo(testTiers), newTestRNG())

	_, err := svc.Create(context.Background(), domain.Coupon{DiscountPercentage: 120})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestCouponService_Validate(t *testing.T) {
	repo := newFakeCouponRepo()
	repo.add(domain.Coupon{
		ID: 1, Code: "MAR1234", TombolaID: 7,
		CreatorName: "Marie", CreatorPhone: "074 00 00 01",
		DiscountPercentage: 25, IsActive: true,
		Tombola: activeTombola(7, 500),
	})
	repo.add(domain.Coupon{
		ID: 2, Code: "PAU9999", TombolaID: 8,
		CreatorPhone: "074000002", DiscountPercentage: 10, IsActive: true,
		Tombola: &domain.Tombola{ID: 8, TicketPrice: 500, Status: domain.TombolaStatusCompleted},
	})

	svc := NewCouponService(repo, newFakeCommissionRepo(testTiers), newTestRNG())
	ctx := context.Background()

	t.Run("valid coupon", func(t *testing.T) {
		v, err := svc.Validate(ctx, "mar1234", 7, "066123456")
		require.NoError(t, err)
		assert.True(t, v.Valid)
		assert.Equal(t, 125, v.DiscountAmount)
		require.NotNil(t, v.Coupon)
		assert.Equal(t, uint(1), v.Coupon.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		v, err := svc.Validate(ctx, "NOPE000", 7, "066123456")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonCouponNotFound, v.Reason)
	})

	t.Run("wrong tombola", func(t *testing.T) {
		v, err := svc.Validate(ctx, "MAR1234", 99, "066123456")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonWrongTombola, v.Reason)
	})

	t.Run("inactive tombola", func(t *testing.T) {
		v, err := svc.Validate(ctx, "PAU9999", 8, "066123456")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonTombolaInactive, v.Reason)
	})

	t.Run("closed window after draw date", func(t *testing.T) {
		repo.add(domain.Coupon{
			ID: 3, Code: "LUC5555", TombolaID: 9,
			CreatorPhone: "074000003", DiscountPercentage: 10, IsActive: true,
			Tombola: &domain.Tombola{
				ID: 9, TicketPrice: 500,
				DrawDate: time.Now().Add(-time.Hour),
				Status:   domain.TombolaStatusActive,
			},
		})

		v, err := svc.Validate(ctx, "LUC5555", 9, "066123456")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonWindowClosed, v.Reason)
	})

	t.Run("creator self-use rejected on normalized phones", func(t *testing.T) {
		v, err := svc.Validate(ctx, "MAR1234", 7, "074000001")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonSelfUse, v.Reason)
	})

	t.Run("archived coupon invisible", func(t *testing.T) {
		require.NoError(t, svc.Archive(ctx, 1))

		v, err := svc.Validate(ctx, "MAR1234", 7, "066123456")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonCouponNotFound, v.Reason)
	})
}

func TestCouponService_Redeem_UpdatesAggregates(t *testing.T) {
	repo := newFakeCouponRepo()
	coupon := domain.Coupon{
		ID: 1, Code: "MAR1234", TombolaID: 7,
		DiscountPercentage: 25, IsActive: true,
	}
	repo.add(coupon)

	svc := NewCouponService(repo, newFakeCommissionRepo(testTiers), newTestRNG())
	ctx := context.Background()

	use, err := svc.Redeem(ctx, coupon, 42, 500)
	require.NoError(t, err)

	assert.Equal(t, 500, use.OriginalPrice)
	assert.Equal(t, 125, use.DiscountAmount)
	assert.Equal(t, 375, use.FinalPrice)
	assert.Equal(t, 250, use.CommissionEarned)

	got := repo.coupons[1]
	assert.Equal(t, 1, got.TotalUses)
	assert.Equal(t, 375, got.TotalRevenue)
	// One ticket is below every tier threshold.
	assert.Equal(t, 0, got.TotalCommission)
}

func TestCouponService_Delete_RejectsUsedCoupon(t *testing.T) {
	repo := newFakeCouponRepo()
	coupon := domain.Coupon{ID: 1, Code: "MAR1234", TombolaID: 7, DiscountPercentage: 25, IsActive: true}
	repo.add(coupon)

	svc := NewCouponService(repo, newFakeCommissionRepo(testTiers), newTestRNG())
	ctx := context.Background()

	_, err := svc.Redeem(ctx, coupon, 42, 500)
	require.NoError(t, err)

	err = svc.Delete(ctx, 1)
	assert.ErrorIs(t, err, ErrCouponInUse)

	// Archiving stays available for used coupons.
	assert.NoError(t, svc.Archive(ctx, 1))
}

func TestCouponService_SponsorDashboard(t *testing.T) {
	repo := newFakeCouponRepo()
	repo.add(domain.Coupon{
		ID: 1, Code: "MAR1234", TombolaID: 7,
		CreatorPhone: "074000001",
		TotalUses:    18, TotalRevenue: 6750, TotalCommission: 506,
		IsActive: true,
	})
	repo.byPhone["074000001"] = []uint{1}
	repo.bonuses[1] = 100

	svc := NewCouponService(repo, newFakeCommissionRepo(testTiers), newTestRNG())

	stats, err := svc.SponsorDashboard(context.Background(), "074 00 00 01")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 506, stats[0].TotalCommission)
	assert.Equal(t, 100, stats[0].BonusCommission)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "24174000001", normalizePhone("+241 74 00 00 01"))
	assert.Equal(t, "074000001", normalizePhone("074-000-001"))
}
