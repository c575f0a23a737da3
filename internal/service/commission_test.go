package service

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository"
)

var testTiers = []domain.CommissionTier{
	{ID: 1, Name: "Bronze", MinTickets: 5, CommissionPercentage: 5},
	{ID: 2, Name: "Argent", MinTickets: 15, CommissionPercentage: 7.5},
	{ID: 3, Name: "Or", MinTickets: 30, CommissionPercentage: 10},
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name        string
		ticketsSold int
		wantTier    string
	}{
		{"below every threshold", 4, ""},
		{"exactly at first threshold", 5, "Bronze"},
		{"between thresholds", 14, "Bronze"},
		{"exactly at second threshold", 15, "Argent"},
		{"top tier", 100, "Or"},
		{"zero tickets", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := TierFor(testTiers, tt.ticketsSold)
			if tt.wantTier == "" {
				assert.Nil(t, tier)
				return
			}

			require.NotNil(t, tier)
			assert.Equal(t, tt.wantTier, tier.Name)
		})
	}
}

func TestTierFor_MonotonicInTickets(t *testing.T) {
	// More tickets never selects a lower tier.
	prev := -1.0
	for sold := 0; sold <= 50; sold++ {
		pct := 0.0
		if tier := TierFor(testTiers, sold); tier != nil {
			pct = tier.CommissionPercentage
		}
		assert.GreaterOrEqual(t, pct, prev, "tier percentage dropped at %d tickets", sold)
		prev = pct
	}
}

func TestCommissionAmount(t *testing.T) {
	// 18 tickets at 500 FCFA discounted to 375 = 6750 revenue; Argent
	// tier at 7.5% pays 506 after rounding.
	assert.Equal(t, 506, CommissionAmount(6750, 7.5))

	assert.Equal(t, 0, CommissionAmount(0, 10))
	assert.Equal(t, 100, CommissionAmount(1000, 10))
	assert.Equal(t, 13, CommissionAmount(125, 10)) // 12.5 rounds up
}

type fakeCommissionRepo struct {
	tiers     []domain.CommissionTier
	payments  map[uint]domain.SponsorPayment
	insertErr error
}

func newFakeCommissionRepo(tiers []domain.CommissionTier) *fakeCommissionRepo {
	return &fakeCommissionRepo{
		tiers:    tiers,
		payments: make(map[uint]domain.SponsorPayment),
	}
}

func (f *fakeCommissionRepo) GetTiers(_ context.Context, _ uint) ([]domain.CommissionTier, error) {
	return f.tiers, nil
}

func (f *fakeCommissionRepo) ReplaceTiers(_ context.Context, _ uint, tiers []domain.CommissionTier) ([]domain.CommissionTier, error) {
	f.tiers = tiers
	return tiers, nil
}

func (f *fakeCommissionRepo) GetPaidPayment(_ context.Context, sponsorID, _ uint) (domain.SponsorPayment, error) {
	p, ok := f.payments[sponsorID]
	if !ok {
		return domain.SponsorPayment{}, repository.ErrSponsorPaymentNotFound
	}
	return p, nil
}

func (f *fakeCommissionRepo) CreatePayment(_ context.Context, p domain.SponsorPayment) (domain.SponsorPayment, error) {
	if f.insertErr != nil {
		return domain.SponsorPayment{}, f.insertErr
	}
	if _, ok := f.payments[p.SponsorID]; ok {
		return domain.SponsorPayment{}, repository.ErrSponsorPaymentExists
	}
	p.ID = uint(len(f.payments) + 1)
	f.payments[p.SponsorID] = p
	return p, nil
}

func (f *fakeCommissionRepo) GetPaymentsByTombola(_ context.Context, _ uint) ([]domain.SponsorPayment, error) {
	out := make([]domain.SponsorPayment, 0, len(f.payments))
	for _, p := range f.payments {
		out = append(out, p)
	}
	return out, nil
}

type fakeCouponRepo struct {
	coupons           map[uint]domain.Coupon
	uses              map[uint][]domain.CouponUse
	bonuses           map[uint]int
	byPhone           map[string][]uint
	usesByParticipant map[uint]domain.CouponUse
	activeCodes       map[string]uint
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{
		coupons:           make(map[uint]domain.Coupon),
		uses:              make(map[uint][]domain.CouponUse),
		bonuses:           make(map[uint]int),
		byPhone:           make(map[string][]uint),
		usesByParticipant: make(map[uint]domain.CouponUse),
		activeCodes:       make(map[string]uint),
	}
}

func (f *fakeCouponRepo) add(c domain.Coupon) {
	f.coupons[c.ID] = c
	if c.IsActive {
		f.activeCodes[c.Code] = c.ID
	}
}

func (f *fakeCouponRepo) Create(_ context.Context, c domain.Coupon) (domain.Coupon, error) {
	if _, ok := f.activeCodes[c.Code]; ok {
		return domain.Coupon{}, repository.ErrCouponCodeExists
	}
	c.ID = uint(len(f.coupons) + 1)
	f.add(c)
	return c, nil
}

func (f *fakeCouponRepo) GetByID(_ context.Context, id uint) (domain.Coupon, error) {
	c, ok := f.coupons[id]
	if !ok {
		return domain.Coupon{}, repository.ErrCouponNotFound
	}
	return c, nil
}

func (f *fakeCouponRepo) GetActiveByCode(_ context.Context, code string) (domain.Coupon, error) {
	id, ok := f.activeCodes[code]
	if !ok {
		return domain.Coupon{}, repository.ErrCouponNotFound
	}
	return f.coupons[id], nil
}

func (f *fakeCouponRepo) ActiveCodeExists(_ context.Context, code string) (bool, error) {
	_, ok := f.activeCodes[code]
	return ok, nil
}

func (f *fakeCouponRepo) GetByTombola(_ context.Context, tombolaID uint) ([]domain.Coupon, error) {
	var out []domain.Coupon
	for _, c := range f.coupons {
		if c.TombolaID == tombolaID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCouponRepo) GetByTombolaOrderedByUses(ctx context.Context, tombolaID uint) ([]domain.Coupon, error) {
	out, _ := f.GetByTombola(ctx, tombolaID)
	sort.Slice(out, func(i, j int) bool { return out[i].TotalUses > out[j].TotalUses })
	return out, nil
}

func (f *fakeCouponRepo) GetByCreatorPhone(_ context.Context, phone string) ([]domain.Coupon, error) {
	var out []domain.Coupon
	for _, id := range f.byPhone[phone] {
		out = append(out, f.coupons[id])
	}
	return out, nil
}

func (f *fakeCouponRepo) UpdateDiscount(_ context.Context, id uint, pct int) (domain.Coupon, error) {
	c, ok := f.coupons[id]
	if !ok {
		return domain.Coupon{}, repository.ErrCouponNotFound
	}
	c.DiscountPercentage = pct
	f.coupons[id] = c
	return c, nil
}

func (f *fakeCouponRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.coupons[id]; !ok {
		return repository.ErrCouponNotFound
	}
	delete(f.coupons, id)
	return nil
}

func (f *fakeCouponRepo) Archive(_ context.Context, id uint) error {
	c, ok := f.coupons[id]
	if !ok {
		return repository.ErrCouponNotFound
	}
	c.Archived = true
	c.IsActive = false
	delete(f.activeCodes, c.Code)
	f.coupons[id] = c
	return nil
}

func (f *fakeCouponRepo) SetParrainContacted(_ context.Context, id uint, contacted bool) error {
	c, ok := f.coupons[id]
	if !ok {
		return repository.ErrCouponNotFound
	}
	c.ParrainContacted = contacted
	f.coupons[id] = c
	return nil
}

func (f *fakeCouponRepo) UpdateAggregates(_ context.Context, id uint, uses, revenue, commission int) error {
	c, ok := f.coupons[id]
	if !ok {
		return repository.ErrCouponNotFound
	}
	c.TotalUses = uses
	c.TotalRevenue = revenue
	c.TotalCommission = commission
	f.coupons[id] = c
	return nil
}

func (f *fakeCouponRepo) RecordUse(_ context.Context, use domain.CouponUse) (domain.CouponUse, error) {
	use.ID = uint(len(f.uses[use.CouponID]) + 1)
	use.UsedAt = time.Now()
	f.uses[use.CouponID] = append(f.uses[use.CouponID], use)
	f.usesByParticipant[use.ParticipantID] = use
	return use, nil
}

func (f *fakeCouponRepo) GetUses(_ context.Context, couponID uint) ([]domain.CouponUse, error) {
	return f.uses[couponID], nil
}

func (f *fakeCouponRepo) CountUses(_ context.Context, couponID uint) (int, error) {
	return len(f.uses[couponID]), nil
}

func (f *fakeCouponRepo) GetUseByParticipant(_ context.Context, participantID uint) (domain.CouponUse, error) {
	use, ok := f.usesByParticipant[participantID]
	if !ok {
		return domain.CouponUse{}, repository.ErrCouponUseNotFound
	}
	return use, nil
}

func (f *fakeCouponRepo) GetBonusForCoupon(_ context.Context, couponID uint) (int, error) {
	return f.bonuses[couponID], nil
}

type fakeTombolaRepo struct {
	tombolas     map[uint]domain.Tombola
	completeErr  error
	drawnWinners []domain.Winner
}

func newFakeTombolaRepo() *fakeTombolaRepo {
	return &fakeTombolaRepo{tombolas: make(map[uint]domain.Tombola)}
}

func (f *fakeTombolaRepo) Create(_ context.Context, t domain.Tombola) (domain.Tombola, error) {
	t.ID = uint(len(f.tombolas) + 1)
	f.tombolas[t.ID] = t
	return t, nil
}

func (f *fakeTombolaRepo) GetByID(_ context.Context, id uint) (domain.Tombola, error) {
	t, ok := f.tombolas[id]
	if !ok {
		return domain.Tombola{}, repository.ErrTombolaNotFound
	}
	return t, nil
}

func (f *fakeTombolaRepo) GetAll(_ context.Context) ([]domain.Tombola, error) {
	out := make([]domain.Tombola, 0, len(f.tombolas))
	for _, t := range f.tombolas {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTombolaRepo) GetActive(_ context.Context) (domain.Tombola, error) {
	for _, t := range f.tombolas {
		if t.IsActive() {
			return t, nil
		}
	}
	return domain.Tombola{}, repository.ErrTombolaNotFound
}

func (f *fakeTombolaRepo) Update(_ context.Context, t domain.Tombola) (domain.Tombola, error) {
	if _, ok := f.tombolas[t.ID]; !ok {
		return domain.Tombola{}, repository.ErrTombolaNotFound
	}
	f.tombolas[t.ID] = t
	return t, nil
}

func (f *fakeTombolaRepo) Delete(_ context.Context, id uint) error {
	delete(f.tombolas, id)
	return nil
}

func (f *fakeTombolaRepo) Cancel(_ context.Context, id uint) error {
	t := f.tombolas[id]
	t.Status = domain.TombolaStatusCancelled
	f.tombolas[id] = t
	return nil
}

func (f *fakeTombolaRepo) CompleteDraw(_ context.Context, tombolaID uint, winners []domain.Winner) ([]domain.Winner, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	t := f.tombolas[tombolaID]
	if !t.IsActive() {
		return nil, repository.ErrTombolaNotActive
	}
	t.Status = domain.TombolaStatusCompleted
	f.tombolas[tombolaID] = t
	for i := range winners {
		winners[i].ID = uint(i + 1)
	}
	f.drawnWinners = winners
	return winners, nil
}

func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestCommissionService_PaySponsor(t *testing.T) {
	ctx := context.Background()

	couponRepo := newFakeCouponRepo()
	couponRepo.add(domain.Coupon{
		ID: 1, Code: "MAR1234", TombolaID: 7,
		CreatorName: "Marie", CreatorPhone: "074000001",
		TotalUses: 18, TotalRevenue: 6750, TotalCommission: 506,
		IsActive: true,
	})
	couponRepo.bonuses[1] = 100

	repo := newFakeCommissionRepo(testTiers)
	svc := NewCommissionService(repo, couponRepo, newFakeTombolaRepo(), newTestRNG())

	paid, err := svc.PaySponsor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 606, paid.Amount)
	assert.Equal(t, domain.SponsorPaymentStatusPaid, paid.PaymentStatus)
	assert.True(t, strings.HasPrefix(paid.ReceiptNumber, "REC-"))

	// A second payout returns the existing payment, never a second row.
	again, err := svc.PaySponsor(ctx, 1)
	require.ErrorIs(t, err, ErrSponsorAlreadyPaid)
	assert.Equal(t, paid.ID, again.ID)
	assert.Equal(t, paid.ReceiptNumber, again.ReceiptNumber)
	assert.Len(t, repo.payments, 1)
}

func TestCommissionService_PaySponsor_NothingDue(t *testing.T) {
	couponRepo := newFakeCouponRepo()
	couponRepo.add(domain.Coupon{ID: 2, Code: "PAU0001", TombolaID: 7, IsActive: true})

	svc := NewCommissionService(newFakeCommissionRepo(testTiers), couponRepo, newFakeTombolaRepo(), newTestRNG())

	_, err := svc.PaySponsor(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoCommissionDue)
}

func TestCommissionService_PaySponsor_LostRace(t *testing.T) {
	ctx := context.Background()

	couponRepo := newFakeCouponRepo()
	couponRepo.add(domain.Coupon{
		ID: 3, Code: "JEA5555", TombolaID: 7,
		TotalUses: 5, TotalRevenue: 2500, TotalCommission: 125, IsActive: true,
	})

	// A concurrent payout already landed; whichever of the pre-check or
	// the insert sees it first, the caller gets the winning row back.
	repo := newFakeCommissionRepo(testTiers)
	winner := domain.SponsorPayment{ID: 9, SponsorID: 3, TombolaID: 7, Amount: 125, ReceiptNumber: "REC-1-AAAA"}
	repo.payments[3] = winner
	repo.insertErr = repository.ErrSponsorPaymentExists

	svc := NewCommissionService(repo, couponRepo, newFakeTombolaRepo(), newTestRNG())

	got, err := svc.PaySponsor(ctx, 3)
	require.ErrorIs(t, err, ErrSponsorAlreadyPaid)
	assert.Equal(t, winner.ID, got.ID)
}

func TestCommissionService_RecomputeAllForTombola(t *testing.T) {
	ctx := context.Background()

	couponRepo := newFakeCouponRepo()
	couponRepo.add(domain.Coupon{ID: 1, Code: "AAA0001", TombolaID: 7, DiscountPercentage: 25, IsActive: true})

	for i := 0; i < 18; i++ {
		_, err := couponRepo.RecordUse(ctx, domain.CouponUse{
			CouponID: 1, ParticipantID: uint(100 + i), TombolaID: 7,
			OriginalPrice: 500, DiscountAmount: 125, FinalPrice: 375,
		})
		require.NoError(t, err)
	}

	svc := NewCommissionService(newFakeCommissionRepo(testTiers), couponRepo, newFakeTombolaRepo(), newTestRNG())
	require.NoError(t, svc.RecomputeAllForTombola(ctx, 7))

	coupon := couponRepo.coupons[1]
	assert.Equal(t, 18, coupon.TotalUses)
	assert.Equal(t, 6750, coupon.TotalRevenue)
	assert.Equal(t, 506, coupon.TotalCommission) // Argent tier, 7.5%
}

func TestCommissionService_SummaryForTombola(t *testing.T) {
	ctx := context.Background()

	couponRepo := newFakeCouponRepo()
	couponRepo.add(domain.Coupon{ID: 1, Code: "AAA0001", TombolaID: 7, TotalUses: 18, TotalRevenue: 6750, TotalCommission: 506, IsActive: true})
	couponRepo.add(domain.Coupon{ID: 2, Code: "BBB0002", TombolaID: 7, TotalUses: 3, TotalRevenue: 1350, TotalCommission: 0, IsActive: true})
	couponRepo.bonuses[1] = 100

	svc := NewCommissionService(newFakeCommissionRepo(testTiers), couponRepo, newFakeTombolaRepo(), newTestRNG())

	summary, err := svc.SummaryForTombola(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, 21, summary.TotalTickets)
	assert.Equal(t, 8100, summary.TotalRevenue)
	// Tier commissions only; win bonuses are per-sponsor figures.
	assert.Equal(t, 506, summary.TotalCommissions)
	assert.Len(t, summary.CouponStats, 2)
	assert.Len(t, summary.Tiers, 3)
}

func TestCommissionService_SummaryForTombola_TopSponsorsNeedUses(t *testing.T) {
	ctx := context.Background()

	couponRepo := newFakeCouponRepo()
	couponRepo.add(domain.Coupon{ID: 1, Code: "AAA0001", TombolaID: 7, TotalUses: 5, TotalRevenue: 1875, IsActive: true})
	couponRepo.add(domain.Coupon{ID: 2, Code: "BBB0002", TombolaID: 7, IsActive: true})
	couponRepo.add(domain.Coupon{ID: 3, Code: "CCC0003", TombolaID: 7, TotalUses: 2, TotalRevenue: 750, IsActive: true})

	svc := NewCommissionService(newFakeCommissionRepo(testTiers), couponRepo, newFakeTombolaRepo(), newTestRNG())

	summary, err := svc.SummaryForTombola(ctx, 7)
	require.NoError(t, err)

	// Every coupon shows up in the stats, but a coupon nobody redeemed
	// never ranks as a top sponsor.
	assert.Len(t, summary.CouponStats, 3)
	require.Len(t, summary.TopSponsors, 2)
	assert.Equal(t, "AAA0001", summary.TopSponsors[0].Code)
	assert.Equal(t, "CCC0003", summary.TopSponsors[1].Code)
}

func TestCommissionService_BreakdownForCoupon_UnknownCoupon(t *testing.T) {
	svc := NewCommissionService(newFakeCommissionRepo(testTiers), newFakeCouponRepo(), newFakeTombolaRepo(), newTestRNG())

	_, err := svc.BreakdownForCoupon(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrCouponNotFound))
}
