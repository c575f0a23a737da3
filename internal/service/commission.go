package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository"
)

var (
	ErrSponsorPaymentExists   = repository.ErrSponsorPaymentExists
	ErrSponsorPaymentNotFound = repository.ErrSponsorPaymentNotFound

	ErrSponsorAlreadyPaid = errors.New("sponsor commission already paid out")
	ErrNoCommissionDue    = errors.New("no commission due for this coupon")
)

const topSponsorsLimit = 10

const receiptRandomChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type CommissionRepository interface {
	GetTiers(ctx context.Context, tombolaID uint) ([]domain.CommissionTier, error)
	ReplaceTiers(ctx context.Context, tombolaID uint, tiers []domain.CommissionTier) ([]domain.CommissionTier, error)
	GetPaidPayment(ctx context.Context, sponsorID, tombolaID uint) (domain.SponsorPayment, error)
	CreatePayment(ctx context.Context, payment domain.SponsorPayment) (domain.SponsorPayment, error)
	GetPaymentsByTombola(ctx context.Context, tombolaID uint) ([]domain.SponsorPayment, error)
}

type CommissionService struct {
	repo        CommissionRepository
	couponRepo  CouponRepository
	tombolaRepo TombolaRepository
	rng         *rand.Rand
	now         func() time.Time
}

func NewCommissionService(repo CommissionRepository, couponRepo CouponRepository, tombolaRepo TombolaRepository, rng *rand.Rand) *CommissionService {
	return &CommissionService{
		repo:        repo,
		couponRepo:  couponRepo,
		tombolaRepo: tombolaRepo,
		rng:         rng,
		now:         time.Now,
	}
}

// TierFor picks the highest tier whose threshold the ticket count has
// reached. Tiers must be ordered by min_tickets ascending, which is how
// the repository returns them.
func TierFor(tiers []domain.CommissionTier, ticketsSold int) *domain.CommissionTier {
	for i := len(tiers) - 1; i >= 0; i-- {
		if ticketsSold >= tiers[i].MinTickets {
			return &tiers[i]
		}
	}

	return nil
}

// CommissionAmount applies a tier percentage to a revenue figure,
// rounded to the nearest franc.
func CommissionAmount(revenue int, percentage float64) int {
	return int(math.Round(float64(revenue) * percentage / 100))
}

func (s *CommissionService) GetTiers(ctx context.Context, tombolaID uint) ([]domain.CommissionTier, error) {
	tiers, err := s.repo.GetTiers(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetTiers -> %w", err)
	}

	return tiers, nil
}

// ReplaceTiers swaps the whole tier table for a tombola, then recomputes
// every coupon's cached commission against the new thresholds.
func (s *CommissionService) ReplaceTiers(ctx context.Context, tombolaID uint, tiers []domain.CommissionTier) ([]domain.CommissionTier, error) {
	replaced, err := s.repo.ReplaceTiers(ctx, tombolaID, tiers)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ReplaceTiers -> %w", err)
	}

	if err := s.RecomputeAllForTombola(ctx, tombolaID); err != nil {
		return nil, err
	}

	return replaced, nil
}

// BreakdownForCoupon explains a coupon's current commission: which tier
// applies, on how many tickets, over how much revenue.
func (s *CommissionService) BreakdownForCoupon(ctx context.Context, couponID uint) (domain.CommissionBreakdown, error) {
	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return domain.CommissionBreakdown{}, fmt.Errorf("s.couponRepo.GetByID -> %w", err)
	}

	uses, err := s.couponRepo.GetUses(ctx, couponID)
	if err != nil {
		return domain.CommissionBreakdown{}, fmt.Errorf("s.couponRepo.GetUses -> %w", err)
	}

	revenue := 0
	for i := range uses {
		revenue += uses[i].FinalPrice
	}

	tiers, err := s.repo.GetTiers(ctx, coupon.TombolaID)
	if err != nil {
		return domain.CommissionBreakdown{}, fmt.Errorf("s.repo.GetTiers -> %w", err)
	}

	breakdown := domain.CommissionBreakdown{
		TicketsSold:  len(uses),
		TotalRevenue: revenue,
	}
	if tier := TierFor(tiers, len(uses)); tier != nil {
		breakdown.Tier = tier
		breakdown.Commission = CommissionAmount(revenue, tier.CommissionPercentage)
	}

	return breakdown, nil
}

// RecomputeAllForTombola rebuilds every coupon's cached aggregates from
// its redemption rows. Safe to run at any time; it is also what the
// background refresher calls.
func (s *CommissionService) RecomputeAllForTombola(ctx context.Context, tombolaID uint) error {
	coupons, err := s.couponRepo.GetByTombola(ctx, tombolaID)
	if err != nil {
		return fmt.Errorf("s.couponRepo.GetByTombola -> %w", err)
	}

	tiers, err := s.repo.GetTiers(ctx, tombolaID)
	if err != nil {
		return fmt.Errorf("s.repo.GetTiers -> %w", err)
	}

	for i := range coupons {
		uses, err := s.couponRepo.GetUses(ctx, coupons[i].ID)
		if err != nil {
			return fmt.Errorf("s.couponRepo.GetUses -> %w", err)
		}

		revenue := 0
		for j := range uses {
			revenue += uses[j].FinalPrice
		}

		commission := 0
		if tier := TierFor(tiers, len(uses)); tier != nil {
			commission = CommissionAmount(revenue, tier.CommissionPercentage)
		}

		if err := s.couponRepo.UpdateAggregates(ctx, coupons[i].ID, len(uses), revenue, commission); err != nil {
			return fmt.Errorf("s.couponRepo.UpdateAggregates -> %w", err)
		}
	}

	return nil
}

// SummaryForTombola is the admin commission overview: totals across all
// coupons, the tier table, per-coupon stats and the top sponsors by
// tickets sold.
func (s *CommissionService) SummaryForTombola(ctx context.Context, tombolaID uint) (domain.CommissionSummary, error) {
	coupons, err := s.couponRepo.GetByTombolaOrderedByUses(ctx, tombolaID)
	if err != nil {
		return domain.CommissionSummary{}, fmt.Errorf("s.couponRepo.GetByTombolaOrderedByUses -> %w", err)
	}

	tiers, err := s.repo.GetTiers(ctx, tombolaID)
	if err != nil {
		return domain.CommissionSummary{}, fmt.Errorf("s.repo.GetTiers -> %w", err)
	}

	summary := domain.CommissionSummary{
		Tiers:       tiers,
		CouponStats: make([]domain.SponsorStats, 0, len(coupons)),
	}

	for i := range coupons {
		bonus, err := s.couponRepo.GetBonusForCoupon(ctx, coupons[i].ID)
		if err != nil {
			return domain.CommissionSummary{}, fmt.Errorf("s.couponRepo.GetBonusForCoupon -> %w", err)
		}

		stats := domain.SponsorStats{
			CouponID:        coupons[i].ID,
			Code:            coupons[i].Code,
			CreatorName:     coupons[i].CreatorName,
			CreatorPhone:    coupons[i].CreatorPhone,
			TotalUses:       coupons[i].TotalUses,
			TotalRevenue:    coupons[i].TotalRevenue,
			TotalCommission: coupons[i].TotalCommission,
			BonusCommission: bonus,
			CreatedAt:       coupons[i].CreatedAt,
		}

		summary.TotalTickets += stats.TotalUses
		summary.TotalRevenue += stats.TotalRevenue
		// Win bonuses stay out of the aggregate; they are reported per
		// sponsor only.
		summary.TotalCommissions += stats.TotalCommission
		summary.CouponStats = append(summary.CouponStats, stats)
	}

	// Never-used coupons don't rank.
	top := make([]domain.SponsorStats, 0, topSponsorsLimit)
	for _, stats := range summary.CouponStats {
		if stats.TotalUses == 0 {
			continue
		}
		top = append(top, stats)
		if len(top) == topSponsorsLimit {
			break
		}
	}
	summary.TopSponsors = top

	return summary, nil
}

// PaySponsor records the one-and-only commission payout for a coupon.
// A second call returns the original payment alongside
// ErrSponsorAlreadyPaid so the caller can show the existing receipt.
func (s *CommissionService) PaySponsor(ctx context.Context, couponID uint) (domain.SponsorPayment, error) {
	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return domain.SponsorPayment{}, fmt.Errorf("s.couponRepo.GetByID -> %w", err)
	}

	existing, err := s.repo.GetPaidPayment(ctx, coupon.ID, coupon.TombolaID)
	if err == nil {
		return existing, ErrSponsorAlreadyPaid
	}
	if !errors.Is(err, ErrSponsorPaymentNotFound) {
		return domain.SponsorPayment{}, fmt.Errorf("s.repo.GetPaidPayment -> %w", err)
	}

	bonus, err := s.couponRepo.GetBonusForCoupon(ctx, coupon.ID)
	if err != nil {
		return domain.SponsorPayment{}, fmt.Errorf("s.couponRepo.GetBonusForCoupon -> %w", err)
	}

	amount := coupon.TotalCommission + bonus
	if amount <= 0 {
		return domain.SponsorPayment{}, ErrNoCommissionDue
	}

	payment := domain.SponsorPayment{
		SponsorID:     coupon.ID,
		TombolaID:     coupon.TombolaID,
		Amount:        amount,
		SponsorName:   coupon.CreatorName,
		SponsorPhone:  coupon.CreatorPhone,
		PaymentStatus: domain.SponsorPaymentStatusPaid,
		PaymentDate:   s.now(),
		ReceiptNumber: s.receiptNumber(),
	}

	created, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		// Lost the race against a concurrent payout. The unique index
		// guarantees exactly one row; hand back the one that won.
		if errors.Is(err, ErrSponsorPaymentExists) {
			existing, findErr := s.repo.GetPaidPayment(ctx, coupon.ID, coupon.TombolaID)
			if findErr != nil {
				return domain.SponsorPayment{}, fmt.Errorf("s.repo.GetPaidPayment -> %w", findErr)
			}

			return existing, ErrSponsorAlreadyPaid
		}

		return domain.SponsorPayment{}, fmt.Errorf("s.repo.CreatePayment -> %w", err)
	}

	zap.L().Info("sponsor commission paid",
		zap.Uint("coupon_id", coupon.ID),
		zap.Int("amount", amount),
		zap.String("receipt", created.ReceiptNumber),
	)

	return created, nil
}

// ReceiptForCoupon assembles the printable receipt for a paid coupon.
func (s *CommissionService) ReceiptForCoupon(ctx context.Context, couponID uint) (domain.Receipt, error) {
	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("s.couponRepo.GetByID -> %w", err)
	}

	payment, err := s.repo.GetPaidPayment(ctx, coupon.ID, coupon.TombolaID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("s.repo.GetPaidPayment -> %w", err)
	}

	tombola, err := s.tombolaRepo.GetByID(ctx, coupon.TombolaID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("s.tombolaRepo.GetByID -> %w", err)
	}

	bonus, err := s.couponRepo.GetBonusForCoupon(ctx, coupon.ID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("s.couponRepo.GetBonusForCoupon -> %w", err)
	}

	return domain.Receipt{
		ReceiptNumber:   payment.ReceiptNumber,
		SponsorName:     payment.SponsorName,
		SponsorPhone:    payment.SponsorPhone,
		PaymentDate:     payment.PaymentDate,
		TombolaTitle:    tombola.Title,
		TicketsSold:     coupon.TotalUses,
		BaseCommission:  coupon.TotalCommission,
		BonusCommission: bonus,
		Total:           payment.Amount,
	}, nil
}

func (s *CommissionService) GetPayments(ctx context.Context, tombolaID uint) ([]domain.SponsorPayment, error) {
	payments, err := s.repo.GetPaymentsByTombola(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetPaymentsByTombola -> %w", err)
	}

	return payments, nil
}

func (s *CommissionService) receiptNumber() string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = receiptRandomChars[s.rng.Intn(len(receiptRandomChars))]
	}

	return fmt.Sprintf("REC-%d-%s", s.now().Unix(), suffix)
}
