package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository"
)

var (
	ErrCouponNotFound    = repository.ErrCouponNotFound
	ErrCouponCodeExists  = repository.ErrCouponCodeExists
	ErrCouponUseNotFound = repository.ErrCouponUseNotFound

	ErrInvalidDiscount      = errors.New("discount percentage must be between 0 and 100")
	ErrCouponInUse          = errors.New("coupon has recorded uses and cannot be deleted")
	ErrCodeGenerationFailed = errors.New("could not generate an unused coupon code")
)

// Validation failure reasons surfaced to the participation page.
const (
	ReasonCouponNotFound  = "coupon not found or inactive"
	ReasonWrongTombola    = "coupon does not belong to this tombola"
	ReasonTombolaInactive = "tombola is not active"
	ReasonWindowClosed    = "participation is closed, the draw date has passed"
	ReasonSelfUse         = "coupon cannot be used by its creator"
)

const codeGenerationAttempts = 10

type CouponRepository interface {
	Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
	GetByID(ctx context.Context, id uint) (domain.Coupon, error)
	GetActiveByCode(ctx context.Context, code string) (domain.Coupon, error)
	ActiveCodeExists(ctx context.Context, code string) (bool, error)
	GetByTombola(ctx context.Context, tombolaID uint) ([]domain.Coupon, error)
	GetByTombolaOrderedByUses(ctx context.Context, tombolaID uint) ([]domain.Coupon, error)
	GetByCreatorPhone(ctx context.Context, phone string) ([]domain.Coupon, error)
	UpdateDiscount(ctx context.Context, id uint, percentage int) (domain.Coupon, error)
	Delete(ctx context.Context, id uint) error
	Archive(ctx context.Context, id uint) error
	SetParrainContacted(ctx context.Context, id uint, contacted bool) error
	UpdateAggregates(ctx context.Context, id uint, uses, revenue, commission int) error
	RecordUse(ctx context.Context, use domain.CouponUse) (domain.CouponUse, error)
	GetUses(ctx context.Context, couponID uint) ([]domain.CouponUse, error)
	CountUses(ctx context.Context, couponID uint) (int, error)
	GetUseByParticipant(ctx context.Context, participantID uint) (domain.CouponUse, error)
	GetBonusForCoupon(ctx context.Context, couponID uint) (int, error)
}

type CouponService struct {
	repo           CouponRepository
	commissionRepo CommissionRepository
	rng            *rand.Rand
	now            func() time.Time
}

func NewCouponService(repo CouponRepository, commissionRepo CommissionRepository, rng *rand.Rand) *CouponService {
	return &CouponService{
		repo:           repo,
		commissionRepo: commissionRepo,
		rng:            rng,
		now:            time.Now,
	}
}

// Create generates a code from the creator's name and inserts the coupon.
func (s *CouponService) Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	if coupon.DiscountPercentage < 0 || coupon.DiscountPercentage > 100 {
		return domain.Coupon{}, ErrInvalidDiscount
	}

	code, err := s.generateCode(ctx, coupon.CreatorName)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("s.generateCode -> %w", err)
	}

	coupon.Code = code
	coupon.IsActive = true

	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// generateCode builds <3 letters of the name><4 digits> and retries until
// the code is free among active coupons. A lost race with a concurrent
// insert still surfaces as ErrCouponCodeExists from the unique index.
func (s *CouponService) generateCode(ctx context.Context, creatorName string) (string, error) {
	prefix := namePrefix(creatorName)

	for i := 0; i < codeGenerationAttempts; i++ {
		code := fmt.Sprintf("%s%04d", prefix, s.rng.Intn(10000))

		exists, err := s.repo.ActiveCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("s.repo.ActiveCodeExists -> %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", ErrCodeGenerationFailed
}

func namePrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= 3 {
				break
			}
		}
	}

	prefix := b.String()
	if len(prefix) < 3 {
		prefix += strings.Repeat("X", 3-len(prefix))
	}

	return prefix
}

// Validate checks a code against a tombola and the buyer's phone. Rule
// violations come back as an invalid result with a reason, not an error;
// errors are reserved for infrastructure failures.
func (s *CouponService) Validate(ctx context.Context, code string, tombolaID uint, phone string) (domain.CouponValidation, error) {
	coupon, err := s.repo.GetActiveByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return domain.CouponValidation{Valid: false, Reason: ReasonCouponNotFound}, nil
		}

		return domain.CouponValidation{}, fmt.Errorf("s.repo.GetActiveByCode -> %w", err)
	}

	if coupon.Archived {
		return domain.CouponValidation{Valid: false, Reason: ReasonCouponNotFound}, nil
	}

	if coupon.TombolaID != tombolaID {
		return domain.CouponValidation{Valid: false, Reason: ReasonWrongTombola}, nil
	}

	if coupon.Tombola == nil || !coupon.Tombola.IsActive() {
		return domain.CouponValidation{Valid: false, Reason: ReasonTombolaInactive}, nil
	}

	if !s.now().Before(coupon.Tombola.DrawDate) {
		return domain.CouponValidation{Valid: false, Reason: ReasonWindowClosed}, nil
	}

	if normalizePhone(phone) == normalizePhone(coupon.CreatorPhone) {
		return domain.CouponValidation{Valid: false, Reason: ReasonSelfUse}, nil
	}

	discount := DiscountAmount(coupon.Tombola.TicketPrice, coupon.DiscountPercentage)

	return domain.CouponValidation{
		Valid:          true,
		Coupon:         &coupon,
		DiscountAmount: discount,
	}, nil
}

// Redeem records a coupon use for a confirmed participant and refreshes
// the coupon's cached aggregates from the redemption rows.
func (s *CouponService) Redeem(ctx context.Context, coupon domain.Coupon, participantID uint, originalPrice int) (domain.CouponUse, error) {
	discount := DiscountAmount(originalPrice, coupon.DiscountPercentage)

	use := domain.CouponUse{
		CouponID:       coupon.ID,
		ParticipantID:  participantID,
		TombolaID:      coupon.TombolaID,
		OriginalPrice:  originalPrice,
		DiscountAmount: discount,
		FinalPrice:     originalPrice - discount,

		// Kept for historical reporting; the payable figure is the
		// tier-driven total on the coupon.
		CommissionEarned: 2 * discount,
	}

	recorded, err := s.repo.RecordUse(ctx, use)
	if err != nil {
		return domain.CouponUse{}, fmt.Errorf("s.repo.RecordUse -> %w", err)
	}

	if err := s.refreshAggregates(ctx, coupon.ID, coupon.TombolaID); err != nil {
		return domain.CouponUse{}, err
	}

	return recorded, nil
}

// refreshAggregates recomputes total_uses, total_revenue and the
// tier-driven total_commission from the coupon_uses rows.
func (s *CouponService) refreshAggregates(ctx context.Context, couponID, tombolaID uint) error {
	uses, err := s.repo.GetUses(ctx, couponID)
	if err != nil {
		return fmt.Errorf("s.repo.GetUses -> %w", err)
	}

	revenue := 0
	for i := range uses {
		revenue += uses[i].FinalPrice
	}

	tiers, err := s.commissionRepo.GetTiers(ctx, tombolaID)
	if err != nil {
		return fmt.Errorf("s.commissionRepo.GetTiers -> %w", err)
	}

	commission := 0
	if tier := TierFor(tiers, len(uses)); tier != nil {
		commission = CommissionAmount(revenue, tier.CommissionPercentage)
	}

	if err := s.repo.UpdateAggregates(ctx, couponID, len(uses), revenue, commission); err != nil {
		return fmt.Errorf("s.repo.UpdateAggregates -> %w", err)
	}

	return nil
}

func (s *CouponService) GetByID(ctx context.Context, id uint) (domain.Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return coupon, nil
}

func (s *CouponService) GetByTombola(ctx context.Context, tombolaID uint) ([]domain.Coupon, error) {
	coupons, err := s.repo.GetByTombolaOrderedByUses(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetByTombolaOrderedByUses -> %w", err)
	}

	return coupons, nil
}

func (s *CouponService) UpdateDiscount(ctx context.Context, id uint, percentage int) (domain.Coupon, error) {
	if percentage < 0 || percentage > 100 {
		return domain.Coupon{}, ErrInvalidDiscount
	}

	coupon, err := s.repo.UpdateDiscount(ctx, id, percentage)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("s.repo.UpdateDiscount -> %w", err)
	}

	return coupon, nil
}

// Delete removes a coupon that was never redeemed. Used coupons must be
// archived instead so their history stays auditable.
func (s *CouponService) Delete(ctx context.Context, id uint) error {
	count, err := s.repo.CountUses(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.CountUses -> %w", err)
	}
	if count > 0 {
		return ErrCouponInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *CouponService) Archive(ctx context.Context, id uint) error {
	if err := s.repo.Archive(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Archive -> %w", err)
	}

	return nil
}

func (s *CouponService) SetParrainContacted(ctx context.Context, id uint, contacted bool) error {
	if err := s.repo.SetParrainContacted(ctx, id, contacted); err != nil {
		return fmt.Errorf("s.repo.SetParrainContacted -> %w", err)
	}

	return nil
}

// SponsorDashboard lists a sponsor's coupons with their aggregates and
// any bonus earned through referred winners, keyed by the phone they
// registered their coupons under.
func (s *CouponService) SponsorDashboard(ctx context.Context, phone string) ([]domain.SponsorStats, error) {
	coupons, err := s.repo.GetByCreatorPhone(ctx, normalizePhone(phone))
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetByCreatorPhone -> %w", err)
	}

	stats := make([]domain.SponsorStats, 0, len(coupons))
	for i := range coupons {
		bonus, err := s.repo.GetBonusForCoupon(ctx, coupons[i].ID)
		if err != nil {
			return nil, fmt.Errorf("s.repo.GetBonusForCoupon -> %w", err)
		}

		stats = append(stats, domain.SponsorStats{
			CouponID:        coupons[i].ID,
			Code:            coupons[i].Code,
			CreatorName:     coupons[i].CreatorName,
			CreatorPhone:    coupons[i].CreatorPhone,
			TotalUses:       coupons[i].TotalUses,
			TotalRevenue:    coupons[i].TotalRevenue,
			TotalCommission: coupons[i].TotalCommission,
			BonusCommission: bonus,
			CreatedAt:       coupons[i].CreatedAt,
		})
	}

	return stats, nil
}

// DiscountAmount is the coupon discount on a price, rounded down.
func DiscountAmount(price, percentage int) int {
	return price * percentage / 100
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
