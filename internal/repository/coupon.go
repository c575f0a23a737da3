package repository

import (
	"context"
	"fmt"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository/dao"
)

var (
	ErrCouponNotFound    = dao.ErrCouponNotFound
	ErrCouponCodeExists  = dao.ErrCouponCodeExists
	ErrCouponUseNotFound = dao.ErrCouponUseNotFound
)

type CouponDAO interface {
	Insert(ctx context.Context, coupon dao.Coupon) (dao.Coupon, error)
	FindByID(ctx context.Context, id uint) (dao.Coupon, error)
	FindActiveByCode(ctx context.Context, code string) (dao.Coupon, error)
	ActiveCodeExists(ctx context.Context, code string) (bool, error)
	FindByTombola(ctx context.Context, tombolaID uint) ([]dao.Coupon, error)
	FindByTombolaOrderedByUses(ctx context.Context, tombolaID uint) ([]dao.Coupon, error)
	FindByCreatorPhone(ctx context.Context, phone string) ([]dao.Coupon, error)
	UpdateDiscount(ctx context.Context, id uint, percentage int) (dao.Coupon, error)
	Delete(ctx context.Context, id uint) error
	SetArchived(ctx context.Context, id uint) error
	SetParrainContacted(ctx context.Context, id uint, contacted bool) error
	UpdateAggregates(ctx context.Context, id uint, uses, revenue, commission int) error
	InsertUse(ctx context.Context, use dao.CouponUse) (dao.CouponUse, error)
	UsesByCoupon(ctx context.Context, couponID uint) ([]dao.CouponUse, error)
	CountUses(ctx context.Context, couponID uint) (int64, error)
	UseByParticipant(ctx context.Context, participantID uint) (dao.CouponUse, error)
	BonusForCoupon(ctx context.Context, couponID uint) (int64, error)
}

type CouponRepository struct {
	dao CouponDAO
}

func NewCouponRepository(dao CouponDAO) *CouponRepository {
	return &CouponRepository{
		dao: dao,
	}
}

func couponDaoToDomain(c dao.Coupon) domain.Coupon {
	coupon := domain.Coupon{
		ID:                 c.ID,
		Code:               c.Code,
		TombolaID:          c.TombolaID,
		CreatorName:        c.CreatorName,
		CreatorPhone:       c.CreatorPhone,
		DiscountPercentage: c.DiscountPercentage,
		TotalUses:          c.TotalUses,
		TotalRevenue:       c.TotalRevenue,
		TotalCommission:    c.TotalCommission,
		IsActive:           c.IsActive,
		Archived:           c.Archived,
		ParrainContacted:   c.ParrainContacted,
		CreatedAt:          c.CreatedAt,
	}

	if c.Tombola.ID != 0 {
		coupon.Tombola = &domain.Tombola{
			ID:          c.Tombola.ID,
			Title:       c.Tombola.Title,
			TicketPrice: c.Tombola.TicketPrice,
			DrawDate:    c.Tombola.DrawDate,
			Jackpot:     c.Tombola.Jackpot,
			Status:      c.Tombola.Status,
		}
	}

	return coupon
}

func couponDomainToDao(c domain.Coupon) dao.Coupon {
	return dao.Coupon{
		ID:                 c.ID,
		Code:               c.Code,
		TombolaID:          c.TombolaID,
		CreatorName:        c.CreatorName,
		CreatorPhone:       c.CreatorPhone,
		DiscountPercentage: c.DiscountPercentage,
		TotalUses:          c.TotalUses,
		TotalRevenue:       c.TotalRevenue,
		TotalCommission:    c.TotalCommission,
		IsActive:           c.IsActive,
		Archived:           c.Archived,
		ParrainContacted:   c.ParrainContacted,
		CreatedAt:          c.CreatedAt,
	}
}

func couponUseDaoToDomain(u dao.CouponUse) domain.CouponUse {
	return domain.CouponUse{
		ID:               u.ID,
		CouponID:         u.CouponID,
		ParticipantID:    u.ParticipantID,
		TombolaID:        u.TombolaID,
		OriginalPrice:    u.OriginalPrice,
		DiscountAmount:   u.DiscountAmount,
		FinalPrice:       u.FinalPrice,
		CommissionEarned: u.CommissionEarned,
		UsedAt:           u.UsedAt,
	}
}

func (r *CouponRepository) couponsDaoToDomain(coupons []dao.Coupon) []domain.Coupon {
	result := make([]domain.Coupon, len(coupons))
	for i, c := range coupons {
		result[i] = couponDaoToDomain(c)
	}

	return result
}

func (r *CouponRepository) Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	created, err := r.dao.Insert(ctx, couponDomainToDao(coupon))
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return couponDaoToDomain(created), nil
}

func (r *CouponRepository) GetByID(ctx context.Context, id uint) (domain.Coupon, error) {
	coupon, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return couponDaoToDomain(coupon), nil
}

func (r *CouponRepository) GetActiveByCode(ctx context.Context, code string) (domain.Coupon, error) {
	coupon, err := r.dao.FindActiveByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.FindActiveByCode -> %w", err)
	}

	return couponDaoToDomain(coupon), nil
}

func (r *CouponRepository) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	exists, err := r.dao.ActiveCodeExists(ctx, code)
	if err != nil {
		return false, fmt.Errorf("r.dao.ActiveCodeExists -> %w", err)
	}

	return exists, nil
}

func (r *CouponRepository) GetByTombola(ctx context.Context, tombolaID uint) ([]domain.Coupon, error) {
	coupons, err := r.dao.FindByTombola(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTombola -> %w", err)
	}

	return r.couponsDaoToDomain(coupons), nil
}

func (r *CouponRepository) GetByTombolaOrderedByUses(ctx context.Context, tombolaID uint) ([]domain.Coupon, error) {
	coupons, err := r.dao.FindByTombolaOrderedByUses(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTombolaOrderedByUses -> %w", err)
	}

	return r.couponsDaoToDomain(coupons), nil
}

func (r *CouponRepository) GetByCreatorPhone(ctx context.Context, phone string) ([]domain.Coupon, error) {
	coupons, err := r.dao.FindByCreatorPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCreatorPhone -> %w", err)
	}

	return r.couponsDaoToDomain(coupons), nil
}

func (r *CouponRepository) UpdateDiscount(ctx context.Context, id uint, percentage int) (domain.Coupon, error) {
	updated, err := r.dao.UpdateDiscount(ctx, id, percentage)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("r.dao.UpdateDiscount -> %w", err)
	}

	return couponDaoToDomain(updated), nil
}

func (r *CouponRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func (r *CouponRepository) Archive(ctx context.Context, id uint) error {
	return r.dao.SetArchived(ctx, id)
}

func (r *CouponRepository) SetParrainContacted(ctx context.Context, id uint, contacted bool) error {
	return r.dao.SetParrainContacted(ctx, id, contacted)
}

func (r *CouponRepository) UpdateAggregates(ctx context.Context, id uint, uses, revenue, commission int) error {
	if err := r.dao.UpdateAggregates(ctx, id, uses, revenue, commission); err != nil {
		return fmt.Errorf("r.dao.UpdateAggregates -> %w", err)
	}

	return nil
}

func (r *CouponRepository) RecordUse(ctx context.Context, use domain.CouponUse) (domain.CouponUse, error) {
	created, err := r.dao.InsertUse(ctx, dao.CouponUse{
		CouponID:         use.CouponID,
		ParticipantID:    use.ParticipantID,
		TombolaID:        use.TombolaID,
		OriginalPrice:    use.OriginalPrice,
		DiscountAmount:   use.DiscountAmount,
		FinalPrice:       use.FinalPrice,
		CommissionEarned: use.CommissionEarned,
	})
	if err != nil {
		return domain.CouponUse{}, fmt.Errorf("r.dao.InsertUse -> %w", err)
	}

	return couponUseDaoToDomain(created), nil
}

func (r *CouponRepository) GetUses(ctx context.Context, couponID uint) ([]domain.CouponUse, error) {
	uses, err := r.dao.UsesByCoupon(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.UsesByCoupon -> %w", err)
	}

	result := make([]domain.CouponUse, len(uses))
	for i, u := range uses {
		result[i] = couponUseDaoToDomain(u)
	}

	return result, nil
}

func (r *CouponRepository) CountUses(ctx context.Context, couponID uint) (int, error) {
	count, err := r.dao.CountUses(ctx, couponID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountUses -> %w", err)
	}

	return int(count), nil
}

func (r *CouponRepository) GetUseByParticipant(ctx context.Context, participantID uint) (domain.CouponUse, error) {
	use, err := r.dao.UseByParticipant(ctx, participantID)
	if err != nil {
		return domain.CouponUse{}, fmt.Errorf("r.dao.UseByParticipant -> %w", err)
	}

	return couponUseDaoToDomain(use), nil
}

func (r *CouponRepository) GetBonusForCoupon(ctx context.Context, couponID uint) (int, error) {
	bonus, err := r.dao.BonusForCoupon(ctx, couponID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.BonusForCoupon -> %w", err)
	}

	return int(bonus), nil
}
