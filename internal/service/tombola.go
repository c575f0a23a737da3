package service

import (
	"context"
	"fmt"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository"
)

var (
	ErrTombolaNotFound  = repository.ErrTombolaNotFound
	ErrTombolaNotActive = repository.ErrTombolaNotActive
)

type TombolaRepository interface {
	Create(ctx context.Context, tombola domain.Tombola) (domain.Tombola, error)
	GetByID(ctx context.Context, id uint) (domain.Tombola, error)
	GetAll(ctx context.Context) ([]domain.Tombola, error)
	GetActive(ctx context.Context) (domain.Tombola, error)
	Update(ctx context.Context, tombola domain.Tombola) (domain.Tombola, error)
	Delete(ctx context.Context, id uint) error
	Cancel(ctx context.Context, id uint) error
	CompleteDraw(ctx context.Context, tombolaID uint, winners []domain.Winner) ([]domain.Winner, error)
}

type TombolaService struct {
	repo            TombolaRepository
	participantRepo ParticipantRepository
	couponRepo      CouponRepository
}

func NewTombolaService(repo TombolaRepository, participantRepo ParticipantRepository, couponRepo CouponRepository) *TombolaService {
	return &TombolaService{
		repo:            repo,
		participantRepo: participantRepo,
		couponRepo:      couponRepo,
	}
}

func (s *TombolaService) Create(ctx context.Context, tombola domain.Tombola) (domain.Tombola, error) {
	tombola.Status = domain.TombolaStatusActive

	created, err := s.repo.Create(ctx, tombola)
	if err != nil {
		return domain.Tombola{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *TombolaService) GetByID(ctx context.Context, id uint) (domain.Tombola, error) {
	tombola, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tombola{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	if err := s.attachParticipantCount(ctx, &tombola); err != nil {
		return domain.Tombola{}, err
	}

	return tombola, nil
}

func (s *TombolaService) GetAll(ctx context.Context) ([]domain.Tombola, error) {
	tombolas, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAll -> %w", err)
	}

	for i := range tombolas {
		if err := s.attachParticipantCount(ctx, &tombolas[i]); err != nil {
			return nil, err
		}
	}

	return tombolas, nil
}

// GetCurrent returns the single active tombola, the one the public
// participation page is selling tickets for.
func (s *TombolaService) GetCurrent(ctx context.Context) (domain.Tombola, error) {
	tombola, err := s.repo.GetActive(ctx)
	if err != nil {
		return domain.Tombola{}, fmt.Errorf("s.repo.GetActive -> %w", err)
	}

	if err := s.attachParticipantCount(ctx, &tombola); err != nil {
		return domain.Tombola{}, err
	}

	return tombola, nil
}

func (s *TombolaService) Update(ctx context.Context, tombola domain.Tombola) (domain.Tombola, error) {
	updated, err := s.repo.Update(ctx, tombola)
	if err != nil {
		return domain.Tombola{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *TombolaService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *TombolaService) Cancel(ctx context.Context, id uint) error {
	if err := s.repo.Cancel(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Cancel -> %w", err)
	}

	return nil
}

// GlobalStats aggregates across every tombola for the admin landing page.
func (s *TombolaService) GlobalStats(ctx context.Context) (domain.GlobalStats, error) {
	tombolas, err := s.repo.GetAll(ctx)
	if err != nil {
		return domain.GlobalStats{}, fmt.Errorf("s.repo.GetAll -> %w", err)
	}

	stats := domain.GlobalStats{
		TotalTombolas: len(tombolas),
	}

	for i := range tombolas {
		if tombolas[i].IsActive() {
			stats.ActiveTombolas++
		}

		count, err := s.participantRepo.CountConfirmed(ctx, tombolas[i].ID)
		if err != nil {
			return domain.GlobalStats{}, fmt.Errorf("s.participantRepo.CountConfirmed -> %w", err)
		}
		stats.TotalParticipants += count

		coupons, err := s.couponRepo.GetByTombola(ctx, tombolas[i].ID)
		if err != nil {
			return domain.GlobalStats{}, fmt.Errorf("s.couponRepo.GetByTombola -> %w", err)
		}

		// Revenue from coupon redemptions is tracked on the coupons;
		// undiscounted tickets sell at full price.
		discounted := 0
		for j := range coupons {
			stats.TotalRevenue += coupons[j].TotalRevenue
			discounted += coupons[j].TotalUses
		}
		stats.TotalRevenue += (count - discounted) * tombolas[i].TicketPrice
	}

	return stats, nil
}

func (s *TombolaService) attachParticipantCount(ctx context.Context, tombola *domain.Tombola) error {
	count, err := s.participantRepo.CountConfirmed(ctx, tombola.ID)
	if err != nil {
		return fmt.Errorf("s.participantRepo.CountConfirmed -> %w", err)
	}
	tombola.Participants = count

	return nil
}
