package repository

import (
	"context"
	"fmt"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository/dao"
)

var ErrWinnerNotFound = dao.ErrWinnerNotFound

type WinnerDAO interface {
	FindAll(ctx context.Context) ([]dao.Winner, error)
	FindByTombola(ctx context.Context, tombolaID uint) ([]dao.Winner, error)
	UpdatePhoto(ctx context.Context, id uint, photoURL string) (dao.Winner, error)
}

type WinnerRepository struct {
	dao WinnerDAO
}

func NewWinnerRepository(dao WinnerDAO) *WinnerRepository {
	return &WinnerRepository{
		dao: dao,
	}
}

func (r *WinnerRepository) daoToDomain(w dao.Winner) domain.Winner {
	winner := domain.Winner{
		ID:              w.ID,
		ParticipantID:   w.ParticipantID,
		TombolaID:       w.TombolaID,
		PrizeAmount:     w.PrizeAmount,
		PrizeRank:       w.PrizeRank,
		BonusCommission: w.BonusCommission,
		PhotoURL:        w.PhotoURL,
		CreatedAt:       w.CreatedAt,
	}

	if w.Participant.ID != 0 {
		winner.Participant = &domain.Participant{
			ID:           w.Participant.ID,
			Name:         w.Participant.Name,
			Phone:        w.Participant.Phone,
			TicketNumber: w.Participant.TicketNumber,
		}
	}

	if w.Tombola.ID != 0 {
		winner.Tombola = &domain.Tombola{
			ID:      w.Tombola.ID,
			Title:   w.Tombola.Title,
			Jackpot: w.Tombola.Jackpot,
		}
	}

	return winner
}

func (r *WinnerRepository) daosToDomain(winners []dao.Winner) []domain.Winner {
	result := make([]domain.Winner, len(winners))
	for i, w := range winners {
		result[i] = r.daoToDomain(w)
	}

	return result
}

func (r *WinnerRepository) GetAll(ctx context.Context) ([]domain.Winner, error) {
	winners, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daosToDomain(winners), nil
}

func (r *WinnerRepository) GetByTombola(ctx context.Context, tombolaID uint) ([]domain.Winner, error) {
	winners, err := r.dao.FindByTombola(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTombola -> %w", err)
	}

	return r.daosToDomain(winners), nil
}

func (r *WinnerRepository) AttachPhoto(ctx context.Context, id uint, photoURL string) (domain.Winner, error) {
	winner, err := r.dao.UpdatePhoto(ctx, id, photoURL)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("r.dao.UpdatePhoto -> %w", err)
	}

	return r.daoToDomain(winner), nil
}
