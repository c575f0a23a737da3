package repository

import (
	"context"
	"fmt"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository/dao"
)

var (
	ErrTombolaNotFound  = dao.ErrTombolaNotFound
	ErrTombolaNotActive = dao.ErrTombolaNotActive
)

type TombolaDAO interface {
	Insert(ctx context.Context, tombola dao.Tombola) (dao.Tombola, error)
	FindByID(ctx context.Context, id uint) (dao.Tombola, error)
	FindAll(ctx context.Context) ([]dao.Tombola, error)
	FindActive(ctx context.Context) (dao.Tombola, error)
	Update(ctx context.Context, tombola dao.Tombola) (dao.Tombola, error)
	Delete(ctx context.Context, id uint) error
	Cancel(ctx context.Context, id uint) error
	CompleteDraw(ctx context.Context, tombolaID uint, winners []dao.Winner) ([]dao.Winner, error)
}

type TombolaRepository struct {
	dao TombolaDAO
}

func NewTombolaRepository(dao TombolaDAO) *TombolaRepository {
	return &TombolaRepository{
		dao: dao,
	}
}

func (r *TombolaRepository) domainToDao(t domain.Tombola) dao.Tombola {
	prizes := make([]dao.TombolaPrize, len(t.Prizes))
	for i, p := range t.Prizes {
		prizes[i] = dao.TombolaPrize{
			TombolaID: t.ID,
			Position:  i + 1,
			Name:      p.Name,
			Value:     p.Value,
		}
	}

	return dao.Tombola{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		TicketPrice: t.TicketPrice,
		DrawDate:    t.DrawDate,
		Jackpot:     t.Jackpot,
		MaxWinners:  t.MaxWinners,
		Status:      t.Status,
		Prizes:      prizes,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r *TombolaRepository) daoToDomain(t dao.Tombola) domain.Tombola {
	prizes := make([]domain.Prize, len(t.Prizes))
	for i, p := range t.Prizes {
		prizes[i] = domain.Prize{
			Name:  p.Name,
			Value: p.Value,
		}
	}

	return domain.Tombola{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		TicketPrice: t.TicketPrice,
		DrawDate:    t.DrawDate,
		Jackpot:     t.Jackpot,
		MaxWinners:  t.MaxWinners,
		Status:      t.Status,
		Prizes:      prizes,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r *TombolaRepository) winnerDomainToDao(w domain.Winner) dao.Winner {
	return dao.Winner{
		ID:              w.ID,
		ParticipantID:   w.ParticipantID,
		TombolaID:       w.TombolaID,
		PrizeAmount:     w.PrizeAmount,
		PrizeRank:       w.PrizeRank,
		BonusCommission: w.BonusCommission,
		PhotoURL:        w.PhotoURL,
	}
}

func (r *TombolaRepository) winnerDaoToDomain(w dao.Winner) domain.Winner {
	return domain.Winner{
		ID:              w.ID,
		ParticipantID:   w.ParticipantID,
		TombolaID:       w.TombolaID,
		PrizeAmount:     w.PrizeAmount,
		PrizeRank:       w.PrizeRank,
		BonusCommission: w.BonusCommission,
		PhotoURL:        w.PhotoURL,
		CreatedAt:       w.CreatedAt,
	}
}

func (r *TombolaRepository) Create(ctx context.Context, tombola domain.Tombola) (domain.Tombola, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(tombola))
	if err != nil {
		return domain.Tombola{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *TombolaRepository) GetByID(ctx context.Context, id uint) (domain.Tombola, error) {
	tombola, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Tombola{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(tombola), nil
}

func (r *TombolaRepository) GetAll(ctx context.Context) ([]domain.Tombola, error) {
	tombolas, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	result := make([]domain.Tombola, len(tombolas))
	for i, t := range tombolas {
		result[i] = r.daoToDomain(t)
	}

	return result, nil
}

func (r *TombolaRepository) GetActive(ctx context.Context) (domain.Tombola, error) {
	tombola, err := r.dao.FindActive(ctx)
	if err != nil {
		return domain.Tombola{}, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	return r.daoToDomain(tombola), nil
}

func (r *TombolaRepository) Update(ctx context.Context, tombola domain.Tombola) (domain.Tombola, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(tombola))
	if err != nil {
		return domain.Tombola{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *TombolaRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func (r *TombolaRepository) Cancel(ctx context.Context, id uint) error {
	return r.dao.Cancel(ctx, id)
}

func (r *TombolaRepository) CompleteDraw(ctx context.Context, tombolaID uint, winners []domain.Winner) ([]domain.Winner, error) {
	daoWinners := make([]dao.Winner, len(winners))
	for i, w := range winners {
		daoWinners[i] = r.winnerDomainToDao(w)
	}

	inserted, err := r.dao.CompleteDraw(ctx, tombolaID, daoWinners)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CompleteDraw -> %w", err)
	}

	result := make([]domain.Winner, len(inserted))
	for i, w := range inserted {
		result[i] = r.winnerDaoToDomain(w)
	}

	return result, nil
}
