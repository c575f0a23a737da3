package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository"
)

var (
	ErrWinnerNotFound = repository.ErrWinnerNotFound

	ErrDrawNotDue             = errors.New("draw date has not been reached")
	ErrNoEligibleParticipants = errors.New("no confirmed participants to draw from")
)

type WinnerRepository interface {
	GetAll(ctx context.Context) ([]domain.Winner, error)
	GetByTombola(ctx context.Context, tombolaID uint) ([]domain.Winner, error)
	AttachPhoto(ctx context.Context, id uint, photoURL string) (domain.Winner, error)
}

type DrawService struct {
	tombolaRepo     TombolaRepository
	participantRepo ParticipantRepository
	couponRepo      CouponRepository
	winnerRepo      WinnerRepository
	rng             *rand.Rand
	now             func() time.Time
}

func NewDrawService(tombolaRepo TombolaRepository, participantRepo ParticipantRepository, couponRepo CouponRepository, winnerRepo WinnerRepository, rng *rand.Rand) *DrawService {
	return &DrawService{
		tombolaRepo:     tombolaRepo,
		participantRepo: participantRepo,
		couponRepo:      couponRepo,
		winnerRepo:      winnerRepo,
		rng:             rng,
		now:             time.Now,
	}
}

// PerformDraw picks the winners of a due tombola by uniform shuffle over
// its confirmed participants, assigns prizes by rank, and completes the
// tombola in one transaction. The conditional status flip inside that
// transaction makes a concurrent second draw fail with
// ErrTombolaNotActive instead of producing a second winner set.
func (s *DrawService) PerformDraw(ctx context.Context, tombolaID uint) ([]domain.Winner, error) {
	tombola, err := s.tombolaRepo.GetByID(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("s.tombolaRepo.GetByID -> %w", err)
	}

	if !tombola.IsActive() {
		return nil, ErrTombolaNotActive
	}

	if s.now().Before(tombola.DrawDate) {
		return nil, ErrDrawNotDue
	}

	eligible, err := s.participantRepo.GetEligible(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("s.participantRepo.GetEligible -> %w", err)
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleParticipants
	}

	count := min(tombola.MaxWinners, len(eligible))
	if count < 0 {
		count = 0
	}

	shuffled := make([]domain.Participant, len(eligible))
	copy(shuffled, eligible)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	winners := make([]domain.Winner, 0, count)
	for rank := 1; rank <= count; rank++ {
		winner := domain.Winner{
			ParticipantID: shuffled[rank-1].ID,
			TombolaID:     tombolaID,
			PrizeRank:     rank,
			PrizeAmount:   prizeForRank(&tombola, rank, count),
		}

		bonus, err := s.bonusForParticipant(ctx, &tombola, winner.ParticipantID)
		if err != nil {
			return nil, err
		}
		winner.BonusCommission = bonus

		winners = append(winners, winner)
	}

	created, err := s.tombolaRepo.CompleteDraw(ctx, tombolaID, winners)
	if err != nil {
		return nil, fmt.Errorf("s.tombolaRepo.CompleteDraw -> %w", err)
	}

	zap.L().Info("draw completed",
		zap.Uint("tombola_id", tombolaID),
		zap.Int("winners", len(created)),
		zap.Int("eligible", len(eligible)),
	)

	return created, nil
}

// prizeForRank maps a 1-based rank onto the configured prize list. Ranks
// past the list reuse the last prize; with no prizes at all, winners
// split the jackpot evenly.
func prizeForRank(tombola *domain.Tombola, rank, winners int) string {
	if len(tombola.Prizes) == 0 {
		share := 0
		if winners > 0 {
			share = tombola.JackpotNumeric() / winners
		}

		return formatFCFA(share)
	}

	idx := rank - 1
	if idx >= len(tombola.Prizes) {
		idx = len(tombola.Prizes) - 1
	}

	prize := tombola.Prizes[idx]
	if prize.Value != "" {
		return prize.Value
	}

	return prize.Name
}

// bonusForParticipant pays the referring sponsor a cut of the jackpot
// when the winning ticket was bought with their coupon.
func (s *DrawService) bonusForParticipant(ctx context.Context, tombola *domain.Tombola, participantID uint) (int, error) {
	use, err := s.couponRepo.GetUseByParticipant(ctx, participantID)
	if err != nil {
		if errors.Is(err, ErrCouponUseNotFound) {
			return 0, nil
		}

		return 0, fmt.Errorf("s.couponRepo.GetUseByParticipant -> %w", err)
	}

	coupon, err := s.couponRepo.GetByID(ctx, use.CouponID)
	if err != nil {
		return 0, fmt.Errorf("s.couponRepo.GetByID -> %w", err)
	}

	return CommissionAmount(tombola.JackpotNumeric(), float64(coupon.DiscountPercentage)), nil
}

func (s *DrawService) GetWinners(ctx context.Context) ([]domain.Winner, error) {
	winners, err := s.winnerRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.winnerRepo.GetAll -> %w", err)
	}

	return winners, nil
}

func (s *DrawService) WinnersForTombola(ctx context.Context, tombolaID uint) ([]domain.Winner, error) {
	winners, err := s.winnerRepo.GetByTombola(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("s.winnerRepo.GetByTombola -> %w", err)
	}

	return winners, nil
}

// AttachWinnerPhoto records the ceremony photo, the only winner field
// that changes after a draw.
func (s *DrawService) AttachWinnerPhoto(ctx context.Context, id uint, photoURL string) (domain.Winner, error) {
	winner, err := s.winnerRepo.AttachPhoto(ctx, id, photoURL)
	if err != nil {
		return domain.Winner{}, fmt.Errorf("s.winnerRepo.AttachPhoto -> %w", err)
	}

	return winner, nil
}

// formatFCFA renders an amount with thousands separated by spaces, the
// way prize values are displayed locally.
func formatFCFA(amount int) string {
	digits := strconv.Itoa(amount)

	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, d)
	}

	return string(out) + " FCFA"
}
