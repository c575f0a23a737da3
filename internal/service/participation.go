package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/payment"
	"github.com/gytx-dev/tombola-api/internal/repository"
)

var (
	ErrParticipantNotFound = repository.ErrParticipantNotFound
	ErrTicketNumberExists  = repository.ErrTicketNumberExists

	ErrPaymentFailed = payment.ErrPaymentFailed

	ErrInvalidCoupon = errors.New("coupon is not valid for this purchase")

	// ErrPaymentNotRecorded means the charge went through but the ticket
	// could not be persisted. The payment reference is logged for manual
	// reconciliation.
	ErrPaymentNotRecorded = errors.New("payment succeeded but the ticket could not be recorded")
)

const ticketNumberAttempts = 5

const ticketRandomChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type ParticipantRepository interface {
	Create(ctx context.Context, participant domain.Participant) (domain.Participant, error)
	GetByID(ctx context.Context, id uint) (domain.Participant, error)
	GetAll(ctx context.Context) ([]domain.Participant, error)
	GetByTombola(ctx context.Context, tombolaID uint) ([]domain.Participant, error)
	GetEligible(ctx context.Context, tombolaID uint) ([]domain.Participant, error)
	CountConfirmed(ctx context.Context, tombolaID uint) (int, error)
	CountAllConfirmed(ctx context.Context) (int, error)
	UpdatePaymentStatus(ctx context.Context, id uint, status string) (domain.Participant, error)
}

// PaymentGateway is the mobile-money charge. The Result reference comes
// back even on failure so it can be quoted in reconciliation logs.
type PaymentGateway interface {
	Pay(ctx context.Context, amount int, phone string) (payment.Result, error)
}

// ParticipationInput is everything the public participation form submits.
type ParticipationInput struct {
	TombolaID         uint
	Name              string
	Phone             string
	AirtelMoneyNumber string
	CouponCode        string
}

type ParticipationService struct {
	repo        ParticipantRepository
	tombolaRepo TombolaRepository
	couponSvc   *CouponService
	gateway     PaymentGateway
	rng         *rand.Rand
	now         func() time.Time
}

func NewParticipationService(repo ParticipantRepository, tombolaRepo TombolaRepository, couponSvc *CouponService, gateway PaymentGateway, rng *rand.Rand) *ParticipationService {
	return &ParticipationService{
		repo:        repo,
		tombolaRepo: tombolaRepo,
		couponSvc:   couponSvc,
		gateway:     gateway,
		rng:         rng,
		now:         time.Now,
	}
}

// Participate sells one ticket: validate the coupon if any, charge the
// discounted price, then persist the participant and the redemption.
// The charge comes first on purpose; a failed charge must leave no rows
// behind, while a failed write after a successful charge is a
// reconciliation case, not a rollback.
func (s *ParticipationService) Participate(ctx context.Context, input ParticipationInput) (domain.Ticket, error) {
	tombola, err := s.tombolaRepo.GetByID(ctx, input.TombolaID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.tombolaRepo.GetByID -> %w", err)
	}
	if !tombola.IsActive() {
		return domain.Ticket{}, ErrTombolaNotActive
	}

	finalPrice := tombola.TicketPrice
	discount := 0

	var coupon *domain.Coupon
	if input.CouponCode != "" {
		validation, err := s.couponSvc.Validate(ctx, input.CouponCode, tombola.ID, input.Phone)
		if err != nil {
			return domain.Ticket{}, fmt.Errorf("s.couponSvc.Validate -> %w", err)
		}
		if !validation.Valid {
			return domain.Ticket{}, fmt.Errorf("%w: %s", ErrInvalidCoupon, validation.Reason)
		}

		coupon = validation.Coupon
		discount = validation.DiscountAmount
		finalPrice -= discount
	}

	payResult, err := s.gateway.Pay(ctx, finalPrice, input.AirtelMoneyNumber)
	if err != nil {
		if errors.Is(err, ErrPaymentFailed) {
			return domain.Ticket{}, ErrPaymentFailed
		}

		return domain.Ticket{}, fmt.Errorf("s.gateway.Pay -> %w", err)
	}

	participant, err := s.createWithFreshTicketNumber(ctx, domain.Participant{
		Name:              input.Name,
		Phone:             input.Phone,
		TombolaID:         tombola.ID,
		PaymentStatus:     domain.PaymentStatusConfirmed,
		AirtelMoneyNumber: input.AirtelMoneyNumber,
		PaymentRef:        payResult.Reference,
	})
	if err != nil {
		zap.L().Error("charged but failed to record participant",
			zap.String("payment_ref", payResult.Reference),
			zap.String("phone", input.Phone),
			zap.Int("amount", finalPrice),
			zap.Error(err),
		)

		return domain.Ticket{}, ErrPaymentNotRecorded
	}

	if coupon != nil {
		if _, err := s.couponSvc.Redeem(ctx, *coupon, participant.ID, tombola.TicketPrice); err != nil {
			// The ticket is sold and paid for; a lost redemption row only
			// affects the sponsor's aggregates, which the background
			// refresher cannot restore. Log and hand out the ticket.
			zap.L().Error("ticket recorded but coupon redemption failed",
				zap.String("payment_ref", payResult.Reference),
				zap.Uint("participant_id", participant.ID),
				zap.Uint("coupon_id", coupon.ID),
				zap.Error(err),
			)
		}
	}

	ticket := domain.Ticket{
		ParticipantID: participant.ID,
		Name:          participant.Name,
		Phone:         participant.Phone,
		TicketNumber:  participant.TicketNumber,
		TombolaTitle:  tombola.Title,
		DrawDate:      tombola.DrawDate,
		OriginalPrice: tombola.TicketPrice,
		Discount:      discount,
		FinalPrice:    finalPrice,
		PaymentRef:    payResult.Reference,
	}
	if coupon != nil {
		ticket.CouponCode = coupon.Code
	}

	return ticket, nil
}

// createWithFreshTicketNumber retries ticket-number collisions, which the
// unique index reports as ErrTicketNumberExists.
func (s *ParticipationService) createWithFreshTicketNumber(ctx context.Context, participant domain.Participant) (domain.Participant, error) {
	for i := 0; i < ticketNumberAttempts; i++ {
		participant.TicketNumber = s.ticketNumber()

		created, err := s.repo.Create(ctx, participant)
		if err != nil {
			if errors.Is(err, ErrTicketNumberExists) {
				continue
			}

			return domain.Participant{}, fmt.Errorf("s.repo.Create -> %w", err)
		}

		return created, nil
	}

	return domain.Participant{}, ErrTicketNumberExists
}

// ticketNumber builds TK-<6 digits of the clock>-<3 random chars>. The
// clock part keeps numbers roughly sortable; the random tail plus the
// unique index carry actual uniqueness.
func (s *ParticipationService) ticketNumber() string {
	millis := s.now().UnixMilli()

	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = ticketRandomChars[s.rng.Intn(len(ticketRandomChars))]
	}

	return fmt.Sprintf("TK-%06d-%s", millis%1000000, suffix)
}

func (s *ParticipationService) GetParticipant(ctx context.Context, id uint) (domain.Participant, error) {
	participant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return participant, nil
}

func (s *ParticipationService) GetParticipants(ctx context.Context) ([]domain.Participant, error) {
	participants, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAll -> %w", err)
	}

	return participants, nil
}

func (s *ParticipationService) GetParticipantsByTombola(ctx context.Context, tombolaID uint) ([]domain.Participant, error) {
	participants, err := s.repo.GetByTombola(ctx, tombolaID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetByTombola -> %w", err)
	}

	return participants, nil
}

// TicketForParticipant rebuilds the printable ticket for an existing
// participant, with any redemption applied.
func (s *ParticipationService) TicketForParticipant(ctx context.Context, id uint) (domain.Ticket, error) {
	participant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	tombola, err := s.tombolaRepo.GetByID(ctx, participant.TombolaID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.tombolaRepo.GetByID -> %w", err)
	}

	ticket := domain.Ticket{
		ParticipantID: participant.ID,
		Name:          participant.Name,
		Phone:         participant.Phone,
		TicketNumber:  participant.TicketNumber,
		TombolaTitle:  tombola.Title,
		DrawDate:      tombola.DrawDate,
		OriginalPrice: tombola.TicketPrice,
		FinalPrice:    tombola.TicketPrice,
		PaymentRef:    participant.PaymentRef,
	}

	if participant.CouponUse != nil {
		ticket.Discount = participant.CouponUse.DiscountAmount
		ticket.FinalPrice = participant.CouponUse.FinalPrice

		coupon, err := s.couponSvc.GetByID(ctx, participant.CouponUse.CouponID)
		switch {
		case err == nil:
			ticket.CouponCode = coupon.Code
		case errors.Is(err, ErrCouponNotFound):
			// The redemption row outlives a deleted coupon; the ticket
			// keeps its discount without a code.
		default:
			return domain.Ticket{}, fmt.Errorf("s.couponSvc.GetByID -> %w", err)
		}
	}

	return ticket, nil
}
