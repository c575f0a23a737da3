package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/repository"
)

type fakeParticipantRepo struct {
	participants map[uint]domain.Participant
	nextID       uint
	failCreates  int
	takenNumbers map[string]bool
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		participants: make(map[uint]domain.Participant),
		takenNumbers: make(map[string]bool),
	}
}

func (f *fakeParticipantRepo) Create(_ context.Context, p domain.Participant) (domain.Participant, error) {
	if f.failCreates > 0 {
		f.failCreates--
		return domain.Participant{}, repository.ErrTicketNumberExists
	}
	if f.takenNumbers[p.TicketNumber] {
		return domain.Participant{}, repository.ErrTicketNumberExists
	}
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	f.participants[p.ID] = p
	f.takenNumbers[p.TicketNumber] = true
	return p, nil
}

func (f *fakeParticipantRepo) GetByID(_ context.Context, id uint) (domain.Participant, error) {
	p, ok := f.participants[id]
	if !ok {
		return domain.Participant{}, repository.ErrParticipantNotFound
	}
	return p, nil
}

func (f *fakeParticipantRepo) GetAll(_ context.Context) ([]domain.Participant, error) {
	out := make([]domain.Participant, 0, len(f.participants))
	for _, p := range f.participants {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeParticipantRepo) GetByTombola(_ context.Context, tombolaID uint) ([]domain.Participant, error) {
	var out []domain.Participant
	for _, p := range f.participants {
		if p.TombolaID == tombolaID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) GetEligible(_ context.Context, tombolaID uint) ([]domain.Participant, error) {
	var out []domain.Participant
	for id := uint(1); id <= f.nextID; id++ {
		p, ok := f.participants[id]
		if ok && p.TombolaID == tombolaID && p.PaymentStatus == domain.PaymentStatusConfirmed {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) CountConfirmed(ctx context.Context, tombolaID uint) (int, error) {
	eligible, _ := f.GetEligible(ctx, tombolaID)
	return len(eligible), nil
}

func (f *fakeParticipantRepo) CountAllConfirmed(_ context.Context) (int, error) {
	count := 0
	for _, p := range f.participants {
		if p.PaymentStatus == domain.PaymentStatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (f *fakeParticipantRepo) UpdatePaymentStatus(_ context.Context, id uint, status string) (domain.Participant, error) {
	p, ok := f.participants[id]
	if !ok {
		return domain.Participant{}, repository.ErrParticipantNotFound
	}
	p.PaymentStatus = status
	f.participants[id] = p
	return p, nil
}

type fakeWinnerRepo struct {
	winners map[uint]domain.Winner
}

func newFakeWinnerRepo() *fakeWinnerRepo {
	return &fakeWinnerRepo{winners: make(map[uint]domain.Winner)}
}

func (f *fakeWinnerRepo) GetAll(_ context.Context) ([]domain.Winner, error) {
	out := make([]domain.Winner, 0, len(f.winners))
	for _, w := range f.winners {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWinnerRepo) GetByTombola(_ context.Context, tombolaID uint) ([]domain.Winner, error) {
	var out []domain.Winner
	for _, w := range f.winners {
		if w.TombolaID == tombolaID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWinnerRepo) AttachPhoto(_ context.Context, id uint, photoURL string) (domain.Winner, error) {
	w, ok := f.winners[id]
	if !ok {
		return domain.Winner{}, repository.ErrWinnerNotFound
	}
	w.PhotoURL = photoURL
	f.winners[id] = w
	return w, nil
}

func seedDrawFixture(tombola domain.Tombola, confirmed int) (*fakeTombolaRepo, *fakeParticipantRepo, *fakeCouponRepo) {
	tombolaRepo := newFakeTombolaRepo()
	tombolaRepo.tombolas[tombola.ID] = tombola

	participantRepo := newFakeParticipantRepo()
	for i := 0; i < confirmed; i++ {
		_, _ = participantRepo.Create(context.Background(), domain.Participant{
			Name:          "P",
			TombolaID:     tombola.ID,
			TicketNumber:  time.Now().Format("150405.000") + string(rune('A'+i)),
			PaymentStatus: domain.PaymentStatusConfirmed,
		})
	}

	return tombolaRepo, participantRepo, newFakeCouponRepo()
}

func dueTombola(id uint, maxWinners int, prizes []domain.Prize) domain.Tombola {
	return domain.Tombola{
		ID:          id,
		Title:       "Grande Tombola",
		TicketPrice: 500,
		DrawDate:    time.Now().Add(-time.Hour),
		Jackpot:     "500 000 FCFA",
		MaxWinners:  maxWinners,
		Prizes:      prizes,
		Status:      domain.TombolaStatusActive,
	}
}

func TestDrawService_PerformDraw(t *testing.T) {
	ctx := context.Background()

	prizes := []domain.Prize{
		{Name: "1er prix", Value: "300 000 FCFA"},
		{Name: "2e prix", Value: "150 000 FCFA"},
	}
	tombolaRepo, participantRepo, couponRepo := seedDrawFixture(dueTombola(7, 2, prizes), 10)

	svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())

	winners, err := svc.PerformDraw(ctx, 7)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	assert.Equal(t, 1, winners[0].PrizeRank)
	assert.Equal(t, "300 000 FCFA", winners[0].PrizeAmount)
	assert.Equal(t, 2, winners[1].PrizeRank)
	assert.Equal(t, "150 000 FCFA", winners[1].PrizeAmount)
	assert.NotEqual(t, winners[0].ParticipantID, winners[1].ParticipantID)

	assert.Equal(t, domain.TombolaStatusCompleted, tombolaRepo.tombolas[7].Status)
}

func TestDrawService_PerformDraw_SecondDrawConflicts(t *testing.T) {
	ctx := context.Background()

	tombolaRepo, participantRepo, couponRepo := seedDrawFixture(dueTombola(7, 1, nil), 5)
	svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())

	_, err := svc.PerformDraw(ctx, 7)
	require.NoError(t, err)

	_, err = svc.PerformDraw(ctx, 7)
	assert.ErrorIs(t, err, ErrTombolaNotActive)
}

func TestDrawService_PerformDraw_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("not due yet", func(t *testing.T) {
		tombola := dueTombola(7, 1, nil)
		tombola.DrawDate = time.Now().Add(24 * time.Hour)
		tombolaRepo, participantRepo, couponRepo := seedDrawFixture(tombola, 5)

		svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())
		_, err := svc.PerformDraw(ctx, 7)
		assert.ErrorIs(t, err, ErrDrawNotDue)
	})

	t.Run("no confirmed participants", func(t *testing.T) {
		tombolaRepo, participantRepo, couponRepo := seedDrawFixture(dueTombola(7, 1, nil), 0)

		svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())
		_, err := svc.PerformDraw(ctx, 7)
		assert.ErrorIs(t, err, ErrNoEligibleParticipants)
	})

	t.Run("cancelled tombola", func(t *testing.T) {
		tombola := dueTombola(7, 1, nil)
		tombola.Status = domain.TombolaStatusCancelled
		tombolaRepo, participantRepo, couponRepo := seedDrawFixture(tombola, 5)

		svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())
		_, err := svc.PerformDraw(ctx, 7)
		assert.ErrorIs(t, err, ErrTombolaNotActive)
	})
}

func TestDrawService_PerformDraw_ZeroMaxWinners(t *testing.T) {
	ctx := context.Background()

	// max_winners caps the draw with no floor: zero means the tombola
	// completes without picking anyone.
	tombolaRepo, participantRepo, couponRepo := seedDrawFixture(dueTombola(7, 0, nil), 5)
	svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())

	winners, err := svc.PerformDraw(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, winners)
	assert.Equal(t, domain.TombolaStatusCompleted, tombolaRepo.tombolas[7].Status)
}

func TestDrawService_PerformDraw_MoreWinnersThanPrizes(t *testing.T) {
	ctx := context.Background()

	prizes := []domain.Prize{{Name: "Lot unique", Value: "50 000 FCFA"}}
	tombolaRepo, participantRepo, couponRepo := seedDrawFixture(dueTombola(7, 3, prizes), 10)

	svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())

	winners, err := svc.PerformDraw(ctx, 7)
	require.NoError(t, err)
	require.Len(t, winners, 3)

	for _, w := range winners {
		assert.Equal(t, "50 000 FCFA", w.PrizeAmount)
	}
}

func TestDrawService_PerformDraw_JackpotSplitWithoutPrizes(t *testing.T) {
	ctx := context.Background()

	tombolaRepo, participantRepo, couponRepo := seedDrawFixture(dueTombola(7, 2, nil), 10)
	svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())

	winners, err := svc.PerformDraw(ctx, 7)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	for _, w := range winners {
		assert.Equal(t, "250 000 FCFA", w.PrizeAmount)
	}
}

func TestDrawService_PerformDraw_WinnerBonus(t *testing.T) {
	ctx := context.Background()

	tombolaRepo, participantRepo, couponRepo := seedDrawFixture(dueTombola(7, 1, nil), 1)

	couponRepo.add(domain.Coupon{ID: 1, Code: "MAR1234", TombolaID: 7, DiscountPercentage: 25, IsActive: true})
	_, err := couponRepo.RecordUse(ctx, domain.CouponUse{
		CouponID: 1, ParticipantID: 1, TombolaID: 7,
		OriginalPrice: 500, DiscountAmount: 125, FinalPrice: 375,
	})
	require.NoError(t, err)

	svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), newTestRNG())

	winners, err := svc.PerformDraw(ctx, 7)
	require.NoError(t, err)
	require.Len(t, winners, 1)

	// 25% of the 500 000 jackpot.
	assert.Equal(t, 125000, winners[0].BonusCommission)
}

func TestDrawService_PerformDraw_UniformOverParticipants(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	const participants = 10
	const draws = 2000

	wins := make(map[uint]int)
	for i := 0; i < draws; i++ {
		tombolaRepo, participantRepo, couponRepo := seedDrawFixture(dueTombola(7, 1, nil), participants)
		svc := NewDrawService(tombolaRepo, participantRepo, couponRepo, newFakeWinnerRepo(), rng)

		winners, err := svc.PerformDraw(ctx, 7)
		require.NoError(t, err)
		wins[winners[0].ParticipantID]++
	}

	// Expected 200 wins each; allow a wide band so the test only fails
	// on a genuinely biased shuffle.
	for id := uint(1); id <= participants; id++ {
		assert.Greater(t, wins[id], 100, "participant %d barely wins", id)
		assert.Less(t, wins[id], 300, "participant %d wins too often", id)
	}
}

func TestFormatFCFA(t *testing.T) {
	assert.Equal(t, "250 000 FCFA", formatFCFA(250000))
	assert.Equal(t, "1 000 000 FCFA", formatFCFA(1000000))
	assert.Equal(t, "500 FCFA", formatFCFA(500))
	assert.Equal(t, "0 FCFA", formatFCFA(0))
}

func TestDrawService_AttachWinnerPhoto(t *testing.T) {
	winnerRepo := newFakeWinnerRepo()
	winnerRepo.winners[3] = domain.Winner{ID: 3, TombolaID: 7, PrizeRank: 1}

	svc := NewDrawService(newFakeTombolaRepo(), newFakeParticipantRepo(), newFakeCouponRepo(), winnerRepo, newTestRNG())

	winner, err := svc.AttachWinnerPhoto(context.Background(), 3, "https://cdn.gytx.dev/winners/3.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.gytx.dev/winners/3.jpg", winner.PhotoURL)

	_, err = svc.AttachWinnerPhoto(context.Background(), 99, "https://cdn.gytx.dev/winners/99.jpg")
	assert.ErrorIs(t, err, ErrWinnerNotFound)
}
