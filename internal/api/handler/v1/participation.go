package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gytx-dev/tombola-api/internal/api/handler/v1/request"
	"github.com/gytx-dev/tombola-api/internal/api/handler/v1/response"
	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/service"
)

type ParticipationService interface {
	Participate(ctx context.Context, input service.ParticipationInput) (domain.Ticket, error)
	GetParticipants(ctx context.Context) ([]domain.Participant, error)
	GetParticipantsByTombola(ctx context.Context, tombolaID uint) ([]domain.Participant, error)
	TicketForParticipant(ctx context.Context, id uint) (domain.Ticket, error)
}

type ParticipationHandler struct {
	svc ParticipationService
}

func NewParticipationHandler(svc ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{
		svc: svc,
	}
}

// HandleParticipate godoc
// @Summary      Buy a ticket
// @Description  Validates the coupon if any, charges the discounted price by mobile money, then issues the ticket
// @Tags         participations
// @Accept       json
// @Produce      json
// @Param        input  body      request.ParticipateRequest  true  "Participation details"
// @Success      201    {object}  domain.Ticket
// @Failure      400    {object}  response.Err
// @Failure      402    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /participations [post]
func (h *ParticipationHandler) HandleParticipate(ctx *gin.Context) {
	var input request.ParticipateRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.Participate(ctx.Request.Context(), service.ParticipationInput{
		TombolaID:         input.TombolaID,
		Name:              input.Name,
		Phone:             input.Phone,
		AirtelMoneyNumber: input.AirtelMoneyNumber,
		CouponCode:        input.CouponCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTombolaNotFound):
			response.RenderErr(ctx, response.ErrNotFound("tombola", "ID", input.TombolaID))
		case errors.Is(err, service.ErrTombolaNotActive), errors.Is(err, service.ErrInvalidCoupon):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrPaymentFailed):
			response.RenderErr(ctx, response.ErrPaymentFailed(err))
		default:
			err = fmt.Errorf("v1.HandleParticipate -> h.svc.Participate -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, ticket)
}

// HandleGetParticipants godoc
// @Summary      List all participants
// @Tags         participations
// @Produce      json
// @Success      200  {array}   domain.Participant
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /participants [get]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleGetParticipants(ctx *gin.Context) {
	participants, err := h.svc.GetParticipants(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetParticipants -> h.svc.GetParticipants -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, participants)
}

// HandleGetTombolaParticipants godoc
// @Summary      List a tombola's participants
// @Tags         participations
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      200        {array}   domain.Participant
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID}/participants [get]
// @Security     BearerAuth
func (h *ParticipationHandler) HandleGetTombolaParticipants(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	participants, err := h.svc.GetParticipantsByTombola(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTombolaParticipants -> h.svc.GetParticipantsByTombola -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, participants)
}

// HandleGetTicket godoc
// @Summary      Refetch a ticket
// @Description  Rebuilds the printable ticket for an existing participant
// @Tags         participations
// @Produce      json
// @Param        participantID  path      int  true  "Participant ID"
// @Success      200            {object}  domain.Ticket
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /participants/{participantID}/ticket [get]
func (h *ParticipationHandler) HandleGetTicket(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "participantID")
	if !ok {
		return
	}

	ticket, err := h.svc.TicketForParticipant(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("participant", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetTicket -> h.svc.TicketForParticipant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}
