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

type DrawService interface {
	PerformDraw(ctx context.Context, tombolaID uint) ([]domain.Winner, error)
	GetWinners(ctx context.Context) ([]domain.Winner, error)
	WinnersForTombola(ctx context.Context, tombolaID uint) ([]domain.Winner, error)
	AttachWinnerPhoto(ctx context.Context, id uint, photoURL string) (domain.Winner, error)
}

type DrawHandler struct {
	svc DrawService
}

func NewDrawHandler(svc DrawService) *DrawHandler {
	return &DrawHandler{
		svc: svc,
	}
}

// HandlePerformDraw godoc
// @Summary      Draw the winners
// @Description  Picks winners uniformly among confirmed participants and completes the tombola. Repeating the call conflicts.
// @Tags         draws
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      201        {array}   domain.Winner
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID}/draw [post]
// @Security     BearerAuth
func (h *DrawHandler) HandlePerformDraw(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	winners, err := h.svc.PerformDraw(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTombolaNotFound):
			response.RenderErr(ctx, response.ErrNotFound("tombola", "ID", id))
		case errors.Is(err, service.ErrTombolaNotActive),
			errors.Is(err, service.ErrDrawNotDue),
			errors.Is(err, service.ErrNoEligibleParticipants):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandlePerformDraw -> h.svc.PerformDraw -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, winners)
}

// HandleGetWinners godoc
// @Summary      List all winners
// @Description  The public winners gallery across every completed tombola
// @Tags         draws
// @Produce      json
// @Success      200  {array}   domain.Winner
// @Failure      500  {object}  response.Err
// @Router       /winners [get]
func (h *DrawHandler) HandleGetWinners(ctx *gin.Context) {
	winners, err := h.svc.GetWinners(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetWinners -> h.svc.GetWinners -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, winners)
}

// HandleGetTombolaWinners godoc
// @Summary      List a tombola's winners
// @Tags         draws
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      200        {array}   domain.Winner
// @Failure      400        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID}/winners [get]
func (h *DrawHandler) HandleGetTombolaWinners(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	winners, err := h.svc.WinnersForTombola(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTombolaWinners -> h.svc.WinnersForTombola -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, winners)
}

// HandleAttachWinnerPhoto godoc
// @Summary      Attach a ceremony photo
// @Description  The only winner field that changes after a draw
// @Tags         draws
// @Accept       json
// @Produce      json
// @Param        winnerID  path      int                               true  "Winner ID"
// @Param        input     body      request.AttachWinnerPhotoRequest  true  "Photo URL"
// @Success      200       {object}  domain.Winner
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /winners/{winnerID}/photo [post]
// @Security     BearerAuth
func (h *DrawHandler) HandleAttachWinnerPhoto(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "winnerID")
	if !ok {
		return
	}

	var input request.AttachWinnerPhotoRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	winner, err := h.svc.AttachWinnerPhoto(ctx.Request.Context(), id, input.PhotoURL)
	if err != nil {
		if errors.Is(err, service.ErrWinnerNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("winner", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleAttachWinnerPhoto -> h.svc.AttachWinnerPhoto -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, winner)
}
