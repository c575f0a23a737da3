package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gytx-dev/tombola-api/internal/api/handler/v1/request"
	"github.com/gytx-dev/tombola-api/internal/api/handler/v1/response"
	"github.com/gytx-dev/tombola-api/internal/domain"
	"github.com/gytx-dev/tombola-api/internal/service"
)

type TombolaService interface {
	Create(ctx context.Context, tombola domain.Tombola) (domain.Tombola, error)
	GetByID(ctx context.Context, id uint) (domain.Tombola, error)
	GetAll(ctx context.Context) ([]domain.Tombola, error)
	GetCurrent(ctx context.Context) (domain.Tombola, error)
	Update(ctx context.Context, tombola domain.Tombola) (domain.Tombola, error)
	Delete(ctx context.Context, id uint) error
	Cancel(ctx context.Context, id uint) error
	GlobalStats(ctx context.Context) (domain.GlobalStats, error)
}

type TombolaHandler struct {
	svc TombolaService
}

func NewTombolaHandler(svc TombolaService) *TombolaHandler {
	return &TombolaHandler{
		svc: svc,
	}
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %v", name)))

		return 0, false
	}

	return uint(id), true
}

// HandleCreateTombola godoc
// @Summary      Create a tombola
// @Description  Creates a new tombola in active status
// @Tags         tombolas
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateTombolaRequest  true  "Tombola details"
// @Success      201    {object}  domain.Tombola
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /tombolas [post]
// @Security     BearerAuth
func (h *TombolaHandler) HandleCreateTombola(ctx *gin.Context) {
	var input request.CreateTombolaRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Create(ctx.Request.Context(), tombolaFromPayload(0, input.Title, input.Description, input.TicketPrice, input.DrawDate, input.Jackpot, input.MaxWinners, input.Prizes))
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateTombola -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetTombolas godoc
// @Summary      List tombolas
// @Description  Lists every tombola with its confirmed participant count
// @Tags         tombolas
// @Produce      json
// @Success      200  {array}   domain.Tombola
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tombolas [get]
// @Security     BearerAuth
func (h *TombolaHandler) HandleGetTombolas(ctx *gin.Context) {
	tombolas, err := h.svc.GetAll(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTombolas -> h.svc.GetAll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tombolas)
}

// HandleGetCurrentTombola godoc
// @Summary      Get the active tombola
// @Description  Returns the tombola currently selling tickets
// @Tags         tombolas
// @Produce      json
// @Success      200  {object}  domain.Tombola
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tombolas/current [get]
func (h *TombolaHandler) HandleGetCurrentTombola(ctx *gin.Context) {
	tombola, err := h.svc.GetCurrent(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrTombolaNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("tombola", "status", domain.TombolaStatusActive))
			return
		}

		err = fmt.Errorf("v1.HandleGetCurrentTombola -> h.svc.GetCurrent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tombola)
}

// HandleGetTombola godoc
// @Summary      Get a tombola
// @Tags         tombolas
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      200        {object}  domain.Tombola
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID} [get]
// @Security     BearerAuth
func (h *TombolaHandler) HandleGetTombola(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	tombola, err := h.svc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTombolaNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("tombola", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetTombola -> h.svc.GetByID -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tombola)
}

// HandleUpdateTombola godoc
// @Summary      Update a tombola
// @Tags         tombolas
// @Accept       json
// @Produce      json
// @Param        tombolaID  path      int                           true  "Tombola ID"
// @Param        input      body      request.UpdateTombolaRequest  true  "Tombola details"
// @Success      200        {object}  domain.Tombola
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID} [put]
// @Security     BearerAuth
func (h *TombolaHandler) HandleUpdateTombola(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	var input request.UpdateTombolaRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.Update(ctx.Request.Context(), tombolaFromPayload(id, input.Title, input.Description, input.TicketPrice, input.DrawDate, input.Jackpot, input.MaxWinners, input.Prizes))
	if err != nil {
		if errors.Is(err, service.ErrTombolaNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("tombola", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateTombola -> h.svc.Update -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteTombola godoc
// @Summary      Delete a tombola
// @Tags         tombolas
// @Produce      json
// @Param        tombolaID  path  int  true  "Tombola ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tombolas/{tombolaID} [delete]
// @Security     BearerAuth
func (h *TombolaHandler) HandleDeleteTombola(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTombolaNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("tombola", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteTombola -> h.svc.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleCancelTombola godoc
// @Summary      Cancel a tombola
// @Description  Flips an active tombola to cancelled without drawing winners
// @Tags         tombolas
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tombolas/{tombolaID}/cancel [post]
// @Security     BearerAuth
func (h *TombolaHandler) HandleCancelTombola(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	if err := h.svc.Cancel(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTombolaNotActive) {
			response.RenderErr(ctx, response.ErrConflict(err))
			return
		}

		err = fmt.Errorf("v1.HandleCancelTombola -> h.svc.Cancel -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetGlobalStats godoc
// @Summary      Global statistics
// @Description  Totals across every tombola for the admin landing page
// @Tags         tombolas
// @Produce      json
// @Success      200  {object}  domain.GlobalStats
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /stats [get]
// @Security     BearerAuth
func (h *TombolaHandler) HandleGetGlobalStats(ctx *gin.Context) {
	stats, err := h.svc.GlobalStats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetGlobalStats -> h.svc.GlobalStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func tombolaFromPayload(id uint, title, description string, price int, drawDate time.Time, jackpot string, maxWinners int, prizes []request.PrizePayload) domain.Tombola {
	tombola := domain.Tombola{
		ID:          id,
		Title:       title,
		Description: description,
		TicketPrice: price,
		DrawDate:    drawDate,
		Jackpot:     jackpot,
		MaxWinners:  maxWinners,
		Prizes:      make([]domain.Prize, 0, len(prizes)),
	}
	for _, p := range prizes {
		tombola.Prizes = append(tombola.Prizes, domain.Prize{Name: p.Name, Value: p.Value})
	}

	return tombola
}
