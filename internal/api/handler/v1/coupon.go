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

type CouponService interface {
	Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
	Validate(ctx context.Context, code string, tombolaID uint, phone string) (domain.CouponValidation, error)
	GetByTombola(ctx context.Context, tombolaID uint) ([]domain.Coupon, error)
	UpdateDiscount(ctx context.Context, id uint, percentage int) (domain.Coupon, error)
	Delete(ctx context.Context, id uint) error
	Archive(ctx context.Context, id uint) error
	SetParrainContacted(ctx context.Context, id uint, contacted bool) error
	SponsorDashboard(ctx context.Context, phone string) ([]domain.SponsorStats, error)
}

type CouponHandler struct {
	svc CouponService
}

func NewCouponHandler(svc CouponService) *CouponHandler {
	return &CouponHandler{
		svc: svc,
	}
}

// HandleCreateCoupon godoc
// @Summary      Create a coupon
// @Description  Creates a sponsor coupon with a code generated from the sponsor's name
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateCouponRequest  true  "Coupon details"
// @Success      201    {object}  domain.Coupon
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /coupons [post]
// @Security     BearerAuth
func (h *CouponHandler) HandleCreateCoupon(ctx *gin.Context) {
	var input request.CreateCouponRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.Create(ctx.Request.Context(), domain.Coupon{
		TombolaID:          input.TombolaID,
		CreatorName:        input.CreatorName,
		CreatorPhone:       input.CreatorPhone,
		DiscountPercentage: input.DiscountPercentage,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDiscount):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrCouponCodeExists):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleCreateCoupon -> h.svc.Create -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleValidateCoupon godoc
// @Summary      Validate a coupon code
// @Description  Checks a code against a tombola and phone; rule violations come back as an invalid result, not an error
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        input  body      request.ValidateCouponRequest  true  "Code to validate"
// @Success      200    {object}  domain.CouponValidation
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /coupons/validate [post]
func (h *CouponHandler) HandleValidateCoupon(ctx *gin.Context) {
	var input request.ValidateCouponRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	validation, err := h.svc.Validate(ctx.Request.Context(), input.Code, input.TombolaID, input.Phone)
	if err != nil {
		err = fmt.Errorf("v1.HandleValidateCoupon -> h.svc.Validate -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, validation)
}

// HandleGetCoupons godoc
// @Summary      List a tombola's coupons
// @Description  Coupons ordered by tickets sold, most productive sponsors first
// @Tags         coupons
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      200        {array}   domain.Coupon
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID}/coupons [get]
// @Security     BearerAuth
func (h *CouponHandler) HandleGetCoupons(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	coupons, err := h.svc.GetByTombola(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetCoupons -> h.svc.GetByTombola -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, coupons)
}

// HandleUpdateCouponDiscount godoc
// @Summary      Change a coupon's discount
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        couponID  path      int                                  true  "Coupon ID"
// @Param        input     body      request.UpdateCouponDiscountRequest  true  "New discount"
// @Success      200       {object}  domain.Coupon
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /coupons/{couponID}/discount [put]
// @Security     BearerAuth
func (h *CouponHandler) HandleUpdateCouponDiscount(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "couponID")
	if !ok {
		return
	}

	var input request.UpdateCouponDiscountRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateDiscount(ctx.Request.Context(), id, input.DiscountPercentage)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDiscount):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrCouponNotFound):
			response.RenderErr(ctx, response.ErrNotFound("coupon", "ID", id))
		default:
			err = fmt.Errorf("v1.HandleUpdateCouponDiscount -> h.svc.UpdateDiscount -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteCoupon godoc
// @Summary      Delete an unused coupon
// @Description  Coupons with recorded uses must be archived instead
// @Tags         coupons
// @Produce      json
// @Param        couponID  path  int  true  "Coupon ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /coupons/{couponID} [delete]
// @Security     BearerAuth
func (h *CouponHandler) HandleDeleteCoupon(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "couponID")
	if !ok {
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrCouponInUse):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrCouponNotFound):
			response.RenderErr(ctx, response.ErrNotFound("coupon", "ID", id))
		default:
			err = fmt.Errorf("v1.HandleDeleteCoupon -> h.svc.Delete -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleArchiveCoupon godoc
// @Summary      Archive a coupon
// @Description  Deactivates the coupon while keeping its redemption history
// @Tags         coupons
// @Produce      json
// @Param        couponID  path  int  true  "Coupon ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /coupons/{couponID}/archive [post]
// @Security     BearerAuth
func (h *CouponHandler) HandleArchiveCoupon(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "couponID")
	if !ok {
		return
	}

	if err := h.svc.Archive(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("coupon", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleArchiveCoupon -> h.svc.Archive -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleSetParrainContacted godoc
// @Summary      Flag a sponsor as contacted
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        couponID  path  int                              true  "Coupon ID"
// @Param        input     body  request.ParrainContactedRequest  true  "Contacted flag"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /coupons/{couponID}/parrain-contacted [post]
// @Security     BearerAuth
func (h *CouponHandler) HandleSetParrainContacted(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "couponID")
	if !ok {
		return
	}

	var input request.ParrainContactedRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.SetParrainContacted(ctx.Request.Context(), id, input.Contacted); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("coupon", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleSetParrainContacted -> h.svc.SetParrainContacted -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleSponsorDashboard godoc
// @Summary      Sponsor dashboard
// @Description  A sponsor's coupons with aggregates and winner bonuses, looked up by their phone
// @Tags         coupons
// @Produce      json
// @Param        phone  path      string  true  "Sponsor phone"
// @Success      200    {array}   domain.SponsorStats
// @Failure      500    {object}  response.Err
// @Router       /sponsors/{phone}/coupons [get]
func (h *CouponHandler) HandleSponsorDashboard(ctx *gin.Context) {
	phone := ctx.Param("phone")

	stats, err := h.svc.SponsorDashboard(ctx.Request.Context(), phone)
	if err != nil {
		err = fmt.Errorf("v1.HandleSponsorDashboard -> h.svc.SponsorDashboard -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
