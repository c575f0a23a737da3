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

type CommissionService interface {
	GetTiers(ctx context.Context, tombolaID uint) ([]domain.CommissionTier, error)
	ReplaceTiers(ctx context.Context, tombolaID uint, tiers []domain.CommissionTier) ([]domain.CommissionTier, error)
	SummaryForTombola(ctx context.Context, tombolaID uint) (domain.CommissionSummary, error)
	BreakdownForCoupon(ctx context.Context, couponID uint) (domain.CommissionBreakdown, error)
	RecomputeAllForTombola(ctx context.Context, tombolaID uint) error
	PaySponsor(ctx context.Context, couponID uint) (domain.SponsorPayment, error)
	ReceiptForCoupon(ctx context.Context, couponID uint) (domain.Receipt, error)
	GetPayments(ctx context.Context, tombolaID uint) ([]domain.SponsorPayment, error)
}

type CommissionHandler struct {
	svc CommissionService
}

func NewCommissionHandler(svc CommissionService) *CommissionHandler {
	return &CommissionHandler{
		svc: svc,
	}
}

// HandleGetTiers godoc
// @Summary      List commission tiers
// @Tags         commissions
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      200        {array}   domain.CommissionTier
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID}/commission-tiers [get]
// @Security     BearerAuth
func (h *CommissionHandler) HandleGetTiers(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	tiers, err := h.svc.GetTiers(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTiers -> h.svc.GetTiers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tiers)
}

// HandleReplaceTiers godoc
// @Summary      Replace commission tiers
// @Description  Swaps the whole tier table and recomputes every coupon's commission
// @Tags         commissions
// @Accept       json
// @Produce      json
// @Param        tombolaID  path      int                         true  "Tombola ID"
// @Param        input      body      request.ReplaceTiersRequest true  "New tiers"
// @Success      200        {array}   domain.CommissionTier
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID}/commission-tiers [put]
// @Security     BearerAuth
func (h *CommissionHandler) HandleReplaceTiers(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	var input request.ReplaceTiersRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tiers := make([]domain.CommissionTier, 0, len(input.Tiers))
	for _, t := range input.Tiers {
		tiers = append(tiers, domain.CommissionTier{
			TombolaID:            id,
			Name:                 t.Name,
			MinTickets:           t.MinTickets,
			CommissionPercentage: t.CommissionPercentage,
		})
	}

	replaced, err := h.svc.ReplaceTiers(ctx.Request.Context(), id, tiers)
	if err != nil {
		err = fmt.Errorf("v1.HandleReplaceTiers -> h.svc.ReplaceTiers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, replaced)
}

// HandleGetCommissionSummary godoc
// @Summary      Commission summary
// @Description  Totals, tier table, per-coupon stats and top sponsors for a tombola
// @Tags         commissions
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      200        {object}  domain.CommissionSummary
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID}/commissions [get]
// @Security     BearerAuth
func (h *CommissionHandler) HandleGetCommissionSummary(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	summary, err := h.svc.SummaryForTombola(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetCommissionSummary -> h.svc.SummaryForTombola -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// HandleGetCommissionBreakdown godoc
// @Summary      Commission breakdown for a coupon
// @Tags         commissions
// @Produce      json
// @Param        couponID  path      int  true  "Coupon ID"
// @Success      200       {object}  domain.CommissionBreakdown
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /coupons/{couponID}/commission [get]
// @Security     BearerAuth
func (h *CommissionHandler) HandleGetCommissionBreakdown(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "couponID")
	if !ok {
		return
	}

	breakdown, err := h.svc.BreakdownForCoupon(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("coupon", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleGetCommissionBreakdown -> h.svc.BreakdownForCoupon -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, breakdown)
}

// HandleRecomputeCommissions godoc
// @Summary      Recompute commissions
// @Description  Rebuilds every coupon's cached aggregates from its redemption rows
// @Tags         commissions
// @Produce      json
// @Param        tombolaID  path  int  true  "Tombola ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tombolas/{tombolaID}/commissions/recompute [post]
// @Security     BearerAuth
func (h *CommissionHandler) HandleRecomputeCommissions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	if err := h.svc.RecomputeAllForTombola(ctx.Request.Context(), id); err != nil {
		err = fmt.Errorf("v1.HandleRecomputeCommissions -> h.svc.RecomputeAllForTombola -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandlePaySponsor godoc
// @Summary      Pay out a sponsor's commission
// @Description  Records the single payout for a coupon. A repeat call returns the existing payment with status 409.
// @Tags         commissions
// @Produce      json
// @Param        couponID  path      int  true  "Coupon ID"
// @Success      201       {object}  domain.SponsorPayment
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      409       {object}  domain.SponsorPayment
// @Failure      500       {object}  response.Err
// @Router       /coupons/{couponID}/pay [post]
// @Security     BearerAuth
func (h *CommissionHandler) HandlePaySponsor(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "couponID")
	if !ok {
		return
	}

	payment, err := h.svc.PaySponsor(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSponsorAlreadyPaid):
			// The existing payment is the useful answer here, the status
			// code carries the "already done" signal.
			ctx.JSON(http.StatusConflict, payment)
		case errors.Is(err, service.ErrNoCommissionDue):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrCouponNotFound):
			response.RenderErr(ctx, response.ErrNotFound("coupon", "ID", id))
		default:
			err = fmt.Errorf("v1.HandlePaySponsor -> h.svc.PaySponsor -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, payment)
}

// HandleGetReceipt godoc
// @Summary      Commission receipt
// @Tags         commissions
// @Produce      json
// @Param        couponID  path      int  true  "Coupon ID"
// @Success      200       {object}  domain.Receipt
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /coupons/{couponID}/receipt [get]
// @Security     BearerAuth
func (h *CommissionHandler) HandleGetReceipt(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "couponID")
	if !ok {
		return
	}

	receipt, err := h.svc.ReceiptForCoupon(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			response.RenderErr(ctx, response.ErrNotFound("coupon", "ID", id))
		case errors.Is(err, service.ErrSponsorPaymentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("payment", "couponID", id))
		default:
			err = fmt.Errorf("v1.HandleGetReceipt -> h.svc.ReceiptForCoupon -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, receipt)
}

// HandleGetPayments godoc
// @Summary      List sponsor payments
// @Tags         commissions
// @Produce      json
// @Param        tombolaID  path      int  true  "Tombola ID"
// @Success      200        {array}   domain.SponsorPayment
// @Failure      400        {object}  response.Err
// @Failure      401        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tombolas/{tombolaID}/sponsor-payments [get]
// @Security     BearerAuth
func (h *CommissionHandler) HandleGetPayments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "tombolaID")
	if !ok {
		return
	}

	payments, err := h.svc.GetPayments(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetPayments -> h.svc.GetPayments -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, payments)
}
