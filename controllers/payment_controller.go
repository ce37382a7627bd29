package controllers

import (
	"net/http"

	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/ShashankBhake/st-shield-backend/services"
	"github.com/gin-gonic/gin"
)

// PaymentController handles order creation and payment verification.
type PaymentController struct {
	orderService   services.OrderService
	paymentService services.PaymentService
	debug          bool
}

// NewPaymentController creates a new PaymentController. debug adds internal
// error details to responses.
func NewPaymentController(orders services.OrderService, payments services.PaymentService, debug bool) *PaymentController {
	return &PaymentController{orderService: orders, paymentService: payments, debug: debug}
}

// CreateOrder handles POST /api/create-order
func (pc *PaymentController) CreateOrder(ctx *gin.Context) {
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resp, err := pc.orderService.CreateOrder(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err, pc.debug)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// VerifyPayment handles POST /api/verify-payment
func (pc *PaymentController) VerifyPayment(ctx *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.VerifyPaymentResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	policy, err := pc.paymentService.VerifyPayment(ctx.Request.Context(), &req)
	if err != nil {
		svcErr := services.AsServiceError(err)
		resp := models.VerifyPaymentResponse{Success: false, Message: svcErr.Message}
		if pc.debug && svcErr.Err != nil {
			resp.Details = svcErr.Err.Error()
		}
		ctx.JSON(svcErr.StatusCode, resp)
		return
	}

	ctx.JSON(http.StatusOK, models.VerifyPaymentResponse{
		Success:      true,
		Message:      services.MsgPaymentVerified,
		PolicyNumber: &policy.PolicyID,
	})
}
