package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ShashankBhake/st-shield-backend/cache"
	"github.com/ShashankBhake/st-shield-backend/logger"
	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/ShashankBhake/st-shield-backend/observability"
	awspkg "github.com/ShashankBhake/st-shield-backend/pkg/aws"
	"github.com/ShashankBhake/st-shield-backend/pricing"
	"github.com/ShashankBhake/st-shield-backend/providers"
	"go.uber.org/zap"
)

// Razorpay rejects receipts longer than this.
const maxReceiptLen = 40

// receiptFor returns rcpt_<plan>_<unix ms>, shortening the plan so the result
// fits maxReceiptLen.
func receiptFor(plan string, now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	if room := maxReceiptLen - len("rcpt__") - len(ts); len(plan) > room {
		plan = plan[:room]
	}
	return "rcpt_" + plan + "_" + ts
}

// OrderService opens provider orders at server-resolved prices.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.CreateOrderResponse, error)
}

type orderServiceImpl struct {
	prices   *pricing.Registry
	provider providers.PaymentProvider
	orders   cache.OrderCache
	currency string
	metrics  *awspkg.MetricsClient
	now      func() time.Time
}

// NewOrderService creates a new OrderService. A nil provider makes every call
// fail with ProviderNotConfigured.
func NewOrderService(
	prices *pricing.Registry,
	provider providers.PaymentProvider,
	orders cache.OrderCache,
	currency string,
	metrics *awspkg.MetricsClient,
) OrderService {
	return &orderServiceImpl{
		prices:   prices,
		provider: provider,
		orders:   orders,
		currency: currency,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	log := logger.FromContext(ctx).With(zap.String("plan_type", req.PlanType))

	if s.provider == nil {
		log.Warn("create order rejected: payment provider not configured")
		return nil, newError(KindProviderNotConfigured, http.StatusServiceUnavailable, MsgProviderNotConfigured, providers.ErrNotConfigured)
	}

	amount, err := s.prices.Resolve(req.PlanType)
	if err != nil {
		log.Warn("create order rejected: unknown plan")
		return nil, newError(KindInvalidPlan, http.StatusBadRequest, MsgInvalidPlan, err)
	}

	start := time.Now()
	order, err := s.provider.CreateOrder(ctx, models.ProviderOrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  receiptFor(req.PlanType, s.now()),
		Notes:    map[string]string{"planType": req.PlanType},
	})
	observability.ProviderLatency.WithLabelValues("create_order").Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("provider create order failed", zap.Error(err))
		return nil, newError(KindProviderError, http.StatusInternalServerError, MsgCreateOrderFailed, err)
	}

	if err := s.orders.Put(ctx, order.ID, amount); err != nil {
		// Without the cached price the order can never be verified.
		log.Error("failed to cache pending order", zap.String("order_id", order.ID), zap.Error(err))
		return nil, newError(KindInternal, http.StatusInternalServerError, MsgCreateOrderFailed, fmt.Errorf("cache pending order: %w", err))
	}

	observability.OrdersCreated.WithLabelValues(req.PlanType).Inc()
	s.metrics.RecordCountAsync(awspkg.MetricOrdersCreated, map[string]string{"Plan": req.PlanType})

	log.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", amount),
		zap.String("currency", s.currency),
	)
	return &models.CreateOrderResponse{ID: order.ID}, nil
}
