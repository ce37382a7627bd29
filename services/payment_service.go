package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ShashankBhake/st-shield-backend/cache"
	"github.com/ShashankBhake/st-shield-backend/events"
	"github.com/ShashankBhake/st-shield-backend/logger"
	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/ShashankBhake/st-shield-backend/observability"
	awspkg "github.com/ShashankBhake/st-shield-backend/pkg/aws"
	"github.com/ShashankBhake/st-shield-backend/providers"
	"github.com/ShashankBhake/st-shield-backend/repository"
	"github.com/ShashankBhake/st-shield-backend/signature"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const publishTimeout = 5 * time.Second

// PolicyNotifier sends best-effort emails. Satisfied by *notifications.Notifier.
type PolicyNotifier interface {
	PolicyIssued(ctx context.Context, policy *models.Policy)
	AmountMismatch(ctx context.Context, m models.AmountMismatch)
}

// PaymentService verifies provider callbacks and issues policies.
type PaymentService interface {
	VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.Policy, error)
}

type paymentServiceImpl struct {
	provider  providers.PaymentProvider
	orders    cache.OrderCache
	repo      repository.PolicyRepository
	ids       PolicyIDGenerator
	notifier  PolicyNotifier
	publisher events.Publisher
	metrics   *awspkg.MetricsClient
	currency  string
	now       func() time.Time
}

// NewPaymentService creates a new PaymentService. A nil provider makes every
// call fail with ProviderNotConfigured.
func NewPaymentService(
	provider providers.PaymentProvider,
	orders cache.OrderCache,
	repo repository.PolicyRepository,
	ids PolicyIDGenerator,
	notifier PolicyNotifier,
	publisher events.Publisher,
	metrics *awspkg.MetricsClient,
	currency string,
) PaymentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &paymentServiceImpl{
		provider:  provider,
		orders:    orders,
		repo:      repo,
		ids:       ids,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
		currency:  currency,
		now:       time.Now,
	}
}

// VerifyPayment runs lookup, amount check, signature check, persistence and
// notification in that order. The amount check precedes the signature check
// so tampered amounts always reach the alert path.
func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.Policy, error) {
	log := logger.FromContext(ctx).With(
		zap.String("order_id", req.RazorpayOrderID),
		zap.String("payment_id", req.RazorpayPaymentID),
	)

	if s.provider == nil {
		log.Warn("verify payment rejected: payment provider not configured")
		return nil, s.reject(ctx, newError(KindProviderNotConfigured, http.StatusServiceUnavailable, MsgProviderNotConfigured, providers.ErrNotConfigured))
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" || !req.HasUserData() {
		log.Warn("verify payment rejected: missing fields")
		return nil, s.reject(ctx, newError(KindValidation, http.StatusBadRequest, MsgMissingFields, nil))
	}

	expected, err := s.orders.Get(ctx, req.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, cache.ErrOrderNotFound) {
			log.Warn("verify payment rejected: unknown order")
			return nil, s.reject(ctx, newError(KindUnknownOrder, http.StatusBadRequest, MsgUnknownOrder, err))
		}
		log.Error("pending order lookup failed", zap.Error(err))
		return nil, s.reject(ctx, newError(KindInternal, http.StatusInternalServerError, "Internal server error", err))
	}

	start := time.Now()
	payment, err := s.provider.FetchPayment(ctx, req.RazorpayPaymentID)
	observability.ProviderLatency.WithLabelValues("fetch_payment").Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("provider fetch payment failed", zap.Error(err))
		return nil, s.reject(ctx, newError(KindProviderError, http.StatusInternalServerError, MsgProviderFetchFailed, err))
	}

	contact := models.ParseContact(req.UserData)

	if payment.Amount != expected {
		log.Error("payment amount mismatch",
			zap.Int64("expected_amount", expected),
			zap.Int64("actual_amount", payment.Amount),
		)
		detectedAt := s.now().UTC()
		s.notifier.AmountMismatch(ctx, models.AmountMismatch{
			OrderID:       req.RazorpayOrderID,
			PaymentID:     req.RazorpayPaymentID,
			Expected:      expected,
			Actual:        payment.Amount,
			CustomerEmail: contact.Email,
			RequestID:     logger.RequestID(ctx),
			DetectedAt:    detectedAt,
		})
		s.publish(ctx, models.PolicyEvent{
			EventType:      models.EventPaymentAmountMismatch,
			OrderID:        req.RazorpayOrderID,
			PaymentID:      req.RazorpayPaymentID,
			Amount:         payment.Amount,
			ExpectedAmount: expected,
			RequestID:      logger.RequestID(ctx),
			OccurredAt:     detectedAt,
		})
		return nil, s.reject(ctx, newError(KindAmountMismatch, http.StatusBadRequest, MsgAmountMismatch, nil))
	}

	if !signature.Verify(req.RazorpayOrderID, req.RazorpayPaymentID, s.provider.KeySecret(), req.RazorpaySignature) {
		log.Warn("payment signature mismatch")
		return nil, s.reject(ctx, newError(KindInvalidSignature, http.StatusBadRequest, MsgInvalidSignature, nil))
	}

	currency := payment.Currency
	if currency == "" {
		currency = s.currency
	}
	policy := &models.Policy{
		PolicyID:  s.ids.NewPolicyID(),
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		PlanType:  contact.PlanType,
		Amount:    payment.Amount,
		Currency:  currency,
		UserData:  datatypes.JSON(req.UserData),
		Timestamp: s.now().UTC(),
	}
	log = log.With(zap.String("policy_id", policy.PolicyID))

	if err := s.repo.Create(ctx, policy); err != nil {
		s.metrics.RecordCountAsync(awspkg.MetricPolicyPersistFailed, nil)
		if errors.Is(err, repository.ErrPolicyExists) {
			log.Error("policy id collision after captured payment", zap.Error(err))
			return nil, s.reject(ctx, newError(KindPolicyIDCollision, http.StatusInternalServerError, MsgPolicyCreateFailed, err))
		}
		log.Error("failed to persist policy after captured payment", zap.Error(err))
		return nil, s.reject(ctx, newError(KindPersistenceError, http.StatusInternalServerError, MsgPolicyCreateFailed, err))
	}

	log.Info("policy created", zap.Int64("amount", policy.Amount))
	observability.PaymentVerifications.WithLabelValues("verified").Inc()
	s.metrics.RecordCountAsync(awspkg.MetricPaymentVerified, nil)

	s.notifier.PolicyIssued(ctx, policy)
	s.publish(ctx, models.PolicyEvent{
		EventType:  models.EventPolicyCreated,
		PolicyID:   policy.PolicyID,
		OrderID:    policy.OrderID,
		PaymentID:  policy.PaymentID,
		PlanType:   policy.PlanType,
		Amount:     policy.Amount,
		RequestID:  logger.RequestID(ctx),
		OccurredAt: policy.Timestamp,
	})

	return policy, nil
}

func (s *paymentServiceImpl) reject(ctx context.Context, svcErr *ServiceError) *ServiceError {
	observability.PaymentVerifications.WithLabelValues(string(svcErr.Kind)).Inc()
	metric := awspkg.MetricPaymentRejected
	if svcErr.Kind == KindAmountMismatch {
		metric = awspkg.MetricAmountMismatch
	}
	s.metrics.RecordCountAsync(metric, map[string]string{"Reason": string(svcErr.Kind)})
	return svcErr
}

// publish is best-effort and outlives request cancellation.
func (s *paymentServiceImpl) publish(ctx context.Context, event models.PolicyEvent) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, event); err != nil {
		observability.EventsPublished.WithLabelValues(event.EventType, "failed").Inc()
		logger.FromContext(ctx).Error("failed to publish event",
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return
	}
	observability.EventsPublished.WithLabelValues(event.EventType, "published").Inc()
}
