package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShashankBhake/st-shield-backend/logger"
	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier renders customer and business emails and hands them to a
// Dispatcher. Every method is best-effort: failures are logged and swallowed.
type Notifier struct {
	dispatcher    Dispatcher
	renderer      *Renderer
	businessEmail string
}

// NewNotifier returns a Notifier. A nil dispatcher disables email entirely.
func NewNotifier(d Dispatcher, r *Renderer, businessEmail string) *Notifier {
	return &Notifier{dispatcher: d, renderer: r, businessEmail: businessEmail}
}

// Enabled reports whether emails will be dispatched.
func (n *Notifier) Enabled() bool {
	return n != nil && n.dispatcher != nil
}

type policyEmailData struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	College       string
	PolicyID      string
	PlanType      string
	Amount        string
	OrderID       string
	PaymentID     string
	IssuedAt      string
	UserDataJSON  string
}

type mismatchEmailData struct {
	OrderID       string
	PaymentID     string
	Expected      string
	Actual        string
	CustomerEmail string
	RequestID     string
	DetectedAt    string
}

// PolicyIssued queues the customer confirmation and the business acknowledgment.
func (n *Notifier) PolicyIssued(ctx context.Context, policy *models.Policy) {
	log := logger.FromContext(ctx).With(zap.String("policy_id", policy.PolicyID))
	if !n.Enabled() {
		log.Info("email disabled, skipping policy notifications")
		return
	}

	contact := policy.Contact()
	data := policyEmailData{
		CustomerName:  contact.DisplayName(),
		CustomerEmail: contact.Email,
		CustomerPhone: contact.Phone,
		College:       contact.College,
		PolicyID:      policy.PolicyID,
		PlanType:      policy.PlanType,
		Amount:        formatAmount(policy.Amount),
		OrderID:       policy.OrderID,
		PaymentID:     policy.PaymentID,
		IssuedAt:      formatTime(policy.Timestamp),
		UserDataJSON:  prettyJSON(policy.UserData),
	}

	if contact.Email != "" {
		n.enqueue(ctx, log, KindPolicyConfirmation, contact.Email,
			fmt.Sprintf("Your Student Shield policy %s", policy.PolicyID), data)
	} else {
		log.Warn("userData has no email, skipping customer confirmation")
	}

	if n.businessEmail != "" {
		n.enqueue(ctx, log, KindBusinessAck, n.businessEmail,
			fmt.Sprintf("New policy issued: %s", policy.PolicyID), data)
	}
}

// AmountMismatch queues a business alert for a rejected payment.
func (n *Notifier) AmountMismatch(ctx context.Context, m models.AmountMismatch) {
	log := logger.FromContext(ctx).With(zap.String("order_id", m.OrderID))
	if !n.Enabled() || n.businessEmail == "" {
		log.Warn("amount mismatch alert not sent: email or business recipient not configured")
		return
	}

	data := mismatchEmailData{
		OrderID:       m.OrderID,
		PaymentID:     m.PaymentID,
		Expected:      formatAmount(m.Expected),
		Actual:        formatAmount(m.Actual),
		CustomerEmail: m.CustomerEmail,
		RequestID:     m.RequestID,
		DetectedAt:    formatTime(m.DetectedAt),
	}
	n.enqueue(ctx, log, KindAmountMismatchAlert, n.businessEmail,
		fmt.Sprintf("ALERT: payment amount mismatch on %s", m.OrderID), data)
}

func (n *Notifier) enqueue(ctx context.Context, log *zap.Logger, kind Kind, to, subject string, data interface{}) {
	body, err := n.renderer.Render(kind, data)
	if err != nil {
		log.Error("failed to render email", zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	job := Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		Subject:   subject,
		Body:      body,
		RequestID: logger.RequestID(ctx),
	}
	if err := n.dispatcher.Enqueue(ctx, job); err != nil {
		log.Error("failed to enqueue email", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	log.Debug("email queued", zap.String("kind", string(kind)), zap.String("job_id", job.ID))
}

func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
