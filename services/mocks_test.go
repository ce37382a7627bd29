package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/ShashankBhake/st-shield-backend/repository"
)

// ---- mock provider ----

type mockProvider struct {
	secret     string
	order      models.ProviderOrder
	createErr  error
	payment    models.ProviderPayment
	fetchErr   error
	lastOrder  models.ProviderOrderRequest
	fetchCalls int
}

func (m *mockProvider) CreateOrder(_ context.Context, req models.ProviderOrderRequest) (models.ProviderOrder, error) {
	m.lastOrder = req
	if m.createErr != nil {
		return models.ProviderOrder{}, m.createErr
	}
	return m.order, nil
}

func (m *mockProvider) FetchPayment(_ context.Context, paymentID string) (models.ProviderPayment, error) {
	m.fetchCalls++
	if m.fetchErr != nil {
		return models.ProviderPayment{}, m.fetchErr
	}
	p := m.payment
	p.ID = paymentID
	return p, nil
}

func (m *mockProvider) KeySecret() string { return m.secret }

// ---- in-memory repository ----

type memPolicyRepo struct {
	mu        sync.Mutex
	policies  map[string]models.Policy
	createErr error
	listErr   error
}

func newMemPolicyRepo() *memPolicyRepo {
	return &memPolicyRepo{policies: map[string]models.Policy{}}
}

func (r *memPolicyRepo) Create(_ context.Context, p *models.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.policies[p.PolicyID]; ok {
		return fmt.Errorf("put policy %s: %w", p.PolicyID, repository.ErrPolicyExists)
	}
	r.policies[p.PolicyID] = *p
	return nil
}

func (r *memPolicyRepo) FindByID(_ context.Context, id string) (*models.Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.policies[id]
	if !ok {
		return nil, repository.ErrPolicyNotFound
	}
	return &p, nil
}

func (r *memPolicyRepo) FindByOrderID(_ context.Context, orderID string) (*models.Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.policies {
		if p.OrderID == orderID {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrPolicyNotFound
}

func (r *memPolicyRepo) ListByTimeRange(_ context.Context, from, to time.Time) ([]models.Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Policy
	for _, p := range r.policies {
		if !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ---- notifier / publisher / ids ----

type mockNotifier struct {
	issued     []*models.Policy
	mismatches []models.AmountMismatch
}

func (m *mockNotifier) PolicyIssued(_ context.Context, p *models.Policy) {
	m.issued = append(m.issued, p)
}

func (m *mockNotifier) AmountMismatch(_ context.Context, mm models.AmountMismatch) {
	m.mismatches = append(m.mismatches, mm)
}

type mockPublisher struct {
	events []models.PolicyEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e models.PolicyEvent) error {
	m.events = append(m.events, e)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

type fixedIDs struct{ id string }

func (f fixedIDs) NewPolicyID() string { return f.id }

var errBoom = errors.New("boom")
