package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// GormPolicyRepository stores policies in PostgreSQL.
type GormPolicyRepository struct {
	db *gorm.DB
}

func NewGormPolicyRepository(db *gorm.DB) *GormPolicyRepository {
	return &GormPolicyRepository{db: db}
}

func (r *GormPolicyRepository) Create(ctx context.Context, policy *models.Policy) error {
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("policy %s: %w", policy.PolicyID, ErrPolicyExists)
		}
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (r *GormPolicyRepository) FindByID(ctx context.Context, policyID string) (*models.Policy, error) {
	var p models.Policy
	if err := r.db.WithContext(ctx).Where("policy_id = ?", policyID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("find policy: %w", err)
	}
	return &p, nil
}

func (r *GormPolicyRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Policy, error) {
	var p models.Policy
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, fmt.Errorf("find policy by order: %w", err)
	}
	return &p, nil
}

func (r *GormPolicyRepository) ListByTimeRange(ctx context.Context, from, to time.Time) ([]models.Policy, error) {
	var policies []models.Policy
	err := r.db.WithContext(ctx).
		Where("timestamp BETWEEN ? AND ?", from.UTC(), to.UTC()).
		Order("timestamp ASC").
		Find(&policies).Error
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return policies, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
