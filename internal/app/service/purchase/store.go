package purchase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/tool"
	"github.com/eduforge/coursepay/pkg/types"
)

var (
	ErrNotFound = errors.New("purchase not found")
	// ErrStaleStatus means the conditional status update matched no row: a
	// concurrent delivery already moved the purchase past the observed state.
	ErrStaleStatus = errors.New("purchase status changed concurrently")
	// ErrEntityNotFound means the referenced user or course does not exist.
	ErrEntityNotFound = errors.New("user or course not found")
)

type GormStore struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewGormStore(db *gorm.DB, log *zap.SugaredLogger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) FindByTransactionID(ctx context.Context, provider types.PaymentProvider, transactionID string) (*models.Purchase, error) {
	var p models.Purchase
	err := s.db.WithContext(ctx).
		Where("provider = ? AND transaction_id = ?", provider, transactionID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) FindActiveByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Purchase, error) {
	var p models.Purchase
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, types.PurchaseStatusApproved).
		Order("updated_at desc").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreatePending inserts a new PENDING purchase. Both referenced entities must
// exist. Concurrent creates for the same (provider, transaction_id) are
// resolved by the unique constraint: the insert is a no-op for the loser and
// the surviving row is returned to both callers.
func (s *GormStore) CreatePending(ctx context.Context, p *models.Purchase) (*models.Purchase, error) {
	if err := s.checkEntitiesExist(ctx, p.UserID, p.CourseID); err != nil {
		return nil, err
	}

	if p.ID == "" {
		p.ID = tool.GenerateUUIDV7()
	}
	p.Status = types.PurchaseStatusPending

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "transaction_id"}},
			DoNothing: true,
		}).
		Create(p).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create pending purchase: %w", err)
	}

	// Re-read so a racing creator also observes the winning row.
	return s.FindByTransactionID(ctx, p.Provider, p.TransactionID)
}

// UpdateStatus performs a single conditional write guarded by the status the
// caller observed, so two concurrent reconciles cannot both apply a
// transition from the same prior state.
func (s *GormStore) UpdateStatus(ctx context.Context, id string, from, to types.PurchaseStatus, paymentMethod string) error {
	updates := map[string]any{"status": to}
	if paymentMethod != "" {
		updates["payment_method"] = paymentMethod
	}

	res := s.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update purchase status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Purchase{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStaleStatus
	}
	return nil
}

func (s *GormStore) checkEntitiesExist(ctx context.Context, userID, courseID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: user %s", ErrEntityNotFound, userID)
	}
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: course %s", ErrEntityNotFound, courseID)
	}
	return nil
}
