package entitlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/logctx"
	"github.com/eduforge/coursepay/pkg/tool"
	"github.com/eduforge/coursepay/pkg/types"
)

// ErrEntityNotFound means the user or course a grant references no longer
// exists. This is a data-integrity fault and is surfaced, not swallowed.
var ErrEntityNotFound = errors.New("user or course not found")

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Grant associates a course with a user's entitlements. Idempotent: if the
// user already has the course the call succeeds without mutation. The unique
// (user_id, course_id) index absorbs concurrent grants.
func (s *Service) Grant(ctx context.Context, userID, courseID, sourcePurchaseID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: user %s", ErrEntityNotFound, userID)
	}
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check course: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: course %s", ErrEntityNotFound, courseID)
	}

	ent := &models.Entitlement{
		ID:       tool.GenerateUUIDV7(),
		UserID:   userID,
		CourseID: courseID,
	}
	if sourcePurchaseID != "" {
		ent.SourcePurchaseID = lo.ToPtr(sourcePurchaseID)
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(ent)
	if res.Error != nil {
		return fmt.Errorf("failed to create entitlement: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logctx.FromCtx(ctx, s.log).Infow("entitlement already present",
			"user_id", userID, "course_id", courseID)
	}
	return nil
}

// SendFreeCourse grants a course to a user without a provider payment. An
// approved inner-provider purchase is recorded alongside the entitlement so
// admin listings and statistics still see one purchase per held course.
func (s *Service) SendFreeCourse(ctx context.Context, userID, courseID, operatorID string) error {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: course %s", ErrEntityNotFound, courseID)
		}
		return fmt.Errorf("failed to load course: %w", err)
	}
	var userCount int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if userCount == 0 {
		return fmt.Errorf("%w: user %s", ErrEntityNotFound, userID)
	}

	purchaseID := tool.GenerateUUIDV7()
	p := &models.Purchase{
		ID:            purchaseID,
		UserID:        userID,
		CourseID:      courseID,
		Provider:      types.PaymentProviderInner,
		TransactionID: purchaseID,
		Status:        types.PurchaseStatusApproved,
		PaymentMethod: "free_gift",
		Amount:        decimal.Zero,
		Currency:      course.Currency,
		Extra:         datatypes.NewJSONType(&models.PurchaseExtra{OperatorID: operatorID}),
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to record free purchase: %w", err)
	}

	if err := s.Grant(ctx, userID, courseID, purchaseID); err != nil {
		return err
	}
	logctx.FromCtx(ctx, s.log).Infow("free course granted",
		"user_id", userID, "course_id", courseID, "operator_id", operatorID)
	return nil
}

// HasCourse reports whether the user currently holds the course.
func (s *Service) HasCourse(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Entitlement{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUserCourses returns the courses the user is entitled to.
func (s *Service) ListUserCourses(ctx context.Context, userID string) ([]*models.Course, error) {
	var courses []*models.Course
	err := s.db.WithContext(ctx).
		Joins("JOIN entitlement ON entitlement.course_id = course.id").
		Where("entitlement.user_id = ?", userID).
		Order("entitlement.created_at desc").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user courses: %w", err)
	}
	return courses, nil
}
