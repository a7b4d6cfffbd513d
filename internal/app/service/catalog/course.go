package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/tool"
	"github.com/eduforge/coursepay/pkg/types"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrEbookNotFound  = errors.New("ebook not found")
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type CourseInput struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	VideoURL      string          `json:"video_url"`
	CoverImageURL string          `json:"cover_image_url"`
}

func (in *CourseInput) toModel() *models.Course {
	currency := in.Currency
	if currency == "" {
		currency = "BRL"
	}
	return &models.Course{
		ID:            tool.GenerateUUIDV7(),
		Title:         in.Title,
		Description:   in.Description,
		Price:         in.Price,
		Currency:      currency,
		VideoURL:      in.VideoURL,
		CoverImageURL: in.CoverImageURL,
		Type:          types.CourseTypeOnline,
	}
}

func (s *Service) CreateCourse(ctx context.Context, in *CourseInput) (*models.Course, error) {
	course := in.toModel()
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return course, nil
}

// CreateCourseWithSubcourses creates a parent course and its subcourses in
// one transaction.
func (s *Service) CreateCourseWithSubcourses(ctx context.Context, in *CourseInput, subs []*CourseInput) (*models.Course, error) {
	course := in.toModel()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return fmt.Errorf("failed to create course: %w", err)
		}
		for _, sub := range subs {
			child := sub.toModel()
			child.ParentCourseID = &course.ID
			if child.Currency == "" {
				child.Currency = course.Currency
			}
			if err := tx.Create(child).Error; err != nil {
				return fmt.Errorf("failed to create subcourse: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCourse(ctx, course.ID)
}

// ListCourses returns top-level courses with their subcourses preloaded.
func (s *Service) ListCourses(ctx context.Context) ([]*models.Course, error) {
	var courses []*models.Course
	err := s.db.WithContext(ctx).
		Preload("SubCourses").
		Where("parent_course_id IS NULL").
		Order("created_at desc").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *Service) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).Preload("SubCourses").First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

// UpdateCourse applies the non-zero fields of in to an existing course.
func (s *Service) UpdateCourse(ctx context.Context, id string, in *CourseInput) (*models.Course, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != "" {
		updates["title"] = in.Title
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if !in.Price.IsZero() {
		updates["price"] = in.Price
	}
	if in.Currency != "" {
		updates["currency"] = in.Currency
	}
	if in.VideoURL != "" {
		updates["video_url"] = in.VideoURL
	}
	if in.CoverImageURL != "" {
		updates["cover_image_url"] = in.CoverImageURL
	}
	if len(updates) == 0 {
		return course, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return s.GetCourse(ctx, id)
}

// DeleteCourse removes a course and its subcourses.
func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_course_id = ?", id).Delete(&models.Course{}).Error; err != nil {
			return fmt.Errorf("failed to delete subcourses: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Course{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete course: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrCourseNotFound
		}
		return nil
	})
}
