package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/types"
)

// PresentialCourseInput is a course plus the venue and staffing details of an
// in-person offering.
type PresentialCourseInput struct {
	CourseInput
	Presential models.PresentialInfo `json:"presential"`
}

func (in *PresentialCourseInput) toModel() *models.Course {
	course := in.CourseInput.toModel()
	course.Type = types.CourseTypePresential
	course.Presential = datatypes.NewJSONType(&in.Presential)
	return course
}

func (s *Service) CreatePresentialCourse(ctx context.Context, in *PresentialCourseInput) (*models.Course, error) {
	course := in.toModel()
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, fmt.Errorf("failed to create presential course: %w", err)
	}
	return course, nil
}

func (s *Service) ListPresentialCourses(ctx context.Context) ([]*models.Course, error) {
	var courses []*models.Course
	err := s.db.WithContext(ctx).
		Where("type = ?", types.CourseTypePresential).
		Order("created_at desc").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list presential courses: %w", err)
	}
	return courses, nil
}

func (s *Service) GetPresentialCourse(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		First(&course, "id = ? AND type = ?", id, types.CourseTypePresential).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get presential course: %w", err)
	}
	return &course, nil
}

// UpdatePresentialCourse applies the non-zero scalar fields and, when any
// presential detail is set, replaces the presential info block.
func (s *Service) UpdatePresentialCourse(ctx context.Context, id string, in *PresentialCourseInput) (*models.Course, error) {
	if _, err := s.GetPresentialCourse(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.UpdateCourse(ctx, id, &in.CourseInput); err != nil {
		return nil, err
	}
	if in.Presential != (models.PresentialInfo{}) {
		err := s.db.WithContext(ctx).Model(&models.Course{}).
			Where("id = ?", id).
			Update("presential", datatypes.NewJSONType(&in.Presential)).Error
		if err != nil {
			return nil, fmt.Errorf("failed to update presential info: %w", err)
		}
	}
	return s.GetPresentialCourse(ctx, id)
}
