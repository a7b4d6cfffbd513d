package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/tool"
)

type EbookInput struct {
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	FileURL       string          `json:"file_url"`
	CoverImageURL string          `json:"cover_image_url"`
}

func (s *Service) CreateEbook(ctx context.Context, in *EbookInput) (*models.Ebook, error) {
	ebook := &models.Ebook{
		ID:            tool.GenerateUUIDV7(),
		Title:         in.Title,
		Author:        in.Author,
		Description:   in.Description,
		Price:         in.Price,
		FileURL:       in.FileURL,
		CoverImageURL: in.CoverImageURL,
	}
	if err := s.db.WithContext(ctx).Create(ebook).Error; err != nil {
		return nil, fmt.Errorf("failed to create ebook: %w", err)
	}
	return ebook, nil
}

func (s *Service) ListEbooks(ctx context.Context) ([]*models.Ebook, error) {
	var ebooks []*models.Ebook
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&ebooks).Error; err != nil {
		return nil, fmt.Errorf("failed to list ebooks: %w", err)
	}
	return ebooks, nil
}

func (s *Service) GetEbook(ctx context.Context, id string) (*models.Ebook, error) {
	var ebook models.Ebook
	err := s.db.WithContext(ctx).First(&ebook, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEbookNotFound
		}
		return nil, fmt.Errorf("failed to get ebook: %w", err)
	}
	return &ebook, nil
}

func (s *Service) DeleteEbook(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Ebook{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete ebook: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEbookNotFound
	}
	return nil
}
