package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/breedfinder/breedfinder-backend/internal/ai"
	"github.com/breedfinder/breedfinder-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrScanNotFound   = errors.New("scan not found")
	ErrInvalidImage   = errors.New("invalid image data")
	ErrAnalysisFailed = errors.New("analysis failed")
)

// Intelligence is the slice of the AI adapter the scan flow needs.
type Intelligence interface {
	ClassifyAnimal(ctx context.Context, image []byte, mimeType string) (*ai.Classification, error)
	AnalyzeHealth(ctx context.Context, image []byte, mimeType string) (*models.HealthAnalysis, error)
}

type ScanService struct {
	db *gorm.DB
	ai Intelligence
}

func NewScanService(db *gorm.DB, intelligence Intelligence) *ScanService {
	return &ScanService{db: db, ai: intelligence}
}

// Create classifies the image and persists the result as a new scan owned by
// userID. Bad input comes back as ErrInvalidImage, any identification failure
// as ErrAnalysisFailed wrapping the cause; nothing is stored in either case.
func (s *ScanService) Create(ctx context.Context, userID uuid.UUID, imageData, mimeType string) (*models.Scan, error) {
	if imageData == "" {
		return nil, fmt.Errorf("%w: image data is empty", ErrInvalidImage)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	raw, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	result, err := s.ai.ClassifyAnimal(ctx, raw, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	scan := &models.Scan{
		ID:             uuid.New(),
		UserID:         userID,
		ImageData:      imageData,
		MimeType:       mimeType,
		AnimalType:     result.AnimalType,
		Breed:          result.Breed,
		Confidence:     result.Confidence,
		Description:    result.Description,
		SimilarBreeds:  result.SimilarBreeds,
		Price:          result.Price,
		IntendedUses:   result.IntendedUses,
		LifeExpectancy: result.LifeExpectancy,
		DietPlan:       result.DietPlan,
		ExercisePlan:   result.ExercisePlan,
		Timestamp:      time.Now().UTC(),
	}

	if err := s.db.Create(scan).Error; err != nil {
		return nil, err
	}

	return scan, nil
}

func (s *ScanService) GetByID(userID, id uuid.UUID) (*models.Scan, error) {
	var scan models.Scan
	err := s.db.Where("user_id = ? AND id = ?", userID, id).First(&scan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, err
	}
	return &scan, nil
}

// ListByOwner returns the owner's scans newest first.
func (s *ScanService) ListByOwner(userID uuid.UUID, page, pageSize int) ([]models.Scan, int64, error) {
	var scans []models.Scan
	var total int64

	if err := s.db.Model(&models.Scan{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&scans).Error
	if err != nil {
		return nil, 0, err
	}

	return scans, total, nil
}

// ListAll returns every scan newest first, for the admin panel.
func (s *ScanService) ListAll(page, pageSize int) ([]models.Scan, int64, error) {
	var scans []models.Scan
	var total int64

	if err := s.db.Model(&models.Scan{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.Order("timestamp DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&scans).Error
	if err != nil {
		return nil, 0, err
	}

	return scans, total, nil
}

// ListMarket returns unpurchased scans across all owners, newest first.
func (s *ScanService) ListMarket(page, pageSize int) ([]models.Scan, int64, error) {
	var scans []models.Scan
	var total int64

	if err := s.db.Model(&models.Scan{}).Where("purchased = false").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.Where("purchased = false").
		Order("timestamp DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&scans).Error
	if err != nil {
		return nil, 0, err
	}

	return scans, total, nil
}

// AttachHealth runs the health-scan call on the stored image and replaces the
// scan in place with the analysis attached.
func (s *ScanService) AttachHealth(ctx context.Context, userID, id uuid.UUID) (*models.Scan, error) {
	scan, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(scan.ImageData)
	if err != nil {
		return nil, fmt.Errorf("stored image is not valid base64: %w", err)
	}

	analysis, err := s.ai.AnalyzeHealth(ctx, raw, scan.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	scan.Health = analysis
	if err := s.db.Save(scan).Error; err != nil {
		return nil, err
	}

	return scan, nil
}

// Purchase flips the purchased flag on a listed scan. Not owner-scoped: any
// authenticated user can buy a listing. Last write wins.
func (s *ScanService) Purchase(id uuid.UUID) (*models.Scan, error) {
	var scan models.Scan
	if err := s.db.First(&scan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, err
	}

	scan.Purchased = true
	if err := s.db.Save(&scan).Error; err != nil {
		return nil, err
	}

	return &scan, nil
}

// Delete removes one of the owner's scans. Deleting an id that does not exist
// is not an error.
func (s *ScanService) Delete(userID, id uuid.UUID) error {
	return s.db.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Scan{}).Error
}

// Purge removes any scan regardless of owner. Idempotent like Delete.
func (s *ScanService) Purge(id uuid.UUID) error {
	return s.db.Where("id = ?", id).Delete(&models.Scan{}).Error
}

func (s *ScanService) Stats() (totalUsers, totalScans, purchased int64, err error) {
	if err = s.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return
	}
	if err = s.db.Model(&models.Scan{}).Count(&totalScans).Error; err != nil {
		return
	}
	err = s.db.Model(&models.Scan{}).Where("purchased = true").Count(&purchased).Error
	return
}
