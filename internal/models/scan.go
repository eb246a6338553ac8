package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Severity levels for detected health issues.
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Scan stores one AI classification outcome for an uploaded animal image.
// Health stays nil until a health analysis is attached; mutations (health
// attach, purchase) go through Save, replacing the row by id.
type Scan struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ImageData      string          `gorm:"type:text;not null" json:"image_data"`
	MimeType       string          `gorm:"size:50;default:'image/jpeg'" json:"mime_type"`
	AnimalType     string          `gorm:"size:100;not null" json:"animal_type"`
	Breed          string          `gorm:"size:255;not null" json:"breed"`
	Confidence     float64         `json:"confidence"`
	Description    string          `gorm:"type:text" json:"description"`
	SimilarBreeds  []string        `gorm:"type:jsonb;serializer:json" json:"similar_breeds"`
	Price          float64         `json:"price"`
	IntendedUses   []string        `gorm:"type:jsonb;serializer:json" json:"intended_uses"`
	LifeExpectancy string          `gorm:"size:100" json:"life_expectancy"`
	DietPlan       string          `gorm:"type:text" json:"diet_plan"`
	ExercisePlan   string          `gorm:"type:text" json:"exercise_plan"`
	Health         *HealthAnalysis `gorm:"type:jsonb;serializer:json" json:"health,omitempty"`
	Purchased      bool            `gorm:"default:false" json:"purchased"`
	Timestamp      time.Time       `gorm:"not null;index" json:"timestamp"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	User           User            `gorm:"foreignKey:UserID" json:"-"`
}

func (Scan) TableName() string {
	return "scans"
}

func (s *Scan) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// HealthAnalysis is embedded in a Scan as a JSON column, never stored on its own.
type HealthAnalysis struct {
	IsHealthy bool          `json:"isHealthy"`
	Summary   string        `json:"summary"`
	Issues    []HealthIssue `json:"issues"`
}

type HealthIssue struct {
	Name           string `json:"name"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}
