package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/breedfinder/breedfinder-backend/internal/ai"
	"github.com/breedfinder/breedfinder-backend/internal/dto"
	"github.com/breedfinder/breedfinder-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeIntelligence struct {
	classification *ai.Classification
	health         *models.HealthAnalysis
	err            error
}

func (f *fakeIntelligence) ClassifyAnimal(_ context.Context, _ []byte, _ string) (*ai.Classification, error) {
	return f.classification, f.err
}

func (f *fakeIntelligence) AnalyzeHealth(_ context.Context, _ []byte, _ string) (*models.HealthAnalysis, error) {
	return f.health, f.err
}

func defaultFake() *fakeIntelligence {
	return &fakeIntelligence{
		classification: &ai.Classification{
			AnimalType:     "Dog",
			Breed:          "Border Collie",
			Confidence:     93.5,
			Description:    "Energetic herding dog.",
			SimilarBreeds:  []string{"Australian Shepherd", "Collie"},
			Price:          1200,
			IntendedUses:   []string{"Herding", "Companionship"},
			LifeExpectancy: "12-15 years",
			DietPlan:       "High-protein kibble twice daily.",
			ExercisePlan:   "Two hours of activity per day.",
		},
		health: &models.HealthAnalysis{
			IsHealthy: false,
			Summary:   "Mild skin irritation detected.",
			Issues: []models.HealthIssue{
				{Name: "Dermatitis", Severity: models.SeverityLow, Description: "Redness near the ear.", Recommendation: "Topical treatment."},
			},
		},
	}
}

func newTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	auth := NewAuthService(db, testConfig())
	resp, err := auth.Register(&dto.RegisterRequest{Name: email, Email: email, Password: "password-x"})
	require.NoError(t, err)
	user, err := auth.GetUser(resp.User.ID)
	require.NoError(t, err)
	return user
}

func testImage() string {
	return base64.StdEncoding.EncodeToString([]byte("not really a jpeg"))
}

func TestCreateScanRoundTrip(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	svc := NewScanService(db, defaultFake())

	created, err := svc.Create(context.Background(), user.ID, testImage(), "image/png")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.GetByID(user.ID, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "Dog", got.AnimalType)
	assert.Equal(t, "Border Collie", got.Breed)
	assert.Equal(t, 93.5, got.Confidence)
	assert.Equal(t, created.Description, got.Description)
	assert.Equal(t, []string{"Australian Shepherd", "Collie"}, got.SimilarBreeds)
	assert.Equal(t, 1200.0, got.Price)
	assert.Equal(t, []string{"Herding", "Companionship"}, got.IntendedUses)
	assert.Equal(t, "12-15 years", got.LifeExpectancy)
	assert.Equal(t, created.DietPlan, got.DietPlan)
	assert.Equal(t, created.ExercisePlan, got.ExercisePlan)
	assert.Equal(t, testImage(), got.ImageData)
	assert.Nil(t, got.Health)
	assert.False(t, got.Purchased)
}

func TestAttachHealthRoundTrip(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	fake := defaultFake()
	svc := NewScanService(db, fake)

	created, err := svc.Create(context.Background(), user.ID, testImage(), "")
	require.NoError(t, err)

	updated, err := svc.AttachHealth(context.Background(), user.ID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Health)

	got, err := svc.GetByID(user.ID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Health)
	assert.Equal(t, fake.health.IsHealthy, got.Health.IsHealthy)
	assert.Equal(t, fake.health.Summary, got.Health.Summary)
	require.Len(t, got.Health.Issues, 1)
	assert.Equal(t, fake.health.Issues[0], got.Health.Issues[0])
}

func TestListByOwnerNewestFirst(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	svc := NewScanService(db, defaultFake())

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	s1 := &models.Scan{ID: uuid.New(), UserID: user.ID, ImageData: testImage(), AnimalType: "Dog", Breed: "Pug", Timestamp: t1}
	require.NoError(t, db.Create(s1).Error)

	scans, total, err := svc.ListByOwner(user.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	s2 := &models.Scan{ID: uuid.New(), UserID: user.ID, ImageData: testImage(), AnimalType: "Dog", Breed: "Beagle", Timestamp: t2}
	require.NoError(t, db.Create(s2).Error)

	scans, total, err = svc.ListByOwner(user.ID, 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	assert.Equal(t, s2.ID, scans[0].ID)
	assert.Equal(t, s1.ID, scans[1].ID)
}

func TestListAllNewestFirstAcrossOwners(t *testing.T) {
	db := setupDB(t)
	alice := newTestUser(t, db, "alice@x.com")
	bob := newTestUser(t, db, "bob@x.com")
	svc := NewScanService(db, defaultFake())

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s1 := &models.Scan{ID: uuid.New(), UserID: alice.ID, ImageData: testImage(), Breed: "Pug", Timestamp: t1}
	s2 := &models.Scan{ID: uuid.New(), UserID: bob.ID, ImageData: testImage(), Breed: "Beagle", Timestamp: t1.Add(time.Hour)}
	s3 := &models.Scan{ID: uuid.New(), UserID: alice.ID, ImageData: testImage(), Breed: "Husky", Timestamp: t1.Add(2 * time.Hour)}
	for _, s := range []*models.Scan{s1, s2, s3} {
		require.NoError(t, db.Create(s).Error)
	}

	scans, total, err := svc.ListAll(1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	assert.Equal(t, s3.ID, scans[0].ID)
	assert.Equal(t, s2.ID, scans[1].ID)
	assert.Equal(t, s1.ID, scans[2].ID)
}

func TestListMarketNewestFirst(t *testing.T) {
	db := setupDB(t)
	alice := newTestUser(t, db, "alice@x.com")
	bob := newTestUser(t, db, "bob@x.com")
	svc := NewScanService(db, defaultFake())

	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s1 := &models.Scan{ID: uuid.New(), UserID: alice.ID, ImageData: testImage(), Breed: "Pug", Timestamp: t1}
	s2 := &models.Scan{ID: uuid.New(), UserID: bob.ID, ImageData: testImage(), Breed: "Beagle", Timestamp: t1.Add(time.Hour), Purchased: true}
	s3 := &models.Scan{ID: uuid.New(), UserID: bob.ID, ImageData: testImage(), Breed: "Husky", Timestamp: t1.Add(2 * time.Hour)}
	for _, s := range []*models.Scan{s1, s2, s3} {
		require.NoError(t, db.Create(s).Error)
	}

	listings, total, err := svc.ListMarket(1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	assert.Equal(t, s3.ID, listings[0].ID)
	assert.Equal(t, s1.ID, listings[1].ID)
}

func TestListByOwnerScopedToOwner(t *testing.T) {
	db := setupDB(t)
	owner := newTestUser(t, db, "owner@x.com")
	other := newTestUser(t, db, "other@x.com")
	svc := NewScanService(db, defaultFake())

	_, err := svc.Create(context.Background(), owner.ID, testImage(), "")
	require.NoError(t, err)

	scans, total, err := svc.ListByOwner(other.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, scans)
}

func TestDeleteAbsentScanIsNoError(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	svc := NewScanService(db, defaultFake())

	_, err := svc.Create(context.Background(), user.ID, testImage(), "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(user.ID, uuid.New()))

	_, total, err := svc.ListByOwner(user.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestPurchaseRemovesFromMarket(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	svc := NewScanService(db, defaultFake())

	created, err := svc.Create(context.Background(), user.ID, testImage(), "")
	require.NoError(t, err)

	listings, total, err := svc.ListMarket(1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, created.ID, listings[0].ID)

	bought, err := svc.Purchase(created.ID)
	require.NoError(t, err)
	assert.True(t, bought.Purchased)

	_, total, err = svc.ListMarket(1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestPurchaseAbsentScan(t *testing.T) {
	db := setupDB(t)
	svc := NewScanService(db, defaultFake())

	_, err := svc.Purchase(uuid.New())
	assert.ErrorIs(t, err, ErrScanNotFound)
}

func TestOrphanScanRejected(t *testing.T) {
	db := setupDB(t)
	svc := NewScanService(db, defaultFake())

	_, err := svc.Create(context.Background(), uuid.New(), testImage(), "")
	assert.Error(t, err)
}

func TestCreatePropagatesAIFailure(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	upstream := errors.New("model unavailable")
	svc := NewScanService(db, &fakeIntelligence{err: upstream})

	_, err := svc.Create(context.Background(), user.ID, testImage(), "")
	require.ErrorIs(t, err, ErrAnalysisFailed)
	require.ErrorIs(t, err, upstream)

	// nothing persisted on failure
	_, total, err := svc.ListByOwner(user.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestCreateUnparseableResultIsAnalysisFailure(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	svc := NewScanService(db, &fakeIntelligence{err: fmt.Errorf("failed to parse classification: %w", errors.New("unexpected end of JSON input"))})

	_, err := svc.Create(context.Background(), user.ID, testImage(), "")
	require.ErrorIs(t, err, ErrAnalysisFailed)
	assert.NotErrorIs(t, err, ErrInvalidImage)
}

func TestCreateInvalidBase64(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	svc := NewScanService(db, defaultFake())

	_, err := svc.Create(context.Background(), user.ID, "not/base64!!", "")
	require.ErrorIs(t, err, ErrInvalidImage)

	_, err = svc.Create(context.Background(), user.ID, "", "")
	require.ErrorIs(t, err, ErrInvalidImage)

	_, total, err := svc.ListByOwner(user.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestAttachHealthAIFailure(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	fake := defaultFake()
	svc := NewScanService(db, fake)

	created, err := svc.Create(context.Background(), user.ID, testImage(), "")
	require.NoError(t, err)

	fake.err = errors.New("model unavailable")
	_, err = svc.AttachHealth(context.Background(), user.ID, created.ID)
	require.ErrorIs(t, err, ErrAnalysisFailed)

	got, err := svc.GetByID(user.ID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Health)
}

func TestAdminPurge(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	svc := NewScanService(db, defaultFake())

	created, err := svc.Create(context.Background(), user.ID, testImage(), "")
	require.NoError(t, err)

	require.NoError(t, svc.Purge(created.ID))
	require.NoError(t, svc.Purge(created.ID)) // idempotent

	_, total, err := svc.ListByOwner(user.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestStats(t *testing.T) {
	db := setupDB(t)
	user := newTestUser(t, db, "owner@x.com")
	svc := NewScanService(db, defaultFake())

	created, err := svc.Create(context.Background(), user.ID, testImage(), "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), user.ID, testImage(), "")
	require.NoError(t, err)
	_, err = svc.Purchase(created.ID)
	require.NoError(t, err)

	users, scans, purchased, err := svc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 2, scans)
	assert.EqualValues(t, 1, purchased)
}
