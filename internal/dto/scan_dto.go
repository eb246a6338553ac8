package dto

import "github.com/breedfinder/breedfinder-backend/internal/models"

type CreateScanRequest struct {
	ImageData string `json:"image_data"`
	MimeType  string `json:"mime_type"`
}

type ScanListResponse struct {
	Data       []models.Scan `json:"data"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
}

type UserListResponse struct {
	Data       []models.User `json:"data"`
	TotalCount int64         `json:"total_count"`
}

type StatsResponse struct {
	TotalUsers     int64 `json:"total_users"`
	TotalScans     int64 `json:"total_scans"`
	PurchasedScans int64 `json:"purchased_scans"`
}

type SourceResponse struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type BreedFactsResponse struct {
	Breed   string           `json:"breed"`
	Facts   string           `json:"facts"`
	Sources []SourceResponse `json:"sources"`
}

type NarrateRequest struct {
	Text string `json:"text"`
}
