package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/breedfinder/breedfinder-backend/internal/dto"
	"github.com/breedfinder/breedfinder-backend/internal/middleware"
	"github.com/breedfinder/breedfinder-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ScanHandler struct {
	scanService *services.ScanService
}

func NewScanHandler(scanService *services.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// Create accepts a base64 image, runs the identification call and persists
// the result. AI failures come back as one generic message; nothing is stored.
func (h *ScanHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid user ID"})
	}

	var req dto.CreateScanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	if req.ImageData == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "image_data is required"})
	}
	if len(req.ImageData) > 3*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Image data too large. Maximum 3MB base64."})
	}

	scan, err := h.scanService.Create(c.Context(), userID, req.ImageData, req.MimeType)
	if err != nil {
		return createScanError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(scan)
}

// createScanError maps scan-creation failures: bad input is the client's
// problem, identification failures collapse into one generic message, and
// anything else is logged server-side without leaking the cause.
func createScanError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidImage):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid image data"})
	case errors.Is(err, services.ErrAnalysisFailed):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: true, Message: "Could not identify the animal. Please try another photo."})
	default:
		slog.Error("scan create failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to create scan"})
	}
}

// CreateWithUpload is the multipart variant of Create.
func (h *ScanHandler) CreateWithUpload(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid user ID"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Image file is required"})
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/jpeg") && !strings.HasPrefix(contentType, "image/png") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Only JPEG and PNG images are supported"})
	}

	if file.Size > 4*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Image too large. Maximum 4MB."})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to read image"})
	}
	defer f.Close()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to read image data"})
	}

	scan, err := h.scanService.Create(c.Context(), userID, base64.StdEncoding.EncodeToString(fileBytes), contentType)
	if err != nil {
		return createScanError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(scan)
}

func (h *ScanHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid user ID"})
	}

	page, pageSize := pagination(c)
	scans, total, err := h.scanService.ListByOwner(userID, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to list scans"})
	}

	return c.JSON(dto.ScanListResponse{Data: scans, Page: page, PageSize: pageSize, TotalCount: total})
}

func (h *ScanHandler) GetByID(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid user ID"})
	}

	scanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid scan ID"})
	}

	scan, err := h.scanService.GetByID(userID, scanID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: "Scan not found"})
	}

	return c.JSON(scan)
}

// AttachHealth runs the health-scan variant on a stored scan and returns the
// updated record.
func (h *ScanHandler) AttachHealth(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid user ID"})
	}

	scanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid scan ID"})
	}

	scan, err := h.scanService.AttachHealth(c.Context(), userID, scanID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrScanNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: "Scan not found"})
		case errors.Is(err, services.ErrAnalysisFailed):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: true, Message: "Could not analyze the animal's health. Please try again."})
		default:
			slog.Error("health analysis failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to analyze scan"})
		}
	}

	return c.JSON(scan)
}

func (h *ScanHandler) Purchase(c *fiber.Ctx) error {
	scanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid scan ID"})
	}

	scan, err := h.scanService.Purchase(scanID)
	if err != nil {
		if errors.Is(err, services.ErrScanNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: "Scan not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to purchase"})
	}

	return c.JSON(scan)
}

func (h *ScanHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid user ID"})
	}

	scanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid scan ID"})
	}

	if err := h.scanService.Delete(userID, scanID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to delete scan"})
	}

	return c.JSON(fiber.Map{"message": "Scan deleted"})
}

func (h *ScanHandler) ListMarket(c *fiber.Ctx) error {
	page, pageSize := pagination(c)
	scans, total, err := h.scanService.ListMarket(page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to list marketplace"})
	}

	return c.JSON(dto.ScanListResponse{Data: scans, Page: page, PageSize: pageSize, TotalCount: total})
}

func pagination(c *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
