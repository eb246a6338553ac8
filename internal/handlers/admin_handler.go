package handlers

import (
	"github.com/breedfinder/breedfinder-backend/internal/dto"
	"github.com/breedfinder/breedfinder-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	authService *services.AuthService
	scanService *services.ScanService
}

func NewAdminHandler(authService *services.AuthService, scanService *services.ScanService) *AdminHandler {
	return &AdminHandler{authService: authService, scanService: scanService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, total, err := h.authService.ListUsers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to list users"})
	}

	return c.JSON(dto.UserListResponse{Data: users, TotalCount: total})
}

func (h *AdminHandler) ListScans(c *fiber.Ctx) error {
	page, pageSize := pagination(c)
	scans, total, err := h.scanService.ListAll(page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to list scans"})
	}

	return c.JSON(dto.ScanListResponse{Data: scans, Page: page, PageSize: pageSize, TotalCount: total})
}

// PurgeScan removes any scan regardless of owner.
func (h *AdminHandler) PurgeScan(c *fiber.Ctx) error {
	scanID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid scan ID"})
	}

	if err := h.scanService.Purge(scanID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to purge scan"})
	}

	return c.JSON(fiber.Map{"message": "Scan purged"})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	users, scans, purchased, err := h.scanService.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to compute stats"})
	}

	return c.JSON(dto.StatsResponse{TotalUsers: users, TotalScans: scans, PurchasedScans: purchased})
}
