package handlers

import (
	"errors"

	"github.com/breedfinder/breedfinder-backend/internal/ai"
	"github.com/breedfinder/breedfinder-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// BreedHandler serves the marketplace's breed enrichment calls: grounded
// facts, placeholder photos and narration audio.
type BreedHandler struct {
	client *ai.Client
}

func NewBreedHandler(client *ai.Client) *BreedHandler {
	return &BreedHandler{client: client}
}

func (h *BreedHandler) Facts(c *fiber.Ctx) error {
	breed := c.Params("breed")
	if breed == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Breed name is required"})
	}

	facts, sources, err := h.client.BreedFacts(c.Context(), breed)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyResponse) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: true, Message: "No facts available for this breed"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to fetch breed facts"})
	}

	resp := dto.BreedFactsResponse{Breed: breed, Facts: facts, Sources: []dto.SourceResponse{}}
	for _, s := range sources {
		resp.Sources = append(resp.Sources, dto.SourceResponse{Title: s.Title, URI: s.URI})
	}

	return c.JSON(resp)
}

func (h *BreedHandler) Image(c *fiber.Ctx) error {
	breed := c.Params("breed")
	if breed == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Breed name is required"})
	}

	data, mime, err := h.client.GenerateBreedImage(c.Context(), breed)
	if err != nil {
		if errors.Is(err, ai.ErrNoImagePayload) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: true, Message: "Image generation returned no image"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to generate image"})
	}

	c.Set(fiber.HeaderContentType, mime)
	return c.Send(data)
}

func (h *BreedHandler) Narrate(c *fiber.Ctx) error {
	var req dto.NarrateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "text is required"})
	}
	if len(req.Text) > 4000 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Text too long. Maximum 4000 characters."})
	}

	data, mime, err := h.client.SynthesizeSpeech(c.Context(), req.Text)
	if err != nil {
		if errors.Is(err, ai.ErrNoAudioPayload) {
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: true, Message: "Speech synthesis returned no audio"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to synthesize speech"})
	}

	c.Set(fiber.HeaderContentType, mime)
	return c.Send(data)
}
