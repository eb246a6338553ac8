package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/breedfinder/breedfinder-backend/internal/config"
	"github.com/breedfinder/breedfinder-backend/internal/models"
	"google.golang.org/genai"
)

var (
	ErrEmptyResponse  = errors.New("empty response from model")
	ErrNoImagePayload = errors.New("no image payload in model response")
	ErrNoAudioPayload = errors.New("no audio payload in model response")
)

// Classification is the typed result of one identification call.
type Classification struct {
	AnimalType     string   `json:"animalType"`
	Breed          string   `json:"breed"`
	Confidence     float64  `json:"confidence"`
	Description    string   `json:"description"`
	SimilarBreeds  []string `json:"similarBreeds"`
	Price          float64  `json:"price"`
	IntendedUses   []string `json:"intendedUses"`
	LifeExpectancy string   `json:"lifeExpectancy"`
	DietPlan       string   `json:"dietPlan"`
	ExercisePlan   string   `json:"exercisePlan"`
}

// Source is a web citation extracted from a grounded facts call.
type Source struct {
	Title string
	URI   string
}

// Client is the one-shot bridge to the Gemini API. The underlying SDK client
// is created lazily on first use, exactly once, and released via Close.
// No caching, no retries: each operation is a single remote call and the
// provider's own failure becomes the caller's failure.
type Client struct {
	cfg *config.Config

	once    sync.Once
	gc      *genai.Client
	initErr error
}

func NewClient(cfg *config.Config) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) conn(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		if c.cfg.GeminiAPIKey == "" {
			c.initErr = errors.New("GEMINI_API_KEY is required")
			return
		}
		c.gc, c.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: c.cfg.GeminiAPIKey,
		})
	})
	return c.gc, c.initErr
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) timeout() time.Duration {
	if c.cfg.AITimeout > 0 {
		return c.cfg.AITimeout
	}
	return 60 * time.Second
}

// ClassifyAnimal identifies the animal on the image and derives the breed,
// market and care attributes in one schema-constrained call.
func (c *Client) ClassifyAnimal(ctx context.Context, image []byte, mimeType string) (*Classification, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(classifyPrompt),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.GeminiModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   classificationSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("classify call failed: %w", err)
	}

	return parseClassification(resp.Text())
}

// AnalyzeHealth runs the health-scan variant of the identification call.
func (c *Client) AnalyzeHealth(ctx context.Context, image []byte, mimeType string) (*models.HealthAnalysis, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(healthPrompt),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.GeminiModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   healthSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("health scan call failed: %w", err)
	}

	return parseHealthAnalysis(resp.Text())
}

// BreedFacts fetches grounded facts about a named breed using web search.
// The source list is empty when the response carries no grounding metadata.
func (c *Client) BreedFacts(ctx context.Context, breed string) (string, []Source, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return "", nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	prompt := fmt.Sprintf("Give me a concise, factual overview of the %s breed: temperament, typical size, common health concerns and care requirements.", breed)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.GeminiModel, contents, &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("facts call failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", nil, ErrEmptyResponse
	}

	return text, extractSources(resp), nil
}

// GenerateBreedImage synthesizes a placeholder photo for a named breed.
func (c *Client) GenerateBreedImage(ctx context.Context, breed string) ([]byte, string, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	prompt := fmt.Sprintf("A high quality photo of a %s on a neutral background.", breed)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.ImageModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("image generation call failed: %w", err)
	}

	data, mime := firstInlineData(resp, "image/")
	if len(data) == 0 {
		return nil, "", ErrNoImagePayload
	}
	return data, mime, nil
}

// SynthesizeSpeech narrates arbitrary text with a fixed voice and returns the
// raw encoded audio. A response without an audio part is an error, same
// contract as GenerateBreedImage.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) ([]byte, string, error) {
	client, err := c.conn(ctx)
	if err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.SpeechModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: c.cfg.SpeechVoice,
				},
			},
		},
	})
	if err != nil {
		return nil, "", fmt.Errorf("speech synthesis call failed: %w", err)
	}

	data, mime := firstInlineData(resp, "audio/")
	if len(data) == 0 {
		return nil, "", ErrNoAudioPayload
	}
	return data, mime, nil
}

func firstInlineData(resp *genai.GenerateContentResponse, mimePrefix string) ([]byte, string) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil {
				continue
			}
			if strings.HasPrefix(part.InlineData.MIMEType, mimePrefix) && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, part.InlineData.MIMEType
			}
		}
	}
	return nil, ""
}

func extractSources(resp *genai.GenerateContentResponse) []Source {
	sources := []Source{}
	for _, cand := range resp.Candidates {
		if cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			sources = append(sources, Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}
	return sources
}
