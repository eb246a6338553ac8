package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/breedfinder/breedfinder-backend/internal/models"
	"google.golang.org/genai"
)

const classifyPrompt = `You are an expert animal appraiser. Identify the animal in this photo.
Determine its breed, estimate a fair market price in USD, and describe its typical
intended uses, life expectancy, diet plan and exercise plan. Confidence is a
percentage between 0 and 100.`

const healthPrompt = `You are a veterinary assistant. Examine the animal in this photo for
visible health issues. Report whether it looks healthy overall, a short summary,
and a list of detected issues. Severity must be exactly one of Low, Medium or High.`

var classificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"animalType":     {Type: genai.TypeString},
		"breed":          {Type: genai.TypeString},
		"confidence":     {Type: genai.TypeNumber},
		"description":    {Type: genai.TypeString},
		"similarBreeds":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"price":          {Type: genai.TypeNumber},
		"intendedUses":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"lifeExpectancy": {Type: genai.TypeString},
		"dietPlan":       {Type: genai.TypeString},
		"exercisePlan":   {Type: genai.TypeString},
	},
	Required: []string{"animalType", "breed", "confidence", "description"},
}

var healthSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isHealthy": {Type: genai.TypeBoolean},
		"summary":   {Type: genai.TypeString},
		"issues": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":           {Type: genai.TypeString},
					"severity":       {Type: genai.TypeString, Enum: []string{models.SeverityLow, models.SeverityMedium, models.SeverityHigh}},
					"description":    {Type: genai.TypeString},
					"recommendation": {Type: genai.TypeString},
				},
				Required: []string{"name", "severity"},
			},
		},
	},
	Required: []string{"isHealthy", "summary"},
}

func parseClassification(text string) (*Classification, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, ErrEmptyResponse
	}

	var parsed Classification
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}
	if parsed.Breed == "" {
		return nil, ErrEmptyResponse
	}
	return &parsed, nil
}

func parseHealthAnalysis(text string) (*models.HealthAnalysis, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, ErrEmptyResponse
	}

	var parsed models.HealthAnalysis
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse health analysis: %w", err)
	}
	for i := range parsed.Issues {
		parsed.Issues[i].Severity = normalizeSeverity(parsed.Issues[i].Severity)
	}
	return &parsed, nil
}

// extractJSON strips markdown code fences and anything outside the outermost
// object. Schema-constrained calls normally return bare JSON, but the model
// occasionally wraps it anyway.
func extractJSON(text string) string {
	content := strings.TrimSpace(text)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func normalizeSeverity(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "low":
		return models.SeverityLow
	case "medium", "moderate":
		return models.SeverityMedium
	case "high", "severe":
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
