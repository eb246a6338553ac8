package ai

import (
	"testing"

	"github.com/breedfinder/breedfinder-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const classificationJSON = `{
	"animalType": "Dog",
	"breed": "Shiba Inu",
	"confidence": 88.2,
	"description": "Compact, alert companion dog.",
	"similarBreeds": ["Akita", "Basenji"],
	"price": 2200,
	"intendedUses": ["Companionship"],
	"lifeExpectancy": "13-16 years",
	"dietPlan": "Measured meals twice daily.",
	"exercisePlan": "Daily walks."
}`

func TestParseClassification(t *testing.T) {
	parsed, err := parseClassification(classificationJSON)
	require.NoError(t, err)
	assert.Equal(t, "Dog", parsed.AnimalType)
	assert.Equal(t, "Shiba Inu", parsed.Breed)
	assert.Equal(t, 88.2, parsed.Confidence)
	assert.Equal(t, []string{"Akita", "Basenji"}, parsed.SimilarBreeds)
	assert.Equal(t, 2200.0, parsed.Price)
}

func TestParseClassificationFenced(t *testing.T) {
	parsed, err := parseClassification("```json\n" + classificationJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Shiba Inu", parsed.Breed)
}

func TestParseClassificationEmpty(t *testing.T) {
	_, err := parseClassification("")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = parseClassification("the model is sorry but cannot help")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	// an object without a breed is as useless as no object
	_, err = parseClassification(`{"animalType": "Dog"}`)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestParseClassificationMalformed(t *testing.T) {
	_, err := parseClassification(`{"breed": }`)
	assert.Error(t, err)
}

func TestParseHealthAnalysisNormalizesSeverity(t *testing.T) {
	parsed, err := parseHealthAnalysis(`{
		"isHealthy": false,
		"summary": "Two findings.",
		"issues": [
			{"name": "A", "severity": "severe", "description": "d", "recommendation": "r"},
			{"name": "B", "severity": "LOW", "description": "d", "recommendation": "r"},
			{"name": "C", "severity": "unknown", "description": "d", "recommendation": "r"}
		]
	}`)
	require.NoError(t, err)
	require.Len(t, parsed.Issues, 3)
	assert.Equal(t, models.SeverityHigh, parsed.Issues[0].Severity)
	assert.Equal(t, models.SeverityLow, parsed.Issues[1].Severity)
	assert.Equal(t, models.SeverityMedium, parsed.Issues[2].Severity)
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, models.SeverityLow, normalizeSeverity(" low "))
	assert.Equal(t, models.SeverityMedium, normalizeSeverity("moderate"))
	assert.Equal(t, models.SeverityHigh, normalizeSeverity("High"))
	assert.Equal(t, models.SeverityMedium, normalizeSeverity(""))
}

func TestExtractSources(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				GroundingMetadata: &genai.GroundingMetadata{
					GroundingChunks: []*genai.GroundingChunk{
						{Web: &genai.GroundingChunkWeb{Title: "Breed club", URI: "https://example.com/breed"}},
						{Web: &genai.GroundingChunkWeb{Title: "no uri"}},
						{},
					},
				},
			},
		},
	}

	sources := extractSources(resp)
	require.Len(t, sources, 1)
	assert.Equal(t, "Breed club", sources[0].Title)
	assert.Equal(t, "https://example.com/breed", sources[0].URI)
}

func TestExtractSourcesNoGrounding(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}
	assert.Empty(t, extractSources(resp))
}

func TestFirstInlineData(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "here is your picture"},
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}}},
					},
				},
			},
		},
	}

	data, mime := firstInlineData(resp, "image/")
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, "image/png", mime)

	data, _ = firstInlineData(resp, "audio/")
	assert.Nil(t, data)
}
