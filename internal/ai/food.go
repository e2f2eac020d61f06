package ai

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/2beens/zenith/internal/nutrition"

	log "github.com/sirupsen/logrus"
)

const (
	analyzePrompt     = "Analyze this food image. Identify the meal name and estimate total calories, protein (g), fat (g), and carbs (g)."
	foodImagePrompt   = "A realistic, high-quality photograph of a delicious plate of %s on a clean table."
	analysisCacheTTL  = 24 * 60 * 60
	foodImageCacheTTL = 7 * 24 * 60 * 60
)

var analysisSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"mealName": {Type: "STRING"},
		"calories": {Type: "INTEGER"},
		"protein":  {Type: "INTEGER"},
		"fat":      {Type: "INTEGER"},
		"carbs":    {Type: "INTEGER"},
	},
	Required: []string{"mealName", "calories", "protein", "fat", "carbs"},
}

// AnalyzeFoodImage estimates the macros of a photographed meal.
// Results are cached by image digest.
func (c *Client) AnalyzeFoodImage(ctx context.Context, mimeType string, image []byte) (nutrition.Analysis, error) {
	if len(image) == 0 {
		return nutrition.Analysis{}, fmt.Errorf("%w: empty image", nutrition.ErrInvalidImage)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	digest := sha256.Sum256(image)
	cacheKey := append([]byte("analysis:"), digest[:]...)
	if cached, err := c.cache.Get(cacheKey); err == nil {
		var analysis nutrition.Analysis
		if err := json.Unmarshal(cached, &analysis); err == nil {
			log.Tracef("ai: food analysis cache hit [%s]", analysis.MealName)
			return analysis, nil
		}
	}

	resp, err := c.generate(ctx, "analyze_food", c.textModel, generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
				{Text: analyzePrompt},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   analysisSchema,
		},
	})
	if err != nil {
		return nutrition.Analysis{}, err
	}

	raw := []byte(cleanJSON(resp.text()))
	var analysis nutrition.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nutrition.Analysis{}, fmt.Errorf("%w: decode analysis: %s", ErrMalformedResponse, err)
	}

	if encoded, err := json.Marshal(analysis); err == nil {
		if err := c.cache.Set(cacheKey, encoded, analysisCacheTTL); err != nil {
			log.Debugf("ai: cache food analysis: %s", err)
		}
	}
	return analysis, nil
}

// GenerateFoodImage renders a photo of mealName and returns it as a data URL,
// or "" when the model answered without an image.
func (c *Client) GenerateFoodImage(ctx context.Context, mealName string) (string, error) {
	mealName = strings.TrimSpace(mealName)
	if mealName == "" {
		return "", nil
	}

	cacheKey := []byte("food_image:" + strings.ToLower(mealName))
	if cached, err := c.cache.Get(cacheKey); err == nil {
		return string(cached), nil
	}

	resp, err := c.generate(ctx, "generate_food_image", c.imageModel, generateRequest{
		Contents: []content{userText(fmt.Sprintf(foodImagePrompt, mealName))},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	})
	if err != nil {
		return "", err
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		mimeType := p.InlineData.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, p.InlineData.Data)
		// large images do not fit a cache entry, that is fine
		if err := c.cache.Set(cacheKey, []byte(dataURL), foodImageCacheTTL); err != nil {
			log.Tracef("ai: cache food image [%s]: %s", mealName, err)
		}
		return dataURL, nil
	}
	return "", nil
}
