package greenhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

const (
	suggestionTimeout   = 8 * time.Second
	suggestionMaxLength = 120
)

// SuggestionGenerator is the outbound text-generation dependency. Best
// effort: any failure degrades to the static table.
type SuggestionGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type HTTPSuggestionGenerator struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewHTTPSuggestionGenerator(url, apiKey string) *HTTPSuggestionGenerator {
	return &HTTPSuggestionGenerator{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: suggestionTimeout},
	}
}

func (s *HTTPSuggestionGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("suggestion generator returned status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("suggestion generator returned empty text")
	}
	return out.Text, nil
}

var suggestionTable = map[string]string{
	"co2_high":         "High CO2 detected. Increase ventilation or check the CO2 injection equipment for leaks.",
	"co2_low":          "CO2 is below the ideal range. Reduce ventilation or check the CO2 enrichment supply.",
	"temperature_high": "Temperature is above the ideal range. Increase airflow or apply shading to cool the greenhouse.",
	"temperature_low":  "Temperature is below the ideal range. Check the heating system and close vents if open.",
	"humidity_high":    "Humidity is above the ideal range. Increase ventilation or run a dehumidifier.",
	"humidity_low":     "Humidity is below the ideal range. Run misting or reduce ventilation to retain moisture.",
}

const suggestionFallback = "Reading outside the ideal range. Inspect the greenhouse climate controls."

// suggest attaches a remediation string to an alert. Prefers the remote
// generator when one is configured; any failure or empty result falls back
// to the static table. Never errors past this boundary.
func (g *Greenhouse) suggest(ctx context.Context, alert *models.Alert) string {
	key := fmt.Sprintf("%s_%s", alert.Metric, alert.Direction)

	if g.Generator != nil {
		logger := common.GetLoggerWith(
			common.LoggerNameGreenhouseCore,
			zap.String(common.LoggerFieldCategory, common.LoggerCategorySuggestion),
		)

		genCtx, cancel := context.WithTimeout(ctx, suggestionTimeout)
		defer cancel()

		prompt := fmt.Sprintf(
			"Suggest one short remediation for a greenhouse growing %s (%s stage): %s reading %.2f %s is %s the ideal range %.2f–%.2f.",
			alert.CropType, alert.CropStage, alert.Metric, alert.Value, alert.Unit,
			alert.Direction, alert.IdealMin, alert.IdealMax)

		text, err := g.Generator.Generate(genCtx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return common.Truncate(strings.TrimSpace(text), suggestionMaxLength)
		}
		if err != nil {
			logger.Warn("Suggestion generation failed, using static table",
				zap.String("key", key), zap.Error(err))
		}
	}

	if fixed, ok := suggestionTable[key]; ok {
		return fixed
	}
	return suggestionFallback
}

type ISuggestImpl struct {
	gh *Greenhouse
}

func (is *ISuggestImpl) Suggest(ctx context.Context, alert *models.Alert) string {
	return is.gh.suggest(ctx, alert)
}

func (g *Greenhouse) GetISuggest() ISuggest {
	return &ISuggestImpl{gh: g}
}
