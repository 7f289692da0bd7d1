package greenhouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

const riskModelTimeout = 5 * time.Second

// RiskModelClient is the outbound inference dependency. Implementations must
// honor the context deadline.
type RiskModelClient interface {
	Predict(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error)
}

type HTTPRiskModelClient struct {
	URL    string
	Client *http.Client
}

func NewHTTPRiskModelClient(url string) *HTTPRiskModelClient {
	return &HTTPRiskModelClient{
		URL:    url,
		Client: &http.Client{Timeout: riskModelTimeout},
	}
}

func (c *HTTPRiskModelClient) Predict(ctx context.Context, req *models.ModelRequest) (*models.ModelResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("risk model returned status %d", resp.StatusCode)
	}

	var out models.ModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("malformed risk model response: %w", err)
	}
	if out.Status == "" {
		return nil, fmt.Errorf("risk model response missing status field")
	}
	return &out, nil
}

var statusToRiskLevel = map[string]models.RiskLevel{
	"optimal":  models.RiskLow,
	"warning":  models.RiskModerate,
	"critical": models.RiskHigh,
}

var riskRecommendations = map[models.RiskLevel][]string{
	models.RiskLow: {
		"Continue current climate schedule",
		"Routine visual check recommended next week",
	},
	models.RiskModerate: {
		"Increase ventilation frequency",
		"Check irrigation and misting schedules",
		"Monitor readings closely over the next hour",
	},
	models.RiskHigh: {
		"Ventilate the greenhouse immediately",
		"Shade or cool to bring temperature down",
		"Re-check sensor readings within 15 minutes",
	},
}

const (
	fallbackConfidenceHigh     = 92
	fallbackConfidenceModerate = 84
	fallbackConfidenceLow      = 96
)

// classify prefers the remote model and degrades to the fixed three-tier rule
// on any remote failure. A nil snapshot short-circuits to the no-data verdict
// without touching either path. Never returns an error to the caller.
func (g *Greenhouse) classify(ctx context.Context, snap *models.Snapshot, cropType, cropStage string) *models.RiskVerdict {
	logger := common.GetLoggerWith(
		common.LoggerNameGreenhouseCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryRisk),
	)

	if snap == nil {
		return &models.RiskVerdict{
			RiskLevel:       models.RiskUnknown,
			Confidence:      0,
			Analysis:        "No sensor snapshot available yet. Check the device connection and data feed.",
			Recommendations: []string{"Check sensor connectivity and data feed"},
			Source:          models.RiskSourceNoData,
		}
	}

	if g.ModelClient != nil {
		modelCtx, cancel := context.WithTimeout(ctx, riskModelTimeout)
		defer cancel()

		resp, err := g.ModelClient.Predict(modelCtx, &models.ModelRequest{
			Temperature: snap.Temperature,
			Humidity:    snap.Humidity,
			CO2:         snap.CO2,
			CropType:    cropType,
			CropStage:   cropStage,
		})
		if err == nil {
			if level, ok := statusToRiskLevel[strings.ToLower(resp.Status)]; ok {
				return &models.RiskVerdict{
					RiskLevel:  level,
					Confidence: math.Round(resp.RiskScore*100*10) / 10,
					Analysis: fmt.Sprintf(
						"Model classified conditions as %s for %s (%s stage): CO2 %.0f ppm, temperature %.1f °C, humidity %.1f%%.",
						strings.ToLower(resp.Status), cropType, cropStage,
						snap.CO2, snap.Temperature, snap.Humidity),
					Recommendations: riskRecommendations[level],
					Source:          models.RiskSourceModel,
				}
			}
			logger.Warn("Risk model returned unknown status, falling back to rules",
				zap.String("status", resp.Status))
		} else {
			logger.Warn("Risk model call failed, falling back to rules", zap.Error(err))
		}
	}

	return ruleBasedVerdict(snap, cropType, cropStage)
}

func ruleBasedVerdict(snap *models.Snapshot, cropType, cropStage string) *models.RiskVerdict {
	readings := fmt.Sprintf("CO2 %.0f ppm, temperature %.1f °C, humidity %.1f%%",
		snap.CO2, snap.Temperature, snap.Humidity)

	var level models.RiskLevel
	var confidence float64
	var analysis string

	switch {
	case snap.CO2 > 1500 || snap.Temperature > 35 || snap.Humidity > 85:
		level = models.RiskHigh
		confidence = fallbackConfidenceHigh
		analysis = fmt.Sprintf("Critical conditions for %s (%s stage): %s. Immediate intervention recommended.",
			cropType, cropStage, readings)
	case snap.CO2 > 1000 || snap.Temperature > 30 || snap.Humidity > 75:
		level = models.RiskModerate
		confidence = fallbackConfidenceModerate
		analysis = fmt.Sprintf("Some readings are drifting for %s (%s stage): %s. Corrective action advised soon.",
			cropType, cropStage, readings)
	default:
		level = models.RiskLow
		confidence = fallbackConfidenceLow
		analysis = fmt.Sprintf("Conditions are within acceptable bounds for %s (%s stage): %s.",
			cropType, cropStage, readings)
	}

	return &models.RiskVerdict{
		RiskLevel:       level,
		Confidence:      confidence,
		Analysis:        analysis,
		Recommendations: riskRecommendations[level],
		Source:          models.RiskSourceFallback,
	}
}

type IRiskImpl struct {
	gh *Greenhouse
}

func (ir *IRiskImpl) Classify(ctx context.Context, snap *models.Snapshot, cropType, cropStage string) *models.RiskVerdict {
	return ir.gh.classify(ctx, snap, cropType, cropStage)
}

func (g *Greenhouse) GetIRisk() IRisk {
	return &IRiskImpl{gh: g}
}
