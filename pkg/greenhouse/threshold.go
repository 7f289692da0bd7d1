package greenhouse

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

// Range is the acceptable band for one metric.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

// RangeSet maps each monitored metric to its resolved range.
type RangeSet map[models.MetricType]Range

// DefaultCrop is the range set used when a crop name is unrecognized.
const DefaultCrop = "lettuce"

var builtinRanges = map[string]RangeSet{
	"lettuce": {
		models.MetricCO2:         {Min: 400, Max: 1000, Unit: "ppm"},
		models.MetricTemperature: {Min: 15, Max: 22, Unit: "°C"},
		models.MetricHumidity:    {Min: 50, Max: 70, Unit: "%"},
	},
	"tomato": {
		models.MetricCO2:         {Min: 500, Max: 1200, Unit: "ppm"},
		models.MetricTemperature: {Min: 18, Max: 27, Unit: "°C"},
		models.MetricHumidity:    {Min: 60, Max: 80, Unit: "%"},
	},
	"spinach": {
		models.MetricCO2:         {Min: 400, Max: 1000, Unit: "ppm"},
		models.MetricTemperature: {Min: 10, Max: 20, Unit: "°C"},
		models.MetricHumidity:    {Min: 45, Max: 65, Unit: "%"},
	},
	"strawberry": {
		models.MetricCO2:         {Min: 450, Max: 1100, Unit: "ppm"},
		models.MetricTemperature: {Min: 15, Max: 26, Unit: "°C"},
		models.MetricHumidity:    {Min: 60, Max: 75, Unit: "%"},
	},
	"cucumber": {
		models.MetricCO2:         {Min: 500, Max: 1200, Unit: "ppm"},
		models.MetricTemperature: {Min: 20, Max: 30, Unit: "°C"},
		models.MetricHumidity:    {Min: 70, Max: 85, Unit: "%"},
	},
}

// resolve returns a complete range set for the crop. Owner overrides win over
// the built-in table, which falls back to the default crop for unknown names.
// It never fails: a storage error only costs the overrides.
func (g *Greenhouse) resolve(cropName, owner string) RangeSet {
	logger := common.GetLoggerWith(
		common.LoggerNameGreenhouseCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryThreshold),
	)

	name := strings.ToLower(strings.TrimSpace(cropName))

	base, ok := builtinRanges[name]
	if !ok {
		base = builtinRanges[DefaultCrop]
	}

	resolved := RangeSet{}
	for metric, r := range base {
		resolved[metric] = r
	}

	if owner != "" {
		var overrides []models.CropThreshold
		err := g.Db.Conn.
			Where("owner = ? AND LOWER(crop_name) = ?", owner, name).
			Find(&overrides).Error
		if err != nil {
			logger.Error("Failed to load threshold overrides, using built-in ranges",
				zap.String("owner", owner), zap.String("crop", name), zap.Error(err))
		} else {
			for _, ov := range overrides {
				unit := ov.Unit
				if unit == "" {
					unit = resolved[ov.Metric].Unit
				}
				resolved[ov.Metric] = Range{Min: ov.MinValue, Max: ov.MaxValue, Unit: unit}
			}
		}
	}

	return resolved
}

func (g *Greenhouse) upsertOverride(owner string, input *models.CropThreshold) error {
	logger := common.GetLoggerWith(
		common.LoggerNameGreenhouseCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryThreshold),
	)

	override := models.CropThreshold{
		Owner:     owner,
		CropName:  strings.ToLower(strings.TrimSpace(input.CropName)),
		Metric:    input.Metric,
		CropStage: input.CropStage,
		MinValue:  input.MinValue,
		MaxValue:  input.MaxValue,
		Unit:      input.Unit,
	}

	logger.Info("Received threshold override", zap.Reflect("threshold", override))

	err := g.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "crop_name"}, {Name: "metric"}},
		UpdateAll: true,
	}).Create(&override).Error

	if err == nil {
		logger.Info("Upserted threshold override", zap.Reflect("threshold", override))
	}

	return err
}

type IThresholdImpl struct {
	gh *Greenhouse
}

func (it *IThresholdImpl) Resolve(cropName, owner string) RangeSet {
	return it.gh.resolve(cropName, owner)
}

func (it *IThresholdImpl) UpsertOverride(owner string, input *models.CropThreshold) error {
	return it.gh.upsertOverride(owner, input)
}

func (g *Greenhouse) GetIThreshold() IThreshold {
	return &IThresholdImpl{gh: g}
}
