package greenhouse

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
	_ "ecogrow.xyz/greenhouse-sensor-service/pkg/testing"
)

func TestResolveBuiltinCrops(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	ranges := gh.Threshold.Resolve("Tomato", "")
	assert.Equal(t, Range{Min: 18, Max: 27, Unit: "°C"}, ranges[models.MetricTemperature])
	assert.Equal(t, Range{Min: 500, Max: 1200, Unit: "ppm"}, ranges[models.MetricCO2])

	// unknown crops fall back to the default crop table
	unknown := gh.Threshold.Resolve("dragonfruit", "")
	assert.Equal(t, builtinRanges[DefaultCrop], unknown)
}

func TestResolveOwnerOverride(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	owner := uuid.NewString()

	err := gh.Threshold.UpsertOverride(owner, &models.CropThreshold{
		CropName: "Tomato",
		Metric:   models.MetricTemperature,
		MinValue: 16,
		MaxValue: 24,
	})
	require.NoError(t, err)

	ranges := gh.Threshold.Resolve("tomato", owner)

	// the override wins and inherits the base unit when none was given
	assert.Equal(t, Range{Min: 16, Max: 24, Unit: "°C"}, ranges[models.MetricTemperature])
	// untouched metrics keep their built-in ranges
	assert.Equal(t, Range{Min: 500, Max: 1200, Unit: "ppm"}, ranges[models.MetricCO2])

	// another owner is unaffected
	other := gh.Threshold.Resolve("tomato", uuid.NewString())
	assert.Equal(t, Range{Min: 18, Max: 27, Unit: "°C"}, other[models.MetricTemperature])
}

func TestUpsertOverrideDedupes(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	owner := uuid.NewString()

	var err error
	err = gh.Threshold.UpsertOverride(owner, &models.CropThreshold{
		CropName: "lettuce",
		Metric:   models.MetricHumidity,
		MinValue: 40,
		MaxValue: 60,
		Unit:     "%",
	})
	require.NoError(t, err)

	err = gh.Threshold.UpsertOverride(owner, &models.CropThreshold{
		CropName: "lettuce",
		Metric:   models.MetricHumidity,
		MinValue: 45,
		MaxValue: 65,
		Unit:     "%",
	})
	require.NoError(t, err)

	var count int64
	err = gh.Db.Conn.Model(&models.CropThreshold{}).
		Where("owner = ? AND crop_name = ? AND metric = ?", owner, "lettuce", models.MetricHumidity).
		Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ranges := gh.Threshold.Resolve("lettuce", owner)
	assert.Equal(t, Range{Min: 45, Max: 65, Unit: "%"}, ranges[models.MetricHumidity])
}
