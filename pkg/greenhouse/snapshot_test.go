package greenhouse

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
	_ "ecogrow.xyz/greenhouse-sensor-service/pkg/testing"
)

func TestIngestAndLatest(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	sourceID := uuid.NewString()
	capturedAt := time.Now().UTC().Truncate(time.Second)

	admitted, err := gh.Snapshot.Ingest(PathSubscription, &models.Snapshot{
		SourceID:    sourceID,
		CO2:         870,
		Temperature: 21.5,
		Humidity:    63,
		CapturedAt:  capturedAt,
	})
	require.NoError(t, err)
	assert.True(t, admitted)

	// one row per metric under the shared timestamp
	var count int64
	err = gh.Db.Conn.Model(&models.Reading{}).Where("source_id = ?", sourceID).Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	snap, err := gh.Snapshot.Latest(sourceID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 870.0, snap.CO2)
	assert.Equal(t, 21.5, snap.Temperature)
	assert.Equal(t, 63.0, snap.Humidity)
	assert.True(t, capturedAt.Equal(snap.CapturedAt.UTC()))
}

func TestIngestThrottled(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	sourceID := uuid.NewString()
	first := time.Now().UTC().Truncate(time.Second)

	admitted, err := gh.Snapshot.Ingest(PathSubscription, &models.Snapshot{
		SourceID: sourceID, CO2: 800, Temperature: 20, Humidity: 60, CapturedAt: first,
	})
	require.NoError(t, err)
	require.True(t, admitted)

	// a second sample inside the window is dropped without error
	admitted, err = gh.Snapshot.Ingest(PathSubscription, &models.Snapshot{
		SourceID: sourceID, CO2: 801, Temperature: 20, Humidity: 60, CapturedAt: first.Add(10 * time.Second),
	})
	require.NoError(t, err)
	assert.False(t, admitted)

	var count int64
	err = gh.Db.Conn.Model(&models.Reading{}).Where("source_id = ?", sourceID).Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// past the window it goes through again
	admitted, err = gh.Snapshot.Ingest(PathSubscription, &models.Snapshot{
		SourceID: sourceID, CO2: 802, Temperature: 20, Humidity: 60, CapturedAt: first.Add(61 * time.Second),
	})
	require.NoError(t, err)
	assert.True(t, admitted)
}

func TestIngestPathIntervals(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	sourceID := uuid.NewString()
	first := time.Now().UTC().Truncate(time.Second)

	admitted, err := gh.Snapshot.Ingest(PathRelay, &models.Snapshot{
		SourceID: sourceID, CO2: 800, Temperature: 20, Humidity: 60, CapturedAt: first,
	})
	require.NoError(t, err)
	require.True(t, admitted)

	// 56s clears the relay window but would still be inside the
	// subscription one
	admitted, err = gh.Snapshot.Ingest(PathRelay, &models.Snapshot{
		SourceID: sourceID, CO2: 810, Temperature: 20, Humidity: 60, CapturedAt: first.Add(56 * time.Second),
	})
	require.NoError(t, err)
	assert.True(t, admitted)
}

func TestLatestNoData(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	snap, err := gh.Snapshot.Latest(uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSummary(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	sourceID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)

	rows := []models.Reading{
		{SourceID: sourceID, Metric: models.MetricTemperature, Value: 18, CapturedAt: now.Add(-2 * time.Hour)},
		{SourceID: sourceID, Metric: models.MetricTemperature, Value: 22, CapturedAt: now.Add(-1 * time.Hour)},
		{SourceID: sourceID, Metric: models.MetricCO2, Value: 900, CapturedAt: now.Add(-1 * time.Hour)},
		// outside the 24h window, must be ignored
		{SourceID: sourceID, Metric: models.MetricTemperature, Value: 99, CapturedAt: now.Add(-25 * time.Hour)},
	}
	require.NoError(t, gh.Db.Conn.Create(&rows).Error)

	summaries, err := gh.Snapshot.Summary(sourceID, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, models.MetricTemperature, summaries[0].Metric)
	assert.Equal(t, 20.0, summaries[0].Avg)
	assert.Equal(t, 18.0, summaries[0].Min)
	assert.Equal(t, 22.0, summaries[0].Max)
	assert.Equal(t, 2, summaries[0].Count)

	assert.Equal(t, models.MetricCO2, summaries[1].Metric)
	assert.Equal(t, 1, summaries[1].Count)
}

func TestHourlyTrend(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, gh, _, _ := GetMockGreenhouseWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	sourceID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Hour).Add(-3 * time.Hour)

	rows := []models.Reading{
		{SourceID: sourceID, Metric: models.MetricTemperature, Value: 18, CapturedAt: base.Add(5 * time.Minute)},
		{SourceID: sourceID, Metric: models.MetricTemperature, Value: 20, CapturedAt: base.Add(25 * time.Minute)},
		{SourceID: sourceID, Metric: models.MetricCO2, Value: 850, CapturedAt: base.Add(time.Hour + 10*time.Minute)},
	}
	require.NoError(t, gh.Db.Conn.Create(&rows).Error)

	trend, err := gh.Snapshot.HourlyTrend(sourceID, 24)
	require.NoError(t, err)
	require.Len(t, trend, 2)

	assert.True(t, trend[0].Hour.Before(trend[1].Hour))
	assert.Equal(t, 19.0, trend[0].Avg[models.MetricTemperature])
	assert.Equal(t, 850.0, trend[1].Avg[models.MetricCO2])
}
