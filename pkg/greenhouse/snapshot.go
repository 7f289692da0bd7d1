package greenhouse

import (
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

// ingest runs one snapshot through the write cache and, if admitted, persists
// the three metric rows under one shared timestamp in a single transaction.
// Returns admitted=false for a throttled sample, which is not an error.
func (g *Greenhouse) ingest(path IngestPath, snap *models.Snapshot) (bool, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameGreenhouseCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySnapshot),
	)

	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	} else {
		snap.CapturedAt = snap.CapturedAt.UTC()
	}

	if !g.Cache.Admit(snap.SourceID, snap.CapturedAt, g.minInterval(path)) {
		logger.Debug("Snapshot throttled",
			zap.String("source_id", snap.SourceID),
			zap.String("path", string(path)))
		return false, nil
	}

	rows := []models.Reading{
		{SourceID: snap.SourceID, Metric: models.MetricCO2, Value: snap.CO2, CapturedAt: snap.CapturedAt},
		{SourceID: snap.SourceID, Metric: models.MetricTemperature, Value: snap.Temperature, CapturedAt: snap.CapturedAt},
		{SourceID: snap.SourceID, Metric: models.MetricHumidity, Value: snap.Humidity, CapturedAt: snap.CapturedAt},
	}

	err := g.Db.Conn.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		g.Cache.Revert(snap.SourceID, snap.CapturedAt)
		return false, err
	}

	logger.Info("Snapshot persisted",
		zap.String("source_id", snap.SourceID),
		zap.String("path", string(path)),
		zap.Time("captured_at", snap.CapturedAt))
	return true, nil
}

// latest assembles the newest snapshot for a source, or nil when the source
// has no readings yet.
func (g *Greenhouse) latest(sourceID string) (*models.Snapshot, error) {
	var newest models.Reading
	err := g.Db.Conn.
		Where("source_id = ?", sourceID).
		Order("captured_at desc").
		First(&newest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []models.Reading
	err = g.Db.Conn.
		Where("source_id = ? AND captured_at = ?", sourceID, newest.CapturedAt).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	snap := &models.Snapshot{SourceID: sourceID, CapturedAt: newest.CapturedAt}
	for _, row := range rows {
		switch row.Metric {
		case models.MetricCO2:
			snap.CO2 = row.Value
		case models.MetricTemperature:
			snap.Temperature = row.Value
		case models.MetricHumidity:
			snap.Humidity = row.Value
		}
	}
	return snap, nil
}

var summaryOrder = []models.MetricType{
	models.MetricTemperature,
	models.MetricHumidity,
	models.MetricCO2,
}

// summary aggregates avg/min/max per metric over the window. Aggregation
// happens in Go so the same query works on sqlite and postgres.
func (g *Greenhouse) summary(sourceID string, window time.Duration) ([]models.MetricSummary, error) {
	since := time.Now().UTC().Add(-window)

	var rows []models.Reading
	err := g.Db.Conn.
		Where("source_id = ? AND captured_at >= ?", sourceID, since).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum, min, max float64
		count         int
	}
	byMetric := common.Reducer(rows, func(m map[models.MetricType]*acc, r models.Reading) map[models.MetricType]*acc {
		a, ok := m[r.Metric]
		if !ok {
			m[r.Metric] = &acc{sum: r.Value, min: r.Value, max: r.Value, count: 1}
			return m
		}
		a.sum += r.Value
		a.count++
		if r.Value < a.min {
			a.min = r.Value
		}
		if r.Value > a.max {
			a.max = r.Value
		}
		return m
	}, map[models.MetricType]*acc{})

	var summaries []models.MetricSummary
	for _, metric := range summaryOrder {
		a, ok := byMetric[metric]
		if !ok {
			continue
		}
		summaries = append(summaries, models.MetricSummary{
			Metric: metric,
			Avg:    a.sum / float64(a.count),
			Min:    a.min,
			Max:    a.max,
			Count:  a.count,
		})
	}
	return summaries, nil
}

// hourlyTrend buckets the last N hours of readings into per-hour averages,
// oldest bucket first. Hours without readings produce no bucket.
func (g *Greenhouse) hourlyTrend(sourceID string, hours int) ([]models.TrendBucket, error) {
	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	var rows []models.Reading
	err := g.Db.Conn.
		Where("source_id = ? AND captured_at >= ?", sourceID, since).
		Order("captured_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum   float64
		count int
	}
	buckets := map[time.Time]map[models.MetricType]*acc{}
	for _, row := range rows {
		hour := row.CapturedAt.UTC().Truncate(time.Hour)
		if buckets[hour] == nil {
			buckets[hour] = map[models.MetricType]*acc{}
		}
		a, ok := buckets[hour][row.Metric]
		if !ok {
			buckets[hour][row.Metric] = &acc{sum: row.Value, count: 1}
			continue
		}
		a.sum += row.Value
		a.count++
	}

	hoursSorted := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hoursSorted = append(hoursSorted, hour)
	}
	sort.Slice(hoursSorted, func(i, j int) bool { return hoursSorted[i].Before(hoursSorted[j]) })

	trend := common.Mapper(hoursSorted, func(hour time.Time) models.TrendBucket {
		avg := map[models.MetricType]float64{}
		for metric, a := range buckets[hour] {
			avg[metric] = a.sum / float64(a.count)
		}
		return models.TrendBucket{Hour: hour, Avg: avg}
	})
	return trend, nil
}

type ISnapshotImpl struct {
	gh *Greenhouse
}

func (is *ISnapshotImpl) Ingest(path IngestPath, snap *models.Snapshot) (bool, error) {
	return is.gh.ingest(path, snap)
}

func (is *ISnapshotImpl) Latest(sourceID string) (*models.Snapshot, error) {
	return is.gh.latest(sourceID)
}

func (is *ISnapshotImpl) Summary(sourceID string, window time.Duration) ([]models.MetricSummary, error) {
	return is.gh.summary(sourceID, window)
}

func (is *ISnapshotImpl) HourlyTrend(sourceID string, hours int) ([]models.TrendBucket, error) {
	return is.gh.hourlyTrend(sourceID, hours)
}

func (g *Greenhouse) GetISnapshot() ISnapshot {
	return &ISnapshotImpl{gh: g}
}
