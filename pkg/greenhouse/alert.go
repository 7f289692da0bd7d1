package greenhouse

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

const (
	alertHistoryDefaultLimit = 20
	alertHistoryMaxLimit     = 100
)

type AlertQuery struct {
	Owner    string
	Severity models.AlertSeverity
	Limit    int
	Offset   int
}

// evaluateAndStore runs the pure evaluator, enriches each alert with a
// suggestion, and persists the batch in one transaction.
func (g *Greenhouse) evaluateAndStore(ctx context.Context, snap *models.Snapshot, ranges RangeSet, cropType, cropStage, owner string) ([]models.Alert, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameGreenhouseCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryAlert),
	)

	alerts := Evaluate(snap, ranges)
	if len(alerts) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	for i := range alerts {
		alerts[i].Owner = owner
		alerts[i].CropType = cropType
		alerts[i].CropStage = cropStage
		alerts[i].CreatedAt = now
		alerts[i].Suggestion = g.Suggest.Suggest(ctx, &alerts[i])

		logger.Info("Alert found", zap.Reflect("alert", alerts[i]))
	}

	err := g.Db.Conn.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&alerts).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Alerts saved", zap.Int("count", len(alerts)), zap.String("owner", owner))
	return alerts, nil
}

// history returns alerts newest-first plus the total count for the filters.
func (g *Greenhouse) history(q AlertQuery) ([]models.Alert, int64, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = alertHistoryDefaultLimit
	}
	if limit > alertHistoryMaxLimit {
		limit = alertHistoryMaxLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	query := g.Db.Conn.Model(&models.Alert{})
	if q.Owner != "" {
		query = query.Where("owner = ?", q.Owner)
	}
	if q.Severity != "" {
		query = query.Where("severity = ?", q.Severity)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []models.Alert
	err := query.
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

type IAlertImpl struct {
	gh *Greenhouse
}

func (ia *IAlertImpl) EvaluateAndStore(ctx context.Context, snap *models.Snapshot, ranges RangeSet, cropType, cropStage, owner string) ([]models.Alert, error) {
	return ia.gh.evaluateAndStore(ctx, snap, ranges, cropType, cropStage, owner)
}

func (ia *IAlertImpl) History(q AlertQuery) ([]models.Alert, int64, error) {
	return ia.gh.history(q)
}

func (g *Greenhouse) GetIAlert() IAlert {
	return &IAlertImpl{gh: g}
}
