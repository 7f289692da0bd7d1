package greenhouse

import (
	"context"
	"time"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/db"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

// IngestPath identifies which front door a snapshot arrived through. The
// two paths carry different minimum persistence intervals.
type IngestPath string

const (
	PathSubscription IngestPath = "subscription"
	PathRelay        IngestPath = "relay"
)

const (
	DefaultSubMinInterval   = 60 * time.Second
	DefaultRelayMinInterval = 55 * time.Second
)

type ISnapshot interface {
	Ingest(path IngestPath, snap *models.Snapshot) (bool, error)
	Latest(sourceID string) (*models.Snapshot, error)
	Summary(sourceID string, window time.Duration) ([]models.MetricSummary, error)
	HourlyTrend(sourceID string, hours int) ([]models.TrendBucket, error)
}

type IAlert interface {
	EvaluateAndStore(ctx context.Context, snap *models.Snapshot, ranges RangeSet, cropType, cropStage, owner string) ([]models.Alert, error)
	History(q AlertQuery) ([]models.Alert, int64, error)
}

type IThreshold interface {
	Resolve(cropName, owner string) RangeSet
	UpsertOverride(owner string, input *models.CropThreshold) error
}

type IRisk interface {
	Classify(ctx context.Context, snap *models.Snapshot, cropType, cropStage string) *models.RiskVerdict
}

type ISuggest interface {
	Suggest(ctx context.Context, alert *models.Alert) string
}

type Greenhouse struct {
	Db    db.DB
	Cache *WriteCache

	SubMinInterval   time.Duration
	RelayMinInterval time.Duration

	ModelClient RiskModelClient
	Generator   SuggestionGenerator

	Snapshot  ISnapshot
	Alert     IAlert
	Threshold IThreshold
	Risk      IRisk
	Suggest   ISuggest
}

type ServiceOpts struct {
	Snapshot  ISnapshot
	Alert     IAlert
	Threshold IThreshold
	Risk      IRisk
	Suggest   ISuggest
}

func (g *Greenhouse) WithServices(opts ServiceOpts) *Greenhouse {
	if opts.Snapshot != nil {
		g.Snapshot = opts.Snapshot
	}
	if opts.Alert != nil {
		g.Alert = opts.Alert
	}
	if opts.Threshold != nil {
		g.Threshold = opts.Threshold
	}
	if opts.Risk != nil {
		g.Risk = opts.Risk
	}
	if opts.Suggest != nil {
		g.Suggest = opts.Suggest
	}
	return g
}

// WithDefaults wires the write cache and the default path intervals.
func (g *Greenhouse) WithDefaults() *Greenhouse {
	if g.Cache == nil {
		g.Cache = NewWriteCache(g.lastSavedLookup())
	}
	if g.SubMinInterval == 0 {
		g.SubMinInterval = DefaultSubMinInterval
	}
	if g.RelayMinInterval == 0 {
		g.RelayMinInterval = DefaultRelayMinInterval
	}
	return g
}

func (g *Greenhouse) minInterval(path IngestPath) time.Duration {
	if path == PathRelay {
		return g.RelayMinInterval
	}
	return g.SubMinInterval
}
