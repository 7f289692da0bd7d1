package greenhouse

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

// LastSavedLookup returns the newest persisted timestamp for a source, or
// found=false when the source has never been written.
type LastSavedLookup func(sourceID string) (lastSaved time.Time, found bool, err error)

// WriteCache decides whether a new sample for a source may be persisted.
// It keeps a per-source last-persisted timestamp in memory, warming a cold
// entry from storage exactly once per source.
type WriteCache struct {
	mu        sync.Mutex
	lastSaved map[string]time.Time
	lookup    LastSavedLookup
}

func NewWriteCache(lookup LastSavedLookup) *WriteCache {
	return &WriteCache{
		lastSaved: make(map[string]time.Time),
		lookup:    lookup,
	}
}

// Admit reports whether a write for sourceID at now may proceed, and records
// now as the new last-persisted timestamp when it may. The check and the
// update happen under one lock so two near-simultaneous samples for the same
// source cannot both pass within one interval window.
func (w *WriteCache) Admit(sourceID string, now time.Time, minInterval time.Duration) bool {
	logger := common.GetLoggerWith(
		common.LoggerNameGreenhouseCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryThrottle),
	)

	w.mu.Lock()
	defer w.mu.Unlock()

	last, cached := w.lastSaved[sourceID]
	if !cached && w.lookup != nil {
		stored, found, err := w.lookup(sourceID)
		if err != nil {
			logger.Error("Last-saved lookup failed, treating source as new",
				zap.String("source_id", sourceID), zap.Error(err))
		} else if found {
			last = stored
			cached = true
			w.lastSaved[sourceID] = stored
		}
	}

	if cached {
		elapsed := now.Sub(last)
		if elapsed < 0 {
			// Clock skew: the stored timestamp is in the future. Admit the
			// write so the timeline resets to now instead of locking the
			// source out until time catches up.
			logger.Warn("Last timestamp is in the future, admitting write to correct skew",
				zap.String("source_id", sourceID),
				zap.Time("last_saved", last),
				zap.Time("now", now))
		} else if elapsed < minInterval {
			return false
		}
	}

	w.lastSaved[sourceID] = now
	return true
}

// Revert removes an admission record after a failed persist, but only if no
// later admission has replaced it.
func (w *WriteCache) Revert(sourceID string, admittedAt time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.lastSaved[sourceID]; ok && last.Equal(admittedAt) {
		delete(w.lastSaved, sourceID)
	}
}

func (g *Greenhouse) lastSavedLookup() LastSavedLookup {
	return func(sourceID string) (time.Time, bool, error) {
		var reading models.Reading
		err := g.Db.Conn.
			Where("source_id = ?", sourceID).
			Order("captured_at desc").
			First(&reading).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		if err != nil {
			return time.Time{}, false, err
		}
		return reading.CapturedAt, true, nil
	}
}
