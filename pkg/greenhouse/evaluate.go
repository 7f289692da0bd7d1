package greenhouse

import (
	"fmt"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

// criticalSpanFraction is the share of the range span a breach must exceed
// before it counts as critical. A breach of exactly this fraction is a
// warning.
const criticalSpanFraction = 0.25

var metricLabels = map[models.MetricType]string{
	models.MetricTemperature: "Temperature",
	models.MetricHumidity:    "Humidity",
	models.MetricCO2:         "CO2",
}

// Evaluate compares a snapshot against resolved ranges and returns one alert
// per out-of-range metric, in the fixed order temperature, humidity, co2.
// The returned alerts carry no suggestion yet. Pure: no I/O, no side effects.
func Evaluate(snap *models.Snapshot, ranges RangeSet) []models.Alert {
	ordered := []struct {
		metric models.MetricType
		value  float64
	}{
		{models.MetricTemperature, snap.Temperature},
		{models.MetricHumidity, snap.Humidity},
		{models.MetricCO2, snap.CO2},
	}

	var alerts []models.Alert
	for _, entry := range ordered {
		r, ok := ranges[entry.metric]
		if !ok {
			continue
		}

		var direction models.AlertDirection
		var deviation float64
		switch {
		case entry.value < r.Min:
			direction = models.DirectionLow
			deviation = r.Min - entry.value
		case entry.value > r.Max:
			direction = models.DirectionHigh
			deviation = entry.value - r.Max
		default:
			continue
		}

		severity := models.SeverityWarning
		if deviation > criticalSpanFraction*(r.Max-r.Min) {
			severity = models.SeverityCritical
		}

		var relation string
		if direction == models.DirectionLow {
			relation = "below"
		} else {
			relation = "above"
		}

		alerts = append(alerts, models.Alert{
			Metric:    entry.metric,
			Value:     entry.value,
			Unit:      r.Unit,
			IdealMin:  r.Min,
			IdealMax:  r.Max,
			Direction: direction,
			Severity:  severity,
			Message: fmt.Sprintf("%s %.2f %s ideal range [%.2f, %.2f]",
				metricLabels[entry.metric], entry.value, relation, r.Min, r.Max),
		})
	}

	return alerts
}
