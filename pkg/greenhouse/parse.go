package greenhouse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
)

// DefaultSourceID is used when a broker payload carries no user_id.
const DefaultSourceID = "1"

var (
	// ErrMissingPayload means no recognizable sensor data was present at all.
	ErrMissingPayload = errors.New("missing or invalid sensor data")
	// ErrBadFormat means a text payload was present but did not match the
	// expected CO2/T/H pattern.
	ErrBadFormat = errors.New("invalid sensor data format")
)

// sensorTextPattern matches "CO2: <num>, T: <num>, H: <num>", case
// insensitive and tolerant of extra whitespace.
var sensorTextPattern = regexp.MustCompile(`(?i)CO2:\s*([\d.]+),\s*T:\s*([\d.]+),\s*H:\s*([\d.]+)`)

// brokerPayload is the subscription message shape: {co2, temp, humidity,
// user_id?}. Missing metrics default to zero, matching the feed's contract.
type brokerPayload struct {
	CO2      *float64        `json:"co2"`
	Temp     *float64        `json:"temp"`
	Humidity *float64        `json:"humidity"`
	UserID   json.RawMessage `json:"user_id"`
}

// relayPayload is the union of relay request shapes: structured numeric
// fields (temp/temperature and humidity/hum aliases) or a text field
// carrying the pattern form.
type relayPayload struct {
	CO2         *float64 `json:"co2"`
	Temp        *float64 `json:"temp"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Hum         *float64 `json:"hum"`
	Message     string   `json:"message"`
	Data        string   `json:"data"`
}

// NormalizeBrokerPayload turns one subscription message into a snapshot.
func NormalizeBrokerPayload(raw []byte) (*models.Snapshot, error) {
	var payload brokerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrMissingPayload
	}

	snap := &models.Snapshot{SourceID: DefaultSourceID}
	if payload.CO2 != nil {
		snap.CO2 = *payload.CO2
	}
	if payload.Temp != nil {
		snap.Temperature = *payload.Temp
	}
	if payload.Humidity != nil {
		snap.Humidity = *payload.Humidity
	}
	if id := decodeSourceID(payload.UserID); id != "" {
		snap.SourceID = id
	}
	return snap, nil
}

// NormalizeRelayBody turns a relay request body into the reading triple.
// Structured JSON wins; otherwise the text form is taken from the message or
// data field, falling back to the raw body.
func NormalizeRelayBody(raw []byte) (co2, temp, hum float64, err error) {
	var payload relayPayload
	structured := json.Unmarshal(raw, &payload) == nil

	if structured && payload.CO2 != nil && (payload.Temp != nil || payload.Temperature != nil) {
		co2 = *payload.CO2
		if payload.Temp != nil {
			temp = *payload.Temp
		} else {
			temp = *payload.Temperature
		}
		if payload.Humidity != nil {
			hum = *payload.Humidity
		} else if payload.Hum != nil {
			hum = *payload.Hum
		}
		return co2, temp, hum, nil
	}

	text := payload.Message
	if text == "" {
		text = payload.Data
	}
	if text == "" {
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return 0, 0, 0, ErrMissingPayload
		}
		if !sensorTextPattern.MatchString(body) {
			if structured {
				return 0, 0, 0, ErrMissingPayload
			}
			return 0, 0, 0, ErrBadFormat
		}
		text = body
	}

	return ParseSensorText(text)
}

// ParseSensorText extracts the triple from the "CO2: <num>, T: <num>,
// H: <num>" form.
func ParseSensorText(text string) (co2, temp, hum float64, err error) {
	match := sensorTextPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return 0, 0, 0, ErrBadFormat
	}

	co2, err = strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, 0, 0, ErrBadFormat
	}
	temp, err = strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, 0, 0, ErrBadFormat
	}
	hum, err = strconv.ParseFloat(match[3], 64)
	if err != nil {
		return 0, 0, 0, ErrBadFormat
	}
	return co2, temp, hum, nil
}

func decodeSourceID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return ""
}
