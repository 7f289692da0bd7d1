package greenhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "ecogrow.xyz/greenhouse-sensor-service/pkg/testing"
)

func TestNormalizeBrokerPayload(t *testing.T) {
	snap, err := NormalizeBrokerPayload([]byte(`{"co2": 850.5, "temp": 24.1, "humidity": 61, "user_id": 7}`))
	require.NoError(t, err)
	assert.Equal(t, 850.5, snap.CO2)
	assert.Equal(t, 24.1, snap.Temperature)
	assert.Equal(t, 61.0, snap.Humidity)
	assert.Equal(t, "7", snap.SourceID)
}

func TestNormalizeBrokerPayloadDefaults(t *testing.T) {
	// missing metrics default to zero, missing user_id to the default source
	snap, err := NormalizeBrokerPayload([]byte(`{"co2": 900}`))
	require.NoError(t, err)
	assert.Equal(t, 900.0, snap.CO2)
	assert.Equal(t, 0.0, snap.Temperature)
	assert.Equal(t, 0.0, snap.Humidity)
	assert.Equal(t, DefaultSourceID, snap.SourceID)

	// user_id may arrive as a string
	snap, err = NormalizeBrokerPayload([]byte(`{"co2": 900, "user_id": "grower-42"}`))
	require.NoError(t, err)
	assert.Equal(t, "grower-42", snap.SourceID)
}

func TestNormalizeBrokerPayloadRejectsGarbage(t *testing.T) {
	_, err := NormalizeBrokerPayload([]byte(`not json at all`))
	assert.ErrorIs(t, err, ErrMissingPayload)
}

func TestNormalizeRelayBodyStructured(t *testing.T) {
	co2, temp, hum, err := NormalizeRelayBody([]byte(`{"co2": 880, "temp": 23.5, "humidity": 58}`))
	require.NoError(t, err)
	assert.Equal(t, 880.0, co2)
	assert.Equal(t, 23.5, temp)
	assert.Equal(t, 58.0, hum)

	// temperature and hum aliases are accepted
	co2, temp, hum, err = NormalizeRelayBody([]byte(`{"co2": 880, "temperature": 23.5, "hum": 58}`))
	require.NoError(t, err)
	assert.Equal(t, 880.0, co2)
	assert.Equal(t, 23.5, temp)
	assert.Equal(t, 58.0, hum)
}

func TestNormalizeRelayBodyTextFields(t *testing.T) {
	co2, temp, hum, err := NormalizeRelayBody([]byte(`{"message": "CO2: 910, T: 22.4, H: 60.5"}`))
	require.NoError(t, err)
	assert.Equal(t, 910.0, co2)
	assert.Equal(t, 22.4, temp)
	assert.Equal(t, 60.5, hum)

	co2, _, _, err = NormalizeRelayBody([]byte(`{"data": "co2: 500, t: 18, h: 55"}`))
	require.NoError(t, err)
	assert.Equal(t, 500.0, co2)
}

func TestNormalizeRelayBodyRawText(t *testing.T) {
	co2, temp, hum, err := NormalizeRelayBody([]byte("CO2: 1010,  T: 29,   H: 71"))
	require.NoError(t, err)
	assert.Equal(t, 1010.0, co2)
	assert.Equal(t, 29.0, temp)
	assert.Equal(t, 71.0, hum)
}

func TestNormalizeRelayBodyErrors(t *testing.T) {
	var err error

	_, _, _, err = NormalizeRelayBody([]byte(""))
	assert.ErrorIs(t, err, ErrMissingPayload)

	// structured JSON without the required numeric fields
	_, _, _, err = NormalizeRelayBody([]byte(`{"foo": "bar"}`))
	assert.ErrorIs(t, err, ErrMissingPayload)

	// text present but not in the expected shape
	_, _, _, err = NormalizeRelayBody([]byte("temperature is 22"))
	assert.ErrorIs(t, err, ErrBadFormat)

	_, _, _, err = NormalizeRelayBody([]byte(`{"message": "gibberish"}`))
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestParseSensorText(t *testing.T) {
	co2, temp, hum, err := ParseSensorText("  co2: 415.2, t: 19.8, h: 52.3  ")
	require.NoError(t, err)
	assert.Equal(t, 415.2, co2)
	assert.Equal(t, 19.8, temp)
	assert.Equal(t, 52.3, hum)

	_, _, _, err = ParseSensorText("CO2 415, T 19, H 52")
	assert.ErrorIs(t, err, ErrBadFormat)
}
