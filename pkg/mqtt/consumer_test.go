package mqtt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/db"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/greenhouse"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
	_ "ecogrow.xyz/greenhouse-sensor-service/pkg/testing"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/ws"
)

func setupTestConsumer(hub *ws.Hub) (*Consumer, *greenhouse.Greenhouse) {
	gh := &greenhouse.Greenhouse{
		Db: *db.GetInstance(db.UseMemorySqliteDialector()),
	}
	gh.WithDefaults()
	gh.WithServices(greenhouse.ServiceOpts{
		Snapshot:  gh.GetISnapshot(),
		Alert:     gh.GetIAlert(),
		Threshold: gh.GetIThreshold(),
		Risk:      gh.GetIRisk(),
		Suggest:   gh.GetISuggest(),
	})

	return NewConsumer(gh, hub, Options{BrokerURL: "tcp://localhost:1883"}), gh
}

func TestHandlePayloadPersists(t *testing.T) {
	common.SetTestLoggerNop()

	consumer, gh := setupTestConsumer(nil)
	sourceID := uuid.NewString()

	consumer.HandlePayload([]byte(`{"co2": 870, "temp": 21.5, "humidity": 63, "user_id": "` + sourceID + `"}`))

	snap, err := gh.Snapshot.Latest(sourceID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 870.0, snap.CO2)
	assert.Equal(t, 21.5, snap.Temperature)
	assert.Equal(t, 63.0, snap.Humidity)
}

func TestHandlePayloadThrottled(t *testing.T) {
	common.SetTestLoggerNop()

	consumer, gh := setupTestConsumer(nil)
	sourceID := uuid.NewString()

	payload := []byte(`{"co2": 870, "temp": 21.5, "humidity": 63, "user_id": "` + sourceID + `"}`)
	consumer.HandlePayload(payload)
	consumer.HandlePayload(payload)

	// the second sample fell inside the subscription window
	var count int64
	err := gh.Db.Conn.Model(&models.Reading{}).Where("source_id = ?", sourceID).Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestHandlePayloadDropsGarbage(t *testing.T) {
	common.SetTestLoggerNop()

	consumer, gh := setupTestConsumer(nil)

	var before, after int64
	require.NoError(t, gh.Db.Conn.Model(&models.Reading{}).Count(&before).Error)

	consumer.HandlePayload([]byte("not json"))
	consumer.HandlePayload([]byte("{broken"))

	require.NoError(t, gh.Db.Conn.Model(&models.Reading{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestHandlePayloadBroadcastsEvenWhenThrottled(t *testing.T) {
	common.SetTestLoggerNop()

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	consumer, _ := setupTestConsumer(hub)
	sourceID := uuid.NewString()

	payload := []byte(`{"co2": 870, "temp": 21.5, "humidity": 63, "user_id": "` + sourceID + `"}`)

	// both samples reach the hub even though only the first is persisted
	assert.NotPanics(t, func() {
		consumer.HandlePayload(payload)
		consumer.HandlePayload(payload)
	})
}
