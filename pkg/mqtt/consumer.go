package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/greenhouse"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/ws"
)

const (
	DefaultTopic        = "ecogrow/sensors"
	connectTimeout      = 10 * time.Second
	disconnectQuiesceMs = 250
)

type Options struct {
	BrokerURL string
	Topic     string
	Username  string
	Password  string
}

// Consumer is the long-lived subscription front door: it receives broker
// messages, broadcasts every sample live, and drives the throttled ingest.
type Consumer struct {
	gh     *greenhouse.Greenhouse
	hub    *ws.Hub
	topic  string
	client paho.Client
}

func NewConsumer(gh *greenhouse.Greenhouse, hub *ws.Hub, opts Options) *Consumer {
	topic := opts.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	consumer := &Consumer{gh: gh, hub: hub, topic: topic}

	clientOpts := paho.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(fmt.Sprintf("ecogrow_backend_%d", time.Now().Unix())).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(client paho.Client) {
			logger := common.GetLoggerWith(common.LoggerNameMqttConsumer)
			logger.Info("Connected to broker, subscribing", zap.String("topic", consumer.topic))
			client.Subscribe(consumer.topic, 1, consumer.handleMessage)
		})

	consumer.client = paho.NewClient(clientOpts)
	return consumer
}

func (c *Consumer) Start() error {
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("broker connect timed out")
	}
	return token.Error()
}

// Stop unsubscribes and disconnects, allowing the in-flight message a short
// drain window. At most that one message is lost.
func (c *Consumer) Stop() {
	logger := common.GetLoggerWith(common.LoggerNameMqttConsumer)

	if token := c.client.Unsubscribe(c.topic); token.WaitTimeout(connectTimeout) {
		if err := token.Error(); err != nil {
			logger.Warn("Unsubscribe failed", zap.Error(err))
		}
	}
	c.client.Disconnect(disconnectQuiesceMs)
	logger.Info("Consumer stopped")
}

func (c *Consumer) handleMessage(_ paho.Client, msg paho.Message) {
	c.HandlePayload(msg.Payload())
}

// HandlePayload processes one raw broker message: normalize, broadcast live,
// then attempt the throttled persist. A throttled sample is dropped silently;
// there is no caller to notify.
func (c *Consumer) HandlePayload(raw []byte) {
	logger := common.GetLoggerWith(common.LoggerNameMqttConsumer)

	snap, err := greenhouse.NormalizeBrokerPayload(raw)
	if err != nil {
		logger.Warn("Dropping unparsable broker message", zap.Error(err))
		return
	}
	snap.CapturedAt = time.Now().UTC()

	// Live listeners see every sample, independent of persistence outcome.
	if c.hub != nil {
		c.hub.BroadcastSnapshot(snap)
	}

	admitted, err := c.gh.Snapshot.Ingest(greenhouse.PathSubscription, snap)
	if err != nil {
		logger.Error("Failed to persist snapshot", zap.String("source_id", snap.SourceID), zap.Error(err))
		return
	}
	if !admitted {
		return
	}

	logger.Info("Snapshot ingested from subscription", zap.String("source_id", snap.SourceID))
}
