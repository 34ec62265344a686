// FilePath: internal/messaging/publisher.go
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agrosense/plothub/internal/config"
	"github.com/agrosense/plothub/internal/models"
	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	nuts "github.com/vaudience/go-nuts"
)

// Publisher is the event sink for persisted readings. Implementations are
// fire-and-forget; the ingest path treats publish failures as log-only.
type Publisher interface {
	PublishReadingEvent(event *models.ReadingEvent) error
	Close()
}

// MQTTPublisher publishes reading events to the broker's MQTT endpoint.
// The topic segments mirror the AMQP routing key sensor.data.<plotID> on
// the agro.events exchange.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
}

// NewMQTTPublisher connects to the broker with exponential backoff and
// returns a ready publisher.
func NewMQTTPublisher(cfg config.BrokerConfig) (*MQTTPublisher, error) {
	connAddr := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(connAddr)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			nuts.L.Warnf("[MQTTPublisher] Connect to %s failed: %v", connAddr, token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithMaxRetries(bo, 4))
	if err != nil {
		return nil, fmt.Errorf("could not establish MQTT connection after retries: %w", err)
	}

	nuts.L.Infof("[MQTTPublisher] Connected to broker at %s", connAddr)
	return &MQTTPublisher{client: client, topicPrefix: cfg.TopicPrefix}, nil
}

// PublishReadingEvent sends the event at QoS 0. Consumers must tolerate
// duplicates and gaps.
func (p *MQTTPublisher) PublishReadingEvent(event *models.ReadingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reading event: %w", err)
	}

	topic := fmt.Sprintf("%s/sensor/data/%s", p.topicPrefix, event.PlotID)
	token := p.client.Publish(topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish reading event: %w", token.Error())
	}

	nuts.L.Infof("[MQTTPublisher] Published event %s for plot %s to %s", event.EventID, event.PlotID, topic)
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		nuts.L.Infof("[MQTTPublisher] Disconnected from broker")
	}
}

// NoopPublisher is used when no broker is configured. Ingestion proceeds
// without event delivery.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishReadingEvent(event *models.ReadingEvent) error { return nil }

func (p *NoopPublisher) Close() {}
