package notify

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"openhab_updater/internal/logger"
)

const (
	mqttConnectTimeout = 5 * time.Second
	successSuffix      = "/ok"
	errorSuffix        = "/err"
)

// MQTTNotifier publishes update notices to an MQTT broker, so other
// home-automation components can react to them.
type MQTTNotifier struct {
	client      mqtt.Client
	topicPrefix string
	log         *logger.Logger
}

// NewMQTTNotifier connects to the broker and returns a publishing notifier.
func NewMQTTNotifier(broker, clientID, topicPrefix string, log *logger.Logger) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connect to mqtt broker %q: timeout", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %q: %w", broker, err)
	}

	return &MQTTNotifier{client: client, topicPrefix: topicPrefix, log: log}, nil
}

func (n *MQTTNotifier) Success(message string) {
	n.publish(n.topicPrefix+successSuffix, message)
}

func (n *MQTTNotifier) Error(message string) {
	n.publish(n.topicPrefix+errorSuffix, message)
}

// publish is fire-and-forget: QoS 0, no wait on the token.
func (n *MQTTNotifier) publish(topic, payload string) {
	token := n.client.Publish(topic, 0, false, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil && n.log != nil {
			n.log.Warnw("mqtt_publish_failed", "topic", topic, "err", err)
		}
	}()
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
