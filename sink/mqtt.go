package sink

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// defaultPublishTimeout bounds how long a row push waits for broker
// acknowledgement before reporting an error.
const defaultPublishTimeout = time.Second

// MQTTPublisher streams rows to an MQTT topic as JSON arrays.
type MQTTPublisher struct {
	client  paho.Client
	topic   string
	qos     byte
	timeout time.Duration
}

var _ Sink = (*MQTTPublisher)(nil)

// clientOptionsFromURL builds paho options from an mqtt:// or tcp:// URL,
// carrying credentials embedded in the URL if present.
func clientOptionsFromURL(serverURL string) (*paho.ClientOptions, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("sink: parse mqtt url: %w", err)
	}

	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)

	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}

	return opts, nil
}

// NewMQTTPublisher connects to the broker at serverURL and returns a
// publisher for the given topic.
func NewMQTTPublisher(serverURL, topic string) (*MQTTPublisher, error) {
	opts, err := clientOptionsFromURL(serverURL)
	if err != nil {
		return nil, err
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("sink: mqtt connect timeout to %s", serverURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("sink: mqtt connect: %w", err)
	}

	return NewMQTTPublisherWithClient(client, topic), nil
}

// NewMQTTPublisherWithClient wraps an already-connected client. Used by
// tests and by callers that manage the client themselves.
func NewMQTTPublisherWithClient(client paho.Client, topic string) *MQTTPublisher {
	topic = strings.TrimPrefix(topic, "/")

	return &MQTTPublisher{
		client:  client,
		topic:   topic,
		qos:     0,
		timeout: defaultPublishTimeout,
	}
}

func (mp *MQTTPublisher) PushRow(row []float64) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("sink: marshal row: %w", err)
	}

	token := mp.client.Publish(mp.topic, mp.qos, false, payload)
	if !token.WaitTimeout(mp.timeout) {
		return fmt.Errorf("sink: mqtt publish timeout on %s", mp.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("sink: mqtt publish: %w", err)
	}

	return nil
}

// Close disconnects from the broker, allowing in-flight messages 250ms to
// complete.
func (mp *MQTTPublisher) Close() error {
	mp.client.Disconnect(250)

	return nil
}
