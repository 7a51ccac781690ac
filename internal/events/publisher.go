// Package events publishes analysis events to an MQTT broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-moodtune/internal/analysis"
)

// ErrNotConnected is returned when publishing before Connect.
var ErrNotConnected = errors.New("mqtt client not connected")

const (
	qosAtLeastOnce = 1
	publishTimeout = 5 * time.Second
	// quiesce is how long Disconnect waits for in-flight work, in ms.
	quiesce = 250
)

// Config holds broker settings.
type Config struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Event is the published payload.
type Event struct {
	ID             string    `json:"id"`
	TextHash       string    `json:"text_hash"`
	PrimaryEmotion string    `json:"primary_emotion"`
	Sentiment      float64   `json:"sentiment"`
	Confidence     float64   `json:"confidence"`
	At             time.Time `json:"at"`
}

// Topic returns the topic an emotion's events go to.
func Topic(prefix, emotion string) string {
	return fmt.Sprintf("%s/analysis/%s", prefix, emotion)
}

// client is the subset of paho.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher implements analysis.Publisher over MQTT.
type Publisher struct {
	cfg    Config
	client client
	log    *logrus.Entry
}

// NewPublisher creates a publisher. Call Connect before publishing.
func NewPublisher(cfg Config, log *logrus.Entry) *Publisher {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "moodtune"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "moodtune"
	}
	return &Publisher{cfg: cfg, log: log}
}

// Connect dials the broker. The client reconnects on its own after a
// lost connection.
func (p *Publisher) Connect(ctx context.Context) error {
	opts := paho.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.log.WithError(err).Warn("MQTT connection lost")
	})

	c := paho.NewClient(opts)
	if err := wait(ctx, c.Connect()); err != nil {
		return fmt.Errorf("connecting to %s: %w", p.cfg.BrokerURL, err)
	}
	p.client = c
	p.log.WithField("broker", p.cfg.BrokerURL).Info("Connected to MQTT broker")
	return nil
}

// PublishAnalysis sends an analysis event at QoS 1.
func (p *Publisher) PublishAnalysis(ctx context.Context, a analysis.Analysis) error {
	if p.client == nil {
		return ErrNotConnected
	}

	body, err := json.Marshal(Event{
		ID:             a.ID.String(),
		TextHash:       a.TextHash,
		PrimaryEmotion: string(a.Primary),
		Sentiment:      a.Sentiment,
		Confidence:     a.Confidence,
		At:             a.AnalyzedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	topic := Topic(p.cfg.TopicPrefix, string(a.Primary))
	if err := wait(ctx, p.client.Publish(topic, qosAtLeastOnce, false, body)); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect(quiesce)
	}
}

func wait(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
