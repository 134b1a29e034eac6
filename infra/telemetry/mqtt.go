// Package telemetry publishes turret activity to an MQTT broker so remote
// dashboards can follow the device without polling the HTTP API. Telemetry
// is optional: without a broker the publisher is disabled and the event
// stream is simply not forwarded.
package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/openbar/barbot/core/events"
	"github.com/openbar/barbot/core/logger"
	"github.com/openbar/barbot/internal/eventbus"
)

// Config defines the connection parameters for the MQTT publisher.
type Config struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	UseTLS      bool   `json:"use_tls"`
	CABundle    string `json:"ca_bundle"`
	QoS         byte   `json:"qos"`
}

// Enabled reports whether telemetry is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// Publisher forwards turret events to MQTT.
type Publisher struct {
	cli    paho.Client
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPublisher connects to the broker. The last-will message marks the
// device offline on an unclean disconnect.
func NewPublisher(cfg Config, log logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = "barbot/turret"
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.CABundle != "" {
			pem, err := os.ReadFile(cfg.CABundle)
			if err != nil {
				return nil, fmt.Errorf("read ca bundle: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return nil, fmt.Errorf("no certificates in %s", cfg.CABundle)
			}
			tlsCfg.RootCAs = pool
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.SetWill(prefix+"/state", `{"state":"offline"}`, cfg.QoS, true)
	opts.OnConnect = func(paho.Client) { log.Infof("telemetry connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("telemetry connection lost: %v", err) }

	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{cli: cli, prefix: prefix, qos: cfg.QoS, log: log}, nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.cli.Disconnect(250)
}

func (p *Publisher) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.log.Errorf("telemetry encode: %v", err)
		return
	}
	if token := p.cli.Publish(p.prefix+"/"+topic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		p.log.Warnf("telemetry publish %s: %v", topic, token.Error())
	}
}

// Forward subscribes to the bus and publishes state transitions, pours and
// faults until the context is canceled. Pin events stay local: they are
// high-frequency and only useful to tests and metrics.
func (p *Publisher) Forward(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.StateEvent:
					p.publish("state", e)
				case events.PourEvent:
					p.publish("pour", e)
				case events.FaultEvent:
					p.publish("fault", e)
				}
			}
		}
	}()
}
