package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/epsim/core/metrics"
	"github.com/kilianp07/epsim/infra/logger"
)

// Config defines the connection parameters for the telemetry publisher.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	Retain      bool   `json:"retain"`
}

// SetDefaults fills unset fields with sensible defaults. Messages are
// retained by default so a dashboard subscribing late still sees the last
// run.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "epsim"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "epsim"
	}
	c.Retain = true
}

// Validate checks the publisher settings.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("broker is required when mqtt is enabled")
	}
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2")
	}
	return nil
}

// pahoClient is the subset of the Paho client the publisher uses. Tests
// substitute a fake through newMQTTClient.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher pushes run telemetry to an MQTT broker, one JSON message per run
// and per configuration, for ground-segment dashboards subscribed under the
// topic prefix.
type Publisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	retain bool
	log    logger.Logger
}

// NewPublisher connects to the configured broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{
		cli:    c,
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:    cfg.QoS,
		retain: cfg.Retain,
		log:    log,
	}, nil
}

// PublishRun pushes the run record under <prefix>/run/<id>.
func (p *Publisher) PublishRun(ev coremetrics.RunEvent) error {
	rec := struct {
		RunID      string  `json:"run_id"`
		Orbits     int     `json:"orbits"`
		DtSeconds  float64 `json:"dt_seconds"`
		Configs    int     `json:"configs"`
		Steps      int     `json:"steps"`
		DurationMS int64   `json:"duration_ms"`
		Timestamp  int64   `json:"timestamp"`
	}{
		RunID:      ev.RunID,
		Orbits:     ev.Orbits,
		DtSeconds:  ev.DtSeconds,
		Configs:    ev.Configs,
		Steps:      ev.Steps,
		DurationMS: ev.Duration.Milliseconds(),
		Timestamp:  ev.Time.UnixMilli(),
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return p.publish(p.prefix+"/run/"+ev.RunID, payload)
}

// PublishSummaries pushes one message per configuration under
// <prefix>/run/<id>/panels/<count>.
func (p *Publisher) PublishSummaries(evs []coremetrics.SummaryEvent) error {
	for _, ev := range evs {
		rec := struct {
			RunID      string  `json:"run_id"`
			PanelCount int     `json:"panel_count"`
			MinSOC     float64 `json:"min_soc"`
			AvgSOC     float64 `json:"avg_soc"`
			FinalSOC   float64 `json:"final_soc"`
			MassKg     float64 `json:"mass_kg"`
			Viable     bool    `json:"viable"`
			Timestamp  int64   `json:"timestamp"`
		}{
			RunID:      ev.RunID,
			PanelCount: ev.PanelCount,
			MinSOC:     ev.MinSOC,
			AvgSOC:     ev.AvgSOC,
			FinalSOC:   ev.FinalSOC,
			MassKg:     ev.MassKg,
			Viable:     ev.Viable,
			Timestamp:  ev.Time.UnixMilli(),
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		topic := p.prefix + "/run/" + ev.RunID + "/panels/" + strconv.Itoa(ev.PanelCount)
		if err := p.publish(topic, payload); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.cli.Publish(topic, p.qos, p.retain, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
