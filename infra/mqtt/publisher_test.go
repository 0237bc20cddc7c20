package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/epsim/core/metrics"
)

// mockClient implements pahoClient for tests.
type mockClient struct {
	opts      *paho.ClientOptions
	published []struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}
	publishErrs []error
	connectErr  error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	return &dummyToken{err: m.connectErr}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.published = append(m.published, struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}{topic, qos, retained, payload.([]byte)})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestPublisher_PublishRun(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "epsim", QoS: 1, Retain: true})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}

	ev := coremetrics.RunEvent{
		RunID:     "run-1",
		Orbits:    100,
		DtSeconds: 100,
		Configs:   6,
		Steps:     5700,
		Duration:  time.Second,
		Time:      time.Now(),
	}
	if err := pub.PublishRun(ev); err != nil {
		t.Fatalf("publish run: %v", err)
	}

	if len(mc.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mc.published))
	}
	msg := mc.published[0]
	if msg.topic != "epsim/run/run-1" {
		t.Errorf("topic: got %q", msg.topic)
	}
	if msg.qos != 1 || !msg.retained {
		t.Errorf("qos/retain not applied: qos=%d retained=%v", msg.qos, msg.retained)
	}
	var decoded struct {
		RunID  string `json:"run_id"`
		Orbits int    `json:"orbits"`
		Steps  int    `json:"steps"`
	}
	if err := json.Unmarshal(msg.payload, &decoded); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if decoded.RunID != "run-1" || decoded.Orbits != 100 || decoded.Steps != 5700 {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestPublisher_PublishSummaries(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "sat/eps/"})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}

	evs := []coremetrics.SummaryEvent{
		{RunID: "run-1", PanelCount: 4, MinSOC: 0.42, Viable: true},
		{RunID: "run-1", PanelCount: 5, MinSOC: 0.48, Viable: true},
	}
	if err := pub.PublishSummaries(evs); err != nil {
		t.Fatalf("publish summaries: %v", err)
	}

	if len(mc.published) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mc.published))
	}
	// The trailing slash of the prefix is trimmed.
	if mc.published[0].topic != "sat/eps/run/run-1/panels/4" {
		t.Errorf("topic: got %q", mc.published[0].topic)
	}
	if mc.published[1].topic != "sat/eps/run/run-1/panels/5" {
		t.Errorf("topic: got %q", mc.published[1].topic)
	}
}

func TestPublisher_PublishErrorPropagates(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("broker gone")}}
	withMockClient(t, mc)

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if err := pub.PublishRun(coremetrics.RunEvent{RunID: "run-1"}); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestPublisher_ConnectErrorPropagates(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	withMockClient(t, mc)

	if _, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id"}); err == nil {
		t.Fatal("expected connect error")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled publisher without a broker must not validate")
	}
	cfg = Config{Enabled: true, Broker: "tcp://localhost:1883", QoS: 3}
	if err := cfg.Validate(); err == nil {
		t.Error("qos 3 must not validate")
	}
	cfg = Config{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled publisher should validate: %v", err)
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	if cfg.ClientID != "epsim" || cfg.TopicPrefix != "epsim" || !cfg.Retain {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	cfg = Config{ClientID: "custom", TopicPrefix: "x"}
	cfg.SetDefaults()
	if cfg.ClientID != "custom" || cfg.TopicPrefix != "x" {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}
