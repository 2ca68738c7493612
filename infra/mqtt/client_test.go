package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/nexthour/core/metrics"
	"github.com/kilianp07/nexthour/core/model"
	coremon "github.com/kilianp07/nexthour/core/monitoring"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o600))
	return
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, tlsCfg.Certificates)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p", LWTTopic: "nexthour/status", LWTPayload: "offline"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "nexthour/status", opts.WillTopic)
	assert.Equal(t, "offline", string(opts.WillPayload))
}

func TestPublisher_RecordPriceCurve(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", TopicPrefix: "home/prices/", QoS: 1, Retain: true})
	require.NoError(t, err)

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	series := model.Series{model.NewHourlyPoint(day, 0.5), model.NewHourlyPoint(day.Add(time.Hour), 0.3)}
	require.NoError(t, p.RecordPriceCurve(coremetrics.PriceCurveEvent{FetchID: "f1", Partition: "579", Date: day, Series: series}))

	require.Len(t, mc.published, 1)
	msg := mc.published[0]
	assert.Equal(t, "home/prices/579/prices/2024-01-15", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var got CurveMessage
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "f1", got.FetchID)
	assert.Equal(t, "2024-01-15", got.Date)
	assert.Len(t, got.Prices, 2)
}

func TestPublisher_RecordWindow(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)

	from := time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)
	require.NoError(t, p.RecordWindow(coremetrics.WindowResult{
		Partition: "579", Duration: 90 * time.Minute, From: from, To: from.Add(90 * time.Minute), Price: 0.35, Multiplier: 1.4,
	}))
	require.Len(t, mc.published, 1)
	assert.Equal(t, "nexthour/579/window", mc.published[0].topic)

	var got WindowMessage
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &got))
	assert.Equal(t, 90, got.DurationMinutes)
	assert.Equal(t, 0.35, got.Price)
	assert.True(t, got.From.Equal(from))
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMockClient(t, mc)
	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, p.RecordWindow(coremetrics.WindowResult{Partition: "x"}))
	assert.Len(t, mc.published, 2)
}

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(any, map[string]string) {}
func (r *recordMonitor) Flush(time.Duration)                 {}

func TestPublishErrorCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	withMockClient(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	p, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	err = p.RecordWindow(coremetrics.WindowResult{Partition: "579"})
	require.Error(t, err)
	require.NotNil(t, mon.err)
	assert.Equal(t, "579", mon.tags["partition"])
	assert.Equal(t, "mqtt", mon.tags["module"])
	p.Close()
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts      *paho.ClientOptions
	published []struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, struct {
		topic    string
		qos      byte
		retained bool
		payload  []byte
	}{topic, qos, retained, b})
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
