// Package mqtt publishes fetched price curves and answered windows to an
// MQTT broker so home automation systems can react to new prices.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/nexthour/core/metrics"
	"github.com/kilianp07/nexthour/core/model"
	coremon "github.com/kilianp07/nexthour/core/monitoring"
	"github.com/kilianp07/nexthour/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	Retain      bool        `json:"retain"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	LWTTopic    string      `json:"lwt_topic"`
	LWTPayload  string      `json:"lwt_payload"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "nexthour"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "nexthour"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher is a metrics sink forwarding price curves and optimal windows
// as retained JSON messages.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPublisher connects to the broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
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
		cli:        c,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.QoS, true)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// CurveMessage is the payload published for every fetched day curve.
type CurveMessage struct {
	FetchID   string             `json:"fetchId"`
	Partition string             `json:"partition"`
	Date      string             `json:"date"`
	Prices    []model.PricePoint `json:"prices"`
}

// WindowMessage is the payload published for every answered window request.
type WindowMessage struct {
	Partition                 string    `json:"partition"`
	DurationMinutes           int       `json:"durationMinutes"`
	From                      time.Time `json:"fromTs"`
	To                        time.Time `json:"toTs"`
	Price                     float64   `json:"price"`
	SuboptimalPriceMultiplier float64   `json:"suboptimalPriceMultiplier"`
}

// CurveTopic returns the topic of a partition's day curve.
func (p *Publisher) CurveTopic(partition string, date time.Time) string {
	return fmt.Sprintf("%s/%s/prices/%s", p.prefix, partition, date.Format(time.DateOnly))
}

// WindowTopic returns the topic of a partition's latest optimal window.
func (p *Publisher) WindowTopic(partition string) string {
	return fmt.Sprintf("%s/%s/window", p.prefix, partition)
}

// RecordPriceCurve publishes the curve of a fetched day.
func (p *Publisher) RecordPriceCurve(ev coremetrics.PriceCurveEvent) error {
	msg := CurveMessage{
		FetchID:   ev.FetchID,
		Partition: ev.Partition,
		Date:      ev.Date.Format(time.DateOnly),
		Prices:    ev.Series,
	}
	return p.publish(p.CurveTopic(ev.Partition, ev.Date), ev.Partition, msg)
}

// RecordWindow publishes the latest optimal window of a partition.
func (p *Publisher) RecordWindow(res coremetrics.WindowResult) error {
	msg := WindowMessage{
		Partition:                 res.Partition,
		DurationMinutes:           int(res.Duration / time.Minute),
		From:                      res.From.UTC(),
		To:                        res.To.UTC(),
		Price:                     res.Price,
		SuboptimalPriceMultiplier: res.Multiplier,
	}
	return p.publish(p.WindowTopic(res.Partition), res.Partition, msg)
}

func (p *Publisher) publish(topic, partition string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "partition": partition})
	return publishErr
}

// Close gracefully closes the MQTT connection.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
