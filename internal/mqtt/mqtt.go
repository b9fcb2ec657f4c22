package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/config"
	"github.com/gobmr/gobmr/internal/model"
)

// Publisher mirrors each snapshot to an MQTT broker as retained JSON, one
// topic per entity, so subscribers see current state immediately.
type Publisher struct {
	client mqtt.Client
	prefix string
}

func NewPublisher(cfg config.MQTT) *Publisher {
	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Warn().Err(token.Error()).Str("broker", cfg.Broker).
			Msg("Could not connect to MQTT broker initially, will retry in background")
	} else {
		log.Info().Str("broker", cfg.Broker).Str("prefix", cfg.Prefix).
			Msg("Connected to MQTT broker")
	}

	return &Publisher{client: client, prefix: cfg.Prefix}
}

// Publish mirrors one snapshot. Errors are logged per topic; a flaky
// broker never affects polling.
func (p *Publisher) Publish(data *model.AllData) {
	for topic, payload := range payloads(p.prefix, data) {
		token := p.client.Publish(topic, 0, true, payload)
		token.Wait()
		if token.Error() != nil {
			log.Warn().Err(token.Error()).Str("topic", topic).Msg("Failed to publish MQTT message")
		}
	}
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// payloads builds the retained topic map for one snapshot. Optional
// sub-fetches that failed are skipped rather than published as null.
func payloads(prefix string, data *model.AllData) map[string][]byte {
	out := make(map[string][]byte)

	put := func(topic string, v interface{}) {
		b, err := json.Marshal(v)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Could not marshal MQTT payload")
			return
		}
		out[topic] = b
	}

	for i := range data.Circuits {
		c := &data.Circuits[i]
		put(fmt.Sprintf("%s/circuit/%d", prefix, c.ID), c)
	}
	if data.HDO != nil {
		put(prefix+"/hdo", *data.HDO)
	}
	if data.Ventilation != nil {
		put(prefix+"/ventilation", data.Ventilation)
	}
	if data.SummerMode != nil {
		put(prefix+"/summer-mode", *data.SummerMode)
	}
	if data.LowMode != nil {
		put(prefix+"/low-mode", data.LowMode)
	}
	return out
}
