package mq

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/kmcheng/discusshub-backend/env"
	"github.com/nsqio/go-nsq"
)

var producer *nsq.Producer
var once sync.Once

func GetProducer() *nsq.Producer {
	once.Do(func() {
		cfg := nsq.NewConfig()
		p, err := nsq.NewProducer(env.NSQD_TCP_ADDR, cfg)
		if err != nil {
			os.Exit(1)
		}
		producer = p
	})
	return producer
}

// Publish marshals v onto topic through the shared producer.
func Publish(topic string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return GetProducer().Publish(topic, b)
}

func StopProducers() {
	if producer != nil {
		producer.Stop()
	}
}
