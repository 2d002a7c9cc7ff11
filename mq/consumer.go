package mq

import (
	"encoding/json"
	"log"

	"github.com/kmcheng/discusshub-backend/env"
	"github.com/kmcheng/discusshub-backend/ws"
	"github.com/nsqio/go-nsq"
)

// StartBroadcastConsumer subscribes this server to the broadcast topic and
// feeds envelopes into the hub. Malformed bodies are dropped, not requeued;
// real-time delivery is best effort and the store stays the source of truth.
func StartBroadcastConsumer(logger *log.Logger, hub *ws.Hub) (*nsq.Consumer, error) {
	consumer, err := nsq.NewConsumer(BroadcastTopic, env.SERVER_ID, nsq.NewConfig())
	if err != nil {
		return nil, err
	}
	consumer.AddHandler(nsq.HandlerFunc(func(message *nsq.Message) error {
		var e Envelope
		if err := json.Unmarshal(message.Body, &e); err != nil {
			logger.Println(err)
			return nil
		}
		hub.Broadcast(e.DiscussionID, e.SenderID, e.GroupID, e.Event)
		return nil
	}))
	if err := consumer.ConnectToNSQLookupd(env.NSQLOOKUPD_ADDR); err != nil {
		consumer.Stop()
		return nil, err
	}
	return consumer, nil
}
