package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"crimson-crm-be/internal/pkg/logger"
	"crimson-crm-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanForwarder struct {
	got chan events.Event
	err error
}

func (f *chanForwarder) Publish(ctx context.Context, event events.Event) error {
	f.got <- event
	return f.err
}

func TestPublishedEventsReachForwarder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	fwd := &chanForwarder{got: make(chan events.Event, 2), err: errors.New("nats down")}
	consumer := NewConsumerService(pubSub, "crm_events", fwd, logger.NewNopLogger(), logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("crm_events", pubSub)
	require.NoError(t, publisher.Publish(ctx, events.New(events.BioGenerated, map[string]interface{}{"donor_id": "d-1"})))
	require.NoError(t, publisher.Publish(ctx, events.New(events.BioFeedbackSubmitted, map[string]interface{}{"donor_id": "d-1"})))

	for _, want := range []string{events.BioGenerated, events.BioFeedbackSubmitted} {
		select {
		case evt := <-fwd.got:
			assert.Equal(t, want, evt.EventType())
			assert.Equal(t, "d-1", evt.Payload()["donor_id"])
		case <-time.After(2 * time.Second):
			t.Fatalf("event %s was not forwarded", want)
		}
	}
}
