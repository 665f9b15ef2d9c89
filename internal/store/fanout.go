package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Fanout extends a ChangeBroker across nodes. Every local announce is
// republished on Redis pub/sub and NATS; events arriving from other nodes are
// folded back into the local broker so mirrors on every node converge.
type Fanout struct {
	broker  *ChangeBroker
	redis   *redis.Client
	channel string
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
	nodeID  string
}

type changeEvent struct {
	Source     string    `json:"source"`
	Collection string    `json:"collection"`
	SentAt     time.Time `json:"sent_at"`
}

// NewFanout wires the broker to the given transports. Either client may be
// nil, in which case that transport is skipped.
func NewFanout(broker *ChangeBroker, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) *Fanout {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":changes"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".changes"
	}

	return &Fanout{
		broker:  broker,
		redis:   redisClient,
		channel: channel,
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "store_fanout").Logger(),
		nodeID:  uuid.NewString(),
	}
}

// Start launches the consumers for the configured transports.
func (f *Fanout) Start(ctx context.Context) {
	if f.redis != nil && f.channel != "" {
		go f.consumeRedis(ctx)
	}
	if f.nats != nil && f.subject != "" {
		go f.consumeNATS(ctx)
	}
}

// Subscribe delegates to the local broker.
func (f *Fanout) Subscribe(collection string) (<-chan struct{}, func()) {
	return f.broker.Subscribe(collection)
}

// Announce signals local subscribers and republishes the change to the other
// nodes. Publish failures are logged, never surfaced: the local write already
// committed and local mirrors must still advance.
func (f *Fanout) Announce(ctx context.Context, collection string) {
	f.broker.Announce(ctx, collection)

	event := changeEvent{
		Source:     f.nodeID,
		Collection: collection,
		SentAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		f.logger.Warn().Err(err).Msg("failed to encode change event")
		return
	}

	if f.redis != nil && f.channel != "" {
		if err := f.redis.Publish(ctx, f.channel, payload).Err(); err != nil {
			f.logger.Warn().Err(err).Str("collection", collection).Msg("failed to publish change to redis")
		}
	}

	if f.nats != nil && f.subject != "" {
		if err := f.nats.Publish(f.subject, payload); err != nil {
			f.logger.Warn().Err(err).Str("collection", collection).Msg("failed to publish change to nats")
		}
	}
}

func (f *Fanout) consumeRedis(ctx context.Context) {
	pubsub := f.redis.Subscribe(ctx, f.channel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			f.logger.Error().Err(err).Msg("change feed redis subscription closed")
			return
		}
		f.handleEvent(ctx, []byte(msg.Payload))
	}
}

func (f *Fanout) consumeNATS(ctx context.Context) {
	sub, err := f.nats.Subscribe(f.subject, func(msg *nats.Msg) {
		f.handleEvent(ctx, msg.Data)
	})
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to subscribe to nats change subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			f.logger.Warn().Err(err).Msg("failed to drain change feed nats subscription")
		}
	}()
}

func (f *Fanout) handleEvent(ctx context.Context, payload []byte) {
	var event changeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		f.logger.Warn().Err(err).Msg("invalid change event payload")
		return
	}

	if event.Source == f.nodeID || event.Collection == "" {
		return
	}

	f.broker.Announce(ctx, event.Collection)
}
