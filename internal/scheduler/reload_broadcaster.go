package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/utils"
)

// ReloadChannel is the Redis pub/sub channel carrying reload requests.
const ReloadChannel = "portfolio:blog:reload"

// ReloadBroadcaster relays manual reloads between replicas over Redis
// pub/sub. Messages carry the id of the publishing instance, which ignores
// its own messages. Nothing is stored in Redis.
type ReloadBroadcaster struct {
	client     *redis.Client
	instanceID string
	trigger    chan<- struct{}
	logger     logger.Logger
	stopCh     chan struct{}
	stopOnce   sync.Once
	done       chan struct{} // set by Start
}

// NewReloadBroadcaster creates a broadcaster feeding trigger.
func NewReloadBroadcaster(
	client *redis.Client,
	instanceID string,
	trigger chan<- struct{},
	log logger.Logger,
) *ReloadBroadcaster {
	return &ReloadBroadcaster{
		client:     client,
		instanceID: instanceID,
		trigger:    trigger,
		logger:     log,
		stopCh:     make(chan struct{}),
	}
}

// Publish asks the other replicas to reload.
func (rb *ReloadBroadcaster) Publish(ctx context.Context) error {
	if err := rb.client.Publish(ctx, ReloadChannel, rb.instanceID).Err(); err != nil {
		return fmt.Errorf("failed to publish reload: %w", err)
	}
	return nil
}

// Start subscribes to ReloadChannel and forwards foreign messages to the
// trigger channel. It returns once the subscription is confirmed.
func (rb *ReloadBroadcaster) Start(ctx context.Context) error {
	pubsub := rb.client.Subscribe(ctx, ReloadChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		utils.Close(pubsub)
		return fmt.Errorf("failed to subscribe to %s: %w", ReloadChannel, err)
	}

	rb.logger.Info("listening for reload broadcasts",
		logger.String("channel", ReloadChannel),
		logger.String("instance", rb.instanceID))

	messages := pubsub.Channel()
	rb.done = make(chan struct{})
	go func() {
		defer close(rb.done)
		defer utils.MustClose(pubsub, rb.logger, "reload subscription")
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				rb.handle(msg.Payload)
			case <-rb.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (rb *ReloadBroadcaster) handle(sender string) {
	if sender == rb.instanceID {
		return
	}
	select {
	case rb.trigger <- struct{}{}:
		rb.logger.Info("reload requested by another instance",
			logger.String("sender", sender))
	default:
		rb.logger.Debug("reload already pending, broadcast coalesced",
			logger.String("sender", sender))
	}
}

// Stop unsubscribes and waits for the listener to exit.
func (rb *ReloadBroadcaster) Stop() {
	rb.stopOnce.Do(func() { close(rb.stopCh) })
	if rb.done != nil {
		<-rb.done
	}
}
