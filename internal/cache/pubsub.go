package cache

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ---------- Redis ----------

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan []byte
	once   sync.Once
}

func (s *redisSubscription) Messages() <-chan []byte { return s.out }

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() { err = s.pubsub.Close() })
	return err
}

func (s *RedisStore) Publish(ctx context.Context, channel string, payload []byte) error {
	return s.client.Publish(ctx, channel, payload).Err()
}

// Subscribe attend la confirmation de Redis avant de rendre la main
func (s *RedisStore) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := s.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{pubsub: pubsub, out: make(chan []byte, SubscriptionBuffer)}
	go func() {
		defer close(sub.out)
		// Channel est fermé par pubsub.Close
		for msg := range pubsub.Channel() {
			select {
			case sub.out <- []byte(msg.Payload):
			default:
			}
		}
	}()
	return sub, nil
}

// ---------- Mémoire ----------

type memSubscription struct {
	store   *MemoryStore
	channel string
	out     chan []byte
	once    sync.Once
}

func (s *memSubscription) Messages() <-chan []byte { return s.out }

func (s *memSubscription) Close() error {
	s.once.Do(func() { s.store.unsubscribe(s) })
	return nil
}

func (s *MemoryStore) Publish(_ context.Context, channel string, payload []byte) error {
	s.psMu.Lock()
	defer s.psMu.Unlock()

	for sub := range s.subs[channel] {
		msg := make([]byte, len(payload))
		copy(msg, payload)
		select {
		case sub.out <- msg:
		default:
		}
	}
	return nil
}

func (s *MemoryStore) Subscribe(_ context.Context, channel string) (Subscription, error) {
	s.psMu.Lock()
	defer s.psMu.Unlock()

	sub := &memSubscription{store: s, channel: channel, out: make(chan []byte, SubscriptionBuffer)}
	if s.subs[channel] == nil {
		s.subs[channel] = make(map[*memSubscription]struct{})
	}
	s.subs[channel][sub] = struct{}{}
	return sub, nil
}

func (s *MemoryStore) unsubscribe(sub *memSubscription) {
	s.psMu.Lock()
	defer s.psMu.Unlock()

	set := s.subs[sub.channel]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.out)
	if len(set) == 0 {
		delete(s.subs, sub.channel)
	}
}
