package store

import (
	"context"
	"sync"
)

const changeBufferSize = 8

// Collection names used across the store and the coordinator mirrors.
const (
	CollectionTeams           = "teams"
	CollectionProvas          = "provas"
	CollectionRankingSettings = "ranking_settings"
	CollectionReviewRequests  = "review_requests"
	CollectionProfiles        = "profiles"
)

// ChangeFeed announces committed writes and lets mirror owners subscribe to
// per-collection change signals.
type ChangeFeed interface {
	Announce(ctx context.Context, collection string)
	Subscribe(collection string) (<-chan struct{}, func())
}

// ChangeBroker is an in-process ChangeFeed. Each subscriber gets a buffered
// signal channel; a full channel is skipped rather than blocked on, since a
// pending signal already forces a re-read of current contents.
type ChangeBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan struct{}]struct{}
}

// NewChangeBroker constructs an empty broker.
func NewChangeBroker() *ChangeBroker {
	return &ChangeBroker{
		subscribers: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe registers interest in a collection. The returned channel fires
// immediately so the subscriber reads current contents, then on every
// announced write. The cancel func must be called on every exit path.
func (b *ChangeBroker) Subscribe(collection string) (<-chan struct{}, func()) {
	channel := make(chan struct{}, changeBufferSize)
	channel <- struct{}{}

	b.mu.Lock()
	if b.subscribers[collection] == nil {
		b.subscribers[collection] = make(map[chan struct{}]struct{})
	}
	b.subscribers[collection][channel] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if subs, ok := b.subscribers[collection]; ok {
			delete(subs, channel)
			if len(subs) == 0 {
				delete(b.subscribers, collection)
			}
		}
		b.mu.Unlock()
	}

	return channel, cancel
}

// Announce signals every subscriber of the collection.
func (b *ChangeBroker) Announce(_ context.Context, collection string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers[collection] {
		select {
		case channel <- struct{}{}:
		default:
		}
	}
}
