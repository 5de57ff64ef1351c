package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/folio-dash/folio-backend/internal/projects/domain"
)

const (
	listKeyPrefix      = "projects:list:"   // cached list per owner: projects:list:{owner}
	genKeyPrefix       = "projects:gen:"    // write generation per owner: projects:gen:{owner}
	eventChannelPrefix = "projects:events:" // invalidation channel per owner: projects:events:{owner}
	defaultTTL         = 30 * time.Second
)

// setIfGeneration stores the list only while the owner's generation still
// matches the one read before the list was loaded. A missing generation is 0.
var setIfGeneration = redis.NewScript(`
local cur = redis.call("GET", KEYS[2])
if (cur or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// ListCache keeps each owner's project list in redis and broadcasts
// invalidations. Entries are only ever deleted on writes, never patched.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

// Get returns the cached list and whether it was present.
func (c *ListCache) Get(ctx context.Context, ownerID string) ([]domain.Project, bool, error) {
	data, err := c.client.Get(ctx, c.listKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached projects: %w", err)
	}

	var projects []domain.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached projects: %w", err)
	}
	return projects, true, nil
}

// Generation returns the owner's write generation. Read it before loading the
// list from storage and hand it to Set.
func (c *ListCache) Generation(ctx context.Context, ownerID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read projects generation: %w", err)
	}
	return gen, nil
}

// Set caches projects unless a write invalidated the owner since gen was read.
// It reports whether the list was stored.
func (c *ListCache) Set(ctx context.Context, ownerID string, gen int64, projects []domain.Project) (bool, error) {
	data, err := json.Marshal(projects)
	if err != nil {
		return false, fmt.Errorf("failed to encode projects: %w", err)
	}
	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{c.listKey(ownerID), c.genKey(ownerID)},
		strconv.FormatInt(gen, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache projects: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the owner's cached list, bumps its generation so in-flight
// loads cannot store a list read before this write, and publishes ev.
func (c *ListCache) Invalidate(ctx context.Context, ownerID string, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.listKey(ownerID))
	pipe.Incr(ctx, c.genKey(ownerID))
	pipe.Publish(ctx, c.channel(ownerID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate projects: %w", err)
	}
	return nil
}

// Subscribe listens for the owner's change events until the subscription is closed.
func (c *ListCache) Subscribe(ctx context.Context, ownerID string) (*Subscription, error) {
	ps := c.client.Subscribe(ctx, c.channel(ownerID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to project events: %w", err)
	}

	sub := &Subscription{
		ps:     ps,
		events: make(chan domain.ChangeEvent, 16),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

func (c *ListCache) listKey(ownerID string) string {
	return listKeyPrefix + ownerID
}

func (c *ListCache) genKey(ownerID string) string {
	return genKeyPrefix + ownerID
}

func (c *ListCache) channel(ownerID string) string {
	return eventChannelPrefix + ownerID
}

// Subscription delivers decoded change events; malformed payloads are dropped.
// Events is closed once the subscription is closed, even if nobody reads it.
type Subscription struct {
	ps     *redis.PubSub
	events chan domain.ChangeEvent
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) Events() <-chan domain.ChangeEvent {
	return s.events
}

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

func (s *Subscription) pump() {
	defer close(s.events)
	msgs := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev domain.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		}
	}
}
