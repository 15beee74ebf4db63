package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-room-service/internal/domain"
)

// QuestionSetLoader fetches published question sets from a backing store
// (e.g. the document DB behind the room builder).
type QuestionSetLoader interface {
	LoadQuestionSet(ctx context.Context, id string) (domain.QuestionSet, error)
}

// CachedProvider caches question sets with a TTL to avoid repeated store
// hits; published sets are immutable so staleness only delays unpublishing.
type CachedProvider struct {
	loader QuestionSetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.QuestionSet
	expiresAt time.Time
}

func NewCachedProvider(loader QuestionSetLoader, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (p *CachedProvider) Load(ctx context.Context, id string) (domain.QuestionSet, error) {
	now := p.clock()

	p.mu.RLock()
	if entry, ok := p.cache[id]; ok && entry.expiresAt.After(now) {
		p.mu.RUnlock()
		return entry.set, nil
	}
	p.mu.RUnlock()

	result, err, _ := p.sf.Do(id, func() (interface{}, error) {
		now := p.clock()
		p.mu.RLock()
		if entry, ok := p.cache[id]; ok && entry.expiresAt.After(now) {
			p.mu.RUnlock()
			return entry.set, nil
		}
		p.mu.RUnlock()

		set, err := p.loader.LoadQuestionSet(ctx, id)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		p.mu.Lock()
		p.cache[id] = cachedSet{set: set, expiresAt: now.Add(p.ttlWithJitter())}
		p.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (p *CachedProvider) ttlWithJitter() time.Duration {
	if p.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(p.ttl) / 10
	return p.ttl + time.Duration(p.rnd.Int63n(jitterMax+1))
}

// StaticProvider serves question sets from a fixed map (tests and demos).
type StaticProvider struct {
	sets map[string]domain.QuestionSet
}

func NewStaticProvider(sets map[string]domain.QuestionSet) *StaticProvider {
	return &StaticProvider{sets: sets}
}

func (p *StaticProvider) Load(_ context.Context, id string) (domain.QuestionSet, error) {
	if set, ok := p.sets[id]; ok {
		return set, nil
	}
	return domain.QuestionSet{}, domain.ErrRoomNotFound
}

// LoadQuestionSet lets a StaticProvider double as the loader behind a cache.
func (p *StaticProvider) LoadQuestionSet(ctx context.Context, id string) (domain.QuestionSet, error) {
	return p.Load(ctx, id)
}
