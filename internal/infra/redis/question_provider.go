package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-room-service/internal/domain"
)

// QuestionSetLoader fetches question sets from the backing store on cache miss.
type QuestionSetLoader interface {
	LoadQuestionSet(ctx context.Context, id string) (domain.QuestionSet, error)
}

// CachedProvider caches whole question sets as JSON blobs in Redis:
// SET room:{id}:set {json} EX ttl. Published sets are immutable, so a TTL
// cache cannot serve a wrong answer key, only delay removal.
type CachedProvider struct {
	client *redis.Client
	loader QuestionSetLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCachedProvider(client *redis.Client, loader QuestionSetLoader, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *CachedProvider) Load(ctx context.Context, id string) (domain.QuestionSet, error) {
	key := p.key(id)

	if set, ok := p.fromCache(ctx, key); ok {
		return set, nil
	}

	result, err, _ := p.sf.Do(id, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if set, ok := p.fromCache(ctx, key); ok {
			return set, nil
		}

		set, err := p.loader.LoadQuestionSet(ctx, id)
		if err != nil {
			return domain.QuestionSet{}, err
		}

		if raw, err := json.Marshal(set); err == nil {
			// best-effort cache fill
			_ = p.client.Set(ctx, key, raw, p.ttlWithJitter()).Err()
		}
		return set, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

func (p *CachedProvider) fromCache(ctx context.Context, key string) (domain.QuestionSet, bool) {
	raw, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.QuestionSet{}, false
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.QuestionSet{}, false
	}
	return set, true
}

func (p *CachedProvider) key(id string) string {
	return "room:" + id + ":set"
}

func (p *CachedProvider) ttlWithJitter() time.Duration {
	if p.ttl <= 0 {
		return 0
	}
	jitterMax := int64(p.ttl) / 10
	return p.ttl + time.Duration(p.rnd.Int63n(jitterMax+1))
}
