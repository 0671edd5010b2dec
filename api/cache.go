package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// generationTTL bounds how long an eviction counter outlives its last bump.
const generationTTL = 24 * time.Hour

var errStaleRead = errors.New("cache: key evicted during read")

// CachedClient wraps a Backend with Redis-backed caching for list calls.
// Mutating calls always go to the backend and evict the keys they affect.
//
// Every cached key has a generation counter that evictions bump. A list
// read only populates the cache if the generation it saw before calling
// the backend is still current, so a read that races a mutation never
// restores the list the mutation replaced.
type CachedClient struct {
	base      Backend
	redis     *redis.Client
	ttl       time.Duration
	namespace string
}

var _ Backend = (*CachedClient)(nil)

// NewCachedClient creates a caching wrapper. Keys are namespaced by the
// service's baseURL and apiKey, so neither two services nor two accounts
// sharing a Redis instance ever see each other's lists.
func NewCachedClient(base Backend, client *redis.Client, ttl time.Duration, baseURL, apiKey string) *CachedClient {
	if base == nil {
		panic("api.NewCachedClient: base backend is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedClient{
		base:      base,
		redis:     client,
		ttl:       ttl,
		namespace: cacheNamespace(baseURL, apiKey),
	}
}

func cacheNamespace(baseURL, apiKey string) string {
	hash := sha256.New()
	hash.Write([]byte(normalizeBaseURL(baseURL)))
	hash.Write([]byte{0})
	hash.Write([]byte(apiKey))
	return hex.EncodeToString(hash.Sum(nil)[:8])
}

func (c *CachedClient) GetTodolists(ctx context.Context) ([]Todolist, error) {
	key := c.todolistsKey()
	var todolists []Todolist
	if c.load(ctx, key, &todolists) {
		return todolists, nil
	}
	generation, fresh := c.generation(ctx, key)
	todolists, err := c.base.GetTodolists(ctx)
	if err != nil {
		return nil, err
	}
	if fresh {
		c.store(ctx, key, generation, todolists)
	}
	return todolists, nil
}

func (c *CachedClient) CreateTodolist(ctx context.Context, title string) (Response[ItemData[Todolist]], error) {
	response, err := c.base.CreateTodolist(ctx, title)
	if err == nil {
		c.evict(ctx, c.todolistsKey())
	}
	return response, err
}

func (c *CachedClient) DeleteTodolist(ctx context.Context, todolistID string) (Response[Empty], error) {
	response, err := c.base.DeleteTodolist(ctx, todolistID)
	if err == nil {
		c.evict(ctx, c.todolistsKey(), c.tasksKey(todolistID))
	}
	return response, err
}

func (c *CachedClient) UpdateTodolist(ctx context.Context, todolistID, title string) (Response[Empty], error) {
	response, err := c.base.UpdateTodolist(ctx, todolistID, title)
	if err == nil {
		c.evict(ctx, c.todolistsKey())
	}
	return response, err
}

func (c *CachedClient) GetTasks(ctx context.Context, todolistID string) (GetTasksResponse, error) {
	key := c.tasksKey(todolistID)
	var response GetTasksResponse
	if c.load(ctx, key, &response) {
		return response, nil
	}
	generation, fresh := c.generation(ctx, key)
	response, err := c.base.GetTasks(ctx, todolistID)
	if err != nil {
		return GetTasksResponse{}, err
	}
	if fresh && response.Error == nil {
		c.store(ctx, key, generation, response)
	}
	return response, nil
}

func (c *CachedClient) CreateTask(ctx context.Context, todolistID, title string) (Response[ItemData[Task]], error) {
	response, err := c.base.CreateTask(ctx, todolistID, title)
	if err == nil {
		c.evict(ctx, c.tasksKey(todolistID))
	}
	return response, err
}

func (c *CachedClient) UpdateTask(ctx context.Context, todolistID, taskID string, model UpdateTaskModel) (Response[ItemData[Task]], error) {
	response, err := c.base.UpdateTask(ctx, todolistID, taskID, model)
	if err == nil {
		c.evict(ctx, c.tasksKey(todolistID))
	}
	return response, err
}

func (c *CachedClient) DeleteTask(ctx context.Context, todolistID, taskID string) (Response[Empty], error) {
	response, err := c.base.DeleteTask(ctx, todolistID, taskID)
	if err == nil {
		c.evict(ctx, c.tasksKey(todolistID))
	}
	return response, err
}

func (c *CachedClient) load(ctx context.Context, key string, dest any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backend without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := sonic.ConfigStd.Unmarshal(data, dest); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

// generation reads key's eviction counter. ok is false when the counter
// cannot be read, in which case the result must not be cached.
func (c *CachedClient) generation(ctx context.Context, key string) (int64, bool) {
	if c.redis == nil || c.ttl == 0 {
		return 0, false
	}
	generation, err := c.redis.Get(ctx, generationKey(key)).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		return 0, false
	}
	return generation, true
}

// store caches value under key if no eviction has happened since generation
// was read.
func (c *CachedClient) store(ctx context.Context, key string, generation int64, value any) {
	data, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return
	}
	counter := generationKey(key)
	_ = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, counter).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != generation {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, counter)
}

func (c *CachedClient) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, key := range keys {
			pipe.Incr(ctx, generationKey(key))
			pipe.Expire(ctx, generationKey(key), generationTTL)
		}
		return nil
	})
}

func (c *CachedClient) todolistsKey() string {
	return "todosync:" + c.namespace + ":todolists"
}

func (c *CachedClient) tasksKey(todolistID string) string {
	return "todosync:" + c.namespace + ":tasks:" + todolistID
}

// generationKey lives outside the "todosync:" prefix so no todolist id can
// collide with it.
func generationKey(key string) string {
	return "gen:" + key
}
