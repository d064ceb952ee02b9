package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"geo-puzzle/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// 文档注释：会话存储接口
// 背景：默认进程内存；多实例部署时可切到 Redis 快照。会话仅在本局内有效，到期即丢弃，不做跨局持久化。
type Repo interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

type memItem struct {
	s   *Session
	exp time.Time
}

// MemoryRepo：进程内会话表，按 TTL 过期
type MemoryRepo struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memItem
}

func NewMemoryRepo(ttl time.Duration) *MemoryRepo {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &MemoryRepo{ttl: ttl, items: make(map[string]memItem)}
}

func (m *MemoryRepo) Load(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(it.exp) {
		m.expire(id, it)
		return nil, ErrSessionNotFound
	}
	return it.s, nil
}

func (m *MemoryRepo) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, it := range m.items {
		if now.After(it.exp) {
			m.expire(k, it)
		}
	}
	m.items[s.ID] = memItem{s: s, exp: now.Add(m.ttl)}
	return nil
}

// expire：未完成就过期的会话不会再经过 Manager.observe，活跃数在这里回收
func (m *MemoryRepo) expire(id string, it memItem) {
	delete(m.items, id)
	if !it.s.Finished() {
		metrics.SessionsActive.Dec()
	}
}

func (m *MemoryRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// 文档注释：Redis 会话快照
// 背景：以 JSON 序列化整个会话写入 "puzzle:session:<id>"，每次保存刷新 TTL。
// 约束：键不存在（redis.Nil）映射为 ErrSessionNotFound；其余错误原样包装返回。
type RedisRepo struct {
	rc     *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisRepo(rc *redis.Client, ttl time.Duration) *RedisRepo {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &RedisRepo{rc: rc, ttl: ttl, prefix: "puzzle:session:"}
}

func (r *RedisRepo) Load(ctx context.Context, id string) (*Session, error) {
	b, err := r.rc.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisRepo) Save(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rc.Set(ctx, r.prefix+s.ID, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}
