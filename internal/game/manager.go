package game

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"

	"geo-puzzle/internal/geo"
	"geo-puzzle/internal/logger"
	"geo-puzzle/internal/metrics"

	"github.com/google/uuid"
)

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// 文档注释：会话管理器
// 背景：HTTP 请求并发到达，但同一会话的事件必须逐个施加；按会话 ID 加锁串行化，不同会话互不阻塞。
// 约束：随机源由 mu 保护，每局从中派生独立种子；返回给调用方的会话均为副本，可在锁外安全读取。
type Manager struct {
	mu      sync.Mutex
	locks   map[string]*sessionLock
	rng     *rand.Rand
	catalog *Catalog
	repo    Repo
	tuning  Tuning
	newID   func() string
}

type Option func(*Manager)

// WithRand 指定随机源（测试中用固定种子复现开局）
func WithRand(r *rand.Rand) Option { return func(m *Manager) { m.rng = r } }

func WithIDFunc(f func() string) Option { return func(m *Manager) { m.newID = f } }

func NewManager(cat *Catalog, repo Repo, t Tuning, opts ...Option) *Manager {
	m := &Manager{
		locks:   make(map[string]*sessionLock),
		catalog: cat,
		repo:    repo,
		tuning:  t.withDefaults(),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}
	if m.rng == nil {
		var seed [16]byte
		_, _ = crand.Read(seed[:])
		m.rng = rand.New(rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
	}
	return m
}

func (m *Manager) Tuning() Tuning { return m.tuning }

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// Start：开一局新游戏并保存
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	id := m.newID()
	// 全局锁内只抽取本局种子，构建会话在锁外进行
	m.mu.Lock()
	seed1, seed2 := m.rng.Uint64(), m.rng.Uint64()
	m.mu.Unlock()
	s, err := NewSession(id, m.catalog.Countries(), m.tuning, rand.New(rand.NewPCG(seed1, seed2)))
	if err != nil {
		return nil, err
	}
	if err := m.repo.Save(ctx, s); err != nil {
		metrics.RepoErrorsTotal.WithLabelValues("save").Inc()
		return nil, err
	}
	metrics.SessionsStartedTotal.Inc()
	metrics.SessionsActive.Inc()
	logger.L().Info("session_start", "id", id, "total", s.Total, "catalog", m.catalog.Len())
	return s.clone(), nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()
	s, err := m.repo.Load(ctx, id)
	if err != nil {
		return nil, m.loadErr(err)
	}
	return s.clone(), nil
}

// Drop：拖放结束，displayed 为前端当前显示的轮廓
func (m *Manager) Drop(ctx context.Context, id, code string, displayed []geo.Ring) (Outcome, *Session, error) {
	return m.apply(ctx, id, code, "drop", func(s *Session) (Outcome, error) { return s.DragEnd(code, displayed) })
}

// DropAt：拖放结束，仅上报新的锚点坐标
func (m *Manager) DropAt(ctx context.Context, id, code string, anchor geo.Point) (Outcome, *Session, error) {
	return m.apply(ctx, id, code, "drop", func(s *Session) (Outcome, error) { return s.DropAt(code, anchor) })
}

// Confirm：用户放弃该形状
func (m *Manager) Confirm(ctx context.Context, id, code string) (Outcome, *Session, error) {
	return m.apply(ctx, id, code, "confirm", func(s *Session) (Outcome, error) { return s.Confirm(code) })
}

func (m *Manager) apply(ctx context.Context, id, code, event string, fn func(*Session) (Outcome, error)) (Outcome, *Session, error) {
	unlock := m.lock(id)
	defer unlock()
	s, err := m.repo.Load(ctx, id)
	if err != nil {
		return "", nil, m.loadErr(err)
	}
	wasFinished := s.Finished()
	out, err := fn(s)
	if err != nil {
		return "", nil, err
	}
	if out != OutcomeIgnored {
		if err := m.repo.Save(ctx, s); err != nil {
			metrics.RepoErrorsTotal.WithLabelValues("save").Inc()
			return "", nil, err
		}
	}
	m.observe(s, code, event, out, wasFinished)
	return out, s.clone(), nil
}

func (m *Manager) observe(s *Session, code, event string, out Outcome, wasFinished bool) {
	l := logger.L()
	switch out {
	case OutcomeCorrect, OutcomeIncorrect:
		metrics.ShapesResolvedTotal.WithLabelValues(string(out)).Inc()
		l.Info("shape_resolved", "id", s.ID, "code", code, "outcome", out, "score", s.ScoreLine(), "remaining", len(s.Remaining))
	default:
		l.Debug("shape_event", "id", s.ID, "code", code, "event", event, "outcome", out)
	}
	if event == "drop" {
		metrics.DropsTotal.WithLabelValues(string(out)).Inc()
	}
	if !wasFinished && s.Finished() {
		metrics.SessionsFinishedTotal.Inc()
		metrics.SessionsActive.Dec()
		l.Info("session_finished", "id", s.ID, "score", s.ScoreLine())
	}
}

func (m *Manager) loadErr(err error) error {
	if !errors.Is(err, ErrSessionNotFound) {
		metrics.RepoErrorsTotal.WithLabelValues("load").Inc()
	}
	return err
}

// clone：会话副本；Original 与 Region 创建后不变，可共享
func (s *Session) clone() *Session {
	c := *s
	c.Order = slices.Clone(s.Order)
	c.Remaining = slices.Clone(s.Remaining)
	c.Shapes = make(map[string]*PlacedShape, len(s.Shapes))
	for k, ps := range s.Shapes {
		cp := *ps
		cp.Displayed = geo.CloneRings(ps.Displayed)
		c.Shapes[k] = &cp
	}
	return &c
}
