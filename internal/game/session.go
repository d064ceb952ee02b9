package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"geo-puzzle/internal/geo"
)

var (
	ErrUnknownShape    = errors.New("shape not in session")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoCountries     = errors.New("no countries to play")
	ErrBadGeometry     = errors.New("geometry does not match shape")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Outcome：一次手势事件的结果
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeMissed    Outcome = "missed"
	OutcomeIgnored   Outcome = "ignored"
)

const finishedSuffix = " // Game Finished! Hit refresh to start a new game!"

// 文档注释：一局拼图的会话状态
// 背景：Remaining 为本局尚未解析的国家序号集合，为空即结束；Score 只增不减。
// 约束：非并发安全；同一会话的事件必须串行施加（由 Manager 保证）。
type Session struct {
	ID        string                  `json:"id"`
	Shapes    map[string]*PlacedShape `json:"shapes"`
	Order     []string                `json:"order"`
	Remaining []int                   `json:"remaining"`
	Score     int                     `json:"score"`
	Total     int                     `json:"total"`
	Status    Status                  `json:"status"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// 文档注释：开局
// 背景：抽样数量先截断到国家总数再调用 Sample；每个入选国家计算判定区域并随机散布到地图上。
// 约束：countries 的 Ordinal 须为 1..N 连续（Catalog 保证）；散布不会自动判定为正确，最多重抽 ScatterAttempts 次以避开自身判定区域。
func NewSession(id string, countries []geo.Country, t Tuning, rng *rand.Rand) (*Session, error) {
	if len(countries) == 0 {
		return nil, ErrNoCountries
	}
	t = t.withDefaults()
	count := min(t.RoundSize, len(countries))
	picks, err := Sample(rng, count, len(countries))
	if err != nil {
		return nil, fmt.Errorf("select countries: %w", err)
	}
	now := time.Now().UTC()
	s := &Session{
		ID:        id,
		Shapes:    make(map[string]*PlacedShape, count),
		Order:     make([]string, 0, count),
		Remaining: make([]int, 0, count),
		Total:     count,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tol := t.Tolerance()
	for _, n := range picks {
		c := countries[n-1]
		ps := &PlacedShape{
			Code:      c.Code,
			Name:      c.Name,
			Ordinal:   c.Ordinal,
			Kind:      c.Shape.Kind,
			Original:  geo.CloneRings(c.Shape.Rings),
			Region:    geo.ComputeAcceptance(c.Shape, tol),
			Draggable: true,
			State:     StateUnresolved,
		}
		ps.Displayed = scatter(ps, t, rng)
		s.Shapes[c.Code] = ps
		s.Order = append(s.Order, c.Code)
		s.Remaining = append(s.Remaining, c.Ordinal)
	}
	return s, nil
}

func scatter(ps *PlacedShape, t Tuning, rng *rand.Rand) []geo.Ring {
	var out []geo.Ring
	for i := 0; i < t.ScatterAttempts; i++ {
		anchor := geo.Point{
			Lat: rng.Float64()*t.ScatterLatSpan - t.ScatterLatSpan/2,
			Lon: rng.Float64()*t.ScatterLonSpan - t.ScatterLonSpan/2,
		}
		out = geo.MoveTo(ps.Original, anchor)
		if !ps.Region.Contains(out) {
			break
		}
	}
	return out
}

func (s *Session) Shape(code string) (*PlacedShape, error) {
	ps, ok := s.Shapes[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, code)
	}
	return ps, nil
}

// 文档注释：拖放结束
// 背景：显示轮廓完全落入判定区域即计分解析；否则仅记录新位置，形状保持可拖动，可无限次重试。
// 约束：已解析的形状忽略事件（OutcomeIgnored），不报错；displayed 的环数与各环点数必须与原始轮廓一致且坐标有限，否则返回 ErrBadGeometry 且不改动形状。
func (s *Session) DragEnd(code string, displayed []geo.Ring) (Outcome, error) {
	ps, err := s.Shape(code)
	if err != nil {
		return "", err
	}
	if !ps.Draggable {
		return OutcomeIgnored, nil
	}
	if err := sameStructure(ps.Original, displayed); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBadGeometry, code, err)
	}
	ps.Displayed = geo.CloneRings(displayed)
	s.UpdatedAt = time.Now().UTC()
	if ps.Region.Contains(displayed) {
		s.resolve(ps, true)
		return OutcomeCorrect, nil
	}
	return OutcomeMissed, nil
}

// sameStructure：拖放后的轮廓只能是原轮廓的平移，点数不变
func sameStructure(orig, got []geo.Ring) error {
	if len(got) != len(orig) {
		return fmt.Errorf("want %d rings, got %d", len(orig), len(got))
	}
	for i := range orig {
		if len(got[i]) != len(orig[i]) {
			return fmt.Errorf("ring %d: want %d points, got %d", i, len(orig[i]), len(got[i]))
		}
		for _, p := range got[i] {
			if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) || math.Abs(p.Lat) > 90 {
				return fmt.Errorf("ring %d: invalid point %v,%v", i, p.Lon, p.Lat)
			}
		}
	}
	return nil
}

// DropAt：把形状锚点移到 anchor 后按 DragEnd 判定
func (s *Session) DropAt(code string, anchor geo.Point) (Outcome, error) {
	ps, err := s.Shape(code)
	if err != nil {
		return "", err
	}
	if !ps.Draggable {
		return OutcomeIgnored, nil
	}
	return s.DragEnd(code, geo.MoveTo(ps.Displayed, anchor))
}

// Confirm：用户主动放弃，揭示真实位置且不计分
func (s *Session) Confirm(code string) (Outcome, error) {
	ps, err := s.Shape(code)
	if err != nil {
		return "", err
	}
	if !ps.Draggable {
		return OutcomeIgnored, nil
	}
	s.UpdatedAt = time.Now().UTC()
	s.resolve(ps, false)
	return OutcomeIncorrect, nil
}

func (s *Session) resolve(ps *PlacedShape, credit bool) {
	ps.Displayed = geo.CloneRings(ps.Original)
	ps.Draggable = false
	if credit {
		ps.State = StateCorrect
		s.Score++
		s.Message = "Nice! That is " + ps.Name + " indeed."
	} else {
		ps.State = StateIncorrect
		s.Message = "Alas, that was " + ps.Name
	}
	if i := slices.Index(s.Remaining, ps.Ordinal); i >= 0 {
		s.Remaining = slices.Delete(s.Remaining, i, i+1)
	}
	if len(s.Remaining) == 0 {
		s.Message += finishedSuffix
		s.Status = StatusFinished
	}
}

// ScoreLine：形如 "7/15" 的计分显示
func (s *Session) ScoreLine() string { return fmt.Sprintf("%d/%d", s.Score, s.Total) }

func (s *Session) Finished() bool { return s.Status == StatusFinished }
