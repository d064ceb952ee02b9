package api

import (
	"geo-puzzle/internal/game"
	"geo-puzzle/internal/geo"
)

// 文档注释：对外返回结构
// 背景：只暴露渲染所需字段；未解析的形状不返回名称与判定区域，避免前端直接泄露答案。
type shapeView struct {
	Code  string     `json:"code"`
	Name  string     `json:"name,omitempty"`
	Paths []geo.Ring `json:"paths"`
	State game.State `json:"state"`
	Style game.Style `json:"style"`
}

type sessionView struct {
	ID        string      `json:"id"`
	Status    game.Status `json:"status"`
	Score     int         `json:"score"`
	Total     int         `json:"total"`
	ScoreLine string      `json:"scoreLine"`
	Message   string      `json:"message"`
	Remaining int         `json:"remaining"`
	Shapes    []shapeView `json:"shapes"`
}

type eventView struct {
	Outcome game.Outcome `json:"outcome"`
	Session sessionView  `json:"session"`
}

type countryView struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
}

// dropRequest：rings 与 anchor 二选一，rings 优先
type dropRequest struct {
	Rings  []geo.Ring `json:"rings"`
	Anchor *geo.Point `json:"anchor"`
}

type errorBody struct {
	Error string `json:"error"`
}

func viewOf(s *game.Session) sessionView {
	v := sessionView{
		ID:        s.ID,
		Status:    s.Status,
		Score:     s.Score,
		Total:     s.Total,
		ScoreLine: s.ScoreLine(),
		Message:   s.Message,
		Remaining: len(s.Remaining),
		Shapes:    make([]shapeView, 0, len(s.Order)),
	}
	for _, code := range s.Order {
		ps := s.Shapes[code]
		if ps == nil {
			continue
		}
		sv := shapeView{Code: ps.Code, Paths: ps.Displayed, State: ps.State, Style: ps.Style()}
		if ps.Resolved() {
			sv.Name = ps.Name
		}
		v.Shapes = append(v.Shapes, sv)
	}
	return v
}
