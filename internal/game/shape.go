package game

import "geo-puzzle/internal/geo"

type State string

const (
	StateUnresolved State = "unresolved"
	StateCorrect    State = "correct"
	StateIncorrect  State = "incorrect"
)

// 文档注释：地图上一个可拖动的国家轮廓
// 背景：替代按闭包捕获国家数据的做法，显式记录并按 code 在会话内寻址，便于测试与序列化。
// 约束：Original 与 Region 在创建后不再变化；解析后 Draggable 恒为 false，Displayed 回到 Original。
type PlacedShape struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Ordinal   int            `json:"ordinal"`
	Kind      geo.Kind       `json:"kind"`
	Displayed []geo.Ring     `json:"displayed"`
	Original  []geo.Ring     `json:"original"`
	Region    geo.Acceptance `json:"region"`
	Draggable bool           `json:"draggable"`
	State     State          `json:"state"`
}

// Style：渲染样式，颜色区分待放置/正确/放弃三种状态
type Style struct {
	StrokeColor   string  `json:"strokeColor"`
	StrokeOpacity float64 `json:"strokeOpacity"`
	StrokeWeight  int     `json:"strokeWeight"`
	FillColor     string  `json:"fillColor"`
	FillOpacity   float64 `json:"fillOpacity"`
	ZIndex        int     `json:"zIndex"`
	Draggable     bool    `json:"draggable"`
}

func (p *PlacedShape) Style() Style {
	s := Style{StrokeColor: "#FF0000", StrokeOpacity: 1, StrokeWeight: 1, FillColor: "#FF0000", FillOpacity: 0.4, ZIndex: 2, Draggable: p.Draggable}
	switch p.State {
	case StateCorrect:
		s.StrokeColor, s.FillColor, s.ZIndex = "#00FF00", "#00FF00", 1
	case StateIncorrect:
		s.StrokeColor, s.FillColor, s.ZIndex = "#0000FF", "#0000FF", 1
	}
	return s
}

func (p *PlacedShape) Resolved() bool { return p.State != StateUnresolved }
