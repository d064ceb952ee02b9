package geo

import "math"

// 文档注释：判定容差参数
// 背景：面积按 AreaUnit 缩放后小于 SmallAreaThreshold 的国家视为“小国”，外扩 SmallMargin，否则外扩 LargeMargin；
// 小国给更大余量，保证拖放可行又不至于处处命中。
type Tolerance struct {
	AreaUnit           float64
	SmallAreaThreshold float64
	SmallMargin        float64
	LargeMargin        float64
}

func DefaultTolerance() Tolerance {
	return Tolerance{AreaUnit: 1e9, SmallAreaThreshold: 20, SmallMargin: 10, LargeMargin: 5}
}

// MarginFor 返回给定面积（平方米）对应的外扩量
func (t Tolerance) MarginFor(area float64) float64 {
	unit := t.AreaUnit
	if unit <= 0 {
		unit = 1
	}
	if area/unit < t.SmallAreaThreshold {
		return t.SmallMargin
	}
	return t.LargeMargin
}

// Acceptance：一个国家的放置判定区域
type Acceptance struct {
	Bounds   Bounds  `json:"bounds"`
	Envelope Bounds  `json:"envelope"`
	Area     float64 `json:"area"`
	Margin   float64 `json:"margin"`
}

// ComputeAcceptance 由真实轮廓计算判定区域：面积 → 外扩量 → 外扩后的包围盒
func ComputeAcceptance(s Shape, t Tolerance) Acceptance {
	area := Area(s)
	env := EnvelopeOf(s.Rings)
	m := t.MarginFor(area)
	return Acceptance{Bounds: env.Expand(m), Envelope: env, Area: area, Margin: m}
}

// Contains：当前显示的轮廓是否完全落在判定区域内
func (a Acceptance) Contains(rings []Ring) bool { return a.Bounds.ContainsRings(rings) }

// 文档注释：轮廓的球面面积（平方米）
// 约束：Polygon 为外环减去洞；MultiPolygon 为各部件外环之和；少于 3 个点的环面积为 0。
func Area(s Shape) float64 {
	if len(s.Rings) == 0 {
		return 0
	}
	if s.Kind == KindPolygon {
		a := math.Abs(RingArea(s.Rings[0]))
		for _, h := range s.Rings[1:] {
			a -= math.Abs(RingArea(h))
		}
		return math.Max(0, a)
	}
	var a float64
	for _, r := range s.Rings {
		a += math.Abs(RingArea(r))
	}
	return a
}

// 文档注释：单个环的有向球面面积
// 背景：按极点三角形累加（每条边与极点构成的球面三角形的有向面积），与地图前端 computeArea 的口径一致。
func RingArea(r Ring) float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var total float64
	prev := r[n-1]
	prevTan := math.Tan((math.Pi/2 - rad(prev.Lat)) / 2)
	prevLon := rad(prev.Lon)
	for _, pt := range r {
		tanLat := math.Tan((math.Pi/2 - rad(pt.Lat)) / 2)
		lon := rad(pt.Lon)
		total += polarTriangleArea(tanLat, lon, prevTan, prevLon)
		prevTan, prevLon = tanLat, lon
	}
	return total * EarthRadius * EarthRadius
}

func polarTriangleArea(tan1, lon1, tan2, lon2 float64) float64 {
	dLon := lon1 - lon2
	t := tan1 * tan2
	return 2 * math.Atan2(t*math.Sin(dLon), 1+t*math.Cos(dLon))
}
