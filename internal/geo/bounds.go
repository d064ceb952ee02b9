package geo

import (
	"math"
	"slices"
)

// Bounds：经纬度包围盒
// 约束：Empty 为 true 时表示未包含任何点，此时 Contains 恒为 false；
// MinLon > MaxLon 表示包围盒跨越 180° 经线（从 MinLon 向东经过 180° 到 MaxLon）。
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
	Empty  bool    `json:"empty,omitempty"`
}

// 文档注释：计算所有环的最小包围盒
// 背景：经度取覆盖全部点的最短弧，即去掉相邻经度之间最大的空隙；斐济、俄罗斯这类跨越 180° 的轮廓得到 MinLon > MaxLon 的包围盒，而不是覆盖整圈经度。
func EnvelopeOf(rings []Ring) Bounds {
	n := pointCount(rings)
	if n == 0 {
		return Bounds{MinLon: 180, MinLat: 90, MaxLon: -180, MaxLat: -90, Empty: true}
	}
	b := Bounds{MinLat: 90, MaxLat: -90}
	lons := make([]float64, 0, n)
	for _, r := range rings {
		for _, pt := range r {
			b.MinLat = math.Min(b.MinLat, pt.Lat)
			b.MaxLat = math.Max(b.MaxLat, pt.Lat)
			lons = append(lons, wrapLon(pt.Lon))
		}
	}
	slices.Sort(lons)
	// 默认空隙为首尾之间绕过 180° 的那段，对应普通（不跨线）的包围盒
	gap, at := lons[0]+360-lons[len(lons)-1], len(lons)-1
	for i := 0; i+1 < len(lons); i++ {
		if d := lons[i+1] - lons[i]; d > gap {
			gap, at = d, i
		}
	}
	if at == len(lons)-1 {
		b.MinLon, b.MaxLon = lons[0], lons[len(lons)-1]
	} else {
		b.MinLon, b.MaxLon = lons[at+1], lons[at]
	}
	return b
}

// Crosses 表示包围盒跨越 180° 经线
func (b Bounds) Crosses() bool { return !b.Empty && b.MinLon > b.MaxLon }

// 文档注释：四边各外扩 margin 度
// 约束：纬度截断到 ±90；经度按圆周回绕，外扩后覆盖满 360° 时退化为 [-180, 180]。
func (b Bounds) Expand(margin float64) Bounds {
	if b.Empty {
		return b
	}
	out := Bounds{
		MinLat: math.Max(-90, b.MinLat-margin),
		MaxLat: math.Min(90, b.MaxLat+margin),
	}
	if b.Width()+2*margin >= 360 {
		out.MinLon, out.MaxLon = -180, 180
		return out
	}
	out.MinLon = wrapLon(b.MinLon - margin)
	out.MaxLon = wrapLon(b.MaxLon + margin)
	if out.MaxLon == -180 {
		out.MaxLon = 180
	}
	return out
}

func (b Bounds) Contains(pt Point) bool {
	if b.Empty || pt.Lat < b.MinLat || pt.Lat > b.MaxLat {
		return false
	}
	lon := wrapLon(pt.Lon)
	if b.Crosses() {
		return lon >= b.MinLon || lon <= b.MaxLon
	}
	// -180 与 180 是同一条经线
	return (lon >= b.MinLon && lon <= b.MaxLon) || (lon == -180 && b.MaxLon == 180)
}

// ContainsRings：所有环的所有点都落在包围盒内才算命中；没有任何点时不命中
func (b Bounds) ContainsRings(rings []Ring) bool {
	if pointCount(rings) == 0 {
		return false
	}
	for _, r := range rings {
		for _, pt := range r {
			if !b.Contains(pt) {
				return false
			}
		}
	}
	return true
}

func (b Bounds) Center() Point {
	return Point{Lat: (b.MinLat + b.MaxLat) / 2, Lon: wrapLon(b.MinLon + b.Width()/2)}
}

// Width：经度跨度（度），跨线时按向东绕过 180° 计算
func (b Bounds) Width() float64 {
	if b.Empty {
		return 0
	}
	if b.MinLon > b.MaxLon {
		return b.MaxLon + 360 - b.MinLon
	}
	return b.MaxLon - b.MinLon
}

func (b Bounds) Height() float64 { return b.MaxLat - b.MinLat }
