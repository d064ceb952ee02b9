// 包 geo：国家轮廓的几何基础（坐标环、包围盒、球面面积与平移），供拼图判定与渲染共用
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 文档注释：几何类型标记
// 背景：数据集仅包含 GeoJSON 的 Polygon/MultiPolygon 两种；其余类型视为不支持。
type Kind string

const (
	KindPolygon      Kind = "Polygon"
	KindMultiPolygon Kind = "MultiPolygon"
)

var ErrUnsupportedGeometry = errors.New("unsupported geometry kind")

// 点坐标（WGS84），序列化为 [lon, lat] 与 GeoJSON 保持一致
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var v []float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if len(v) < 2 {
		return fmt.Errorf("point needs 2 components, got %d", len(v))
	}
	p.Lon, p.Lat = v[0], v[1]
	return nil
}

// Ring：闭合边界的有序坐标序列
type Ring []Point

// Shape：归一化后的轮廓
// 约束：Polygon 时第一环为外环、其余为洞；MultiPolygon 时每个环均为独立外环（洞已丢弃）。
type Shape struct {
	Kind  Kind   `json:"kind"`
	Rings []Ring `json:"rings"`
}

// Country：数据集中的一个国家，加载后只读
// 约束：Ordinal 从 1 开始且在目录内连续，与抽样区间 [1, N] 一一对应。
type Country struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Shape   Shape  `json:"shape"`
}

// CloneRings：深拷贝环列表，避免显示几何与原始几何共享底层数组
func CloneRings(rs []Ring) []Ring {
	out := make([]Ring, len(rs))
	for i, r := range rs {
		out[i] = append(Ring(nil), r...)
	}
	return out
}

func pointCount(rs []Ring) int {
	n := 0
	for _, r := range rs {
		n += len(r)
	}
	return n
}
