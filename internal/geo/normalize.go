package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseKind 大小写不敏感地识别几何类型
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "polygon":
		return KindPolygon, nil
	case "multipolygon":
		return KindMultiPolygon, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedGeometry, s)
}

// 文档注释：将 GeoJSON 原始坐标归一化为扁平环列表
// 背景：Polygon 直接给出环；MultiPolygon 每个部件只取第一环（外环），洞被有意丢弃，依赖判定容差弥补。
// 约束：分量非有限（NaN/Inf/非数字）的坐标对静默丢弃，不影响其余坐标；环内顺序保持不变。
func Normalize(kind Kind, raw []any) ([]Ring, error) {
	switch kind {
	case KindPolygon:
		rings := make([]Ring, 0, len(raw))
		for _, r := range raw {
			rings = append(rings, normalizeRing(r))
		}
		return rings, nil
	case KindMultiPolygon:
		rings := make([]Ring, 0, len(raw))
		for _, part := range raw {
			arr, ok := part.([]any)
			if !ok || len(arr) == 0 {
				rings = append(rings, Ring{})
				continue
			}
			rings = append(rings, normalizeRing(arr[0]))
		}
		return rings, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, kind)
}

func normalizeRing(v any) Ring {
	arr, ok := v.([]any)
	if !ok {
		return Ring{}
	}
	out := make(Ring, 0, len(arr))
	for _, c := range arr {
		pair, ok := c.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		lon, ok1 := toFinite(pair[0])
		lat, ok2 := toFinite(pair[1])
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, Point{Lat: lat, Lon: lon})
	}
	return out
}

// 数值容错：接受 JSON 数字与数字字符串，其余视为非法
func toFinite(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
