package geo

import "math"

// 球面计算统一采用 Web 墨卡托底图使用的地球半径（米）
const EarthRadius = 6378137.0

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }

// 球面距离（Haversine），返回千米
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return centralAngle(Point{Lat: lat1, Lon: lon1}, Point{Lat: lat2, Lon: lon2}) * EarthRadius / 1000
}

// 两点间的圆心角（弧度）
func centralAngle(a, b Point) float64 {
	dLat := rad(b.Lat - a.Lat)
	dLon := rad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Heading：从 from 指向 to 的初始方位角（弧度，正北为 0，顺时针）
func Heading(from, to Point) float64 {
	lat1, lat2 := rad(from.Lat), rad(to.Lat)
	dLon := rad(to.Lon - from.Lon)
	return math.Atan2(math.Sin(dLon)*math.Cos(lat2), math.Cos(lat1)*math.Sin(lat2)-math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon))
}

// Offset：从 from 沿 heading 走过圆心角 angle（弧度）后的位置
func Offset(from Point, angle, heading float64) Point {
	lat1, lon1 := rad(from.Lat), rad(from.Lon)
	sinLat2 := math.Cos(angle)*math.Sin(lat1) + math.Sin(angle)*math.Cos(lat1)*math.Cos(heading)
	dLon := math.Atan2(math.Sin(angle)*math.Cos(lat1)*math.Sin(heading), math.Cos(angle)-math.Sin(lat1)*sinLat2)
	return Point{Lat: deg(math.Asin(sinLat2)), Lon: wrapLon(deg(lon1 + dLon))}
}

func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// 文档注释：将轮廓整体平移到新锚点
// 背景：以包围盒中心为原锚点，逐点保留相对中心的方位角与球面距离后在新锚点重建；形状在球面上不变形，只是投影后大小随纬度变化。
// 约束：返回新的环列表，不修改入参。
func MoveTo(rings []Ring, anchor Point) []Ring {
	env := EnvelopeOf(rings)
	out := make([]Ring, len(rings))
	if env.Empty {
		return CloneRings(rings)
	}
	center := env.Center()
	for i, r := range rings {
		nr := make(Ring, len(r))
		for j, pt := range r {
			nr[j] = Offset(anchor, centralAngle(center, pt), Heading(center, pt))
		}
		out[i] = nr
	}
	return out
}
