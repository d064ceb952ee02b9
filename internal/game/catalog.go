package game

import (
	"slices"
	"sync/atomic"

	"geo-puzzle/internal/geo"
	"geo-puzzle/internal/metrics"
)

type catalogSnapshot struct {
	countries []geo.Country
	byCode    map[string]int
}

// 文档注释：国家目录（只读快照 + 原子切换）
// 背景：数据集在启动时加载一次；重载（例如从数据库重新导入）时整体替换快照，读路径无锁。
// 约束：Set 会按原 Ordinal 排序并重新编号为 1..N，保证与抽样区间一一对应；未设置时为空目录。
type Catalog struct {
	v atomic.Pointer[catalogSnapshot]
}

func NewCatalog(countries []geo.Country) *Catalog {
	c := &Catalog{}
	c.Set(countries)
	return c
}

func (c *Catalog) Set(countries []geo.Country) {
	cs := slices.Clone(countries)
	slices.SortStableFunc(cs, func(a, b geo.Country) int { return a.Ordinal - b.Ordinal })
	idx := make(map[string]int, len(cs))
	for i := range cs {
		cs[i].Ordinal = i + 1
		idx[cs[i].Code] = i
	}
	c.v.Store(&catalogSnapshot{countries: cs, byCode: idx})
	metrics.CountriesLoaded.Set(float64(len(cs)))
}

// Countries 返回当前快照；调用方不得修改
func (c *Catalog) Countries() []geo.Country {
	s := c.v.Load()
	if s == nil {
		return nil
	}
	return s.countries
}

func (c *Catalog) Len() int { return len(c.Countries()) }

func (c *Catalog) Lookup(code string) (geo.Country, bool) {
	s := c.v.Load()
	if s == nil {
		return geo.Country{}, false
	}
	i, ok := s.byCode[code]
	if !ok {
		return geo.Country{}, false
	}
	return s.countries[i], true
}
