package game

import (
	"errors"
	"fmt"
	"os"

	"geo-puzzle/internal/geo"

	"gopkg.in/yaml.v3"
)

// 文档注释：一局拼图的可调参数
// 背景：判定容差的常数来自经验调校，作为配置而非硬约定；可由 YAML 文件覆盖，零值字段回退默认。
type Tuning struct {
	RoundSize          int     `yaml:"round_size"`
	AreaUnit           float64 `yaml:"area_unit"`
	SmallAreaThreshold float64 `yaml:"small_area_threshold"`
	SmallMargin        float64 `yaml:"small_margin"`
	LargeMargin        float64 `yaml:"large_margin"`
	// 散布范围：纬度 [-LatSpan/2, LatSpan/2)，经度 [-LonSpan/2, LonSpan/2)
	ScatterLatSpan  float64 `yaml:"scatter_lat_span"`
	ScatterLonSpan  float64 `yaml:"scatter_lon_span"`
	ScatterAttempts int     `yaml:"scatter_attempts"`
}

func DefaultTuning() Tuning {
	tol := geo.DefaultTolerance()
	return Tuning{
		RoundSize:          15,
		AreaUnit:           tol.AreaUnit,
		SmallAreaThreshold: tol.SmallAreaThreshold,
		SmallMargin:        tol.SmallMargin,
		LargeMargin:        tol.LargeMargin,
		ScatterLatSpan:     100,
		ScatterLonSpan:     300,
		ScatterAttempts:    8,
	}
}

// LoadTuning：读取 YAML 调参文件；路径为空或文件不存在时返回默认值
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	var over Tuning
	if err := yaml.Unmarshal(b, &over); err != nil {
		return t, fmt.Errorf("parse tuning: %w", err)
	}
	return over.withDefaults(), nil
}

func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.RoundSize <= 0 {
		t.RoundSize = d.RoundSize
	}
	if t.AreaUnit <= 0 {
		t.AreaUnit = d.AreaUnit
	}
	if t.SmallAreaThreshold <= 0 {
		t.SmallAreaThreshold = d.SmallAreaThreshold
	}
	if t.SmallMargin <= 0 {
		t.SmallMargin = d.SmallMargin
	}
	if t.LargeMargin <= 0 {
		t.LargeMargin = d.LargeMargin
	}
	if t.ScatterLatSpan <= 0 {
		t.ScatterLatSpan = d.ScatterLatSpan
	}
	if t.ScatterLonSpan <= 0 {
		t.ScatterLonSpan = d.ScatterLonSpan
	}
	if t.ScatterAttempts <= 0 {
		t.ScatterAttempts = d.ScatterAttempts
	}
	return t
}

func (t Tuning) Tolerance() geo.Tolerance {
	return geo.Tolerance{
		AreaUnit:           t.AreaUnit,
		SmallAreaThreshold: t.SmallAreaThreshold,
		SmallMargin:        t.SmallMargin,
		LargeMargin:        t.LargeMargin,
	}
}
