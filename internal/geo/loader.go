package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"geo-puzzle/internal/logger"
)

var ErrEmptyDataset = errors.New("dataset contains no usable countries")

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	ID         any            `json:"id"`
	Properties map[string]any `json:"properties"`
	Geometry   *struct {
		Type        string `json:"type"`
		Coordinates []any  `json:"coordinates"`
	} `json:"geometry"`
}

// 文档注释：从文件加载国家数据集（GeoJSON FeatureCollection）
// 背景：启动时一次性读取；失败由调用方视为致命错误，游戏无法开始。
func LoadFile(path string) ([]Country, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return LoadFeatureCollection(f)
}

// 文档注释：解析 FeatureCollection 为国家列表
// 背景：逐个要素读取 id、properties.name 与几何；几何缺失或类型不支持的要素跳过并记录日志。
// 约束：Ordinal 按保留下来的要素顺序从 1 连续编号；结果为空时返回 ErrEmptyDataset。
func LoadFeatureCollection(r io.Reader) ([]Country, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if t := strings.ToLower(fc.Type); t != "" && t != "featurecollection" {
		return nil, fmt.Errorf("decode dataset: unexpected type %q", fc.Type)
	}
	out := make([]Country, 0, len(fc.Features))
	seen := make(map[string]bool, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			logger.L().Debug("dataset_feature_skip", "idx", i, "reason", "no_geometry")
			continue
		}
		kind, err := ParseKind(f.Geometry.Type)
		if err != nil {
			logger.L().Debug("dataset_feature_skip", "idx", i, "reason", "kind", "type", f.Geometry.Type)
			continue
		}
		rings, err := Normalize(kind, f.Geometry.Coordinates)
		if err != nil {
			return nil, err
		}
		ordinal := len(out) + 1
		code := featureCode(f.ID, ordinal)
		// 重复 id 追加序号，保证会话内按 code 唯一寻址
		if seen[code] {
			code = fmt.Sprintf("%s-%d", code, ordinal)
		}
		seen[code] = true
		name := getStr(f.Properties, "name")
		if name == "" {
			name = code
		}
		out = append(out, Country{Code: code, Name: name, Ordinal: ordinal, Shape: Shape{Kind: kind, Rings: rings}})
	}
	if len(out) == 0 {
		return nil, ErrEmptyDataset
	}
	logger.L().Debug("dataset_parsed", "features", len(fc.Features), "countries", len(out))
	return out, nil
}

func featureCode(id any, ordinal int) string {
	switch v := id.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("F%03d", ordinal)
}

func getStr(m map[string]any, k string) string {
	if v, ok := m[k].(string); ok {
		return v
	}
	return ""
}
