// 包 ingest：国家数据集的上游拉取与定期刷新，作为离线数据通道
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"geo-puzzle/internal/geo"
	"geo-puzzle/internal/logger"
)

var client = &http.Client{Timeout: 60 * time.Second}

// Fetch：拉取远端 GeoJSON FeatureCollection 并解析为国家列表
// 异常：网络错误、非 200 状态与解析失败直接返回，不做重试（交由调度层处理）
func Fetch(ctx context.Context, url string) ([]geo.Country, error) {
	logger.L().Info("dataset_fetch_start", "src", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/geo+json, application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	cs, err := geo.LoadFeatureCollection(resp.Body)
	if err != nil {
		return nil, err
	}
	logger.L().Info("dataset_fetch_done", "src", url, "countries", len(cs))
	return cs, nil
}
