package api

import (
	"net/http"

	"geo-puzzle/internal/game"
	"geo-puzzle/internal/geo"
	"geo-puzzle/internal/logger"
)

// 文档注释：数据集热重载
// 背景：geo-ingest 写库后无需重启服务；重新加载并整体替换目录快照，进行中的会话持有各自的形状副本，不受影响。
// 约束：加载失败或结果为空时保留旧目录并返回 502。
func ReloadHandler(cat *game.Catalog, load func() ([]geo.Country, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
			return
		}
		cs, err := load()
		if err == nil && len(cs) == 0 {
			err = geo.ErrEmptyDataset
		}
		if err != nil {
			logger.L().Error("dataset_reload_error", "err", err)
			writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
			return
		}
		before := cat.Len()
		cat.Set(cs)
		logger.L().Info("dataset_reloaded", "before", before, "after", cat.Len())
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "countries": cat.Len()})
	})
}
