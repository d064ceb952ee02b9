package migrate

import (
	"database/sql"
	"fmt"

	"geo-puzzle/internal/logger"
)

// 背景：首次运行自动创建国家数据表与索引，保障导入与加载
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；语句需同时兼容 PostgreSQL 与 SQLite
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _geo_countries (
            code TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            ordinal INTEGER NOT NULL,
            kind TEXT NOT NULL,
            rings TEXT NOT NULL,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_geo_countries_ordinal ON _geo_countries(ordinal)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("schema stmt %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
