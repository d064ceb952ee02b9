// 包 store: 国家数据集的数据库访问层，支持 PostgreSQL 与 SQLite
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"geo-puzzle/internal/geo"
	"geo-puzzle/internal/logger"
)

// Store: 数据库访问入口，持有连接池与方言
type Store struct {
	db     *sql.DB
	driver string
}

// AttachDB：包装已打开的连接；driver 为 "postgres" 时将 ? 占位符改写为 $n
func AttachDB(db *sql.DB, driver string) *Store { return &Store{db: db, driver: driver} }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) rebind(q string) string {
	if s.driver != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const upsertCountry = `INSERT INTO _geo_countries(code, name, ordinal, kind, rings, updated_at)
    VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
    ON CONFLICT (code) DO UPDATE SET name=excluded.name, ordinal=excluded.ordinal, kind=excluded.kind, rings=excluded.rings, updated_at=CURRENT_TIMESTAMP`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, x execer, c geo.Country) error {
	rings, err := json.Marshal(c.Shape.Rings)
	if err != nil {
		return fmt.Errorf("encode rings %s: %w", c.Code, err)
	}
	if _, err := x.ExecContext(ctx, s.rebind(upsertCountry), c.Code, c.Name, c.Ordinal, string(c.Shape.Kind), string(rings)); err != nil {
		return fmt.Errorf("upsert country %s: %w", c.Code, err)
	}
	return nil
}

// UpsertCountry：按 code 插入或覆盖一个国家
func (s *Store) UpsertCountry(ctx context.Context, c geo.Country) error {
	return s.upsert(ctx, s.db, c)
}

// 文档注释：整表替换国家数据集
// 背景：导入工具使用；在单个事务内清表再写入，失败整体回滚，不会留下半套数据。
func (s *Store) ReplaceAll(ctx context.Context, cs []geo.Country) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, "DELETE FROM _geo_countries"); err != nil {
		return fmt.Errorf("clear countries: %w", err)
	}
	for _, c := range cs {
		if err := s.upsert(ctx, tx, c); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Info("countries_replaced", "count", len(cs))
	return nil
}

// ListCountries：按 ordinal 顺序读取全部国家
// 约束：几何列无法解析或类型不支持的行跳过并记录日志，不中断加载
func (s *Store) ListCountries(ctx context.Context) ([]geo.Country, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT code, name, ordinal, kind, rings FROM _geo_countries ORDER BY ordinal, code")
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()
	var out []geo.Country
	for rows.Next() {
		var c geo.Country
		var kind, rings string
		if err := rows.Scan(&c.Code, &c.Name, &c.Ordinal, &kind, &rings); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		k, err := geo.ParseKind(kind)
		if err != nil {
			logger.L().Debug("db_country_skip", "code", c.Code, "err", err)
			continue
		}
		c.Shape.Kind = k
		if err := json.Unmarshal([]byte(rings), &c.Shape.Rings); err != nil {
			logger.L().Debug("db_country_skip", "code", c.Code, "err", err)
			continue
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("db_countries_loaded", "count", len(out))
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM _geo_countries").Scan(&n)
	return n, err
}
