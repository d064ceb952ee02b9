// 包 utils：数据库与 Redis 连接工具，统一环境变量读取与默认值
package utils

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DBDriverFromEnv：DB_DRIVER 取 postgres（默认）或 sqlite
func DBDriverFromEnv() string {
	if os.Getenv("DB_DRIVER") == DriverSQLite {
		return DriverSQLite
	}
	return DriverPostgres
}

func BuildPostgresDSNFromEnv() string {
	host := os.Getenv("PG_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("PG_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("PG_USER")
	if user == "" {
		user = "postgres"
	}
	pass := os.Getenv("PG_PASSWORD")
	db := os.Getenv("PG_DB")
	if db == "" {
		db = "geopuzzle"
	}
	ssl := os.Getenv("PG_SSLMODE")
	if ssl == "" {
		ssl = "disable"
	}
	dsn := "postgres://" + user
	if pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + host + ":" + port + "/" + db + "?sslmode=" + ssl
	return dsn
}

// 文档注释：按环境变量打开数据库
// 背景：国家数据表可放在 PostgreSQL 或本地 SQLite 文件（SQLITE_PATH，默认 data/geo/puzzle.db）；返回驱动名供 store 适配占位符。
// 约束：SQLite 只允许单连接，避免写锁竞争；Postgres 连接池上限由 PG_MAX_OPEN_CONNS/PG_MAX_IDLE_CONNS 控制。
func OpenDBFromEnv() (*sql.DB, string, error) {
	driver := DBDriverFromEnv()
	if driver == DriverSQLite {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = filepath.Join("data", "geo", "puzzle.db")
		}
		_ = os.MkdirAll(filepath.Dir(path), 0o755)
		db, err := sql.Open(DriverSQLite, path)
		if err != nil {
			return nil, driver, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		return db, driver, nil
	}
	db, err := sql.Open(DriverPostgres, BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, driver, fmt.Errorf("open postgres: %w", err)
	}
	maxOpen := 10
	maxIdle := 5
	if v := os.Getenv("PG_MAX_OPEN_CONNS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			maxOpen = n
		}
	}
	if v := os.Getenv("PG_MAX_IDLE_CONNS"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			maxIdle = n
		}
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	return db, driver, nil
}
