// 程序入口：读取配置、加载国家数据集并启动拼图服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"geo-puzzle/internal/api"
	"geo-puzzle/internal/game"
	"geo-puzzle/internal/geo"
	"geo-puzzle/internal/ingest"
	"geo-puzzle/internal/locate"
	"geo-puzzle/internal/logger"
	"geo-puzzle/internal/metrics"
	"geo-puzzle/internal/middleware"
	"geo-puzzle/internal/migrate"
	"geo-puzzle/internal/store"
	"geo-puzzle/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	ui := os.Getenv("UI_DIST")
	if ui == "" {
		ui = filepath.Join("ui", "dist")
	}
	l.Debug("config_paths", "api_base", apiBase, "ui", ui)

	// 调参：文件优先，ROUND_SIZE 可单独覆盖每局数量
	tuning, err := game.LoadTuning(os.Getenv("TUNING_PATH"))
	if err != nil {
		l.Error("tuning_error", "err", err)
		os.Exit(1)
	}
	if s := os.Getenv("ROUND_SIZE"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			tuning.RoundSize = n
		}
	}

	// 数据集加载失败为致命错误：没有国家就无法开局
	countries, err := loadDataset()
	if err != nil {
		l.Error("dataset_load_error", "err", err)
		os.Exit(1)
	}
	catalog := game.NewCatalog(countries)
	l.Info("dataset_ready", "countries", catalog.Len(), "round_size", tuning.RoundSize)

	// 可选：按 DATASET_RELOAD_INTERVAL（如 24h）周期重载目录
	if s := os.Getenv("DATASET_RELOAD_INTERVAL"); s != "" {
		if every, e := time.ParseDuration(s); e == nil {
			ingest.StartPeriodic(context.Background(), every, func(context.Context) error {
				cs, err := loadDataset()
				if err != nil {
					return err
				}
				catalog.Set(cs)
				return nil
			})
		} else {
			l.Error("reload_interval_invalid", "value", s, "err", e)
		}
	}

	ttl := 6 * time.Hour
	if s := os.Getenv("SESSION_TTL_S"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	var repo game.Repo = game.NewMemoryRepo(ttl)
	if os.Getenv("SESSION_STORE") == "redis" {
		rc, err := utils.OpenRedisFromEnv()
		if err == nil {
			err = utils.PingRedis(rc, 2*time.Second)
		}
		if err != nil {
			l.Error("redis_ping_error", "err", err, "fallback", "memory")
			if rc != nil {
				_ = rc.Close()
			}
		} else {
			repo = game.NewRedisRepo(rc, ttl)
			l.Info("session_store", "kind", "redis")
			defer rc.Close()
		}
	}
	mgr := game.NewManager(catalog, repo, tuning)

	var loc locate.Locator
	if p := os.Getenv("GEOIP_DB_PATH"); p != "" {
		if g, err := locate.OpenGeoIP(p); err == nil {
			loc = g
			defer g.Close()
			l.Info("geoip_ready", "path", p)
		} else {
			l.Error("geoip_open_error", "err", err)
		}
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(api.Deps{Manager: mgr, Catalog: catalog, Locator: loc})
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	// 运维端点仅对白名单来源开放
	guard := middleware.AllowlistFromEnv()
	mux.Handle(apiBase+"/metrics", guard.Wrap(metrics.Handler()))
	mux.Handle(apiBase+"/admin/reload", guard.Wrap(api.ReloadHandler(catalog, loadDataset)))
	mux.Handle("/", http.FileServer(http.Dir(ui)))

	// NOTE: 向前端暴露 API 基础路径，避免硬编码
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "'\n"))
		_, _ = w.Write([]byte("window.__ROUND_SIZE__=" + strconv.Itoa(mgr.Tuning().RoundSize) + "\n"))
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if err := utils.EnsureDevCert(certPath, keyPath, "geo-puzzle.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		if err := s.ListenAndServeTLS(certPath, keyPath); err != nil {
			l.Error("server_error", "err", err)
			os.Exit(1)
		}
		return
	}
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}

// 文档注释：按 DATASET_SOURCE 选择数据来源
// 背景：file（默认）读取 COUNTRIES_PATH；db 从国家数据表读取（由 geo-ingest 导入）；url 拉取 COUNTRIES_URL。
func loadDataset() ([]geo.Country, error) {
	switch os.Getenv("DATASET_SOURCE") {
	case "url":
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return ingest.Fetch(ctx, os.Getenv("COUNTRIES_URL"))
	case "db":
		db, driver, err := utils.OpenDBFromEnv()
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := migrate.EnsureSchema(db); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		cs, err := store.AttachDB(db, driver).ListCountries(ctx)
		if err != nil {
			return nil, err
		}
		if len(cs) == 0 {
			return nil, geo.ErrEmptyDataset
		}
		return cs, nil
	}
	path := os.Getenv("COUNTRIES_PATH")
	if path == "" {
		path = filepath.Join("data", "geo", "countries.geo.json")
	}
	logger.L().Debug("dataset_file", "path", path)
	return geo.LoadFile(path)
}
