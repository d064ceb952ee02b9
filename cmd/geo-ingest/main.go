package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"geo-puzzle/internal/geo"
	"geo-puzzle/internal/ingest"
	"geo-puzzle/internal/logger"
	"geo-puzzle/internal/migrate"
	"geo-puzzle/internal/store"
	"geo-puzzle/internal/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// 文档注释：将 GeoJSON 国家数据集导入数据库
// 背景：服务以 DATASET_SOURCE=db 启动时从 _geo_countries 读取；本工具负责建表与写入，数据库连接沿用服务的环境变量。
// 约束：默认按 code upsert；--replace 时在单个事务内整表替换。
func main() {
	_ = godotenv.Load(".env")
	logger.Setup()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file    string
		url     string
		replace bool
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:          "geo-ingest",
		Short:        "Import a countries GeoJSON FeatureCollection into the puzzle database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), file, url, replace, dryRun)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "data/geo/countries.geo.json", "GeoJSON FeatureCollection to import")
	cmd.Flags().StringVar(&url, "url", "", "fetch the FeatureCollection over HTTP instead of reading --file")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the whole table instead of upserting by code")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without touching the database")
	return cmd
}

func run(ctx context.Context, file, url string, replace, dryRun bool) error {
	l := logger.L()
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		cs  []geo.Country
		err error
	)
	if url != "" {
		file = url
		cs, err = ingest.Fetch(ctx, url)
	} else {
		cs, err = geo.LoadFile(file)
	}
	if err != nil {
		l.Error("dataset_load_error", "file", file, "err", err)
		return err
	}
	l.Info("dataset_parsed", "file", file, "countries", len(cs))
	if dryRun {
		for _, c := range cs {
			fmt.Printf("%4d %-8s %-6s rings=%d %s\n", c.Ordinal, c.Code, c.Shape.Kind, len(c.Shape.Rings), c.Name)
		}
		return nil
	}
	db, driver, err := utils.OpenDBFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		return err
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		return err
	}
	st := store.AttachDB(db, driver)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if replace {
		if err := st.ReplaceAll(ctx, cs); err != nil {
			l.Error("ingest_error", "err", err)
			return err
		}
	} else {
		for _, c := range cs {
			if err := st.UpsertCountry(ctx, c); err != nil {
				l.Error("ingest_error", "code", c.Code, "err", err)
				return err
			}
		}
	}
	n, _ := st.Count(ctx)
	l.Info("ingest_done", "driver", driver, "imported", len(cs), "table_rows", n)
	return nil
}
