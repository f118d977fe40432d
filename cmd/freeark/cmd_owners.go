package main

import (
	"fmt"
	"os"
	"path/filepath"

	"freeark_web/internal/building"
	"freeark_web/internal/cache"
	"freeark_web/internal/repository"
	"freeark_web/internal/service"
	"freeark_web/pkg/database"
	"freeark_web/pkg/log"

	"github.com/spf13/cobra"
)

func newImportOwnersCmd(a *app) *cobra.Command {
	var sheet string
	cmd := &cobra.Command{
		Use:   "import-owners <file>",
		Short: "把业主导出文件直接导入数据库",
		Long: `读取 .json 或 .xlsx 业主导出文件写入 owners 表，已存在的屏幕 MAC 会被跳过。
直接连接配置中的 MySQL，Redis 可用时顺带清掉楼栋树缓存。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dbCfg := a.cfg.Database

			db, err := database.OpenMySQL(dbCfg.MySQL.DSN, database.MySQLOptions{
				MaxIdleConns:    dbCfg.MySQL.MaxIdleConns,
				MaxOpenConns:    dbCfg.MySQL.MaxOpenConns,
				ConnMaxLifetime: dbCfg.MySQL.ConnMaxLifetime,
			})
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			var treeCache service.TreeCache
			if rdb, err := database.OpenRedis(ctx, dbCfg.Redis.Addr, dbCfg.Redis.Password, dbCfg.Redis.DB); err != nil {
				log.Warnw("Redis unavailable, tree cache will not be invalidated", "error", err)
			} else {
				defer rdb.Close()
				treeCache = cache.NewTreeCache(rdb, dbCfg.Redis.TreeTTL)
			}

			builder, err := building.NewBuilder(a.cfg.Building.Policy)
			if err != nil {
				return err
			}
			svc := service.NewBuildingService(
				repository.NewOwnerRepository(db),
				builder,
				a.cfg.Building.Fields,
				pick(sheet, a.cfg.Building.Source.Sheet),
				treeCache,
			)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			summary, err := svc.ImportFile(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "共 %d 条，导入 %d 条，跳过 %d 条\n",
				summary.Total, summary.Imported, summary.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "只读取 Excel 的指定工作表")
	return cmd
}
