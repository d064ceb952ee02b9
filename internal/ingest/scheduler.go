package ingest

import (
	"context"
	"time"

	"geo-puzzle/internal/logger"
)

// 文档注释：按固定周期执行数据集刷新任务
// 背景：数据库或上游文件更新后，服务内的目录按周期自动重载，无需人工调用重载端点。
// 约束：首次执行在一个周期之后；错误仅记录日志，任务继续调度；ctx 取消后协程退出。
func StartPeriodic(ctx context.Context, every time.Duration, task func(context.Context) error) {
	if every <= 0 {
		return
	}
	l := logger.L()
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			l.Info("refresh_start", "every", every.String())
			if err := task(ctx); err != nil {
				l.Error("refresh_error", "err", err)
				continue
			}
			l.Info("refresh_done")
		}
	}()
}
