package mysql

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/wyfcoding/spotexchange/internal/exchange/domain"
	"github.com/wyfcoding/spotexchange/pkg/db"
)

// EpisodeRunner 撮合回合的事务执行器。
// 每次回合开启一个 SERIALIZABLE 事务，fn 返回错误时整体回滚。
type EpisodeRunner struct {
	db *gorm.DB
}

// NewEpisodeRunner 创建回合执行器
func NewEpisodeRunner(gdb *gorm.DB) *EpisodeRunner {
	return &EpisodeRunner{db: gdb}
}

// RunEpisode 在 SERIALIZABLE 事务内执行 fn
func (r *EpisodeRunner) RunEpisode(ctx context.Context, fn func(ctx context.Context, store domain.EpisodeStore) error) error {
	return db.WithTxIsolation(ctx, r.db, sql.LevelSerializable, func(tx *gorm.DB) error {
		return fn(ctx, NewMatchStore(tx))
	})
}
