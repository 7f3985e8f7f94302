package txn

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type ctxKey struct{}

// Manager 工作单元：fn 返回 nil 才提交，错误或 panic 全部回滚
type Manager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormManager struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewManager 以 READ COMMITTED 隔离级别开启事务
func NewManager(db *gorm.DB) Manager {
	return &gormManager{
		db:   db,
		opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
	}
}

func (m *gormManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// 嵌套调用加入外层事务
	if _, ok := ctx.Value(ctxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, ctxKey{}, tx))
	}, m.opts)
}

// DB 返回上下文中的事务句柄，不在事务中时返回 fallback
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(ctxKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// InTx 当前上下文是否处于事务中
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(ctxKey{}).(*gorm.DB)
	return ok
}
