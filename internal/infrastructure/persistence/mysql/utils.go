package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突错误
// MySQL错误码:
// - 1062: Duplicate entry 'xxx' for key 'yyy'
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 兼容检查:错误信息包含"Duplicate entry"
	return strings.Contains(err.Error(), "Duplicate entry")
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 事务传递机制:TxManager把事务DB放入context,
// 各Repository统一通过此函数取用
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
