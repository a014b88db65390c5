package querylog

import (
	"context"
	"log/slog"

	"github.com/coderi421/kyuu-orm/orm"
)

type MiddlewareBuilder struct {
	logFunc func(query string, args []any)
}

// NewBuilder 默认使用 slog 输出 sql 和参数
func NewBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: func(query string, args []any) {
			slog.Debug("orm: 查询", slog.String("sql", query), slog.Any("args", args))
		},
	}
}

// LogFunc 这里如果需要配置的参数比较多，可以使用 函数选项模式
func (m *MiddlewareBuilder) LogFunc(fn func(query string, args []any)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			q, err := qc.Builder.Build()
			if err != nil {
				// 构造失败不记录，交给后面返回错误
				return next(ctx, qc)
			}
			if m.logFunc != nil {
				m.logFunc(q.SQL, q.Args)
			}
			return next(ctx, qc)
		}
	}
}
