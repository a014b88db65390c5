package recovery

import (
	"context"
	"fmt"

	"github.com/coderi421/kyuu-orm/orm"
)

// MiddlewareBuilder 把 Handler 中的 panic 转成 QueryResult.Err
type MiddlewareBuilder struct {
	LogFunc func(ctx context.Context, qc *orm.QueryContext, err any)
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) (res *orm.QueryResult) {
			defer func() {
				if err := recover(); err != nil {
					res = &orm.QueryResult{Err: fmt.Errorf("orm: %s 发生 panic: %v", qc.Type, err)}
					// 万一 LogFunc 也panic，那我们也无能为力了
					if m.LogFunc != nil {
						m.LogFunc(ctx, qc, err)
					}
				}
			}()
			return next(ctx, qc)
		}
	}
}
