package orm

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/coderi421/kyuu-orm/orm/cache"
	"github.com/coderi421/kyuu-orm/orm/internal/valuer"
	"github.com/coderi421/kyuu-orm/orm/mapper"
)

type core struct {
	dialect    Dialect
	mappers    *mapper.Mappers // 元数据缓存和映射注册表
	valCreator valuer.Creator  // 与DB交互映射的实现
	mdls       []Middleware
	cache      cache.Cache // 查询结果缓存，可以为 nil
	logger     *slog.Logger
}

// Session 代表一个抽象的概念，即会话
// 目前只有 DB 实现了它
type Session interface {
	getCore() core
	queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	execContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// chain 把中间件套在 root 外面，第一个中间件在最外层
func (c core) chain(root Handler) Handler {
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	return root
}

func get[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	return c.chain(func(ctx context.Context, qc *QueryContext) *QueryResult {
		return getHandler[T](ctx, sess, c, qc)
	})(ctx, qc)
}

func getHandler[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	q, err := qc.Builder.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}
	rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: err}
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return &QueryResult{Err: err}
		}
		return &QueryResult{Err: ErrNoRows}
	}

	tp := new(T)
	val := c.valCreator(tp, qc.Model, c.mappers.ColumnMap(qc.Model))
	if err = val.SetColumns(rows); err != nil {
		return &QueryResult{Err: err}
	}
	return &QueryResult{Result: tp}
}

func getMulti[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	return c.chain(func(ctx context.Context, qc *QueryContext) *QueryResult {
		return getMultiHandler[T](ctx, sess, c, qc)
	})(ctx, qc)
}

func getMultiHandler[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	q, err := qc.Builder.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}
	rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: err}
	}
	defer func() { _ = rows.Close() }()

	columns := c.mappers.ColumnMap(qc.Model)
	res := make([]*T, 0, 8)
	for rows.Next() {
		tp := new(T)
		if err = c.valCreator(tp, qc.Model, columns).SetColumns(rows); err != nil {
			return &QueryResult{Err: err}
		}
		res = append(res, tp)
	}
	if err = rows.Err(); err != nil {
		return &QueryResult{Err: err}
	}
	return &QueryResult{Result: res}
}

func exec(ctx context.Context, sess Session, c core, qc *QueryContext) Result {
	res := c.chain(func(ctx context.Context, qc *QueryContext) *QueryResult {
		q, err := qc.Builder.Build()
		if err != nil {
			return &QueryResult{Err: err}
		}
		r, err := sess.execContext(ctx, q.SQL, q.Args...)
		return &QueryResult{Result: r, Err: err}
	})(ctx, qc)

	var sqlRes sql.Result
	if res.Result != nil {
		sqlRes, _ = res.Result.(sql.Result)
	}
	return Result{
		err: res.Err,
		res: sqlRes,
	}
}
