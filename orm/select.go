package orm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/coderi421/kyuu-orm/orm/cache"
	"github.com/coderi421/kyuu-orm/orm/internal/errs"
)

// Selectable 暂时没什么作用只是用作标记，可检索指定字段的标记
// 目前只有 Column 实现了它
type Selectable interface {
	selectable()
}

// Selector represents a query selector that allows building SQL SELECT statements.
// It holds the necessary information to construct the query.
type Selector[T any] struct {
	// select delete update insert 都需要使用
	builder
	core
	sess Session

	table   string      // table is the name of the table to select from.
	where   []Predicate // where holds the WHERE predicates for the query.
	columns []Selectable
	orderBy []OrderBy
	offset  int
	limit   int

	cacheKey        string
	cacheExpiration time.Duration
}

// NewSelector creates a new instance of Selector.
func NewSelector[T any](sess Session) *Selector[T] {
	return &Selector[T]{
		core: sess.getCore(),
		sess: sess,
	}
}

// Select 检索指定 column
func (s *Selector[T]) Select(cols ...Selectable) *Selector[T] {
	s.columns = cols
	return s
}

// From sets the table name for the selector.
// It returns the updated selector.
func (s *Selector[T]) From(tbl string) *Selector[T] {
	s.table = tbl
	return s
}

// Where 用于构造 WHERE 查询条件。如果 ps 长度为 0，那么不会构造 WHERE 部分
func (s *Selector[T]) Where(ps ...Predicate) *Selector[T] {
	s.where = ps
	return s
}

// Offset 和 Limit 一样渲染成 OFFSET @Offset
func (s *Selector[T]) Offset(offset int) *Selector[T] {
	s.offset = offset
	return s
}

// Limit 渲染成 LIMIT @Limit，分页的数值作为参数传递。
// 只有 MySQL、SQLite 这类支持 LIMIT 的数据库可以执行，
// 默认的 SQLServer 方言不会改写成 OFFSET ... FETCH，需要分页时请使用对应的方言。
func (s *Selector[T]) Limit(limit int) *Selector[T] {
	s.limit = limit
	return s
}

func (s *Selector[T]) OrderBy(orderBys ...OrderBy) *Selector[T] {
	s.orderBy = orderBys
	return s
}

// Cache 查询结果按 key 缓存 expiration 时间，DB 没有配置缓存的时候不起作用
func (s *Selector[T]) Cache(key string, expiration time.Duration) *Selector[T] {
	s.cacheKey = key
	s.cacheExpiration = expiration
	return s
}

// Build generates a SQL query for selecting columns from a table.
// It returns the generated query as a *Query struct or an error if there was any.
func (s *Selector[T]) Build() (*Query, error) {
	if err := s.init(s.core, new(T)); err != nil {
		return nil, err
	}

	s.sb.WriteString("SELECT ")
	if err := s.buildColumns(); err != nil {
		return nil, err
	}
	s.sb.WriteString(" FROM ")
	s.buildTable(s.table)

	// 类似这种可有可无的部分，都要在前面加一个空格
	if len(s.where) > 0 {
		s.sb.WriteString(" WHERE ")
		if err := s.buildPredicates(s.where); err != nil {
			return nil, err
		}
	}

	// 排序
	if len(s.orderBy) > 0 {
		s.sb.WriteString(" ORDER BY ")
		if err := s.buildOrderBy(); err != nil {
			return nil, err
		}
	}

	// 分页的数值也作为参数
	if s.limit > 0 {
		s.sb.WriteString(" LIMIT ")
		s.parameter("Limit", s.limit)
	}
	if s.offset > 0 {
		s.sb.WriteString(" OFFSET ")
		s.parameter("Offset", s.offset)
	}

	s.sb.WriteByte(';')
	return s.query(), nil
}

func (s *Selector[T]) buildColumns() error {
	if len(s.columns) == 0 {
		s.sb.WriteByte('*')
		return nil
	}

	for i, c := range s.columns {
		if i > 0 {
			s.sb.WriteString(", ")
		}
		switch val := c.(type) {
		case Column:
			if err := s.buildColumn(val.name); err != nil {
				return err
			}
			if val.alias != "" {
				s.sb.WriteString(" AS ")
				s.quote(val.alias)
			}
		default:
			return errs.NewErrUnsupportedExpression(c)
		}
	}
	return nil
}

func (s *Selector[T]) buildOrderBy() error {
	for i, ob := range s.orderBy {
		if i > 0 {
			s.sb.WriteString(", ")
		}
		if err := s.buildColumn(ob.col); err != nil {
			return err
		}
		s.sb.WriteByte(' ')
		s.sb.WriteString(ob.order)
	}
	return nil
}

// Get 根据拼接成的 sql 文，到 db 中获取数据
func (s *Selector[T]) Get(ctx context.Context) (*T, error) {
	var cached T
	if s.loadCache(ctx, &cached) {
		return &cached, nil
	}
	qc, err := s.queryContext()
	if err != nil {
		return nil, err
	}
	res := get[T](ctx, s.sess, s.core, qc)
	if res.Err != nil {
		return nil, res.Err
	}
	t := res.Result.(*T)
	s.storeCache(ctx, t)
	return t, nil
}

func (s *Selector[T]) GetMulti(ctx context.Context) ([]*T, error) {
	var cached []*T
	if s.loadCache(ctx, &cached) {
		return cached, nil
	}
	qc, err := s.queryContext()
	if err != nil {
		return nil, err
	}
	res := getMulti[T](ctx, s.sess, s.core, qc)
	if res.Err != nil {
		return nil, res.Err
	}
	ts := res.Result.([]*T)
	s.storeCache(ctx, ts)
	return ts, nil
}

func (s *Selector[T]) queryContext() (*QueryContext, error) {
	m, err := s.core.mappers.Models.Get(new(T))
	if err != nil {
		return nil, err
	}
	return &QueryContext{
		Type:    "SELECT",
		Builder: s,
		Model:   m,
	}, nil
}

// loadCache 缓存出错的时候直接查询数据库
func (s *Selector[T]) loadCache(ctx context.Context, dst any) bool {
	if s.cache == nil || s.cacheKey == "" {
		return false
	}
	data, err := s.cache.Get(ctx, s.cacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			s.logger.WarnContext(ctx, "orm: 查询缓存失败", slog.String("key", s.cacheKey), slog.Any("err", err))
		}
		return false
	}
	if err = json.Unmarshal(data, dst); err != nil {
		s.logger.WarnContext(ctx, "orm: 查询缓存失败", slog.String("key", s.cacheKey), slog.Any("err", err))
		return false
	}
	return true
}

func (s *Selector[T]) storeCache(ctx context.Context, val any) {
	if s.cache == nil || s.cacheKey == "" {
		return
	}
	data, err := json.Marshal(val)
	if err == nil {
		err = s.cache.Set(ctx, s.cacheKey, data, s.cacheExpiration)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "orm: 查询缓存失败", slog.String("key", s.cacheKey), slog.Any("err", err))
	}
}

type OrderBy struct {
	col   string
	order string
}

func ASC(col string) OrderBy {
	return OrderBy{
		col:   col,
		order: "ASC",
	}
}

func Desc(col string) OrderBy {
	return OrderBy{
		col:   col,
		order: "DESC",
	}
}
