package orm

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/coderi421/kyuu-orm/orm/cache"
	"github.com/coderi421/kyuu-orm/orm/internal/valuer"
	"github.com/coderi421/kyuu-orm/orm/mapper"
	"github.com/coderi421/kyuu-orm/orm/model"
)

type DBOption func(db *DB)

// DB 是 sql.DB 的装饰器
type DB struct {
	core
	db *sql.DB
}

var _ Session = &DB{}

// Open 创建一个 DB 实例。
// 默认情况下，该 DB 使用 SQLServer 方言和全局的 mapper.Default()
func Open(driver string, dsn string, opts ...DBOption) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return OpenDB(db, opts...)
}

// OpenDB wraps an existing *sql.DB, which is handy for sqlmock in tests.
func OpenDB(db *sql.DB, opts ...DBOption) (*DB, error) {
	res := &DB{
		core: core{
			dialect:    SQLServer,
			mappers:    mapper.Default(),
			valCreator: valuer.NewUnsafeValue,
			logger:     slog.Default(),
		},
		db: db,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res, nil
}

// MustOpen creates a new DB with the provided options.
// If the creation fails, it panics.
func MustOpen(driver string, dsn string, opts ...DBOption) *DB {
	db, err := Open(driver, dsn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

func DBWithDialect(dialect Dialect) DBOption {
	return func(db *DB) {
		db.dialect = dialect
	}
}

// DBWithRegistry 使用独立的元数据缓存，映射注册表也会重新创建
func DBWithRegistry(r model.Registry) DBOption {
	return func(db *DB) {
		db.mappers = mapper.New(r)
	}
}

func DBWithMappers(m *mapper.Mappers) DBOption {
	return func(db *DB) {
		db.mappers = m
	}
}

func DBWithMiddlewares(mdls ...Middleware) DBOption {
	return func(db *DB) {
		db.mdls = mdls
	}
}

// DBUseReflectValuer 结果集映射使用反射实现，默认是 unsafe
func DBUseReflectValuer() DBOption {
	return func(db *DB) {
		db.valCreator = valuer.NewReflectValue
	}
}

// DBWithCache 开启 Selector.Cache 使用的结果缓存
func DBWithCache(c cache.Cache) DBOption {
	return func(db *DB) {
		db.cache = c
	}
}

func DBWithLogger(l *slog.Logger) DBOption {
	return func(db *DB) {
		db.logger = l
	}
}

// Mappers returns the registries used to translate predicates.
func (db *DB) Mappers() *mapper.Mappers {
	return db.mappers
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) getCore() core {
	return db.core
}

func (db *DB) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}
