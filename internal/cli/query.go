package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/coderi421/kyuu-orm/orm"
	"github.com/coderi421/kyuu-orm/orm/middlewares/opentelemetry"
	"github.com/coderi421/kyuu-orm/orm/middlewares/querylog"
	"github.com/coderi421/kyuu-orm/orm/model"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

const instrumentationName = "github.com/coderi421/kyuu-orm/internal/cli"

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RenderOptions
	Driver string
	DSN    string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RenderOptions: &RenderOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "query <predicate>",
		Short: "Select the rows of an entity matching a predicate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity name in the mapping file")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "expression variable as name=value, repeatable")
	cmd.Flags().StringVar(&opts.Driver, "driver", "sqlite3", "database driver (sqlite3|mysql)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("dsn")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, src string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m, err := loadMappers(opts.Mapping)
	if err != nil {
		return err
	}
	md, ok := m.Models.Lookup(model.Named(opts.Entity))
	if !ok {
		return fmt.Errorf("%w: %s", orm.ErrUnknownEntity, opts.Entity)
	}
	d := opts.dialect()
	where, err := render(m, opts.Entity, src, opts.Vars, d)
	if err != nil {
		return err
	}
	setting := d.Setting()
	query := &orm.Query{
		SQL: "SELECT * FROM " + setting.OpeningQuote + md.TableName + setting.ClosingQuote +
			" WHERE " + where.SQL + ";",
		Args:   where.Args,
		Params: where.Params,
	}

	tp, shutdown, err := newTracerProvider(opts.RootOptions)
	if err != nil {
		return err
	}
	defer func() {
		if sErr := shutdown(context.Background()); sErr != nil {
			opts.logger.Warn("shutdown tracer", slog.Any("err", sErr))
		}
	}()

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// 没有 go 结构体的实体用不了 Selector[T]，直接走同一条中间件链
	handler := chain(func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
		q, err := qc.Builder.Build()
		if err != nil {
			return &orm.QueryResult{Err: err}
		}
		rows, err := db.QueryContext(ctx, q.SQL, q.Args...)
		if err != nil {
			return &orm.QueryResult{Err: err}
		}
		defer func() { _ = rows.Close() }()
		records, err := scanRows(rows)
		return &orm.QueryResult{Result: records, Err: err}
	},
		(&opentelemetry.MiddlewareBuilder{Tracer: tp.Tracer(instrumentationName)}).Build(),
		querylog.NewBuilder().LogFunc(func(q string, args []any) {
			opts.logger.Debug("query", slog.String("sql", q), slog.Any("args", args))
		}).Build(),
	)
	res := handler(ctx, &orm.QueryContext{
		Type:    "SELECT",
		Builder: staticQuery{query: query},
		Model:   md,
	})
	if res.Err != nil {
		return res.Err
	}
	return writeRecords(w, opts.Format, res.Result.(*Records))
}

// staticQuery 已经渲染好的查询
type staticQuery struct {
	query *orm.Query
}

func (s staticQuery) Build() (*orm.Query, error) {
	return s.query, nil
}

// chain 第一个中间件在最外层
func chain(root orm.Handler, mdls ...orm.Middleware) orm.Handler {
	for i := len(mdls) - 1; i >= 0; i-- {
		root = mdls[i](root)
	}
	return root
}

// Records 保留列的顺序
type Records struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func scanRows(rows *sql.Rows) (*Records, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &Records{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}

func writeRecords(w io.Writer, format string, records *Records) error {
	if format == "json" {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	for _, row := range records.Rows {
		pairs := make([]string, len(row))
		for i, v := range row {
			pairs[i] = fmt.Sprintf("%s=%v", records.Columns[i], v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(pairs, " ")); err != nil {
			return err
		}
	}
	return nil
}
