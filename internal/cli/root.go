package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/coderi421/kyuu-orm/orm"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Mapping string // YAML 映射文件
	Dialect string
	Zipkin  string // zipkin collector url，为空不上报
	Jaeger  string // jaeger collector url，为空不上报

	logger *slog.Logger
	// tracerProvider 不为 nil 的时候优先使用，测试用
	tracerProvider trace.TracerProvider
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

var dialects = map[string]orm.Dialect{
	"sqlserver": orm.SQLServer,
	"mysql":     orm.MySQL,
	"sqlite3":   orm.SQLite3,
}

// NewRootCommand creates the root command for ormctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ormctl",
		Short: "ormctl renders and runs entity predicates as SQL",
		Long: `ormctl loads entities from a YAML mapping file, parses a predicate
written as a Go expression over the entity and renders it as parameterized SQL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, ok := dialects[strings.ToLower(opts.Dialect)]; !ok {
				return fmt.Errorf("invalid dialect %q", opts.Dialect)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			// 日志写到 stderr，避免破坏 json 输出
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Mapping, "mapping", "m", "mapping.yaml", "entity mapping file")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "sqlserver", "sql dialect (sqlserver|mysql|sqlite3)")
	cmd.PersistentFlags().StringVar(&opts.Zipkin, "zipkin", "", "zipkin collector url")
	cmd.PersistentFlags().StringVar(&opts.Jaeger, "jaeger", "", "jaeger collector url")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

func (o *RootOptions) dialect() orm.Dialect {
	return dialects[strings.ToLower(o.Dialect)]
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
