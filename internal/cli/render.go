package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/coderi421/kyuu-orm/orm"
	"github.com/coderi421/kyuu-orm/orm/mapper"
	"github.com/coderi421/kyuu-orm/orm/model"
	"github.com/spf13/cobra"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Entity string
	Vars   []string
}

// RenderResult is the json output of render.
type RenderResult struct {
	SQL    string         `json:"sql"`
	Params map[string]any `json:"params"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <predicate>",
		Short: "Render a predicate as a parameterized WHERE clause",
		Long: `Render parses the predicate, written over the entity "e", and prints
the SQL condition with its named parameters, for example:

  ormctl render --entity User 'e.Age > min && strings.HasPrefix(e.FirstName, "To")' --var min=18`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMappers(opts.Mapping)
			if err != nil {
				return err
			}
			q, err := render(m, opts.Entity, args[0], opts.Vars, opts.dialect())
			if err != nil {
				return err
			}
			opts.logger.Debug("rendered", slog.String("entity", opts.Entity), slog.String("sql", q.SQL))
			return writeRender(cmd.OutOrStdout(), opts.Format, q)
		},
	}

	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "entity name in the mapping file")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "expression variable as name=value, repeatable")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func render(m *mapper.Mappers, entity, src string, vars []string, d orm.Dialect) (*orm.Query, error) {
	env, err := parseVars(vars)
	if err != nil {
		return nil, err
	}
	p, err := orm.ParseExpression(src, env)
	if err != nil {
		return nil, err
	}
	g, err := orm.TranslateEntity(m, model.Named(entity), p)
	if err != nil {
		return nil, err
	}
	return g.Build(d)
}

func writeRender(w io.Writer, format string, q *orm.Query) error {
	if format == "json" {
		data, err := json.MarshalIndent(RenderResult{SQL: q.SQL, Params: q.Params}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if _, err := fmt.Fprintln(w, q.SQL); err != nil {
		return err
	}
	names := make([]string, 0, len(q.Params))
	for name := range q.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s = %v\n", name, q.Params[name]); err != nil {
			return err
		}
	}
	return nil
}
