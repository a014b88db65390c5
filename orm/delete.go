package orm

import (
	"context"
)

type Deleter[T any] struct {
	builder
	core
	sess Session

	table string
	where []Predicate
	val   *T
}

// NewDeleter creates a new instance of Deleter.
func NewDeleter[T any](sess Session) *Deleter[T] {
	return &Deleter[T]{
		core: sess.getCore(),
		sess: sess,
	}
}

// From sets the table for the Deleter and returns a pointer to the Deleter.
// The table parameter specifies the name of the table to delete from.
func (d *Deleter[T]) From(table string) *Deleter[T] {
	d.table = table
	return d
}

// Where accepts predicates and adds them to the Deleter's where clause.
func (d *Deleter[T]) Where(predicates ...Predicate) *Deleter[T] {
	d.where = predicates
	return d
}

// Delete 按照实体的主键删除，Where 优先
func (d *Deleter[T]) Delete(val *T) *Deleter[T] {
	d.val = val
	return d
}

// Build generates a DELETE query based on the provided parameters.
// It returns the generated query string and any associated arguments,
// or an error if there was a problem building the query.
func (d *Deleter[T]) Build() (*Query, error) {
	if err := d.init(d.core, new(T)); err != nil {
		return nil, err
	}

	d.sb.WriteString("DELETE FROM ")
	d.buildTable(d.table)

	switch {
	case len(d.where) > 0:
		d.sb.WriteString(" WHERE ")
		if err := d.buildPredicates(d.where); err != nil {
			return nil, err
		}
	case d.val != nil:
		d.sb.WriteString(" WHERE ")
		if err := d.buildPrimaryKey(d.val); err != nil {
			return nil, err
		}
	}

	d.sb.WriteByte(';')
	return d.query(), nil
}

func (d *Deleter[T]) Exec(ctx context.Context) Result {
	m, err := d.core.mappers.Models.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	return exec(ctx, d.sess, d.core, &QueryContext{
		Type:    "DELETE",
		Builder: d,
		Model:   m,
	})
}
