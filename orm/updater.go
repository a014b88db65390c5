package orm

import (
	"context"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
)

type Updater[T any] struct {
	builder
	core
	sess    Session
	assigns []Assignable
	val     *T // 更新用的结构体
	where   []Predicate
}

func NewUpdater[T any](sess Session) *Updater[T] {
	return &Updater[T]{
		core: sess.getCore(),
		sess: sess,
	}
}

// Update 没有 Set 的时候更新除主键和自增列以外的全部字段，
// 没有 Where 的时候按照主键更新
func (u *Updater[T]) Update(t *T) *Updater[T] {
	u.val = t
	return u
}

func (u *Updater[T]) Set(assigns ...Assignable) *Updater[T] {
	u.assigns = assigns
	return u
}

func (u *Updater[T]) Where(ps ...Predicate) *Updater[T] {
	u.where = ps
	return u
}

func (u *Updater[T]) Build() (*Query, error) {
	if len(u.assigns) == 0 && u.val == nil {
		return nil, errs.ErrNoUpdatedColumns
	}
	if err := u.init(u.core, new(T)); err != nil {
		return nil, err
	}
	assigns := u.assigns
	if len(assigns) == 0 {
		assigns = u.defaultAssigns()
		if len(assigns) == 0 {
			return nil, errs.ErrNoUpdatedColumns
		}
	}

	u.sb.WriteString("UPDATE ")
	u.quote(u.model.TableName)
	u.sb.WriteString(" SET ")
	for i, a := range assigns {
		if i > 0 {
			u.sb.WriteString(", ")
		}
		var err error
		switch assign := a.(type) {
		case Column:
			err = u.buildColumnAssignment(assign)
		case Assignment:
			err = u.buildAssignment(assign)
		default:
			err = errs.NewErrUnsupportedAssignableType(a)
		}
		if err != nil {
			return nil, err
		}
	}

	switch {
	case len(u.where) > 0:
		u.sb.WriteString(" WHERE ")
		if err := u.buildPredicates(u.where); err != nil {
			return nil, err
		}
	case u.val != nil:
		u.sb.WriteString(" WHERE ")
		if err := u.buildPrimaryKey(u.val); err != nil {
			return nil, err
		}
	}
	u.sb.WriteByte(';')
	return u.query(), nil
}

func (u *Updater[T]) defaultAssigns() []Assignable {
	res := make([]Assignable, 0, len(u.model.Properties))
	for _, p := range u.model.Properties {
		if u.builder.mappers.IsPrimary(p) || u.builder.mappers.IsIdentity(p) {
			continue
		}
		res = append(res, C(p.GoName))
	}
	return res
}

// buildColumnAssignment 值从实体上读取
func (u *Updater[T]) buildColumnAssignment(c Column) error {
	if u.val == nil {
		return errs.NewErrNullArgument("entity")
	}
	fd, ok := u.model.FieldMap[c.name]
	if !ok {
		return errs.NewErrUnknownField(c.name)
	}
	arg, err := u.valCreator(u.val, u.model, nil).Field(c.name)
	if err != nil {
		return err
	}
	u.quote(u.builder.mappers.MappedName(fd))
	u.sb.WriteString(" = ")
	u.parameter(parameterName(fd.GoName), arg)
	return nil
}

func (u *Updater[T]) buildAssignment(assign Assignment) error {
	fd, ok := u.model.FieldMap[assign.column]
	if !ok {
		return errs.NewErrUnknownField(assign.column)
	}
	arg, err := evaluate(assign.val)
	if err != nil {
		return err
	}
	u.quote(u.builder.mappers.MappedName(fd))
	u.sb.WriteString(" = ")
	u.parameter(parameterName(fd.GoName), arg)
	return nil
}

func (u *Updater[T]) Exec(ctx context.Context) Result {
	m, err := u.core.mappers.Models.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	return exec(ctx, u.sess, u.core, &QueryContext{
		Type:    "UPDATE",
		Builder: u,
		Model:   m,
	})
}
