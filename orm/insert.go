package orm

import (
	"context"
	"reflect"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/model"
)

type Inserter[T any] struct {
	builder
	core
	sess    Session
	value   *T       // 要插入的数据
	columns []string // 指定插入哪些字段
}

func NewInserter[T any](sess Session) *Inserter[T] {
	return &Inserter[T]{
		core: sess.getCore(),
		sess: sess,
	}
}

// Values 要插入的一行数据
func (i *Inserter[T]) Values(val *T) *Inserter[T] {
	i.value = val
	return i
}

// Columns 只插入指定的字段，指定之后自增列也可以插入
func (i *Inserter[T]) Columns(cols ...string) *Inserter[T] {
	i.columns = cols
	return i
}

func (i *Inserter[T]) Build() (*Query, error) {
	if i.value == nil {
		return nil, errs.ErrInsertZeroRow
	}
	if err := i.init(i.core, i.value); err != nil {
		return nil, err
	}
	fields, err := i.fields()
	if err != nil {
		return nil, err
	}

	i.sb.WriteString("INSERT INTO ")
	i.quote(i.model.TableName)
	i.sb.WriteString(" (")
	for idx, fd := range fields {
		if idx > 0 {
			i.sb.WriteString(", ")
		}
		i.quote(i.builder.mappers.MappedName(fd))
	}

	i.sb.WriteString(") VALUES (")
	val := i.valCreator(i.value, i.model, nil)
	for idx, fd := range fields {
		if idx > 0 {
			i.sb.WriteString(", ")
		}
		arg, err := val.Field(fd.GoName)
		if err != nil {
			return nil, err
		}
		i.parameter(parameterName(fd.GoName), arg)
	}
	i.sb.WriteString(");")
	return i.query(), nil
}

// fields 默认跳过自增列，由数据库生成
func (i *Inserter[T]) fields() ([]*model.Property, error) {
	if len(i.columns) > 0 {
		fields := make([]*model.Property, 0, len(i.columns))
		for _, c := range i.columns {
			fd, ok := i.model.FieldMap[c]
			if !ok {
				return nil, errs.NewErrUnknownField(c)
			}
			fields = append(fields, fd)
		}
		return fields, nil
	}
	fields := make([]*model.Property, 0, len(i.model.Properties))
	for _, fd := range i.model.Properties {
		if i.builder.mappers.IsIdentity(fd) {
			continue
		}
		fields = append(fields, fd)
	}
	if len(fields) == 0 {
		return nil, errs.ErrInsertZeroRow
	}
	return fields, nil
}

// Exec 执行成功之后，把数据库生成的自增值写回实体
func (i *Inserter[T]) Exec(ctx context.Context) Result {
	m, err := i.core.mappers.Models.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	res := exec(ctx, i.sess, i.core, &QueryContext{
		Type:    "INSERT",
		Builder: i,
		Model:   m,
	})
	if res.err != nil || res.res == nil || len(i.columns) > 0 {
		return res
	}
	i.setIdentity(m, res)
	return res
}

func (i *Inserter[T]) setIdentity(m *model.Model, res Result) {
	id, err := i.core.mappers.Identity.Get(m)
	if err != nil || id == nil {
		return
	}
	// 驱动不支持 LastInsertId 的时候不处理
	last, err := res.LastInsertId()
	if err != nil {
		return
	}
	fd := reflect.ValueOf(i.value).Elem().Field(id.Index)
	switch fd.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		fd.SetInt(last)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		fd.SetUint(uint64(last))
	}
}
