package valuer

import (
	"database/sql"
	"reflect"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/model"
)

// reflectValue 基于反射的 Value
type reflectValue struct {
	val     reflect.Value
	meta    *model.Model
	columns map[string]*model.Property
}

var _ Creator = NewReflectValue

// NewReflectValue 返回一个封装好的，基于反射实现的 Value
// 输入 val 必须是一个指向结构体实例的指针，而不能是任何其它类型
func NewReflectValue(val any, meta *model.Model, columns map[string]*model.Property) Value {
	return reflectValue{
		val:     reflect.ValueOf(val).Elem(),
		meta:    meta,
		columns: columns,
	}
}

func (r reflectValue) Field(name string) (any, error) {
	fd, ok := r.meta.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	return r.val.Field(fd.Index).Interface(), nil
}

// SetColumns 将数据库中的数据设置到对应的 struct 上
func (r reflectValue) SetColumns(rows *sql.Rows) error {
	columnNames, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(columnNames) > len(r.columns) {
		return errs.ErrTooManyReturnedColumns
	}

	// colValues 和 colEleValues 实质上最终都指向同一个对象
	colValues := make([]any, len(columnNames))
	colEleValues := make([]reflect.Value, len(columnNames))
	for i, name := range columnNames {
		fd, ok := r.columns[name]
		if !ok {
			return errs.NewErrUnknownColumn(name)
		}
		v := reflect.New(fd.Type)
		colValues[i] = v.Interface()
		colEleValues[i] = v.Elem()
	}

	if err = rows.Scan(colValues...); err != nil {
		return err
	}

	for i, name := range columnNames {
		fd := r.columns[name]
		r.val.Field(fd.Index).Set(colEleValues[i])
	}
	return nil
}
