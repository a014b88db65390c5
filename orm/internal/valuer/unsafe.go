package valuer

import (
	"database/sql"
	"reflect"
	"unsafe"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/model"
)

type unsafeValue struct {
	// 使用 unsafe Pointer 而不是 uintptr 是因为 gc 后 uintptr 会发生变化
	addr    unsafe.Pointer
	meta    *model.Model
	columns map[string]*model.Property
}

var _ Creator = NewUnsafeValue

func NewUnsafeValue(val any, meta *model.Model, columns map[string]*model.Property) Value {
	return unsafeValue{
		addr:    reflect.ValueOf(val).UnsafePointer(),
		meta:    meta,
		columns: columns,
	}
}

func (u unsafeValue) Field(name string) (any, error) {
	fd, ok := u.meta.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	ptr := unsafe.Add(u.addr, fd.Offset)
	return reflect.NewAt(fd.Type, ptr).Elem().Interface(), nil
}

func (u unsafeValue) SetColumns(rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(columns) > len(u.columns) {
		return errs.ErrTooManyReturnedColumns
	}

	colValues := make([]any, len(columns))
	for i, column := range columns {
		fd, ok := u.columns[column]
		if !ok {
			return errs.NewErrUnknownColumn(column)
		}
		// 直接把字段的地址交给 Scan
		ptr := unsafe.Add(u.addr, fd.Offset)
		colValues[i] = reflect.NewAt(fd.Type, ptr).Interface()
	}
	return rows.Scan(colValues...)
}
