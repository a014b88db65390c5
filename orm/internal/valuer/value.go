package valuer

import (
	"database/sql"

	"github.com/coderi421/kyuu-orm/orm/model"
)

// Value 对结构体实例的内部抽象
type Value interface {
	// Field 返回字段对应的值
	Field(name string) (any, error)
	// SetColumns 设置新值，rows 的列名是映射之后的列名
	SetColumns(rows *sql.Rows) error
}

// Creator 本质上也可以看所是 factory 模式，极其简单的 factory 模式
// columns 以最终列名为 key，由调用方根据映射注册表计算
type Creator func(val any, meta *model.Model, columns map[string]*model.Property) Value
