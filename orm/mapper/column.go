package mapper

import (
	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/model"
	"github.com/gotomicro/ekit/syncx"
)

type columnKey struct {
	entity any
	name   string
}

// ColumnMapper 显式的属性到列名映射，优先级高于标签
type ColumnMapper struct {
	models  model.Registry
	columns syncx.Map[columnKey, string]
}

func NewColumnMapper(models model.Registry) *ColumnMapper {
	return &ColumnMapper{models: models}
}

// Add maps the property named by key to column.
func (cm *ColumnMapper) Add(entity any, key any, column string, force bool) error {
	m, err := resolve(cm.models, entity)
	if err != nil {
		return err
	}
	p, err := lookupProperty(m, key)
	if err != nil {
		return err
	}
	if column == "" {
		return errs.NewErrNullArgument("column")
	}
	ck := columnKey{entity: m.Key, name: p.GoName}
	if force {
		cm.columns.Store(ck, column)
		return nil
	}
	if _, loaded := cm.columns.LoadOrStore(ck, column); loaded {
		return errs.NewErrMappingExists(p.String())
	}
	return nil
}

// Get returns the column explicitly mapped to the property, if any.
func (cm *ColumnMapper) Get(entity any, key any) (string, bool, error) {
	m, err := resolve(cm.models, entity)
	if err != nil {
		return "", false, err
	}
	p, err := lookupProperty(m, key)
	if err != nil {
		return "", false, err
	}
	col, ok := cm.columns.Load(columnKey{entity: m.Key, name: p.GoName})
	return col, ok, nil
}

func (cm *ColumnMapper) lookup(p *model.Property) (string, bool) {
	return cm.columns.Load(columnKey{entity: p.Entity, name: p.GoName})
}

func (cm *ColumnMapper) Clear() {
	cm.columns.Range(func(key columnKey, _ string) bool {
		cm.columns.Delete(key)
		return true
	})
}
