package mapper

import (
	"context"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/model"
)

// 将内部的 sentinel error 暴露出去
var (
	ErrNullArgument     = errs.ErrNullArgument
	ErrPropertyNotFound = errs.ErrPropertyNotFound
	ErrMappingExists    = errs.ErrMappingExists
	ErrUnknownEntity    = errs.ErrUnknownEntity
)

// Mappers 元数据缓存加上三个映射注册表
// 生命周期由使用方控制，通过 orm.DBWithMappers 或者 context 传递
type Mappers struct {
	Models   model.Registry
	Identity *PropertyMapper
	Primary  *PropertyMapper
	Column   *ColumnMapper
}

func New(models model.Registry) *Mappers {
	if models == nil {
		models = model.NewRegistry()
	}
	return &Mappers{
		Models:   models,
		Identity: NewPropertyMapper(KindIdentity, models),
		Primary:  NewPropertyMapper(KindPrimary, models),
		Column:   NewColumnMapper(models),
	}
}

var defaultMappers = New(model.NewRegistry())

// Default 进程级别的实例，没有显式传递 Mappers 时使用
func Default() *Mappers {
	return defaultMappers
}

// MappedName resolves the column of a property: the Column mapper entry,
// then the tag override, then the property name.
func (m *Mappers) MappedName(p *model.Property) string {
	if col, ok := m.Column.lookup(p); ok {
		return col
	}
	return p.ColName
}

func (m *Mappers) IsIdentity(p *model.Property) bool {
	if p.IdentityAttr() {
		return true
	}
	id, err := m.Identity.Get(p.Entity)
	return err == nil && id == p
}

func (m *Mappers) IsPrimary(p *model.Property) bool {
	if p.PrimaryAttr() {
		return true
	}
	pk, err := m.Primary.Get(p.Entity)
	return err == nil && pk == p
}

// ColumnMap 以最终列名为 key，用于把结果集映射回结构体
func (m *Mappers) ColumnMap(md *model.Model) map[string]*model.Property {
	res := make(map[string]*model.Property, len(md.Properties))
	for _, p := range md.Properties {
		res[m.MappedName(p)] = p
	}
	return res
}

// Clear resets every registry. It must not run concurrently with lookups.
func (m *Mappers) Clear() {
	m.Identity.Clear()
	m.Primary.Clear()
	m.Column.Clear()
	m.Models.Clear()
}

type mappersKey struct{}

func NewContext(ctx context.Context, m *Mappers) context.Context {
	return context.WithValue(ctx, mappersKey{}, m)
}

// FromContext returns the Mappers carried by ctx, or Default.
func FromContext(ctx context.Context) *Mappers {
	if m, ok := ctx.Value(mappersKey{}).(*Mappers); ok && m != nil {
		return m
	}
	return Default()
}
