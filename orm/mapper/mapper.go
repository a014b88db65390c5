package mapper

import (
	"reflect"
	"strings"
	"sync"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/model"
	"github.com/gotomicro/ekit/syncx"
)

// Kind 映射的角色
type Kind uint8

const (
	KindIdentity Kind = iota + 1
	KindPrimary
)

func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindPrimary:
		return "primary"
	default:
		return "unknown"
	}
}

// PropertyMapper 保存每个实体唯一的 identity 或者 primary 属性
// 显式 Add 的映射优先，没有的时候按照标签和命名约定推导，推导结果同样缓存
type PropertyMapper struct {
	kind     Kind
	models   model.Registry
	explicit syncx.Map[any, *model.Property]
	derived  syncx.Map[any, *derivedEntry]
}

// derivedEntry 记录推导时使用的 Model，模型被重新注册之后需要重新推导
type derivedEntry struct {
	once  sync.Once
	model *model.Model
	prop  *model.Property
}

func NewPropertyMapper(kind Kind, models model.Registry) *PropertyMapper {
	return &PropertyMapper{
		kind:   kind,
		models: models,
	}
}

func (pm *PropertyMapper) Kind() Kind {
	return pm.kind
}

// Add registers the property named by key as the mapping of the entity.
// key can be a property name, a model.Field, a *model.Field or a *model.Property.
// A second Add for the same entity fails with ErrMappingExists unless force is true.
func (pm *PropertyMapper) Add(entity any, key any, force bool) error {
	m, err := resolve(pm.models, entity)
	if err != nil {
		return err
	}
	p, err := lookupProperty(m, key)
	if err != nil {
		return err
	}
	if force {
		pm.explicit.Store(m.Key, p)
		return nil
	}
	if _, loaded := pm.explicit.LoadOrStore(m.Key, p); loaded {
		return errs.NewErrMappingExists(m.Name)
	}
	return nil
}

// AddProperty 使用属性自身记录的实体
func (pm *PropertyMapper) AddProperty(p *model.Property, force bool) error {
	if p == nil {
		return errs.NewErrNullArgument("property")
	}
	return pm.Add(p.Entity, p, force)
}

// Get returns the explicit mapping of the entity, or the derived one when
// nothing was added. Absent is reported as a nil property.
func (pm *PropertyMapper) Get(entity any) (*model.Property, error) {
	m, err := resolve(pm.models, entity)
	if err != nil {
		return nil, err
	}
	if p, ok := pm.explicit.Load(m.Key); ok {
		if cur, ok := m.FieldMap[p.GoName]; ok {
			if cur != p && pm.current(m) {
				pm.explicit.Store(m.Key, cur)
			}
			return cur, nil
		}
	}
	return pm.derive(m), nil
}

// current 判断 m 是不是注册表里面最新的 Model
func (pm *PropertyMapper) current(m *model.Model) bool {
	cur, ok := pm.models.Lookup(m.Key)
	return ok && cur == m
}

// Derived returns the property declared by tags or naming convention only.
func (pm *PropertyMapper) Derived(entity any) (*model.Property, error) {
	m, err := resolve(pm.models, entity)
	if err != nil {
		return nil, err
	}
	return pm.derive(m), nil
}

func (pm *PropertyMapper) derive(m *model.Model) *model.Property {
	e, _ := pm.derived.LoadOrStore(m.Key, &derivedEntry{model: m})
	if e.model != m {
		// Register 或者 Describe 替换了 Model，旧的属性已经不属于它
		e = &derivedEntry{model: m}
		if pm.current(m) {
			pm.derived.Store(m.Key, e)
		}
	}
	e.once.Do(func() {
		switch pm.kind {
		case KindPrimary:
			e.prop = derivePrimary(m)
		case KindIdentity:
			e.prop = deriveIdentity(m)
		}
	})
	return e.prop
}

// Clear 清空显式映射和推导缓存，不能和其它调用并发
func (pm *PropertyMapper) Clear() {
	pm.explicit.Range(func(key any, _ *model.Property) bool {
		pm.explicit.Delete(key)
		return true
	})
	pm.derived.Range(func(key any, _ *derivedEntry) bool {
		pm.derived.Delete(key)
		return true
	})
}

// derivePrimary 优先使用 primary 标签，其次是按约定命名的属性
func derivePrimary(m *model.Model) *model.Property {
	for _, p := range m.Properties {
		if p.PrimaryAttr() {
			return p
		}
	}
	for _, p := range m.Properties {
		if conventionalPrimary(m.Name, p.GoName) {
			return p
		}
	}
	return nil
}

func deriveIdentity(m *model.Model) *model.Property {
	for _, p := range m.Properties {
		if p.IdentityAttr() {
			return p
		}
	}
	return nil
}

// conventionalPrimary Id, ID, CustomerId, CustomerID
func conventionalPrimary(entity, name string) bool {
	if strings.EqualFold(name, "id") {
		return true
	}
	return entity != "" && strings.EqualFold(name, entity+"id")
}

// resolve 支持结构体指针、reflect.Type、model.Named 和 *model.Model
func resolve(models model.Registry, entity any) (*model.Model, error) {
	switch e := entity.(type) {
	case nil:
		return nil, errs.NewErrNullArgument("entity")
	case *model.Model:
		if e == nil {
			return nil, errs.NewErrNullArgument("entity")
		}
		return e, nil
	case model.Named, reflect.Type:
		m, ok := models.Lookup(e)
		if !ok {
			return nil, errs.NewErrUnknownEntity(e)
		}
		return m, nil
	default:
		return models.Get(entity)
	}
}

// lookupProperty 按名字精确匹配，大小写敏感
func lookupProperty(m *model.Model, key any) (*model.Property, error) {
	var name string
	switch k := key.(type) {
	case nil:
		return nil, errs.NewErrNullArgument("mapping key")
	case string:
		name = k
	case model.Field:
		name = k.Name
	case *model.Field:
		if k == nil {
			return nil, errs.NewErrNullArgument("field")
		}
		name = k.Name
	case *model.Property:
		if k == nil {
			return nil, errs.NewErrNullArgument("property")
		}
		if k.Entity != m.Key {
			return nil, errs.NewErrPropertyNotFound(m.Name, k.GoName)
		}
		return k, nil
	default:
		return nil, errs.NewErrUnsupportedExpression(key)
	}
	if name == "" {
		return nil, errs.NewErrNullArgument("property name")
	}
	p, ok := m.FieldMap[name]
	if !ok {
		return nil, errs.NewErrPropertyNotFound(m.Name, name)
	}
	return p, nil
}
