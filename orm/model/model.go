package model

import "reflect"

// Option is a function type that modifies a Model.
type Option func(model *Model) error

// Model 结构体映射db后的结构
type Model struct {
	// Key 缓存中的键，结构体为 reflect.Type，描述注册的实体为 Named
	Key any
	// Name 实体名，例如结构体名 User
	Name string
	// TableName 结构体对应的表名
	TableName string
	// Properties 按声明顺序排列
	Properties []*Property
	FieldMap   map[string]*Property // 结构体 属性名 attr name 为 key  ItemId
	ColumnMap  map[string]*Property // DB column name 为 key    item_id
}

// Property 字段相关的属性
// 构造完成后不再修改，同一个实体的同一个字段只有一个实例
type Property struct {
	// Entity 所属实体的缓存键
	Entity any
	// EntityName 所属实体名
	EntityName string
	ColName    string       // 数据库中的字段名
	GoName     string       // go struct 中的名字
	Type       reflect.Type // go 中的数据类型，描述注册的实体可能为 nil
	// Index 字段在结构体中的下标
	Index int
	// Offset 相对于对象起始地址的字段偏移量
	Offset uintptr

	column   string
	primary  bool
	identity bool
}

// ColumnOverride returns the column name declared on the property itself.
func (p *Property) ColumnOverride() (string, bool) {
	return p.column, p.column != ""
}

// PrimaryAttr reports whether the property is declared primary with the tag.
func (p *Property) PrimaryAttr() bool {
	return p.primary
}

// IdentityAttr reports whether the property is declared identity with the tag.
func (p *Property) IdentityAttr() bool {
	return p.identity
}

func (p *Property) String() string {
	return p.EntityName + "." + p.GoName
}

// Field is a lightweight reference to a property by name, used as a mapping key
// when no *Property is at hand.
type Field struct {
	Name string
	Type reflect.Type
}

func NewField(name string) *Field {
	return &Field{Name: name}
}

// Named 标识一个没有 go 结构体、通过 Describe 注册的实体
type Named string

// PropertyDef describes one property of an entity registered with Describe.
type PropertyDef struct {
	Name     string
	Column   string
	Type     reflect.Type
	Primary  bool
	Identity bool
}

// 我们支持的全部标签上的 key 都放在这里
// 方便用户查找，和我们后期维护
const (
	tagKeyColumn   = "column"
	tagKeyPrimary  = "primary"
	tagKeyIdentity = "identity"
	tagORMName     = "orm"
	tagIgnore      = "-"
)

// TableName 用户实现这个接口来返回自定义的表名
type TableName interface {
	TableName() string
}
