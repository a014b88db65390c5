package model

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/gotomicro/ekit/syncx"
)

type Registry interface {
	// Get 查找元数据模型，第一次访问时解析并缓存
	Get(val any) (*Model, error)
	// Properties 按声明顺序返回实体的全部属性
	Properties(val any) ([]*Property, error)
	Register(val any, opts ...Option) (*Model, error)
	// Describe 注册一个没有 go 结构体的实体
	Describe(name string, defs []PropertyDef, opts ...Option) (*Model, error)
	// Lookup 按缓存键查找已经构造好的模型
	Lookup(key any) (*Model, bool)
	// Clear 清空缓存，不能和其它调用并发
	Clear()
}

// RegistryOption configures a registry.
type RegistryOption func(r *registry)

// RegistryWithNaming 设置属性名到列名、结构体名到表名的默认转换
func RegistryWithNaming(naming func(string) string) RegistryOption {
	return func(r *registry) {
		r.naming = naming
	}
}

// 这种包变量对测试不友好，缺乏隔离
//
//	var defaultRegistry = &registry{
//		models: make(map[reflect.Type]*model, 16),
//	}
type registry struct {
	// reflect.Type 可以解决命名冲突的问题
	// 每个 key 对应一个 entry，entry 内部保证只解析一次
	models syncx.Map[any, *entry]
	naming func(string) string
}

// entry 并发首次访问时只有一个 goroutine 执行解析，其它的等待同一个结果
type entry struct {
	once  sync.Once
	model *Model
	err   error
}

func NewRegistry(opts ...RegistryOption) Registry {
	r := &registry{
		naming: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get fetches the model associated with a given value.
// If the model is not found in the registry, it is parsed and stored for future use.
func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	if typ == nil {
		return nil, errs.ErrPointerOnly
	}
	e, _ := r.models.LoadOrStore(typ, &entry{})
	e.once.Do(func() {
		e.model, e.err = r.parseModel(val)
	})
	return e.model, e.err
}

func (r *registry) Properties(val any) ([]*Property, error) {
	m, err := r.Get(val)
	if err != nil {
		return nil, err
	}
	return m.Properties, nil
}

// Register registers a model in the registry with the given options.
// It replaces any model cached for the same type.
func (r *registry) Register(val any, opts ...Option) (*Model, error) {
	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}
	return r.store(m, opts)
}

// Describe registers an entity from explicit property definitions.
// It is keyed by Named(name).
func (r *registry) Describe(name string, defs []PropertyDef, opts ...Option) (*Model, error) {
	if name == "" {
		return nil, errs.NewErrNullArgument("entity name")
	}
	key := Named(name)
	m := &Model{
		Key:        key,
		Name:       name,
		TableName:  r.naming(name),
		Properties: make([]*Property, 0, len(defs)),
		FieldMap:   make(map[string]*Property, len(defs)),
		ColumnMap:  make(map[string]*Property, len(defs)),
	}
	for i, def := range defs {
		if def.Name == "" {
			return nil, errs.NewErrNullArgument("property name")
		}
		p := &Property{
			Entity:     key,
			EntityName: name,
			GoName:     def.Name,
			Type:       def.Type,
			Index:      i,
			column:     def.Column,
			primary:    def.Primary,
			identity:   def.Identity,
		}
		p.ColName = r.columnName(p)
		m.add(p)
	}
	return r.store(m, opts)
}

func (r *registry) Lookup(key any) (*Model, bool) {
	if typ, ok := key.(reflect.Type); ok {
		if typ.Kind() != reflect.Ptr {
			return nil, false
		}
		m, err := r.Get(reflect.New(typ.Elem()).Interface())
		return m, err == nil
	}
	// Describe 注册的实体在存入之前就已经构造完成
	e, ok := r.models.Load(key)
	if !ok || e.model == nil {
		return nil, false
	}
	return e.model, true
}

func (r *registry) Clear() {
	r.models.Range(func(key any, _ *entry) bool {
		r.models.Delete(key)
		return true
	})
}

func (r *registry) store(m *Model, opts []Option) (*Model, error) {
	// Apply the provided options to the model
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	e := &entry{model: m}
	// 标记为已解析
	e.once.Do(func() {})
	r.models.Store(m.Key, e)
	return m, nil
}

// parseModel parses a given value and returns a new model or an error.
// It checks if the type is a pointer to a struct and generates the ordered
// properties of the model.
// orm:"key1=value1,key2=value2,primary,identity"
func (r *registry) parseModel(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	// Only support one-level pointer as input, e.g. *User does not support **User and User
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	key := typ
	typ = typ.Elem()

	numField := typ.NumField()
	m := &Model{
		Key:        key,
		Name:       typ.Name(),
		Properties: make([]*Property, 0, numField),
		FieldMap:   make(map[string]*Property, numField),
		ColumnMap:  make(map[string]*Property, numField),
	}

	for i := 0; i < numField; i++ {
		fdStruct := typ.Field(i)
		if !fdStruct.IsExported() {
			continue
		}
		tags, err := r.parseTag(fdStruct.Tag)
		if err != nil {
			return nil, err
		}
		if _, ignored := tags[tagIgnore]; ignored {
			continue
		}
		_, primary := tags[tagKeyPrimary]
		_, identity := tags[tagKeyIdentity]
		p := &Property{
			Entity:     key,
			EntityName: typ.Name(),
			GoName:     fdStruct.Name,
			Type:       fdStruct.Type,
			Index:      i,
			Offset:     fdStruct.Offset,
			column:     tags[tagKeyColumn],
			primary:    primary,
			identity:   identity,
		}
		p.ColName = r.columnName(p)
		m.add(p)
	}

	// Get the table name from the input value if it implements TableName interface
	if tn, ok := val.(TableName); ok {
		m.TableName = tn.TableName()
	}
	if m.TableName == "" {
		m.TableName = r.naming(typ.Name())
	}
	return m, nil
}

// columnName 标签上声明的列名优先，否则使用命名转换后的属性名
func (r *registry) columnName(p *Property) string {
	if col, ok := p.ColumnOverride(); ok {
		return col
	}
	return r.naming(p.GoName)
}

func (m *Model) add(p *Property) {
	m.Properties = append(m.Properties, p)
	m.FieldMap[p.GoName] = p
	m.ColumnMap[p.ColName] = p
}

// parseTag parses the given struct tag and returns a map of key-value pairs.
// Bare keys are only allowed for the flags primary, identity and "-".
func (r *registry) parseTag(tag reflect.StructTag) (map[string]string, error) {
	ormTag := tag.Get(tagORMName)
	if ormTag == "" {
		// Return an empty map so that the caller doesn't need to check for nil
		return map[string]string{}, nil
	}

	res := make(map[string]string, 2)
	pairs := strings.Split(ormTag, ",")
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		switch pair {
		case tagKeyPrimary, tagKeyIdentity, tagIgnore:
			res[pair] = ""
			continue
		}
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			return nil, errs.NewErrInvalidTagContent(pair)
		}
		res[kv[0]] = kv[1]
	}

	return res, nil
}

// UnderscoreName converts a given name to underscore case.
// UserName -> user_name
func UnderscoreName(name string) string {
	var buf []byte
	for i, v := range name {
		if unicode.IsUpper(v) {
			if i != 0 {
				buf = append(buf, '_')
			}
			buf = append(buf, byte(unicode.ToLower(v)))
		} else {
			buf = append(buf, byte(v))
		}
	}
	return string(buf)
}

// WithTableName is a Option function that sets the table name for a Model.
func WithTableName(tableName string) Option {
	return func(model *Model) error {
		model.TableName = tableName
		return nil
	}
}

// WithColumnName sets the column name for a specific property in a model.
func WithColumnName(field, columnName string) Option {
	return func(model *Model) error {
		fd, ok := model.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		delete(model.ColumnMap, fd.ColName)
		fd.ColName = columnName
		fd.column = columnName
		model.ColumnMap[columnName] = fd
		return nil
	}
}

// WithPrimary marks a property as primary, same as the primary tag.
func WithPrimary(field string) Option {
	return func(model *Model) error {
		fd, ok := model.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		fd.primary = true
		return nil
	}
}

// WithIdentity marks a property as identity, same as the identity tag.
func WithIdentity(field string) Option {
	return func(model *Model) error {
		fd, ok := model.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		fd.identity = true
		return nil
	}
}
