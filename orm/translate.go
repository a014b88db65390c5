package orm

import (
	"context"
	"reflect"
	"strings"
	"unicode"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/mapper"
	"github.com/coderi421/kyuu-orm/orm/model"
)

// Translate converts predicates over the properties of T into a QueryGroup.
// Multiple predicates are joined with AND. A nil m falls back to mapper.Default().
func Translate[T any](m *mapper.Mappers, ps ...Predicate) (*QueryGroup, error) {
	return TranslateEntity(m, new(T), ps...)
}

// TranslateEntity is Translate for an entity given as a struct pointer,
// a reflect.Type or a model.Named key.
func TranslateEntity(m *mapper.Mappers, entity any, ps ...Predicate) (*QueryGroup, error) {
	if m == nil {
		m = mapper.Default()
	}
	md, err := modelOf(m, entity)
	if err != nil {
		return nil, err
	}
	return newTranslator(m, md).translate(ps)
}

func modelOf(m *mapper.Mappers, entity any) (*model.Model, error) {
	switch e := entity.(type) {
	case nil:
		return nil, errs.NewErrNullArgument("entity")
	case model.Named, reflect.Type:
		md, ok := m.Models.Lookup(e)
		if !ok {
			return nil, errs.NewErrUnknownEntity(e)
		}
		return md, nil
	default:
		return m.Models.Get(entity)
	}
}

type translator struct {
	mappers *mapper.Mappers
	model   *model.Model
}

func newTranslator(m *mapper.Mappers, md *model.Model) *translator {
	return &translator{mappers: m, model: md}
}

func (t *translator) translate(ps []Predicate) (*QueryGroup, error) {
	if len(ps) == 0 {
		return nil, errs.NewErrNullArgument("predicate")
	}
	// 取出第一个作为开始的节点，多个 Predicate 用 AND 合并
	p := ps[0]
	for i := 1; i < len(ps); i++ {
		p = p.And(ps[i])
	}
	return t.group(p)
}

// group 每个 Predicate 都翻译成一个 QueryGroup
func (t *translator) group(p Predicate) (*QueryGroup, error) {
	switch p.op {
	case opAND, opOR:
		g := &QueryGroup{Conjunction: conjunctionOf(p.op)}
		if err := t.appendChild(g, p.left); err != nil {
			return nil, err
		}
		if err := t.appendChild(g, p.right); err != nil {
			return nil, err
		}
		return g, nil
	case opNOT:
		inner, ok := p.right.(Predicate)
		if !ok {
			return nil, errs.NewErrUnsupportedExpression(p.right)
		}
		g, err := t.group(inner)
		if err != nil {
			return nil, err
		}
		if g.IsNot {
			// NOT NOT x 需要再套一层
			return &QueryGroup{IsNot: true, Children: []Condition{g}}, nil
		}
		g.IsNot = true
		return g, nil
	default:
		f, err := t.field(p)
		if err != nil {
			return nil, err
		}
		return NewQueryGroup(And, f), nil
	}
}

// appendChild 同一种连接词的链条展开到同一层，保持从左到右的顺序
func (t *translator) appendChild(g *QueryGroup, e Expression) error {
	p, ok := e.(Predicate)
	if !ok {
		return errs.NewErrUnsupportedExpression(e)
	}
	switch p.op {
	case opAND, opOR:
		if conjunctionOf(p.op) == g.Conjunction {
			if err := t.appendChild(g, p.left); err != nil {
				return err
			}
			return t.appendChild(g, p.right)
		}
		sub, err := t.group(p)
		if err != nil {
			return err
		}
		g.Children = append(g.Children, sub)
	case opNOT:
		sub, err := t.group(p)
		if err != nil {
			return err
		}
		g.Children = append(g.Children, sub)
	default:
		f, err := t.field(p)
		if err != nil {
			return err
		}
		g.Children = append(g.Children, f)
	}
	return nil
}

func conjunctionOf(o op) Conjunction {
	if o == opOR {
		return Or
	}
	return And
}

// field 左边必须是实体的顶层属性，右边归约成一个值
func (t *translator) field(p Predicate) (*QueryField, error) {
	col, ok := p.left.(Column)
	if !ok {
		return nil, errs.NewErrUnsupportedExpression(p.left)
	}
	operation, ok := operations[p.op]
	if !ok {
		return nil, errs.NewErrUnsupportedOperation(p.op.String())
	}
	prop, ok := t.model.FieldMap[col.name]
	if !ok {
		return nil, errs.NewErrPropertyNotFound(t.model.Name, col.name)
	}

	var val any
	switch operation {
	case IsNull, IsNotNull:
	case In, NotIn:
		v, err := evaluate(p.right)
		if err != nil {
			return nil, err
		}
		val = listValues(v)
	case Between, NotBetween:
		r, ok := p.right.(rangeExpr)
		if !ok {
			return nil, errs.NewErrInvalidExpression("between needs two values")
		}
		l, err := t.single(r.left)
		if err != nil {
			return nil, err
		}
		h, err := t.single(r.right)
		if err != nil {
			return nil, err
		}
		val = []any{l, h}
	default:
		v, err := t.single(p.right)
		if err != nil {
			return nil, err
		}
		if v == nil {
			switch operation {
			case Equal:
				operation = IsNull
			case NotEqual:
				operation = IsNotNull
			default:
				return nil, errs.NewErrInvalidExpression(col.name + " " + p.op.String() + " nil")
			}
		}
		val = v
	}

	return &QueryField{
		Property:  prop.GoName,
		Column:    t.mappers.MappedName(prop),
		Operation: operation,
		Parameter: parameterName(prop.GoName),
		Value:     val,
	}, nil
}

// single 归约成一个值，nil 指针当作 nil
func (t *translator) single(e Expression) (any, error) {
	v, err := evaluate(e)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
	case reflect.Slice, reflect.Array:
		// []byte 和 uuid 这种字节数组是一个值
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			return nil, errs.NewErrInvalidExpression("multi-valued " + rv.Type().String())
		}
	case reflect.Map, reflect.Chan, reflect.Func:
		return nil, errs.NewErrInvalidExpression("cannot bind " + rv.Type().String())
	}
	return v, nil
}

// listValues 切片展开，单个值当作只有一个元素的集合
func listValues(v any) []any {
	if v == nil {
		return []any{}
	}
	if vals, ok := v.([]any); ok {
		return vals
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		res := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			res[i] = rv.Index(i).Interface()
		}
		return res
	}
	return []any{v}
}

// parameterName 只保留字母、数字和下划线
func parameterName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, name)
}

// TranslateContext is Translate with the Mappers carried by ctx.
func TranslateContext[T any](ctx context.Context, ps ...Predicate) (*QueryGroup, error) {
	return Translate[T](mapper.FromContext(ctx), ps...)
}
