package orm

import (
	"database/sql"
	"reflect"
	"strconv"
	"strings"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/mapper"
	"github.com/coderi421/kyuu-orm/orm/model"
)

type builder struct {
	sb      strings.Builder // sb is used to build the SQL query string.
	args    []any           // args holds the arguments for the query.
	params  map[string]any  // params 最终参数名到值
	used    map[string]int  // used 参数名出现的次数，用来生成后缀
	setting DbSetting
	model   *model.Model    // model is the model associated with the selector.
	mappers *mapper.Mappers // mappers 解析列名、主键和自增列
}

func newBuilder(d Dialect) *builder {
	b := &builder{}
	b.reset(d)
	return b
}

func (b *builder) reset(d Dialect) {
	if d == nil {
		d = SQLServer
	}
	b.sb.Reset()
	b.args = nil
	b.params = map[string]any{}
	b.used = map[string]int{}
	b.setting = d.Setting()
}

// init 每次 Build 都从头开始，所以 Build 可以被中间件重复调用
func (b *builder) init(c core, entity any) error {
	b.reset(c.dialect)
	b.mappers = c.mappers
	m, err := c.mappers.Models.Get(entity)
	if err != nil {
		return err
	}
	b.model = m
	return nil
}

// buildTable 没有指定表名的时候使用元数据中的表名
// 指定的表名原样写入，让用户自己处理引号
func (b *builder) buildTable(table string) {
	if table == "" {
		b.quote(b.model.TableName)
		return
	}
	b.sb.WriteString(table)
}

// buildPrimaryKey 按照实体的主键构造 WHERE 条件
func (b *builder) buildPrimaryKey(val any) error {
	pk, err := b.mappers.Primary.Get(b.model)
	if err != nil {
		return err
	}
	if pk == nil {
		return errs.ErrMissingPrimaryKey
	}
	v := reflect.ValueOf(val).Elem().Field(pk.Index).Interface()
	return b.buildPredicates([]Predicate{C(pk.GoName).EQ(v)})
}

func (b *builder) query() *Query {
	return &Query{
		SQL:    b.sb.String(),
		Args:   b.args,
		Params: b.params,
	}
}

func (b *builder) quote(name string) {
	b.sb.WriteString(b.setting.OpeningQuote)
	b.sb.WriteString(name)
	b.sb.WriteString(b.setting.ClosingQuote)
}

// buildColumn 写入属性映射之后的列名
func (b *builder) buildColumn(name string) error {
	fd, ok := b.model.FieldMap[name]
	if !ok {
		return errs.NewErrUnknownField(name)
	}
	b.quote(b.mappers.MappedName(fd))
	return nil
}

// buildPredicates 把多个 Predicate 用 AND 连起来之后翻译并渲染
func (b *builder) buildPredicates(ps []Predicate) error {
	g, err := newTranslator(b.mappers, b.model).translate(ps)
	if err != nil {
		return err
	}
	return b.buildGroup(g)
}

// buildGroup 子节点按顺序用连接词拼起来，整体加上括号
func (b *builder) buildGroup(g *QueryGroup) error {
	if g == nil || len(g.Children) == 0 {
		return errs.NewErrInvalidExpression("empty query group")
	}
	if g.IsNot {
		b.sb.WriteString("NOT ")
	}
	b.sb.WriteByte('(')
	for i, c := range g.Children {
		if i > 0 {
			b.sb.WriteByte(' ')
			b.sb.WriteString(g.Conjunction.String())
			b.sb.WriteByte(' ')
		}
		switch child := c.(type) {
		case *QueryField:
			if err := b.buildField(child); err != nil {
				return err
			}
		case *QueryGroup:
			if err := b.buildGroup(child); err != nil {
				return err
			}
		default:
			return errs.NewErrUnsupportedExpression(c)
		}
	}
	b.sb.WriteByte(')')
	return nil
}

func (b *builder) buildField(f *QueryField) error {
	switch f.Operation {
	case IsNull, IsNotNull:
		b.quote(f.Column)
		b.sb.WriteByte(' ')
		b.sb.WriteString(f.Operation.String())
	case In, NotIn:
		vals, _ := f.Value.([]any)
		if len(vals) == 0 {
			// 空集合：IN 永远不成立，NOT IN 永远成立
			if f.Operation == In {
				b.sb.WriteString("1 = 0")
			} else {
				b.sb.WriteString("1 = 1")
			}
			return nil
		}
		b.quote(f.Column)
		b.sb.WriteByte(' ')
		b.sb.WriteString(f.Operation.String())
		b.sb.WriteString(" (")
		for i, v := range vals {
			if i > 0 {
				b.sb.WriteString(", ")
			}
			b.parameter(f.Parameter+"_In_"+strconv.Itoa(i), v)
		}
		b.sb.WriteByte(')')
	case Between, NotBetween:
		vals, _ := f.Value.([]any)
		if len(vals) != 2 {
			return errs.NewErrInvalidExpression("between needs two values")
		}
		b.quote(f.Column)
		b.sb.WriteByte(' ')
		b.sb.WriteString(f.Operation.String())
		b.sb.WriteByte(' ')
		b.parameter(f.Parameter+"_Left", vals[0])
		b.sb.WriteString(" AND ")
		b.parameter(f.Parameter+"_Right", vals[1])
	default:
		text := f.Operation.String()
		if text == "" {
			return errs.NewErrUnsupportedOperation(strconv.Itoa(int(f.Operation)))
		}
		b.quote(f.Column)
		b.sb.WriteByte(' ')
		b.sb.WriteString(text)
		b.sb.WriteByte(' ')
		b.parameter(f.Parameter, f.Value)
	}
	return nil
}

// parameter 写入参数占位符并记录参数值
// 同名参数追加 _1、_2 后缀，占位符和 params 使用同一个名字
func (b *builder) parameter(base string, val any) {
	name := b.uniqueName(base)
	b.params[name] = val
	b.sb.WriteString(b.setting.ParameterPrefix)
	if b.setting.PositionalParameters {
		b.addArgs(val)
		return
	}
	b.sb.WriteString(name)
	b.addArgs(sql.Named(name, val))
}

func (b *builder) uniqueName(base string) string {
	n, ok := b.used[base]
	if !ok {
		b.used[base] = 1
		return base
	}
	for {
		name := base + "_" + strconv.Itoa(n)
		n++
		if _, taken := b.used[name]; !taken {
			b.used[base] = n
			b.used[name] = 1
			return name
		}
	}
}

func (b *builder) addArgs(args ...any) {
	if b.args == nil {
		b.args = make([]any, 0, 8)
	}
	b.args = append(b.args, args...)
}
