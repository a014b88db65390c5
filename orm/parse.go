package orm

import (
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/mapper"
	lru "github.com/hashicorp/golang-lru"
)

// Env 表达式中可以引用的变量、实例和函数
type Env map[string]any

// Parser 把 go 语法的谓词文本转换成 Predicate
//
//	e.Age >= min && (e.Name == other.Name || strings.HasPrefix(e.Name, "A"))
//
// e 是实体本身，其它标识符从 Env 中查找。解析结果按文本缓存在 LRU 里面。
type Parser struct {
	receiver string
	cache    *lru.Cache
}

type ParserOption func(p *Parser)

// ParserWithReceiver 修改代表实体的标识符，默认是 e
func ParserWithReceiver(name string) ParserOption {
	return func(p *Parser) {
		p.receiver = name
	}
}

func NewParser(size int, opts ...ParserOption) (*Parser, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		receiver: "e",
		cache:    cache,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

var defaultParser, _ = NewParser(256)

// ParseExpression parses src with the default parser.
func ParseExpression(src string, env Env) (Predicate, error) {
	return defaultParser.Parse(src, env)
}

// Parse parses src and translates it for T in one step.
func Parse[T any](m *mapper.Mappers, src string, env Env) (*QueryGroup, error) {
	p, err := ParseExpression(src, env)
	if err != nil {
		return nil, err
	}
	return Translate[T](m, p)
}

func (p *Parser) Parse(src string, env Env) (Predicate, error) {
	if strings.TrimSpace(src) == "" {
		return Predicate{}, errs.NewErrNullArgument("expression")
	}
	var node ast.Expr
	if cached, ok := p.cache.Get(src); ok {
		node = cached.(ast.Expr)
	} else {
		var err error
		node, err = parser.ParseExpr(src)
		if err != nil {
			return Predicate{}, errs.NewErrUnsupportedExpression(err)
		}
		p.cache.Add(src, node)
	}
	c := &converter{receiver: p.receiver, env: env}
	return c.predicate(node)
}

type converter struct {
	receiver string
	env      Env
}

func (c *converter) predicate(node ast.Expr) (Predicate, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return c.predicate(n.X)
	case *ast.UnaryExpr:
		if n.Op != token.NOT {
			return Predicate{}, errs.NewErrUnsupportedExpression(n.Op)
		}
		inner, err := c.predicate(n.X)
		if err != nil {
			return Predicate{}, err
		}
		return Not(inner), nil
	case *ast.BinaryExpr:
		switch n.Op {
		case token.LAND, token.LOR:
			l, err := c.predicate(n.X)
			if err != nil {
				return Predicate{}, err
			}
			r, err := c.predicate(n.Y)
			if err != nil {
				return Predicate{}, err
			}
			if n.Op == token.LAND {
				return l.And(r), nil
			}
			return l.Or(r), nil
		default:
			return c.comparison(n)
		}
	case *ast.CallExpr:
		return c.call(n)
	case *ast.SelectorExpr:
		// e.IsActive 等价于 e.IsActive == true
		if name, ok := c.field(n); ok {
			return C(name).EQ(true), nil
		}
	}
	return Predicate{}, errs.NewErrUnsupportedExpression(exprString(node))
}

var comparisons = map[token.Token]op{
	token.EQL: opEQ,
	token.NEQ: opNE,
	token.LSS: opLT,
	token.LEQ: opLE,
	token.GTR: opGT,
	token.GEQ: opGE,
}

// mirrored 1 < e.Age 等价于 e.Age > 1
var mirrored = map[op]op{
	opEQ: opEQ,
	opNE: opNE,
	opLT: opGT,
	opLE: opGE,
	opGT: opLT,
	opGE: opLE,
}

func (c *converter) comparison(n *ast.BinaryExpr) (Predicate, error) {
	o, ok := comparisons[n.Op]
	if !ok {
		return Predicate{}, errs.NewErrUnsupportedExpression(n.Op)
	}
	left, right := n.X, n.Y
	name, ok := c.field(left)
	if !ok {
		name, ok = c.field(right)
		if !ok {
			return Predicate{}, errs.NewErrUnsupportedExpression(exprString(n))
		}
		left, right = right, left
		o = mirrored[o]
	}
	val, err := c.value(right)
	if err != nil {
		return Predicate{}, err
	}
	return C(name).predicate(o, val), nil
}

// call contains(list, e.Id) 和 strings 包里的前后缀匹配
func (c *converter) call(n *ast.CallExpr) (Predicate, error) {
	switch fn := n.Fun.(type) {
	case *ast.Ident:
		if fn.Name == "contains" && len(n.Args) == 2 {
			name, ok := c.field(n.Args[1])
			if !ok {
				return Predicate{}, errs.NewErrUnsupportedExpression(exprString(n))
			}
			list, err := c.value(n.Args[0])
			if err != nil {
				return Predicate{}, err
			}
			return C(name).In(list), nil
		}
	case *ast.SelectorExpr:
		pkg, ok := fn.X.(*ast.Ident)
		if ok && pkg.Name == "strings" && len(n.Args) == 2 {
			name, ok := c.field(n.Args[0])
			if !ok {
				break
			}
			arg, err := c.value(n.Args[1])
			if err != nil {
				return Predicate{}, err
			}
			var pattern func(s string) string
			switch fn.Sel.Name {
			case "Contains":
				pattern = func(s string) string { return "%" + s + "%" }
			case "HasPrefix":
				pattern = func(s string) string { return s + "%" }
			case "HasSuffix":
				pattern = func(s string) string { return "%" + s }
			default:
				return Predicate{}, errs.NewErrUnsupportedExpression(exprString(n))
			}
			return C(name).Like(likePattern{arg: arg, pattern: pattern}), nil
		}
	}
	return Predicate{}, errs.NewErrUnsupportedExpression(exprString(n))
}

// likePattern 求值之后再拼接通配符
type likePattern struct {
	arg     Expression
	pattern func(s string) string
}

func (l likePattern) expr() {}

func (l likePattern) Eval() (any, error) {
	v, err := evaluate(l.arg)
	if err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if !ok {
		return nil, errs.NewErrInvalidExpression("like pattern must be a string")
	}
	return l.pattern(s), nil
}

// field 判断是不是 e.Field 这种实体上的属性
// e.A.B 也返回 A.B，由 translator 报告属性不存在
func (c *converter) field(node ast.Expr) (string, bool) {
	var path []string
	for {
		switch n := node.(type) {
		case *ast.SelectorExpr:
			path = append([]string{n.Sel.Name}, path...)
			node = n.X
			continue
		case *ast.Ident:
			if n.Name != c.receiver || len(path) == 0 {
				return "", false
			}
			return strings.Join(path, "."), true
		}
		return "", false
	}
}

// value 右值：字面量、Env 里的变量、实例属性和函数调用
func (c *converter) value(node ast.Expr) (Expression, error) {
	switch n := node.(type) {
	case *ast.ParenExpr:
		return c.value(n.X)
	case *ast.BasicLit:
		v, err := literal(n)
		if err != nil {
			return nil, err
		}
		return valueOf(v), nil
	case *ast.UnaryExpr:
		lit, ok := n.X.(*ast.BasicLit)
		if n.Op != token.SUB || !ok {
			break
		}
		v, err := literal(lit)
		if err != nil {
			return nil, err
		}
		switch num := v.(type) {
		case int:
			return valueOf(-num), nil
		case float64:
			return valueOf(-num), nil
		}
	case *ast.Ident:
		switch n.Name {
		case "true":
			return valueOf(true), nil
		case "false":
			return valueOf(false), nil
		case "nil":
			return valueOf(nil), nil
		case c.receiver:
			return nil, errs.NewErrInvalidExpression("entity cannot be used as a value")
		}
		v, ok := c.env[n.Name]
		if !ok {
			return nil, errs.NewErrInvalidExpression("undefined: " + n.Name)
		}
		return valueOf(v), nil
	case *ast.SelectorExpr:
		if name, ok := c.field(n); ok {
			// 交给 translator 报错
			return C(name), nil
		}
		base, path, ok := c.chain(n)
		if !ok {
			break
		}
		return Member(base, path), nil
	case *ast.CallExpr:
		return c.invocation(n)
	}
	return nil, errs.NewErrInvalidExpression(exprString(node))
}

// chain other.Address.City -> (env["other"], "Address.City")
func (c *converter) chain(n *ast.SelectorExpr) (any, string, bool) {
	path := []string{n.Sel.Name}
	x := n.X
	for {
		switch cur := x.(type) {
		case *ast.SelectorExpr:
			path = append([]string{cur.Sel.Name}, path...)
			x = cur.X
			continue
		case *ast.Ident:
			if cur.Name == c.receiver {
				return nil, "", false
			}
			base, ok := c.env[cur.Name]
			if !ok {
				return nil, "", false
			}
			return base, strings.Join(path, "."), true
		}
		return nil, "", false
	}
}

// invocation getValue(1) 或者 other.Method()
func (c *converter) invocation(n *ast.CallExpr) (Expression, error) {
	args := make([]any, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := c.value(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	switch fn := n.Fun.(type) {
	case *ast.Ident:
		f, ok := c.env[fn.Name]
		if !ok {
			return nil, errs.NewErrInvalidExpression("undefined: " + fn.Name)
		}
		return Call(f, args...), nil
	case *ast.SelectorExpr:
		var target any
		if id, ok := fn.X.(*ast.Ident); ok {
			v, ok := c.env[id.Name]
			if !ok {
				return nil, errs.NewErrInvalidExpression("undefined: " + id.Name)
			}
			target = v
		} else if sel, ok := fn.X.(*ast.SelectorExpr); ok {
			base, path, ok := c.chain(sel)
			if !ok {
				return nil, errs.NewErrInvalidExpression(exprString(fn.X))
			}
			target = Member(base, path)
		} else {
			return nil, errs.NewErrInvalidExpression(exprString(fn))
		}
		return Call(methodOf{target: target, name: fn.Sel.Name}, args...), nil
	}
	return nil, errs.NewErrInvalidExpression(exprString(n))
}

// methodOf 在求值的时候取出方法
type methodOf struct {
	target any
	name   string
}

func (m methodOf) expr() {}

func (m methodOf) Eval() (any, error) {
	target, err := evaluate(exprOf(m.target))
	if err != nil {
		return nil, err
	}
	method := reflect.ValueOf(target).MethodByName(m.name)
	if !method.IsValid() {
		return nil, errs.NewErrInvalidExpression("no method " + m.name)
	}
	return method, nil
}

func literal(lit *ast.BasicLit) (any, error) {
	switch lit.Kind {
	case token.INT:
		v, err := strconv.ParseInt(lit.Value, 0, 64)
		if err != nil {
			return nil, errs.NewErrInvalidExpression(lit.Value)
		}
		return int(v), nil
	case token.FLOAT:
		v, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return nil, errs.NewErrInvalidExpression(lit.Value)
		}
		return v, nil
	case token.STRING:
		v, err := strconv.Unquote(lit.Value)
		if err != nil {
			return nil, errs.NewErrInvalidExpression(lit.Value)
		}
		return v, nil
	case token.CHAR:
		v, _, _, err := strconv.UnquoteChar(lit.Value[1:len(lit.Value)-1], '\'')
		if err != nil {
			return nil, errs.NewErrInvalidExpression(lit.Value)
		}
		// 和 go 一样，字符字面量是 rune
		return v, nil
	}
	return nil, errs.NewErrInvalidExpression(lit.Value)
}

func exprString(node ast.Node) string {
	var sb strings.Builder
	if err := printer.Fprint(&sb, token.NewFileSet(), node); err != nil {
		return reflect.TypeOf(node).String()
	}
	return sb.String()
}
