package orm

import (
	"reflect"
	"strings"

	"github.com/coderi421/kyuu-orm/orm/internal/errs"
)

// Expression 代表语句，或者语句的部分
// 暂时没想好怎么设计方法，所以直接做成标记接口
type Expression interface {
	expr()
}

// Evaluator 是在翻译的时候才求值的右值，
// 例如另一个实例上的属性或者函数调用的结果
type Evaluator interface {
	Expression
	Eval() (any, error)
}

type value struct {
	val any
}

func (v value) expr() {}

// valueOf creates a new value object with the given value.
func valueOf(val any) value {
	return value{val: val}
}

// exprOf returns an Expression based on the input parameter.
func exprOf(e any) Expression {
	switch expr := e.(type) {
	// If the input parameter is already an Expression, return it as is.
	case Expression:
		return expr
	// If the input parameter is not an Expression, convert it to an Expression using the valueOf function.
	default:
		return valueOf(expr)
	}
}

// MemberExpr 读取另一个实例上的属性，path 可以是 A.B.C 这样的链
type MemberExpr struct {
	target any
	path   string
}

// Member reads path off target when the predicate is translated.
// Member(&other, "Address.City")
func Member(target any, path string) MemberExpr {
	return MemberExpr{target: target, path: path}
}

func (m MemberExpr) expr() {}

func (m MemberExpr) Eval() (any, error) {
	if m.path == "" {
		return nil, errs.NewErrNullArgument("member path")
	}
	val := reflect.ValueOf(m.target)
	for _, name := range strings.Split(m.path, ".") {
		for val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface {
			if val.IsNil() {
				return nil, errs.NewErrInvalidExpression("nil value before " + name)
			}
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return nil, errs.NewErrInvalidExpression("cannot read " + name + " of " + val.Kind().String())
		}
		val = val.FieldByName(name)
		if !val.IsValid() {
			return nil, errs.NewErrInvalidExpression("no member " + name)
		}
		if !val.CanInterface() {
			return nil, errs.NewErrInvalidExpression("unexported member " + name)
		}
	}
	return val.Interface(), nil
}

// CallExpr 函数调用，参数可以是值也可以是 Evaluator
type CallExpr struct {
	fn   any
	args []any
}

// Call invokes fn with args when the predicate is translated.
// fn must return one value, or a value and an error.
func Call(fn any, args ...any) CallExpr {
	return CallExpr{fn: fn, args: args}
}

func (c CallExpr) expr() {}

func (c CallExpr) Eval() (any, error) {
	target := c.fn
	// 方法在求值的时候才绑定到实例上
	if ev, ok := target.(Evaluator); ok {
		v, err := ev.Eval()
		if err != nil {
			return nil, err
		}
		target = v
	}
	fn, ok := target.(reflect.Value)
	if !ok {
		fn = reflect.ValueOf(target)
	}
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, errs.NewErrInvalidExpression("call of non-function")
	}
	typ := fn.Type()
	if typ.IsVariadic() {
		if len(c.args) < typ.NumIn()-1 {
			return nil, errs.NewErrInvalidExpression("not enough arguments in call")
		}
	} else if len(c.args) != typ.NumIn() {
		return nil, errs.NewErrInvalidExpression("wrong number of arguments in call")
	}

	in := make([]reflect.Value, len(c.args))
	for i, arg := range c.args {
		v, err := evaluate(exprOf(arg))
		if err != nil {
			return nil, err
		}
		want := paramType(typ, i)
		if v == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		rv := reflect.ValueOf(v)
		switch {
		case rv.Type().AssignableTo(want):
		case rv.Type().ConvertibleTo(want):
			rv = rv.Convert(want)
		default:
			return nil, errs.NewErrInvalidExpression("cannot use " + rv.Type().String() + " as " + want.String())
		}
		in[i] = rv
	}

	out := fn.Call(in)
	switch {
	case len(out) == 1:
		return out[0].Interface(), nil
	case len(out) == 2 && typ.Out(1) == errorType:
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, errs.NewErrInvalidExpression(err.Error())
		}
		return out[0].Interface(), nil
	default:
		return nil, errs.NewErrInvalidExpression("call must return a single value")
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func paramType(typ reflect.Type, i int) reflect.Type {
	if typ.IsVariadic() && i >= typ.NumIn()-1 {
		return typ.In(typ.NumIn() - 1).Elem()
	}
	return typ.In(i)
}

// rangeExpr BETWEEN 的左右边界
type rangeExpr struct {
	left  Expression
	right Expression
}

func (r rangeExpr) expr() {}

// evaluate 把右值归约为一个运行时的值
func evaluate(e Expression) (any, error) {
	switch expr := e.(type) {
	case nil:
		return nil, nil
	case value:
		return expr.val, nil
	case Evaluator:
		return expr.Eval()
	case Column:
		return nil, errs.NewErrInvalidExpression("column " + expr.name + " cannot be used as a value")
	default:
		return nil, errs.NewErrUnsupportedExpression(expr)
	}
}
