package orm

// Column 代表实体上的一个属性，name 是 go 结构体中的字段名
type Column struct {
	name  string
	alias string
}

func (c Column) expr()       {}
func (c Column) selectable() {}
func (c Column) assign()     {}

func C(name string) Column {
	return Column{name: name}
}

// As 只在 SELECT 的列里面生效
func (c Column) As(alias string) Column {
	return Column{
		name:  c.name,
		alias: alias,
	}
}

func (c Column) predicate(o op, arg any) Predicate {
	return Predicate{
		left:  c,
		op:    o,
		right: exprOf(arg), // 如果 arg 不是 Expression 类型 就让他变成这个类型
	}
}

// EQ 例如 C("id").EQ(12)，EQ(nil) 翻译成 IS NULL
func (c Column) EQ(arg any) Predicate {
	return c.predicate(opEQ, arg)
}

// NE 例如 C("id").NE(12)，NE(nil) 翻译成 IS NOT NULL
func (c Column) NE(arg any) Predicate {
	return c.predicate(opNE, arg)
}

// LT 例如 C("id").LT(12)
func (c Column) LT(arg any) Predicate {
	return c.predicate(opLT, arg)
}

func (c Column) LE(arg any) Predicate {
	return c.predicate(opLE, arg)
}

func (c Column) GT(arg any) Predicate {
	return c.predicate(opGT, arg)
}

func (c Column) GE(arg any) Predicate {
	return c.predicate(opGE, arg)
}

// Like 例如 C("Name").Like("Tom%")
func (c Column) Like(pattern any) Predicate {
	return c.predicate(opLike, pattern)
}

func (c Column) NotLike(pattern any) Predicate {
	return c.predicate(opNotLike, pattern)
}

// In 例如 C("Id").In(1, 2, 3)，也可以传入一个切片 C("Id").In(ids)
func (c Column) In(vals ...any) Predicate {
	return c.predicate(opIn, listOf(vals))
}

func (c Column) NotIn(vals ...any) Predicate {
	return c.predicate(opNotIn, listOf(vals))
}

// Between 例如 C("Age").Between(18, 35)
func (c Column) Between(left, right any) Predicate {
	return Predicate{
		left:  c,
		op:    opBetween,
		right: rangeExpr{left: exprOf(left), right: exprOf(right)},
	}
}

func (c Column) NotBetween(left, right any) Predicate {
	return Predicate{
		left:  c,
		op:    opNotBetween,
		right: rangeExpr{left: exprOf(left), right: exprOf(right)},
	}
}

func (c Column) IsNull() Predicate {
	return Predicate{left: c, op: opIsNull}
}

func (c Column) IsNotNull() Predicate {
	return Predicate{left: c, op: opIsNotNull}
}

// listOf 只有一个参数的时候，它本身可能就是切片或者 Evaluator
func listOf(vals []any) Expression {
	if len(vals) == 1 {
		return exprOf(vals[0])
	}
	return valueOf(vals)
}
