package orm

type op string

const (
	opEQ         op = "="
	opNE         op = "<>"
	opLT         op = "<"
	opLE         op = "<="
	opGT         op = ">"
	opGE         op = ">="
	opLike       op = "LIKE"
	opNotLike    op = "NOT LIKE"
	opIn         op = "IN"
	opNotIn      op = "NOT IN"
	opBetween    op = "BETWEEN"
	opNotBetween op = "NOT BETWEEN"
	opIsNull     op = "IS NULL"
	opIsNotNull  op = "IS NOT NULL"
	opAND        op = "AND"
	opOR         op = "OR"
	opNOT        op = "NOT"
)

func (o op) String() string {
	return string(o)
}

// Predicate 代表一个查询条件
// Predicate 可以通过和 Predicate 组合构成复杂的查询条件
type Predicate struct {
	left  Expression
	op    op
	right Expression
}

func (Predicate) expr() {}

func Not(p Predicate) Predicate {
	return Predicate{
		op:    opNOT,
		right: p,
	}
}

func (p Predicate) And(r Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    opAND,
		right: r,
	}
}

func (p Predicate) Or(r Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    opOR,
		right: r,
	}
}
