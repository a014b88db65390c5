package orm

// Operation 单个比较的操作符
type Operation uint8

const (
	Equal Operation = iota + 1
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	Like
	NotLike
	In
	NotIn
	Between
	NotBetween
	IsNull
	IsNotNull
)

var operationText = map[Operation]string{
	Equal:              "=",
	NotEqual:           "<>",
	LessThan:           "<",
	LessThanOrEqual:    "<=",
	GreaterThan:        ">",
	GreaterThanOrEqual: ">=",
	Like:               "LIKE",
	NotLike:            "NOT LIKE",
	In:                 "IN",
	NotIn:              "NOT IN",
	Between:            "BETWEEN",
	NotBetween:         "NOT BETWEEN",
	IsNull:             "IS NULL",
	IsNotNull:          "IS NOT NULL",
}

// String 返回 SQL 中的写法
func (o Operation) String() string {
	return operationText[o]
}

var operations = map[op]Operation{
	opEQ:         Equal,
	opNE:         NotEqual,
	opLT:         LessThan,
	opLE:         LessThanOrEqual,
	opGT:         GreaterThan,
	opGE:         GreaterThanOrEqual,
	opLike:       Like,
	opNotLike:    NotLike,
	opIn:         In,
	opNotIn:      NotIn,
	opBetween:    Between,
	opNotBetween: NotBetween,
	opIsNull:     IsNull,
	opIsNotNull:  IsNotNull,
}

// Conjunction 连接 QueryGroup 子节点的关键字
type Conjunction uint8

const (
	And Conjunction = iota
	Or
)

func (c Conjunction) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// Condition 是 QueryField 或者 *QueryGroup
type Condition interface {
	condition()
}

// QueryField 单个比较，Column 是映射之后的列名
type QueryField struct {
	// Property go 结构体中的字段名
	Property  string
	Column    string
	Operation Operation
	// Parameter 参数名的前缀，渲染的时候再处理重名
	Parameter string
	// Value In 和 Between 的时候是 []any
	Value any
}

func (*QueryField) condition() {}

// QueryGroup 组合多个条件，子节点的顺序就是表达式中的顺序
type QueryGroup struct {
	Conjunction Conjunction
	IsNot       bool
	Children    []Condition
}

func (*QueryGroup) condition() {}

func NewQueryGroup(conj Conjunction, children ...Condition) *QueryGroup {
	return &QueryGroup{
		Conjunction: conj,
		Children:    children,
	}
}

// Fields returns every QueryField of the tree in rendering order.
func (g *QueryGroup) Fields() []*QueryField {
	var res []*QueryField
	for _, c := range g.Children {
		switch child := c.(type) {
		case *QueryField:
			res = append(res, child)
		case *QueryGroup:
			res = append(res, child.Fields()...)
		}
	}
	return res
}

// String renders the group with d and returns the SQL text only.
func (g *QueryGroup) String(d Dialect) (string, error) {
	q, err := g.Build(d)
	if err != nil {
		return "", err
	}
	return q.SQL, nil
}

// Build renders the group into a parameterized condition.
func (g *QueryGroup) Build(d Dialect) (*Query, error) {
	b := newBuilder(d)
	if err := b.buildGroup(g); err != nil {
		return nil, err
	}
	return b.query(), nil
}

// Render serializes g with the dialect settings of d.
func Render(g *QueryGroup, d Dialect) (*Query, error) {
	return g.Build(d)
}
