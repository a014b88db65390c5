package orm

// Assignable 标记接口，
// 实现该接口意味着可以用于赋值语句，
// 用于在 UPDATE 中 Assign("FirstName", "DaMing") -> SET [FirstName] = @FirstName
// Column 也实现了它，值从 Update 传入的实体上读取
type Assignable interface {
	assign()
}

type Assignment struct {
	column string
	val    Expression
}

// Assign 右边可以是值，也可以是 Member 或 Call 这种在构造语句时才求值的表达式
func Assign(column string, val any) Assignment {
	return Assignment{
		column: column,
		val:    exprOf(val),
	}
}

// 实现标记接口
func (a Assignment) assign() {}
