package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrPointerOnly 只支持一级指针作为输入
	// 看到这个 error 说明你输入了其它的东西
	// 我们并不希望用户能够直接使用 err == ErrPointerOnly
	// 所以放在我们的 internal 包里
	ErrPointerOnly = errors.New("orm: 只支持一级指针作为输入，例如 *User")

	// ErrNoRows 代表没有找到数据
	ErrNoRows = errors.New("orm: 未找到数据")

	ErrInsertZeroRow          = errors.New("orm: 插入 0 行")
	ErrNoUpdatedColumns       = errors.New("orm: 未指定更新的列")
	ErrTooManyReturnedColumns = errors.New("orm: 过多列")
	ErrMissingPrimaryKey      = errors.New("orm: 实体没有主键")

	// ErrNullArgument 必填的映射键或表达式为空
	ErrNullArgument = errors.New("orm: null argument")
	// ErrPropertyNotFound 属性不在实体的元数据中
	ErrPropertyNotFound = errors.New("orm: property not found")
	// ErrMappingExists 非强制的重复注册
	ErrMappingExists = errors.New("orm: mapping already exists")
	// ErrUnsupportedExpression 无法识别的表达式结构
	ErrUnsupportedExpression = errors.New("orm: unsupported expression")
	// ErrInvalidExpression 右值无法归约为单个值
	ErrInvalidExpression = errors.New("orm: invalid expression")
	// ErrUnknownEntity 缓存键对应的实体没有注册
	ErrUnknownEntity = errors.New("orm: unknown entity")
)

func NewErrNullArgument(arg string) error {
	return fmt.Errorf("%w: %s", ErrNullArgument, arg)
}

func NewErrPropertyNotFound(entity, name string) error {
	return fmt.Errorf("%w: %s.%s", ErrPropertyNotFound, entity, name)
}

func NewErrMappingExists(entity string) error {
	return fmt.Errorf("%w: %s", ErrMappingExists, entity)
}

func NewErrUnsupportedExpression(expr any) error {
	return fmt.Errorf("%w: %v", ErrUnsupportedExpression, expr)
}

func NewErrInvalidExpression(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidExpression, reason)
}

func NewErrUnknownEntity(key any) error {
	return fmt.Errorf("%w: %v", ErrUnknownEntity, key)
}

func NewErrUnknownField(name string) error {
	return fmt.Errorf("%w: 未知字段 %s", ErrPropertyNotFound, name)
}

func NewErrUnknownColumn(name string) error {
	return fmt.Errorf("orm: 未知列 %s", name)
}

func NewErrInvalidTagContent(pair string) error {
	return fmt.Errorf("orm: 非法标签值 %s", pair)
}

func NewErrUnsupportedAssignableType(exp any) error {
	return fmt.Errorf("orm: 不支持的 Assignable 表达式 %v", exp)
}

func NewErrUnsupportedOperation(op string) error {
	return fmt.Errorf("%w: 不支持的操作符 %s", ErrUnsupportedExpression, op)
}
