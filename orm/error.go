package orm

import "github.com/coderi421/kyuu-orm/orm/internal/errs"

// 将内部的 sentinel error 暴露出去
var (
	// ErrNoRows 代表没有找到数据
	ErrNoRows = errs.ErrNoRows

	ErrPointerOnly       = errs.ErrPointerOnly
	ErrInsertZeroRow     = errs.ErrInsertZeroRow
	ErrNoUpdatedColumns  = errs.ErrNoUpdatedColumns
	ErrMissingPrimaryKey = errs.ErrMissingPrimaryKey

	ErrTooManyReturnedColumns = errs.ErrTooManyReturnedColumns

	ErrNullArgument          = errs.ErrNullArgument
	ErrPropertyNotFound      = errs.ErrPropertyNotFound
	ErrMappingExists         = errs.ErrMappingExists
	ErrUnsupportedExpression = errs.ErrUnsupportedExpression
	ErrInvalidExpression     = errs.ErrInvalidExpression
	ErrUnknownEntity         = errs.ErrUnknownEntity
)
