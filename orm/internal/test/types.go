package test

import (
	"database/sql"
)

// SimpleStruct 包含常见的字段类型，用于测试结果集映射
type SimpleStruct struct {
	Id      uint64
	Bool    bool
	BoolPtr *bool

	Int    int
	IntPtr *int

	Int8    int8
	Int8Ptr *int8

	Int16    int16
	Int16Ptr *int16

	Int32    int32
	Int32Ptr *int32

	Int64    int64
	Int64Ptr *int64

	Uint    uint
	UintPtr *uint

	Uint8    uint8
	Uint8Ptr *uint8

	Float32    float32
	Float32Ptr *float32

	Float64    float64
	Float64Ptr *float64

	ByteArray []byte
	String    string

	NullStringPtr  *sql.NullString
	NullInt64Ptr   *sql.NullInt64
	NullBoolPtr    *sql.NullBool
	NullFloat64Ptr *sql.NullFloat64
}

// NewSimpleStruct 和 ColumnValues 返回的数据是一一对应的
func NewSimpleStruct(id uint64) *SimpleStruct {
	return &SimpleStruct{
		Id:             id,
		Bool:           true,
		BoolPtr:        ToPtr[bool](false),
		Int:            12,
		IntPtr:         ToPtr[int](13),
		Int8:           8,
		Int8Ptr:        ToPtr[int8](-8),
		Int16:          16,
		Int16Ptr:       ToPtr[int16](-16),
		Int32:          32,
		Int32Ptr:       ToPtr[int32](-32),
		Int64:          64,
		Int64Ptr:       ToPtr[int64](-64),
		Uint:           14,
		UintPtr:        ToPtr[uint](15),
		Uint8:          8,
		Uint8Ptr:       ToPtr[uint8](18),
		Float32:        3.2,
		Float32Ptr:     ToPtr[float32](-3.2),
		Float64:        6.4,
		Float64Ptr:     ToPtr[float64](-6.4),
		ByteArray:      []byte("hello"),
		String:         "world",
		NullStringPtr:  &sql.NullString{String: "null string", Valid: true},
		NullInt64Ptr:   &sql.NullInt64{Int64: 64, Valid: true},
		NullBoolPtr:    &sql.NullBool{Bool: true, Valid: true},
		NullFloat64Ptr: &sql.NullFloat64{Float64: 6.4, Valid: true},
	}
}

// ColumnValues 以属性名作为列名，数据库驱动返回的都是 []byte
func ColumnValues() map[string][]byte {
	return map[string][]byte{
		"Id":             []byte("1"),
		"Bool":           []byte("true"),
		"BoolPtr":        []byte("false"),
		"Int":            []byte("12"),
		"IntPtr":         []byte("13"),
		"Int8":           []byte("8"),
		"Int8Ptr":        []byte("-8"),
		"Int16":          []byte("16"),
		"Int16Ptr":       []byte("-16"),
		"Int32":          []byte("32"),
		"Int32Ptr":       []byte("-32"),
		"Int64":          []byte("64"),
		"Int64Ptr":       []byte("-64"),
		"Uint":           []byte("14"),
		"UintPtr":        []byte("15"),
		"Uint8":          []byte("8"),
		"Uint8Ptr":       []byte("18"),
		"Float32":        []byte("3.2"),
		"Float32Ptr":     []byte("-3.2"),
		"Float64":        []byte("6.4"),
		"Float64Ptr":     []byte("-6.4"),
		"ByteArray":      []byte("hello"),
		"String":         []byte("world"),
		"NullStringPtr":  []byte("null string"),
		"NullInt64Ptr":   []byte("64"),
		"NullBoolPtr":    []byte("true"),
		"NullFloat64Ptr": []byte("6.4"),
	}
}

func ToPtr[T any](t T) *T {
	return &t
}
