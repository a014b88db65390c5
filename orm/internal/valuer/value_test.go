package valuer

import (
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coderi421/kyuu-orm/orm/internal/errs"
	"github.com/coderi421/kyuu-orm/orm/internal/test"
	"github.com/coderi421/kyuu-orm/orm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_SetColumns(t *testing.T) {
	creators := map[string]Creator{
		"reflect": NewReflectValue,
		"unsafe":  NewUnsafeValue,
	}
	for name, creator := range creators {
		t.Run(name, func(t *testing.T) {
			testSetColumns(t, creator)
		})
	}
}

func testSetColumns(t *testing.T, creator Creator) {
	testCases := []struct {
		name       string
		dbMockDate map[string][]byte
		val        *test.SimpleStruct
		wantVal    *test.SimpleStruct
		wantErr    error
	}{
		{
			name:       "normal value",
			dbMockDate: test.ColumnValues(),
			val:        &test.SimpleStruct{},
			wantVal:    test.NewSimpleStruct(1),
		},
		{
			name: "invalid field",
			dbMockDate: map[string][]byte{
				"invalid_column": nil,
			},
			val:     &test.SimpleStruct{},
			wantErr: errs.NewErrUnknownColumn("invalid_column"),
		},
	}

	// 用于存储 go struct 和 db table 的映射信息的实例
	r := model.NewRegistry()
	meta, err := r.Get(&test.SimpleStruct{})
	require.NoError(t, err)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			val := creator(tc.val, meta, meta.ColumnMap)

			cols := make([]string, 0, len(tc.dbMockDate))
			colVals := make([]driver.Value, 0, len(tc.dbMockDate))
			for c, v := range tc.dbMockDate {
				cols = append(cols, c)
				colVals = append(colVals, v)
			}
			mock.ExpectQuery("SELECT *").
				WillReturnRows(sqlmock.NewRows(cols).AddRow(colVals...))

			rows, err := db.Query("SELECT *")
			require.NoError(t, err)
			require.True(t, rows.Next())

			// 虽然没有直接操作 tc.val，但是由于是指针，SetColumns 会修改它
			err = val.SetColumns(rows)
			assert.Equal(t, tc.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantVal, tc.val)
		})
	}
}

func TestValue_Field(t *testing.T) {
	r := model.NewRegistry()
	meta, err := r.Get(&test.SimpleStruct{})
	require.NoError(t, err)

	for name, creator := range map[string]Creator{
		"reflect": NewReflectValue,
		"unsafe":  NewUnsafeValue,
	} {
		t.Run(name, func(t *testing.T) {
			entity := test.NewSimpleStruct(3)
			val := creator(entity, meta, meta.ColumnMap)

			id, err := val.Field("Id")
			require.NoError(t, err)
			assert.Equal(t, uint64(3), id)

			s, err := val.Field("String")
			require.NoError(t, err)
			assert.Equal(t, "world", s)

			ptr, err := val.Field("NullStringPtr")
			require.NoError(t, err)
			assert.Same(t, entity.NullStringPtr, ptr)

			_, err = val.Field("Invalid")
			assert.ErrorIs(t, err, errs.ErrPropertyNotFound)
		})
	}
}

func TestValue_TooManyColumns(t *testing.T) {
	r := model.NewRegistry()
	meta, err := r.Get(&test.SimpleStruct{})
	require.NoError(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT *").
		WillReturnRows(sqlmock.NewRows([]string{"Id", "String"}).AddRow([]byte("1"), []byte("a")))
	rows, err := db.Query("SELECT *")
	require.NoError(t, err)
	require.True(t, rows.Next())

	// 只映射了一个列
	columns := map[string]*model.Property{"Id": meta.FieldMap["Id"]}
	err = NewReflectValue(&test.SimpleStruct{}, meta, columns).SetColumns(rows)
	assert.Equal(t, errs.ErrTooManyReturnedColumns, err)
}
