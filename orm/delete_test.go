package orm

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleter_Build(t *testing.T) {
	db := memoryDB(t)

	testCases := []struct {
		name      string
		builder   QueryBuilder
		wantErr   error
		wantQuery *Query
	}{
		{
			name:    "no where",
			builder: NewDeleter[TestModel](db).From("`test_model`"),
			wantQuery: &Query{
				SQL:    "DELETE FROM `test_model`;",
				Params: map[string]any{},
			},
		}, {
			name:    "where",
			builder: NewDeleter[TestModel](db).Where(C("Id").EQ(16)),
			wantQuery: &Query{
				SQL:    "DELETE FROM [TestModel] WHERE ([Id] = @Id);",
				Args:   []any{sql.Named("Id", 16)},
				Params: map[string]any{"Id": 16},
			},
		}, {
			name:    "from",
			builder: NewDeleter[TestModel](db).From("`test_model`").Where(C("Id").EQ(16)),
			wantQuery: &Query{
				SQL:    "DELETE FROM `test_model` WHERE ([Id] = @Id);",
				Args:   []any{sql.Named("Id", 16)},
				Params: map[string]any{"Id": 16},
			},
		}, {
			name:    "entity",
			builder: NewDeleter[TestModel](db).Delete(&TestModel{Id: 3}),
			wantQuery: &Query{
				SQL:    "DELETE FROM [TestModel] WHERE ([Id] = @Id);",
				Args:   []any{sql.Named("Id", int64(3))},
				Params: map[string]any{"Id": int64(3)},
			},
		}, {
			// Where 优先
			name:    "where over entity",
			builder: NewDeleter[TestModel](db).Delete(&TestModel{Id: 3}).Where(C("Age").GT(60)),
			wantQuery: &Query{
				SQL:    "DELETE FROM [TestModel] WHERE ([Age] > @Age);",
				Args:   []any{sql.Named("Age", 60)},
				Params: map[string]any{"Age": 60},
			},
		}, {
			name:    "invalid where",
			builder: NewDeleter[TestModel](db).Where(C("Invalid").EQ(16)),
			wantErr: ErrPropertyNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			query, err := tc.builder.Build()
			assert.ErrorIs(t, err, tc.wantErr)
			if err != nil {
				return
			}
			assert.Equal(t, tc.wantQuery, query)
		})
	}
}

func TestDeleter_Exec(t *testing.T) {
	db, mock := mockDB(t, DBWithDialect(MySQL))
	mock.ExpectExec("DELETE FROM `TestModel` WHERE (`Id` = ?);").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := NewDeleter[TestModel](db).Delete(&TestModel{Id: 5}).Exec(context.Background())
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
