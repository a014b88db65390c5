package orm

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/coderi421/kyuu-orm/orm/mapper"
	"github.com/coderi421/kyuu-orm/orm/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type translateModel struct {
	Id              int64
	A               string
	B               string
	PropertyBoolean bool
	Name            string
	FirstName       string `orm:"column=first_name"`
	Age             int
	Token           uuid.UUID
	Data            []byte
	Nickname        *string
	Tags            []string
}

type otherInstance struct {
	PropertyBoolean bool
	Inner           *otherInstance
	Name            string
}

func (o otherInstance) GetName() string {
	return o.Name
}

func TestTranslate_RightSide(t *testing.T) {
	variable := true
	other := &otherInstance{PropertyBoolean: true}
	getValue := func() bool { return true }

	testCases := []struct {
		name string
		p    Predicate
	}{
		{name: "literal", p: C("PropertyBoolean").EQ(true)},
		{name: "variable", p: C("PropertyBoolean").EQ(variable)},
		{name: "other instance property", p: C("PropertyBoolean").EQ(Member(other, "PropertyBoolean"))},
		{name: "method call", p: C("PropertyBoolean").EQ(Call(getValue))},
	}
	m := mapper.New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Translate[translateModel](m, tc.p)
			require.NoError(t, err)
			q, err := g.Build(nil)
			require.NoError(t, err)
			assert.Equal(t, &Query{
				SQL:    "([PropertyBoolean] = @PropertyBoolean)",
				Args:   []any{sql.Named("PropertyBoolean", true)},
				Params: map[string]any{"PropertyBoolean": true},
			}, q)
		})
	}
}

func TestTranslate_Render(t *testing.T) {
	token := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	var nilName *string
	other := &otherInstance{Inner: &otherInstance{Name: "Tom"}}

	testCases := []struct {
		name       string
		ps         []Predicate
		wantSQL    string
		wantParams map[string]any
	}{
		{
			name:       "string",
			ps:         []Predicate{C("A").EQ("A")},
			wantSQL:    "([A] = @A)",
			wantParams: map[string]any{"A": "A"},
		},
		{
			name:       "and",
			ps:         []Predicate{C("A").EQ("A").And(C("B").EQ("B"))},
			wantSQL:    "([A] = @A AND [B] = @B)",
			wantParams: map[string]any{"A": "A", "B": "B"},
		},
		{
			// 多个 Predicate 用 AND 连接
			name:       "multiple predicates",
			ps:         []Predicate{C("A").EQ("A"), C("B").EQ("B")},
			wantSQL:    "([A] = @A AND [B] = @B)",
			wantParams: map[string]any{"A": "A", "B": "B"},
		},
		{
			name:       "flatten same conjunction",
			ps:         []Predicate{C("A").EQ("a").And(C("B").EQ("b")).And(C("Age").GT(18))},
			wantSQL:    "([A] = @A AND [B] = @B AND [Age] > @Age)",
			wantParams: map[string]any{"A": "a", "B": "b", "Age": 18},
		},
		{
			name:       "nested or",
			ps:         []Predicate{C("A").EQ("a").And(C("B").EQ("b").Or(C("Age").LT(18)))},
			wantSQL:    "([A] = @A AND ([B] = @B OR [Age] < @Age))",
			wantParams: map[string]any{"A": "a", "B": "b", "Age": 18},
		},
		{
			name:       "or then and",
			ps:         []Predicate{C("A").EQ("a").Or(C("B").EQ("b")).And(C("Age").GE(1))},
			wantSQL:    "(([A] = @A OR [B] = @B) AND [Age] >= @Age)",
			wantParams: map[string]any{"A": "a", "B": "b", "Age": 1},
		},
		{
			name:       "duplicate parameter",
			ps:         []Predicate{C("Id").EQ(1).Or(C("Id").EQ(2)).Or(C("Id").EQ(3))},
			wantSQL:    "([Id] = @Id OR [Id] = @Id_1 OR [Id] = @Id_2)",
			wantParams: map[string]any{"Id": 1, "Id_1": 2, "Id_2": 3},
		},
		{
			name:       "not",
			ps:         []Predicate{Not(C("A").EQ("a"))},
			wantSQL:    "NOT ([A] = @A)",
			wantParams: map[string]any{"A": "a"},
		},
		{
			name:       "not group",
			ps:         []Predicate{Not(C("A").EQ("a").And(C("B").NE("b")))},
			wantSQL:    "NOT ([A] = @A AND [B] <> @B)",
			wantParams: map[string]any{"A": "a", "B": "b"},
		},
		{
			name:       "not not",
			ps:         []Predicate{Not(Not(C("A").EQ("a")))},
			wantSQL:    "NOT (NOT ([A] = @A))",
			wantParams: map[string]any{"A": "a"},
		},
		{
			name:       "not inside and",
			ps:         []Predicate{C("A").EQ("a").And(Not(C("B").EQ("b")))},
			wantSQL:    "([A] = @A AND NOT ([B] = @B))",
			wantParams: map[string]any{"A": "a", "B": "b"},
		},
		{
			name:       "eq nil",
			ps:         []Predicate{C("Nickname").EQ(nil)},
			wantSQL:    "([Nickname] IS NULL)",
			wantParams: map[string]any{},
		},
		{
			name:       "typed nil pointer",
			ps:         []Predicate{C("Nickname").EQ(nilName)},
			wantSQL:    "([Nickname] IS NULL)",
			wantParams: map[string]any{},
		},
		{
			name:       "ne nil",
			ps:         []Predicate{C("Nickname").NE(nil).And(C("Name").IsNotNull())},
			wantSQL:    "([Nickname] IS NOT NULL AND [Name] IS NOT NULL)",
			wantParams: map[string]any{},
		},
		{
			name:       "in",
			ps:         []Predicate{C("Id").In(1, 2, 3)},
			wantSQL:    "([Id] IN (@Id_In_0, @Id_In_1, @Id_In_2))",
			wantParams: map[string]any{"Id_In_0": 1, "Id_In_1": 2, "Id_In_2": 3},
		},
		{
			name:       "in slice",
			ps:         []Predicate{C("Name").NotIn([]string{"Tom", "Jerry"})},
			wantSQL:    "([Name] NOT IN (@Name_In_0, @Name_In_1))",
			wantParams: map[string]any{"Name_In_0": "Tom", "Name_In_1": "Jerry"},
		},
		{
			name:       "empty in",
			ps:         []Predicate{C("Id").In([]int64{}).Or(C("A").EQ("a"))},
			wantSQL:    "(1 = 0 OR [A] = @A)",
			wantParams: map[string]any{"A": "a"},
		},
		{
			name:       "empty not in",
			ps:         []Predicate{C("Id").NotIn()},
			wantSQL:    "(1 = 1)",
			wantParams: map[string]any{},
		},
		{
			name:       "between",
			ps:         []Predicate{C("Age").Between(18, 35)},
			wantSQL:    "([Age] BETWEEN @Age_Left AND @Age_Right)",
			wantParams: map[string]any{"Age_Left": 18, "Age_Right": 35},
		},
		{
			name:       "like",
			ps:         []Predicate{C("Name").Like("Tom%").And(C("B").NotLike("%x"))},
			wantSQL:    "([Name] LIKE @Name AND [B] NOT LIKE @B)",
			wantParams: map[string]any{"Name": "Tom%", "B": "%x"},
		},
		{
			name:       "tag column",
			ps:         []Predicate{C("FirstName").EQ("Tom")},
			wantSQL:    "([first_name] = @FirstName)",
			wantParams: map[string]any{"FirstName": "Tom"},
		},
		{
			name:       "uuid",
			ps:         []Predicate{C("Token").EQ(token)},
			wantSQL:    "([Token] = @Token)",
			wantParams: map[string]any{"Token": token},
		},
		{
			name:       "bytes",
			ps:         []Predicate{C("Data").EQ([]byte("abc"))},
			wantSQL:    "([Data] = @Data)",
			wantParams: map[string]any{"Data": []byte("abc")},
		},
		{
			name:       "member chain",
			ps:         []Predicate{C("Name").EQ(Member(other, "Inner.Name"))},
			wantSQL:    "([Name] = @Name)",
			wantParams: map[string]any{"Name": "Tom"},
		},
		{
			name:       "call with args",
			ps:         []Predicate{C("Age").EQ(Call(func(a, b int) int { return a + b }, 1, Call(func() int { return 2 })))},
			wantSQL:    "([Age] = @Age)",
			wantParams: map[string]any{"Age": 3},
		},
	}

	m := mapper.New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Translate[translateModel](m, tc.ps...)
			require.NoError(t, err)
			q, err := Render(g, SQLServer)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSQL, q.SQL)
			assert.Equal(t, tc.wantParams, q.Params)
			assert.Len(t, q.Args, len(tc.wantParams))
			for _, arg := range q.Args {
				named := arg.(sql.NamedArg)
				assert.Equal(t, tc.wantParams[named.Name], named.Value)
			}
		})
	}
}

func TestTranslate_Errors(t *testing.T) {
	other := &otherInstance{}
	testCases := []struct {
		name    string
		ps      []Predicate
		wantErr error
	}{
		{name: "no predicate", wantErr: ErrNullArgument},
		{name: "unknown property", ps: []Predicate{C("Whatever").EQ(1)}, wantErr: ErrPropertyNotFound},
		{name: "case sensitive", ps: []Predicate{C("age").EQ(1)}, wantErr: ErrPropertyNotFound},
		{name: "column on right", ps: []Predicate{C("A").EQ(C("B"))}, wantErr: ErrInvalidExpression},
		{name: "multi valued", ps: []Predicate{C("Tags").EQ([]string{"a"})}, wantErr: ErrInvalidExpression},
		{name: "map value", ps: []Predicate{C("A").EQ(map[string]int{})}, wantErr: ErrInvalidExpression},
		{name: "missing member", ps: []Predicate{C("A").EQ(Member(other, "Nope"))}, wantErr: ErrInvalidExpression},
		{name: "nil in member chain", ps: []Predicate{C("A").EQ(Member(other, "Inner.Name"))}, wantErr: ErrInvalidExpression},
		{name: "call returns two values", ps: []Predicate{C("A").EQ(Call(func() (int, int) { return 1, 2 }))}, wantErr: ErrInvalidExpression},
		{name: "call fails", ps: []Predicate{C("A").EQ(Call(func() (int, error) { return 0, errors.New("boom") }))}, wantErr: ErrInvalidExpression},
		{name: "call wrong args", ps: []Predicate{C("A").EQ(Call(func(a int) int { return a }))}, wantErr: ErrInvalidExpression},
		{name: "call non function", ps: []Predicate{C("A").EQ(Call(12))}, wantErr: ErrInvalidExpression},
		{name: "less than nil", ps: []Predicate{C("Age").LT(nil)}, wantErr: ErrInvalidExpression},
		{name: "left side not column", ps: []Predicate{{left: valueOf(1), op: opEQ, right: valueOf(1)}}, wantErr: ErrUnsupportedExpression},
		{name: "error in nested", ps: []Predicate{C("A").EQ("a").And(C("B").EQ("b").Or(C("Nope").EQ(1)))}, wantErr: ErrPropertyNotFound},
	}
	m := mapper.New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Translate[translateModel](m, tc.ps...)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestTranslate_Dialects(t *testing.T) {
	m := mapper.New(nil)
	g, err := Translate[translateModel](m, C("A").EQ("a").And(C("Id").In(1, 2)))
	require.NoError(t, err)

	testCases := []struct {
		name string
		d    Dialect
		want *Query
	}{
		{
			name: "mysql",
			d:    MySQL,
			want: &Query{
				SQL:    "(`A` = ? AND `Id` IN (?, ?))",
				Args:   []any{"a", 1, 2},
				Params: map[string]any{"A": "a", "Id_In_0": 1, "Id_In_1": 2},
			},
		},
		{
			name: "sqlite3",
			d:    SQLite3,
			want: &Query{
				SQL: "(`A` = @A AND `Id` IN (@Id_In_0, @Id_In_1))",
				Args: []any{
					sql.Named("A", "a"),
					sql.Named("Id_In_0", 1),
					sql.Named("Id_In_1", 2),
				},
				Params: map[string]any{"A": "a", "Id_In_0": 1, "Id_In_1": 2},
			},
		},
		{
			name: "custom setting",
			d:    DbSetting{OpeningQuote: `"`, ClosingQuote: `"`, ParameterPrefix: ":"},
			want: &Query{
				SQL: `("A" = :A AND "Id" IN (:Id_In_0, :Id_In_1))`,
				Args: []any{
					sql.Named("A", "a"),
					sql.Named("Id_In_0", 1),
					sql.Named("Id_In_1", 2),
				},
				Params: map[string]any{"A": "a", "Id_In_0": 1, "Id_In_1": 2},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := g.Build(tc.d)
			require.NoError(t, err)
			assert.Equal(t, tc.want, q)
		})
	}
}

func TestTranslate_ColumnMapper(t *testing.T) {
	m := mapper.New(nil)
	require.NoError(t, m.Column.Add(&translateModel{}, "Name", "user_name", false))

	g, err := Translate[translateModel](m, C("Name").EQ("Tom"))
	require.NoError(t, err)
	sqlText, err := g.String(nil)
	require.NoError(t, err)
	assert.Equal(t, "([user_name] = @Name)", sqlText)

	// 另一个 Mappers 不受影响
	g, err = Translate[translateModel](mapper.New(nil), C("Name").EQ("Tom"))
	require.NoError(t, err)
	sqlText, err = g.String(nil)
	require.NoError(t, err)
	assert.Equal(t, "([Name] = @Name)", sqlText)
}

func TestTranslate_Shape(t *testing.T) {
	m := mapper.New(nil)
	g, err := Translate[translateModel](m, C("A").EQ("a").And(C("B").EQ("b").Or(C("Age").EQ(nil))))
	require.NoError(t, err)

	assert.Equal(t, And, g.Conjunction)
	assert.False(t, g.IsNot)
	require.Len(t, g.Children, 2)
	assert.Equal(t, &QueryField{
		Property:  "A",
		Column:    "A",
		Operation: Equal,
		Parameter: "A",
		Value:     "a",
	}, g.Children[0])

	sub, ok := g.Children[1].(*QueryGroup)
	require.True(t, ok)
	assert.Equal(t, Or, sub.Conjunction)
	require.Len(t, sub.Children, 2)
	assert.Equal(t, IsNull, sub.Children[1].(*QueryField).Operation)

	var props []string
	for _, f := range g.Fields() {
		props = append(props, f.Property)
	}
	assert.Equal(t, []string{"A", "B", "Age"}, props)
}

func TestTranslateEntity_Described(t *testing.T) {
	m := mapper.New(nil)
	_, err := m.Models.Describe("Invoice", []model.PropertyDef{
		{Name: "InvoiceId", Primary: true},
		{Name: "Number", Column: "invoice_no"},
	})
	require.NoError(t, err)

	g, err := TranslateEntity(m, model.Named("Invoice"), C("Number").GE(5))
	require.NoError(t, err)
	sqlText, err := g.String(SQLServer)
	require.NoError(t, err)
	assert.Equal(t, "([invoice_no] >= @Number)", sqlText)

	_, err = TranslateEntity(m, model.Named("Nope"), C("Number").GE(5))
	assert.ErrorIs(t, err, ErrUnknownEntity)
	_, err = TranslateEntity(m, nil, C("Number").GE(5))
	assert.ErrorIs(t, err, ErrNullArgument)
}

func TestTranslateContext(t *testing.T) {
	m := mapper.New(nil)
	require.NoError(t, m.Column.Add(&translateModel{}, "A", "col_a", false))
	ctx := mapper.NewContext(context.Background(), m)

	g, err := TranslateContext[translateModel](ctx, C("A").EQ("a"))
	require.NoError(t, err)
	sqlText, err := g.String(nil)
	require.NoError(t, err)
	assert.Equal(t, "([col_a] = @A)", sqlText)
}

func TestQueryGroup_Build(t *testing.T) {
	g := NewQueryGroup(Or,
		&QueryField{Column: "Id", Operation: Equal, Parameter: "Id", Value: 1},
		NewQueryGroup(And,
			&QueryField{Column: "Id", Operation: Equal, Parameter: "Id", Value: 2},
			&QueryField{Column: "Id_1", Operation: Equal, Parameter: "Id_1", Value: 3},
		),
	)
	q, err := g.Build(nil)
	require.NoError(t, err)
	// Id_1 已经被占用，继续往后找
	assert.Equal(t, "([Id] = @Id OR ([Id] = @Id_1 AND [Id_1] = @Id_1_1))", q.SQL)
	assert.Equal(t, map[string]any{"Id": 1, "Id_1": 2, "Id_1_1": 3}, q.Params)

	// 相同的树得到相同的结果
	again, err := g.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, q, again)

	_, err = NewQueryGroup(And).Build(nil)
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestTranslate_Concurrent(t *testing.T) {
	m := mapper.New(nil)
	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := Translate[translateModel](m, C("A").EQ("a").And(C("FirstName").EQ("b")))
			if err != nil {
				return
			}
			results[i], _ = g.String(nil)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, "([A] = @A AND [first_name] = @FirstName)", r)
	}
}
