package orm

import (
	"testing"

	"github.com/coderi421/kyuu-orm/orm/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpression_RightSide(t *testing.T) {
	env := Env{
		"variable": true,
		"other":    &otherInstance{PropertyBoolean: true},
		"getValue": func() bool { return true },
	}
	testCases := []struct {
		name string
		src  string
	}{
		{name: "literal", src: "e.PropertyBoolean == true"},
		{name: "variable", src: "e.PropertyBoolean == variable"},
		{name: "other instance property", src: "e.PropertyBoolean == other.PropertyBoolean"},
		{name: "method call", src: "e.PropertyBoolean == getValue()"},
		{name: "bare property", src: "e.PropertyBoolean"},
		{name: "swapped", src: "true == e.PropertyBoolean"},
		{name: "parens", src: "(e.PropertyBoolean == (true))"},
	}
	m := mapper.New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Parse[translateModel](m, tc.src, env)
			require.NoError(t, err)
			q, err := g.Build(SQLServer)
			require.NoError(t, err)
			assert.Equal(t, "([PropertyBoolean] = @PropertyBoolean)", q.SQL)
			assert.Equal(t, map[string]any{"PropertyBoolean": true}, q.Params)
		})
	}
}

func TestParseExpression(t *testing.T) {
	env := Env{
		"name":  "o",
		"ids":   []int64{1, 2},
		"other": &otherInstance{Name: "Jerry", Inner: &otherInstance{Name: "Tom"}},
		"add":   func(a, b int) int { return a + b },
	}
	testCases := []struct {
		name       string
		src        string
		wantSQL    string
		wantParams map[string]any
	}{
		{
			name:       "and",
			src:        `e.A == "A" && e.B == "B"`,
			wantSQL:    "([A] = @A AND [B] = @B)",
			wantParams: map[string]any{"A": "A", "B": "B"},
		},
		{
			name:       "or and precedence",
			src:        `e.A == "a" || e.B == "b" && e.Age > 3`,
			wantSQL:    "([A] = @A OR ([B] = @B AND [Age] > @Age))",
			wantParams: map[string]any{"A": "a", "B": "b", "Age": 3},
		},
		{
			name:       "mirrored",
			src:        "18 < e.Age",
			wantSQL:    "([Age] > @Age)",
			wantParams: map[string]any{"Age": 18},
		},
		{
			name:       "not",
			src:        `!(e.A == "a") && e.Age != 1`,
			wantSQL:    "(NOT ([A] = @A) AND [Age] <> @Age)",
			wantParams: map[string]any{"A": "a", "Age": 1},
		},
		{
			name:       "nil",
			src:        "e.Nickname == nil || e.Nickname != nil",
			wantSQL:    "([Nickname] IS NULL OR [Nickname] IS NOT NULL)",
			wantParams: map[string]any{},
		},
		{
			name:       "contains",
			src:        "contains(ids, e.Id)",
			wantSQL:    "([Id] IN (@Id_In_0, @Id_In_1))",
			wantParams: map[string]any{"Id_In_0": int64(1), "Id_In_1": int64(2)},
		},
		{
			name:       "has prefix",
			src:        `strings.HasPrefix(e.Name, "To")`,
			wantSQL:    "([Name] LIKE @Name)",
			wantParams: map[string]any{"Name": "To%"},
		},
		{
			name:       "has suffix",
			src:        `strings.HasSuffix(e.Name, "m")`,
			wantSQL:    "([Name] LIKE @Name)",
			wantParams: map[string]any{"Name": "%m"},
		},
		{
			name:       "string contains",
			src:        "strings.Contains(e.Name, name)",
			wantSQL:    "([Name] LIKE @Name)",
			wantParams: map[string]any{"Name": "%o%"},
		},
		{
			name:       "negative",
			src:        "e.Age >= -1",
			wantSQL:    "([Age] >= @Age)",
			wantParams: map[string]any{"Age": -1},
		},
		{
			name:       "member chain",
			src:        "e.Name == other.Inner.Name",
			wantSQL:    "([Name] = @Name)",
			wantParams: map[string]any{"Name": "Tom"},
		},
		{
			name:       "method",
			src:        "e.Name == other.GetName()",
			wantSQL:    "([Name] = @Name)",
			wantParams: map[string]any{"Name": "Jerry"},
		},
		{
			name:       "nested method",
			src:        "e.Name == other.Inner.GetName()",
			wantSQL:    "([Name] = @Name)",
			wantParams: map[string]any{"Name": "Tom"},
		},
		{
			name:       "function with args",
			src:        "e.Age == add(1, 2)",
			wantSQL:    "([Age] = @Age)",
			wantParams: map[string]any{"Age": 3},
		},
		{
			name:       "rune",
			src:        "e.Name == 'x'",
			wantSQL:    "([Name] = @Name)",
			wantParams: map[string]any{"Name": 'x'},
		},
		{
			name:       "escaped rune",
			src:        `e.Age >= '\t'`,
			wantSQL:    "([Age] >= @Age)",
			wantParams: map[string]any{"Age": '\t'},
		},
		{
			name:       "duplicate",
			src:        "e.Id == 1 || e.Id == 2",
			wantSQL:    "([Id] = @Id OR [Id] = @Id_1)",
			wantParams: map[string]any{"Id": 1, "Id_1": 2},
		},
	}
	m := mapper.New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Parse[translateModel](m, tc.src, env)
			require.NoError(t, err)
			q, err := g.Build(nil)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSQL, q.SQL)
			assert.Equal(t, tc.wantParams, q.Params)
		})
	}
}

func TestParseExpression_Errors(t *testing.T) {
	env := Env{"x": &otherInstance{}}
	testCases := []struct {
		name    string
		src     string
		wantErr error
	}{
		{name: "empty", src: "  ", wantErr: ErrNullArgument},
		{name: "syntax", src: "e.A ==", wantErr: ErrUnsupportedExpression},
		{name: "arithmetic", src: "e.Age + 1", wantErr: ErrUnsupportedExpression},
		{name: "no entity", src: "x.Name == 1", wantErr: ErrUnsupportedExpression},
		{name: "literal only", src: "true", wantErr: ErrUnsupportedExpression},
		{name: "unknown function", src: `strings.ToUpper(e.Name, "a")`, wantErr: ErrUnsupportedExpression},
		{name: "undefined", src: "e.A == missing", wantErr: ErrInvalidExpression},
		{name: "undefined function", src: "e.A == missing()", wantErr: ErrInvalidExpression},
		{name: "entity as value", src: "e.A == e", wantErr: ErrInvalidExpression},
		{name: "column on right", src: "e.A == e.B", wantErr: ErrInvalidExpression},
		{name: "nested property", src: `e.Inner.Name == "x"`, wantErr: ErrPropertyNotFound},
		{name: "unknown property", src: "e.Whatever == 1", wantErr: ErrPropertyNotFound},
		{name: "missing method", src: "e.A == x.Nope()", wantErr: ErrInvalidExpression},
	}
	m := mapper.New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse[translateModel](m, tc.src, env)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestParser_Cache(t *testing.T) {
	p, err := NewParser(2, ParserWithReceiver("u"))
	require.NoError(t, err)
	m := mapper.New(nil)

	render := func(src string, env Env) *Query {
		pred, err := p.Parse(src, env)
		require.NoError(t, err)
		g, err := TranslateEntity(m, &translateModel{}, pred)
		require.NoError(t, err)
		q, err := g.Build(nil)
		require.NoError(t, err)
		return q
	}

	q := render("u.Age > min", Env{"min": 1})
	assert.Equal(t, "([Age] > @Age)", q.SQL)
	assert.Equal(t, map[string]any{"Age": 1}, q.Params)
	assert.Equal(t, 1, p.cache.Len())

	// 同一段文本复用解析结果，值每次重新求
	q = render("u.Age > min", Env{"min": 2})
	assert.Equal(t, map[string]any{"Age": 2}, q.Params)
	assert.Equal(t, 1, p.cache.Len())

	render("u.Age < 3", nil)
	render("u.Age < 4", nil)
	assert.Equal(t, 2, p.cache.Len())
	assert.False(t, p.cache.Contains("u.Age > min"))

	_, err = NewParser(0)
	assert.Error(t, err)
}
