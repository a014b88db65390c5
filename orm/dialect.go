package orm

var (
	SQLServer Dialect = &sqlServerDialect{}
	MySQL     Dialect = &mysqlDialect{}
	SQLite3   Dialect = &sqlite3Dialect{}
)

// DbSetting 标识符引号和参数前缀
type DbSetting struct {
	OpeningQuote    string
	ClosingQuote    string
	ParameterPrefix string
	// PositionalParameters 为 true 时只输出前缀，例如 MySQL 的 ?
	PositionalParameters bool
}

// Setting 让 DbSetting 本身就可以作为 Dialect 使用
func (s DbSetting) Setting() DbSetting {
	return s
}

type Dialect interface {
	Setting() DbSetting
}

type standardSQL struct {
}

func (s *standardSQL) Setting() DbSetting {
	return DbSetting{
		OpeningQuote:    "[",
		ClosingQuote:    "]",
		ParameterPrefix: "@",
	}
}

type sqlServerDialect struct {
	standardSQL
}

type mysqlDialect struct {
	standardSQL
}

func (m *mysqlDialect) Setting() DbSetting {
	return DbSetting{
		OpeningQuote:         "`",
		ClosingQuote:         "`",
		ParameterPrefix:      "?",
		PositionalParameters: true,
	}
}

type sqlite3Dialect struct {
	standardSQL
}

func (s *sqlite3Dialect) Setting() DbSetting {
	return DbSetting{
		OpeningQuote:    "`",
		ClosingQuote:    "`",
		ParameterPrefix: "@",
	}
}
