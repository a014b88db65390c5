package cli

import (
	"fmt"
	"strings"

	"github.com/coderi421/kyuu-orm/orm"
	"gopkg.in/yaml.v3"
)

// parseVars 把 name=value 解析成表达式的环境变量
// value 按照 YAML 标量解析，所以 18 是 int，[1, 2] 是列表
func parseVars(vars []string) (orm.Env, error) {
	env := make(orm.Env, len(vars))
	for _, v := range vars {
		name, raw, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid var %q: want name=value", v)
		}
		var val any
		if err := yaml.Unmarshal([]byte(raw), &val); err != nil {
			return nil, fmt.Errorf("invalid var %q: %w", v, err)
		}
		env[name] = val
	}
	return env, nil
}
