package cli

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/coderi421/kyuu-orm/orm/mapper"
	"github.com/coderi421/kyuu-orm/orm/model"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// MappingFile 描述没有 go 结构体的实体
//
//	entities:
//	  - name: User
//	    table: users
//	    properties:
//	      - name: Id
//	        type: int64
//	        primary: true
type MappingFile struct {
	Entities []EntityDef `yaml:"entities"`
}

type EntityDef struct {
	Name       string        `yaml:"name"`
	Table      string        `yaml:"table,omitempty"`
	Properties []PropertyDef `yaml:"properties"`
}

type PropertyDef struct {
	Name     string `yaml:"name"`
	Column   string `yaml:"column,omitempty"`
	Type     string `yaml:"type,omitempty"`
	Primary  bool   `yaml:"primary,omitempty"`
	Identity bool   `yaml:"identity,omitempty"`
}

var propertyTypes = map[string]reflect.Type{
	"":        reflect.TypeOf(""),
	"string":  reflect.TypeOf(""),
	"bool":    reflect.TypeOf(false),
	"int":     reflect.TypeOf(0),
	"int64":   reflect.TypeOf(int64(0)),
	"float64": reflect.TypeOf(float64(0)),
	"bytes":   reflect.TypeOf([]byte(nil)),
	"time":    reflect.TypeOf(time.Time{}),
	"uuid":    reflect.TypeOf(uuid.UUID{}),
}

// LoadMapping reads and decodes a mapping file.
func LoadMapping(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	var f MappingFile
	if err = yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode mapping %s: %w", path, err)
	}
	return &f, nil
}

// Register describes every entity of the file in m.
func (f *MappingFile) Register(m *mapper.Mappers) error {
	for _, e := range f.Entities {
		defs := make([]model.PropertyDef, 0, len(e.Properties))
		for _, p := range e.Properties {
			typ, ok := propertyTypes[p.Type]
			if !ok {
				return fmt.Errorf("entity %s: unknown type %q of %s", e.Name, p.Type, p.Name)
			}
			defs = append(defs, model.PropertyDef{
				Name:     p.Name,
				Column:   p.Column,
				Type:     typ,
				Primary:  p.Primary,
				Identity: p.Identity,
			})
		}
		var opts []model.Option
		if e.Table != "" {
			opts = append(opts, model.WithTableName(e.Table))
		}
		if _, err := m.Models.Describe(e.Name, defs, opts...); err != nil {
			return fmt.Errorf("entity %s: %w", e.Name, err)
		}
	}
	return nil
}

// loadMappers 每次命令使用独立的 Mappers
func loadMappers(path string) (*mapper.Mappers, error) {
	f, err := LoadMapping(path)
	if err != nil {
		return nil, err
	}
	m := mapper.New(nil)
	if err = f.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}
