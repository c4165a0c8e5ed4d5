package pegkit

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with all the
// default values expected by the runner and the buffers.
func NewConfig() *Config {
	m := make(Config)
	// collect parse tree nodes for every successful match
	m.SetBool("runner.build_tree", false)
	// collect the farthest failure and report it as an error
	m.SetBool("runner.report_errors", true)
	// log every match attempt at debug level
	m.SetBool("runner.trace", false)
	// width of a tab stop when computing indentation levels
	m.SetInt("buffer.tab_stop", 4)
	// text starting a comment that runs up to the end of the line
	m.SetString("buffer.line_comment", "")
	// reject lines that dedent to a level not used by any block
	m.SetBool("buffer.strict", true)
	// drop lines containing only whitespace
	m.SetBool("buffer.skip_empty_lines", true)
	// abort regular expression matches after that many
	// milliseconds, zero disables the timeout
	m.SetInt("regex.timeout_ms", 0)
	return &m
}

// LoadConfig reads a YAML document and applies it on top of the
// default configuration.  Nested mappings are flattened into dotted
// keys, so both of these forms are accepted:
//
//	runner:
//	  build_tree: true
//	buffer.tab_stop: 8
//
// Values must have the same type as the defaults they replace.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := NewConfig()
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return nil, fmt.Errorf("can't decode configuration: %w", err)
	}
	if err := cfg.apply("", doc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(prefix string, doc map[string]any) error {
	for k, v := range doc {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			if err := c.apply(path, nested); err != nil {
				return err
			}
			continue
		}
		current, ok := (*c)[path]
		if !ok {
			return fmt.Errorf("unknown setting `%s`", path)
		}
		switch current.typ {
		case cfgValType_Bool:
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("setting `%s` expects a bool, got %v", path, v)
			}
			c.SetBool(path, b)
		case cfgValType_Int:
			i, ok := v.(int)
			if !ok {
				return fmt.Errorf("setting `%s` expects an int, got %v", path, v)
			}
			c.SetInt(path, i)
		case cfgValType_String:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("setting `%s` expects a string, got %v", path, v)
			}
			c.SetString(path, s)
		}
	}
	return nil
}

// Dump returns one `key : value (type)` line per setting, sorted by
// key.
func (c *Config) Dump() string {
	keys := make([]string, 0, len(*c))
	width := 0
	for k := range *c {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	var s strings.Builder
	for _, k := range keys {
		s.WriteString(k)
		s.WriteString(strings.Repeat(" ", width-len(k)))
		s.WriteString(" : ")
		s.WriteString((*c)[k].String())
		s.WriteString("\n")
	}
	return s.String()
}

// Clone returns a copy that can be changed without affecting `c`.
func (c *Config) Clone() *Config {
	m := make(Config, len(*c))
	for k, v := range *c {
		val := *v
		m[k] = &val
	}
	return &m
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

// assignType prevents programming errors, a key never changes type
// once it's set.
func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("Can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("Can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (v *cfgVal) String() string {
	switch v.typ {
	case cfgValType_Bool:
		return fmt.Sprintf("%t (bool)", v.asBool)
	case cfgValType_Int:
		return fmt.Sprintf("%d (int)", v.asInt)
	case cfgValType_String:
		return fmt.Sprintf("%q (string)", v.asString)
	case cfgValType_Undefined:
		return "(undefined)"
	default:
		panic(fmt.Sprintf("unknown cfgVal type: %v", v.typ))
	}
}

func (c *Config) set(path string, vt cfgValType) *cfgVal {
	val, ok := (*c)[path]
	if !ok {
		val = &cfgVal{}
		(*c)[path] = val
	}
	val.assignType(vt)
	return val
}

func (c *Config) SetBool(path string, v bool)     { c.set(path, cfgValType_Bool).asBool = v }
func (c *Config) SetInt(path string, v int)       { c.set(path, cfgValType_Int).asInt = v }
func (c *Config) SetString(path string, v string) { c.set(path, cfgValType_String).asString = v }

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("Bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("Int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("String setting `%s` does not exist", path))
}
