package config

import (
	"strconv"
	"strings"

	"github.com/matzehuels/mfdcache/pkg/errors"
)

// Field binds a field name to typed accessors on a Node.
//
// Get returns the canonical string form of the value, or "" when an
// optional field is unset. Set parses value; "" clears optional fields.
type Field struct {
	Name string
	Get  func(n *Node) string
	Set  func(n *Node, value string) error
}

// Fields lists every visually relevant field of a Node in a fixed order.
var Fields = []Field{
	stringField("name", func(n *Node) *string { return &n.Name }),
	stringField("moduleName", func(n *Node) *string { return &n.ModuleName }),
	stringField("fileName", func(n *Node) *string { return &n.FileName }),
	stringField("filePath", func(n *Node) *string { return &n.FilePath }),
	boolField("enabled", func(n *Node) **bool { return &n.Enabled }),
	floatField("opacity", func(n *Node) **float64 { return &n.Opacity }),
	intField("xOffsetStart", func(n *Node) *int { return &n.XOffsetStart }),
	intField("xOffsetFinish", func(n *Node) *int { return &n.XOffsetFinish }),
	intField("yOffsetStart", func(n *Node) *int { return &n.YOffsetStart }),
	intField("yOffsetFinish", func(n *Node) *int { return &n.YOffsetFinish }),
	optIntField("width", func(n *Node) **int { return &n.Width }),
	optIntField("height", func(n *Node) **int { return &n.Height }),
	optIntField("left", func(n *Node) **int { return &n.Left }),
	optIntField("top", func(n *Node) **int { return &n.Top }),
	boolField("center", func(n *Node) **bool { return &n.Center }),
	boolField("makeOpaque", func(n *Node) **bool { return &n.MakeOpaque }),
	boolField("useAsSwitch", func(n *Node) **bool { return &n.UseAsSwitch }),
}

var fieldIndex = func() map[string]int {
	idx := make(map[string]int, len(Fields))
	for i, f := range Fields {
		idx[strings.ToLower(f.Name)] = i
	}
	return idx
}()

// LookupField returns the field with the given name (case-insensitive).
func LookupField(name string) (Field, bool) {
	i, ok := fieldIndex[strings.ToLower(name)]
	if !ok {
		return Field{}, false
	}
	return Fields[i], true
}

// Get returns the canonical string value of a named field.
func Get(n *Node, name string) (string, error) {
	f, ok := LookupField(name)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown field: %s", name)
	}
	return f.Get(n), nil
}

// Set assigns a named field from its string form.
func Set(n *Node, name, value string) error {
	f, ok := LookupField(name)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown field: %s", name)
	}
	if err := f.Set(n, value); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "set %s", f.Name)
	}
	return nil
}

// Equal reports whether two subtrees are identical field by field,
// including child order. Lineage is not compared.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	for _, f := range Fields {
		if f.Get(a) != f.Get(b) {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// =============================================================================
// Field constructors
// =============================================================================

func stringField(name string, ref func(*Node) *string) Field {
	return Field{
		Name: name,
		Get:  func(n *Node) string { return *ref(n) },
		Set: func(n *Node, v string) error {
			*ref(n) = v
			return nil
		},
	}
}

func intField(name string, ref func(*Node) *int) Field {
	return Field{
		Name: name,
		Get:  func(n *Node) string { return strconv.Itoa(*ref(n)) },
		Set: func(n *Node, v string) error {
			if v == "" {
				*ref(n) = 0
				return nil
			}
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*ref(n) = i
			return nil
		},
	}
}

func optIntField(name string, ref func(*Node) **int) Field {
	return Field{
		Name: name,
		Get: func(n *Node) string {
			if p := *ref(n); p != nil {
				return strconv.Itoa(*p)
			}
			return ""
		},
		Set: func(n *Node, v string) error {
			if v == "" {
				*ref(n) = nil
				return nil
			}
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*ref(n) = &i
			return nil
		},
	}
}

func boolField(name string, ref func(*Node) **bool) Field {
	return Field{
		Name: name,
		Get: func(n *Node) string {
			if p := *ref(n); p != nil {
				return strconv.FormatBool(*p)
			}
			return ""
		},
		Set: func(n *Node, v string) error {
			if v == "" {
				*ref(n) = nil
				return nil
			}
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*ref(n) = &b
			return nil
		},
	}
}

func floatField(name string, ref func(*Node) **float64) Field {
	return Field{
		Name: name,
		Get: func(n *Node) string {
			if p := *ref(n); p != nil {
				return strconv.FormatFloat(*p, 'g', -1, 64)
			}
			return ""
		},
		Set: func(n *Node, v string) error {
			if v == "" {
				*ref(n) = nil
				return nil
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return err
			}
			*ref(n) = &f
			return nil
		},
	}
}
