package config

import (
	"path/filepath"
	"strings"
)

// Module is a top-level grouping of configurations.
type Module struct {
	Name           string  `json:"name"`
	DisplayName    string  `json:"displayName,omitempty"`
	FilePath       string  `json:"filePath,omitempty"`
	FileName       string  `json:"fileName,omitempty"`
	Enabled        *bool   `json:"enabled,omitempty"`
	Configurations []*Node `json:"configurations"`

	// Source is the file the module was loaded from.
	Source string `json:"-"`
}

// IsEnabled reports whether the module is enabled. Unset means enabled.
func (m *Module) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// Title returns the display name, falling back to the module name.
func (m *Module) Title() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// Configuration returns the top-level configuration with the given name.
func (m *Module) Configuration(name string) *Node {
	for _, c := range m.Configurations {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find returns the first node named name in a depth-first pre-order walk
// over every configuration of the module.
func (m *Module) Find(name string) *Node {
	for _, c := range m.Configurations {
		if c.Name == name {
			return c
		}
		if n := c.Find(name); n != nil {
			return n
		}
	}
	return nil
}

// Node is one renderable element of the configuration tree: a module-level
// configuration or a nested sub-configuration.
type Node struct {
	Name       string `json:"name"`
	ModuleName string `json:"moduleName,omitempty"`

	FilePath string `json:"filePath,omitempty"`
	FileName string `json:"fileName,omitempty"`

	Enabled     *bool `json:"enabled,omitempty"`
	UseAsSwitch *bool `json:"useAsSwitch,omitempty"`

	Opacity    *float64 `json:"opacity,omitempty"`
	MakeOpaque *bool    `json:"makeOpaque,omitempty"`

	// Source crop rectangle, (XOffsetStart,YOffsetStart)-(XOffsetFinish,YOffsetFinish).
	XOffsetStart  int `json:"xOffsetStart"`
	XOffsetFinish int `json:"xOffsetFinish"`
	YOffsetStart  int `json:"yOffsetStart"`
	YOffsetFinish int `json:"yOffsetFinish"`

	Left   *int  `json:"left,omitempty"`
	Top    *int  `json:"top,omitempty"`
	Width  *int  `json:"width,omitempty"`
	Height *int  `json:"height,omitempty"`
	Center *bool `json:"center,omitempty"`

	Children []*Node `json:"subConfigDef,omitempty"`

	lineage []string
}

// IsEnabled reports the resolved enabled flag. Unset means enabled.
func (n *Node) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// IsSwitch reports whether the node is only active when selected by name.
func (n *Node) IsSwitch() bool {
	return n.UseAsSwitch != nil && *n.UseAsSwitch
}

// IsCentered reports whether the node is centered within its parent.
func (n *Node) IsCentered() bool {
	return n.Center != nil && *n.Center
}

// OpacityValue returns the opacity clamped to [0,1], defaulting to 1.
func (n *Node) OpacityValue() float64 {
	if n.Opacity == nil {
		return 1
	}
	switch o := *n.Opacity; {
	case o < 0:
		return 0
	case o > 1:
		return 1
	default:
		return o
	}
}

// File returns the joined, unexpanded file reference.
func (n *Node) File() string {
	if n.FilePath == "" {
		return n.FileName
	}
	return filepath.Join(n.FilePath, n.FileName)
}

// Lineage returns the names of the node's ancestors, module first.
func (n *Node) Lineage() []string {
	return append([]string(nil), n.lineage...)
}

// ReadableName returns the colon-separated path from the module to the node,
// e.g. "F-16C:LMFD:BIT".
func (n *Node) ReadableName() string {
	if len(n.lineage) == 0 {
		return n.Name
	}
	return strings.Join(n.lineage, ":") + ":" + n.Name
}

// Walk visits n's descendants in depth-first pre-order, passing each node
// together with its parent. Returning false from fn skips that node's
// children.
func (n *Node) Walk(fn func(node, parent *Node) bool) {
	for _, c := range n.Children {
		if fn(c, n) {
			c.Walk(fn)
		}
	}
}

// Descendants returns every node below n in pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.Walk(func(node, _ *Node) bool {
		out = append(out, node)
		return true
	})
	return out
}

// Find returns the first descendant named name in pre-order, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node, _ *Node) bool {
		if found != nil {
			return false
		}
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	c := *n
	c.Enabled = cloneBool(n.Enabled)
	c.UseAsSwitch = cloneBool(n.UseAsSwitch)
	c.MakeOpaque = cloneBool(n.MakeOpaque)
	c.Center = cloneBool(n.Center)
	c.Left = cloneInt(n.Left)
	c.Top = cloneInt(n.Top)
	c.Width = cloneInt(n.Width)
	c.Height = cloneInt(n.Height)
	if n.Opacity != nil {
		o := *n.Opacity
		c.Opacity = &o
	}
	c.lineage = n.Lineage()
	c.Children = nil
	for _, child := range n.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return &c
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

// Bool returns a pointer to b, for building nodes in code.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for building nodes in code.
func Int(i int) *int { return &i }

// Float returns a pointer to f, for building nodes in code.
func Float(f float64) *float64 { return &f }
