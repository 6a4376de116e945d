// Package serialization holds the structured tree used by components to save
// and restore their state. A Node is an object of named fields; field values
// are strings, numbers, booleans, nested nodes or arrays. The tree does not
// know how it is stored on disk; codec.go provides JSON and TOML encodings.
package serialization

import (
	"sort"
)

type Node struct {
	values map[string]any
}

type Array struct {
	items []any
}

func NewNode() *Node {
	return &Node{values: make(map[string]any)}
}

func NewArray() *Array {
	return &Array{}
}

func (n *Node) SetString(name, value string) {
	n.values[name] = value
}

func (n *Node) SetNumber(name string, value float64) {
	n.values[name] = value
}

func (n *Node) SetBool(name string, value bool) {
	n.values[name] = value
}

// SetNode creates (or replaces) a nested node under name and returns it.
func (n *Node) SetNode(name string) *Node {
	child := NewNode()
	n.values[name] = child
	return child
}

// SetArray creates (or replaces) an array under name and returns it.
func (n *Node) SetArray(name string) *Array {
	arr := NewArray()
	n.values[name] = arr
	return arr
}

func (n *Node) Has(name string) bool {
	_, ok := n.values[name]
	return ok
}

func (n *Node) Remove(name string) {
	delete(n.values, name)
}

func (n *Node) GetString(name string) (string, bool) {
	v, ok := n.values[name].(string)
	return v, ok
}

func (n *Node) GetNumber(name string) (float64, bool) {
	return asNumber(n.values[name])
}

func (n *Node) GetBool(name string) (bool, bool) {
	v, ok := n.values[name].(bool)
	return v, ok
}

func (n *Node) GetNode(name string) (*Node, bool) {
	v, ok := n.values[name].(*Node)
	return v, ok
}

func (n *Node) GetArray(name string) (*Array, bool) {
	v, ok := n.values[name].(*Array)
	return v, ok
}

// Keys returns the field names in sorted order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.values))
	for k := range n.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Node) Len() int {
	return len(n.values)
}

func (a *Array) Len() int {
	return len(a.items)
}

func (a *Array) AppendString(value string) {
	a.items = append(a.items, value)
}

func (a *Array) AppendNumber(value float64) {
	a.items = append(a.items, value)
}

func (a *Array) AppendBool(value bool) {
	a.items = append(a.items, value)
}

func (a *Array) AppendNode() *Node {
	child := NewNode()
	a.items = append(a.items, child)
	return child
}

func (a *Array) GetString(i int) (string, bool) {
	if i < 0 || i >= len(a.items) {
		return "", false
	}
	v, ok := a.items[i].(string)
	return v, ok
}

func (a *Array) GetNumber(i int) (float64, bool) {
	if i < 0 || i >= len(a.items) {
		return 0, false
	}
	return asNumber(a.items[i])
}

func (a *Array) GetBool(i int) (bool, bool) {
	if i < 0 || i >= len(a.items) {
		return false, false
	}
	v, ok := a.items[i].(bool)
	return v, ok
}

func (a *Array) GetNode(i int) (*Node, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	v, ok := a.items[i].(*Node)
	return v, ok
}

// TOML keeps integers and floats apart; both read back as numbers.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
