package serialization

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima-runtime/engine/core"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromExtension maps a file extension (with the dot) to a Format.
func FormatFromExtension(ext string) (Format, error) {
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", core.ErrInvalidNode, ext)
	}
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.plain())
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return n.fill(raw)
}

func (n *Node) MarshalTOML() ([]byte, error) {
	return toml.Marshal(n.plain())
}

func (n *Node) UnmarshalTOML(data []byte) error {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	return n.fill(raw)
}

// Encode writes the node to w in the given format.
func Encode(w io.Writer, n *Node, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(n.plain(), "", "  ")
	case FormatTOML:
		data, err = n.MarshalTOML()
	default:
		return fmt.Errorf("%w: unknown format %q", core.ErrInvalidNode, format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a node from r in the given format.
func Decode(r io.Reader, format Format) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	n := NewNode()
	switch format {
	case FormatJSON:
		err = n.UnmarshalJSON(data)
	case FormatTOML:
		err = n.UnmarshalTOML(data)
	default:
		err = fmt.Errorf("%w: unknown format %q", core.ErrInvalidNode, format)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) plain() map[string]any {
	out := make(map[string]any, len(n.values))
	for k, v := range n.values {
		out[k] = plainValue(v)
	}
	return out
}

func (a *Array) plain() []any {
	out := make([]any, len(a.items))
	for i, v := range a.items {
		out[i] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.plain()
	case *Array:
		return t.plain()
	default:
		return t
	}
}

func (n *Node) fill(raw map[string]any) error {
	if n.values == nil {
		n.values = make(map[string]any, len(raw))
	}
	for k, v := range raw {
		val, err := treeValue(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		n.values[k] = val
	}
	return nil
}

func treeValue(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		child := NewNode()
		if err := child.fill(t); err != nil {
			return nil, err
		}
		return child, nil
	case []any:
		arr := NewArray()
		for i, item := range t {
			val, err := treeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr.items = append(arr.items, val)
		}
		return arr, nil
	case string, bool, float64, int64:
		return t, nil
	case int:
		return int64(t), nil
	default:
		return nil, fmt.Errorf("%w: unsupported value of type %T", core.ErrInvalidNode, v)
	}
}
