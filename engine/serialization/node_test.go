package serialization

import (
	"bytes"
	"testing"
)

func buildSample() *Node {
	root := NewNode()
	root.SetString("name", "Animator")
	root.SetNumber("playback_speed", float64(float32(1.3)))
	root.SetBool("loop", true)
	child := root.SetNode("settings")
	child.SetNumber("count", 3)
	arr := root.SetArray("animations")
	arr.AppendString("Walk")
	arr.AppendString("Run")
	clips := root.SetArray("clips")
	c := clips.AppendNode()
	c.SetString("name", "Idle")
	c.SetNumber("start", 0)
	c.SetNumber("end", 12.5)
	return root
}

func checkSample(t *testing.T, n *Node) {
	t.Helper()
	if v, ok := n.GetString("name"); !ok || v != "Animator" {
		t.Errorf("name = %q, %v", v, ok)
	}
	if v, ok := n.GetNumber("playback_speed"); !ok || float32(v) != float32(1.3) {
		t.Errorf("playback_speed = %v, %v, want bit-identical 1.3", v, ok)
	}
	if v, ok := n.GetBool("loop"); !ok || !v {
		t.Errorf("loop = %v, %v", v, ok)
	}
	settings, ok := n.GetNode("settings")
	if !ok {
		t.Fatal("settings node missing")
	}
	if v, ok := settings.GetNumber("count"); !ok || v != 3 {
		t.Errorf("settings.count = %v, %v", v, ok)
	}
	arr, ok := n.GetArray("animations")
	if !ok || arr.Len() != 2 {
		t.Fatalf("animations = %v, %v", arr, ok)
	}
	if v, _ := arr.GetString(1); v != "Run" {
		t.Errorf("animations[1] = %q, want Run", v)
	}
	clips, ok := n.GetArray("clips")
	if !ok || clips.Len() != 1 {
		t.Fatalf("clips = %v, %v", clips, ok)
	}
	clip, ok := clips.GetNode(0)
	if !ok {
		t.Fatal("clips[0] is not a node")
	}
	if v, _ := clip.GetNumber("end"); v != 12.5 {
		t.Errorf("clips[0].end = %v, want 12.5", v)
	}
}

func TestNodeInMemory(t *testing.T) {
	checkSample(t, buildSample())
}

func TestNodeEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, buildSample(), format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			n, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			checkSample(t, n)
		})
	}
}

func TestNodeTypedGettersRejectWrongType(t *testing.T) {
	n := NewNode()
	n.SetString("s", "x")
	if _, ok := n.GetNumber("s"); ok {
		t.Error("GetNumber on string field succeeded")
	}
	if _, ok := n.GetNode("missing"); ok {
		t.Error("GetNode on missing field succeeded")
	}
	arr := n.SetArray("a")
	if _, ok := arr.GetString(0); ok {
		t.Error("GetString out of range succeeded")
	}
}

func TestFormatFromExtension(t *testing.T) {
	if f, err := FormatFromExtension(".toml"); err != nil || f != FormatTOML {
		t.Errorf("FormatFromExtension(.toml) = %v, %v", f, err)
	}
	if _, err := FormatFromExtension(".xml"); err == nil {
		t.Error("expected error for .xml")
	}
}
