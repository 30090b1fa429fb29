package xmltree

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
)

func TestMarshalNestedElements(t *testing.T) {
	root := New("fallback", Attr{Name: "title", Value: "Downgrade Attacks"})
	root.Append(New("tlsFallbackScsv", Attr{Name: "isSupported", Value: "True"}))

	out, err := xml.Marshal(root)
	if err != nil {
		t.Fatalf("xml.Marshal error = %v", err)
	}

	want := `<fallback title="Downgrade Attacks"><tlsFallbackScsv isSupported="True"></tlsFallbackScsv></fallback>`
	if string(out) != want {
		t.Fatalf("xml.Marshal = %s, want %s", out, want)
	}
}

func TestSetReplacesAttribute(t *testing.T) {
	e := New("target").Set("host", "a").Set("port", "443").Set("host", "b")
	if len(e.Attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(e.Attrs))
	}
	if v, _ := e.Get("host"); v != "b" {
		t.Fatalf("expected host=b, got %s", v)
	}
	if _, ok := e.Get("missing"); ok {
		t.Fatal("expected missing attribute lookup to fail")
	}
}

func TestAppendSkipsNil(t *testing.T) {
	e := New("results").Append(nil, New("target"), nil)
	if len(e.Children) != 1 || e.Find("target") == nil {
		t.Fatalf("unexpected children: %+v", e.Children)
	}
	if e.Find("nope") != nil {
		t.Fatal("expected Find to return nil for unknown tag")
	}
}

func TestWriteEscapesAndIndents(t *testing.T) {
	root := New("document", Attr{Name: "title", Value: `a "quoted" <title>`})
	root.Append(&Element{Tag: "note", Text: "x & y"})

	var buf bytes.Buffer
	if err := Write(&buf, root); err != nil {
		t.Fatalf("Write error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") {
		t.Fatalf("expected XML declaration, got %q", out)
	}
	if !strings.Contains(out, "&lt;title&gt;") || !strings.Contains(out, "x &amp; y") {
		t.Fatalf("expected escaped content, got %q", out)
	}
	if !strings.Contains(out, "\n  <note>") {
		t.Fatalf("expected indented child, got %q", out)
	}
}
