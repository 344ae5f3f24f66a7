package richtext

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrCorruptDocument is returned when the serialized document cannot be decoded.
	ErrCorruptDocument = errors.New("rich-text document is corrupted")
)

// wireNode is the serialized node shape used by the editor.
type wireNode struct {
	Type    string          `json:"type,omitempty"`
	Attrs   Attrs           `json:"attrs,omitempty"`
	Content []*wireNode     `json:"content,omitempty"`
	Text    string          `json:"text,omitempty"`
	Marks   json.RawMessage `json:"marks,omitempty"`
}

// Parse decodes a serialized rich-text document. An empty document ("" or
// "{}") parses to an empty root.
func Parse(data []byte) (*Doc, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "{}" {
		return &Doc{}, nil
	}

	var wire wireNode
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, ErrCorruptDocument
	}

	doc := &Doc{Attrs: wire.Attrs}
	for _, child := range wire.Content {
		doc.Children = append(doc.Children, fromWire(child))
	}

	return doc, nil
}

// Serialize encodes a document back to the editor wire format.
func Serialize(doc *Doc) ([]byte, error) {
	if doc == nil || (len(doc.Children) == 0 && len(doc.Attrs) == 0) {
		return []byte("{}"), nil
	}

	wire := &wireNode{Type: "doc", Attrs: doc.Attrs}
	for _, child := range doc.Children {
		wire.Content = append(wire.Content, toWire(child))
	}

	return json.Marshal(wire)
}

// the single place that maps the editor's stringly node types onto the sum type
func fromWire(w *wireNode) Node {
	kids := make([]Node, 0, len(w.Content))
	for _, child := range w.Content {
		kids = append(kids, fromWire(child))
	}
	if len(kids) == 0 {
		kids = nil
	}

	switch w.Type {
	case "heading":
		return &Heading{
			Level:    intAttr(w.Attrs, "level", 1),
			Attrs:    w.Attrs,
			Children: kids,
		}
	case "paragraph":
		return &Paragraph{
			Attrs:    w.Attrs,
			Children: kids,
		}
	case "image":
		return &Image{
			Src:   stringAttr(w.Attrs, "src"),
			Attrs: w.Attrs,
		}
	case "text":
		return &Text{
			Text:  w.Text,
			Marks: w.Marks,
		}
	default:
		return &Generic{
			Type:     w.Type,
			Attrs:    w.Attrs,
			Children: kids,
			Text:     w.Text,
			Marks:    w.Marks,
		}
	}
}

func toWire(n Node) *wireNode {
	switch t := n.(type) {
	case *Heading:
		attrs := t.Attrs
		if t.Level != 0 {
			attrs = withAttr(attrs, "level", t.Level)
		}
		return &wireNode{Type: "heading", Attrs: attrs, Content: toWireList(t.Children)}
	case *Paragraph:
		return &wireNode{Type: "paragraph", Attrs: t.Attrs, Content: toWireList(t.Children)}
	case *Image:
		attrs := t.Attrs
		if t.Src != "" {
			attrs = withAttr(attrs, "src", t.Src)
		}
		return &wireNode{Type: "image", Attrs: attrs}
	case *Text:
		return &wireNode{Type: "text", Text: t.Text, Marks: t.Marks}
	case *Generic:
		return &wireNode{Type: t.Type, Attrs: t.Attrs, Content: toWireList(t.Children), Text: t.Text, Marks: t.Marks}
	case *Doc:
		return &wireNode{Type: "doc", Attrs: t.Attrs, Content: toWireList(t.Children)}
	default:
		return &wireNode{}
	}
}

func toWireList(nodes []Node) []*wireNode {
	if len(nodes) == 0 {
		return nil
	}
	wires := make([]*wireNode, 0, len(nodes))
	for _, n := range nodes {
		wires = append(wires, toWire(n))
	}
	return wires
}

// withAttr returns attrs with the key set. The input map is never mutated.
func withAttr(attrs Attrs, key string, value any) Attrs {
	if _, ok := attrs[key]; ok {
		return attrs
	}
	out := make(Attrs, len(attrs)+1)
	for k, v := range attrs {
		out[k] = v
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return attrs
	}
	out[key] = raw
	return out
}

func stringAttr(attrs Attrs, key string) string {
	raw, ok := attrs[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func intAttr(attrs Attrs, key string, fallback int) int {
	raw, ok := attrs[key]
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return fallback
	}
	return v
}
