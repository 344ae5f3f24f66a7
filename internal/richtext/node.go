package richtext

import "encoding/json"

// Attrs holds the raw attributes of a node. Attributes the server does not
// understand are carried through untouched so a parse/serialize round trip
// is lossless.
type Attrs map[string]json.RawMessage

// Node is one node of a rich-text document tree. The concrete types cover
// the nodes the server derives metadata from; everything else parses into
// Generic.
type Node interface {
	node()
}

// Doc is the document root.
type Doc struct {
	Attrs    Attrs
	Children []Node
}

// Heading is a heading node. The first top-level heading provides the
// article title.
type Heading struct {
	Level    int
	Attrs    Attrs
	Children []Node
}

// Paragraph is a paragraph node.
type Paragraph struct {
	Attrs    Attrs
	Children []Node
}

// Image is an image node. The first image in the document provides the
// article poster.
type Image struct {
	Src   string
	Attrs Attrs
}

// Text is a leaf text node. Marks are carried raw.
type Text struct {
	Text  string
	Marks json.RawMessage
}

// Generic is any node type the server has no structural interest in.
type Generic struct {
	Type     string
	Attrs    Attrs
	Children []Node
	Text     string
	Marks    json.RawMessage
}

func (*Doc) node()       {}
func (*Heading) node()   {}
func (*Paragraph) node() {}
func (*Image) node()     {}
func (*Text) node()      {}
func (*Generic) node()   {}

// Walk visits n and its children depth first. The walk stops when fn
// returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}

	for _, child := range children(n) {
		if !Walk(child, fn) {
			return false
		}
	}

	return true
}

func children(n Node) []Node {
	switch t := n.(type) {
	case *Doc:
		return t.Children
	case *Heading:
		return t.Children
	case *Paragraph:
		return t.Children
	case *Generic:
		return t.Children
	default:
		return nil
	}
}
