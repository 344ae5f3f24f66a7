package richtext

import "strings"

const (
	// DefaultTitle is used when the document has no top-level heading.
	DefaultTitle = "Untitled"
)

// Meta is the projection of a document the article record carries alongside
// the raw content.
type Meta struct {
	Title  string
	Poster string
}

// DeriveMeta derives the article title and poster from a document. The
// title is the text of the first top-level heading, DefaultTitle when there
// is none. The poster is the source URL of the first image anywhere in the
// document, empty when there is none. The derivation never mutates the
// document and is idempotent.
func DeriveMeta(doc *Doc) Meta {
	meta := Meta{Title: DefaultTitle}
	if doc == nil {
		return meta
	}

	for _, child := range doc.Children {
		if heading, ok := child.(*Heading); ok {
			if title := strings.TrimSpace(CollectText(heading)); title != "" {
				meta.Title = title
			}
			break
		}
	}

	Walk(doc, func(n Node) bool {
		if image, ok := n.(*Image); ok {
			meta.Poster = image.Src
			return false
		}
		return true
	})

	return meta
}

// CollectText concatenates the text leaves under a node.
func CollectText(n Node) string {
	var sb strings.Builder
	Walk(n, func(child Node) bool {
		switch t := child.(type) {
		case *Text:
			sb.WriteString(t.Text)
		case *Generic:
			sb.WriteString(t.Text)
		}
		return true
	})
	return sb.String()
}
