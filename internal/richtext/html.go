package richtext

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML renders a document as a self-contained HTML page suitable for
// a ledger snapshot. The theme flag is embedded as a data attribute on the
// document body.
func RenderHTML(doc *Doc, title, theme string) []byte {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\"/>\n")
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title)))
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body data-theme=%q>\n", theme))

	if doc != nil {
		for _, child := range doc.Children {
			renderNode(&sb, child)
		}
	}

	sb.WriteString("</body>\n</html>\n")

	return []byte(sb.String())
}

func renderNode(sb *strings.Builder, n Node) {
	switch t := n.(type) {
	case *Heading:
		level := t.Level
		if level < 1 || level > 6 {
			level = 1
		}
		fmt.Fprintf(sb, "<h%d>", level)
		for _, child := range t.Children {
			renderNode(sb, child)
		}
		fmt.Fprintf(sb, "</h%d>\n", level)
	case *Paragraph:
		sb.WriteString("<p>")
		for _, child := range t.Children {
			renderNode(sb, child)
		}
		sb.WriteString("</p>\n")
	case *Image:
		fmt.Fprintf(sb, "<img src=%q/>\n", t.Src)
	case *Text:
		sb.WriteString(html.EscapeString(t.Text))
	case *Generic:
		sb.WriteString("<div>")
		sb.WriteString(html.EscapeString(t.Text))
		for _, child := range t.Children {
			renderNode(sb, child)
		}
		sb.WriteString("</div>\n")
	}
}
