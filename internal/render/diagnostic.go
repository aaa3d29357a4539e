package render

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DiagnosticDocument returns a minimal HTML page showing cause, so a failed
// page is visible when opened in a browser. The message is escaped.
func DiagnosticDocument(cause error) []byte {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	title := element(atom.Title)
	title.AppendChild(&html.Node{Type: html.TextNode, Data: DiagnosticTitle})
	head.AppendChild(title)

	body := element(atom.Body)
	pre := element(atom.Pre)
	pre.AppendChild(&html.Node{Type: html.TextNode, Data: msg})
	body.AppendChild(pre)

	root.AppendChild(head)
	root.AppendChild(body)
	doc.AppendChild(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		// Rendering an in-memory tree only fails on writer errors.
		return []byte("<!DOCTYPE html><html><head><title>" + DiagnosticTitle + "</title></head><body><pre>" +
			html.EscapeString(msg) + "</pre></body></html>")
	}
	return buf.Bytes()
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
