// Package xmltree builds attributed element trees and writes them as
// indented XML documents.
//
// The output layout is fixed because simulator tooling diffs and parses
// it: an `<?xml version="1.0" ?>` declaration, two-space indentation,
// attributes in insertion order, childless elements self-closed as
// `<name a="v"/>`, and an element whose only content is text kept on one
// line.
package xmltree

import (
	"bytes"
	"io"
	"strings"
)

// XSINamespace is the schema-instance namespace declared on document roots.
const XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Attr is a single name="value" pair.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the tree. An element has text or children; when it
// has both the text is written first on its own line.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// New creates a detached element.
func New(name string) *Element {
	return &Element{Name: name}
}

// NewDocument creates a root element carrying the xmlns:xsi declaration.
func NewDocument(name string) *Element {
	return New(name).Set("xmlns:xsi", XSINamespace)
}

// Set adds or replaces an attribute and returns e.
func (e *Element) Set(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Get returns an attribute value.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetText sets the element's text and returns e.
func (e *Element) SetText(text string) *Element {
	e.Text = text
	return e
}

// Add appends a new child element and returns it.
func (e *Element) Add(name string) *Element {
	child := New(name)
	e.Children = append(e.Children, child)
	return child
}

// AddValue appends a child carrying a single value attribute, the most
// common leaf shape in simulator files.
func (e *Element) AddValue(name, value string) *Element {
	return e.Add(name).Set("value", value)
}

// Find returns the first direct child with the given name.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child with the given name.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Encode writes root as a complete XML document.
func Encode(w io.Writer, root *Element) error {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" ?>` + "\n")
	if root != nil {
		writeElement(&buf, root, "")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Marshal returns root as a complete XML document.
func Marshal(root *Element) []byte {
	var buf bytes.Buffer
	_ = Encode(&buf, root)
	return buf.Bytes()
}

const indentUnit = "  "

func writeElement(buf *bytes.Buffer, e *Element, indent string) {
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		buf.WriteString(attrEscaper.Replace(a.Value))
		buf.WriteByte('"')
	}

	switch {
	case e.Text == "" && len(e.Children) == 0:
		buf.WriteString("/>\n")
		return
	case len(e.Children) == 0:
		buf.WriteByte('>')
		buf.WriteString(textEscaper.Replace(e.Text))
	default:
		buf.WriteString(">\n")
		inner := indent + indentUnit
		if e.Text != "" {
			buf.WriteString(inner)
			buf.WriteString(textEscaper.Replace(e.Text))
			buf.WriteByte('\n')
		}
		for _, c := range e.Children {
			writeElement(buf, c, inner)
		}
		buf.WriteString(indent)
	}
	buf.WriteString("</")
	buf.WriteString(e.Name)
	buf.WriteString(">\n")
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)
