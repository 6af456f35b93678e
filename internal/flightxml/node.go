// Package flightxml parses provider XML documents into a generic tree of
// attribute-bearing nodes. FlightLookup responses are namespaced and vary in
// shape between endpoints, so lookups match on local element names only and
// callers resolve fields through ordered fallbacks.
package flightxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// ErrNoDocument is returned when the input contains no root element.
var ErrNoDocument = errors.New("xml: no root element")

// Node is one element of a parsed XML document.
type Node struct {
	Name     string // local name, namespace stripped
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// Parse decodes an XML document into a Node tree rooted at the document's
// root element. Anything before the first element is ignored.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Provider feeds occasionally carry a latin-1 declaration; the payloads
	// themselves are ASCII-safe, so pass bytes through unchanged.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				Name:  t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += strings.TrimSpace(string(t))
			}
		}
	}
	if root == nil {
		return nil, ErrNoDocument
	}
	return root, nil
}

// Attr returns the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[name]
}

// FindAll returns every descendant (including n itself) whose local name
// matches, in document order.
func (n *Node) FindAll(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	n.walk(func(c *Node) {
		if c.Name == local {
			out = append(out, c)
		}
	})
	return out
}

// First returns the first descendant with the given local name, or nil.
func (n *Node) First(local string) *Node {
	nodes := n.FindAll(local)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}
