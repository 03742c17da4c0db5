// Package adf builds and flattens Atlassian Document Format trees.
//
// Only document, paragraph and text nodes are produced. Decoded documents may
// hold any node type; extraction walks them all.
package adf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node types produced or recognised by this package.
const (
	TypeDoc       = "doc"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeHardBreak = "hardBreak"
	TypeMention   = "mention"
	TypeEmoji     = "emoji"
	TypeDate      = "date"
)

// Version is the document format version written by Doc.
const Version = 1

// ParagraphBreak separates paragraphs in plain text.
const ParagraphBreak = "\n\n"

// Node is one element of a document tree.
type Node struct {
	Type    string         `json:"type"`
	Version int            `json:"version,omitempty"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Content []Node         `json:"content"`
}

// Mark is inline formatting on a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// MarshalJSON omits the content key on text nodes, which must not carry one.
func (n Node) MarshalJSON() ([]byte, error) {
	type alias Node
	if n.Type == TypeText || n.Type == TypeHardBreak {
		return json.Marshal(struct {
			alias
			Content []Node `json:"content,omitempty"`
		}{alias: alias(n)})
	}
	if n.Content == nil {
		n.Content = []Node{}
	}
	return json.Marshal(alias(n))
}

// Doc returns a version-tagged document holding blocks.
func Doc(blocks ...Node) Node {
	if blocks == nil {
		blocks = []Node{}
	}
	return Node{Type: TypeDoc, Version: Version, Content: blocks}
}

// Paragraph returns a paragraph node. Empty text yields an empty paragraph.
func Paragraph(text string) Node {
	p := Node{Type: TypeParagraph, Content: []Node{}}
	if text != "" {
		p.Content = append(p.Content, Text(text))
	}
	return p
}

// Text returns a text node.
func Text(s string) Node {
	return Node{Type: TypeText, Text: s}
}

// FromText converts plain text to a document, one paragraph per "\n\n"
// separated chunk.
func FromText(s string) Node {
	parts := strings.Split(s, ParagraphBreak)
	blocks := make([]Node, 0, len(parts))
	for _, part := range parts {
		blocks = append(blocks, Paragraph(part))
	}
	return Doc(blocks...)
}

// ToText is the inverse of FromText.
func ToText(doc Node) string {
	return Flatten(doc, ParagraphBreak)
}

// Flatten extracts the text of every top-level block and joins the blocks
// with sep.
func Flatten(doc Node, sep string) string {
	if doc.Type != TypeDoc {
		return inline(doc)
	}
	blocks := make([]string, 0, len(doc.Content))
	for _, block := range doc.Content {
		blocks = append(blocks, inline(block))
	}
	return strings.Join(blocks, sep)
}

func inline(n Node) string {
	switch n.Type {
	case TypeText:
		return n.Text
	case TypeHardBreak:
		return "\n"
	case TypeMention, TypeEmoji:
		return attrString(n.Attrs, "text")
	case TypeDate:
		return attrString(n.Attrs, "timestamp")
	}

	var b strings.Builder
	for i, child := range n.Content {
		// nested blocks (list items, table cells) go on their own line
		if i > 0 && isBlock(child.Type) {
			b.WriteString("\n")
		}
		b.WriteString(inline(child))
	}
	return b.String()
}

func isBlock(t string) bool {
	switch t {
	case TypeText, TypeHardBreak, TypeMention, TypeEmoji, TypeDate, "inlineCard", "status":
		return false
	}
	return true
}

func attrString(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}

// String encodes the document as a JSON string.
func (n Node) String() string {
	data, err := json.Marshal(n)
	if err != nil {
		return ""
	}
	return string(data)
}

// Parse decodes a document from its JSON string form.
func Parse(raw string) (Node, error) {
	var n Node
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return Node{}, fmt.Errorf("parsing document: %w", err)
	}
	return n, nil
}

// FromValue converts a decoded JSON value (map[string]any) into a Node.
func FromValue(v any) (Node, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Node{}, false
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return Node{}, false
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return Node{}, false
	}
	return n, n.Type != ""
}

// PlainText returns v as text. v may be a plain string, a document value
// decoded from JSON, a JSON-encoded document string, or nil.
func PlainText(v any, sep string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if strings.HasPrefix(strings.TrimSpace(val), `{"`) {
			if doc, err := Parse(val); err == nil && doc.Type == TypeDoc {
				return Flatten(doc, sep)
			}
		}
		return val
	case Node:
		return Flatten(val, sep)
	}
	if doc, ok := FromValue(v); ok {
		return Flatten(doc, sep)
	}
	return ""
}
