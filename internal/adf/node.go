// Package adf builds and reads Atlassian Document Format documents,
// the rich-text representation Jira Cloud uses for descriptions and
// comments.
package adf

import (
	"fmt"
	"strings"
)

// Node is a single ADF node. Inline nodes carry Text and Marks, block
// nodes carry Content. The zero Version is omitted from JSON; only the
// root document node sets it.
type Node struct {
	Version int            `json:"version,omitempty"`
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Content []Node         `json:"content,omitempty"`
}

// Mark is a formatting annotation on a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Panel types accepted by Jira.
const (
	PanelInfo    = "info"
	PanelNote    = "note"
	PanelWarning = "warning"
	PanelSuccess = "success"
	PanelError   = "error"
)

// Status lozenge colors accepted by Jira.
var statusColors = map[string]bool{
	"neutral": true,
	"purple":  true,
	"blue":    true,
	"red":     true,
	"yellow":  true,
	"green":   true,
}

var panelTypes = map[string]bool{
	PanelInfo:    true,
	PanelNote:    true,
	PanelWarning: true,
	PanelSuccess: true,
	PanelError:   true,
}

// Doc wraps content in a version-1 root document node.
func Doc(content ...Node) Node {
	return Node{Version: 1, Type: "doc", Content: content}
}

// Text creates a text node, optionally formatted with marks.
func Text(text string, marks ...Mark) Node {
	return Node{Type: "text", Text: text, Marks: marks}
}

// Paragraph wraps inline content in a paragraph node.
func Paragraph(content ...Node) Node {
	return Node{Type: "paragraph", Content: content}
}

// P is a shorthand for a paragraph holding a single plain text node.
func P(text string) Node {
	return Paragraph(Text(text))
}

// Heading creates a heading node. Levels outside 1..6 are clamped.
func Heading(text string, level int) Node {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return Node{
		Type:    "heading",
		Attrs:   map[string]any{"level": level},
		Content: []Node{Text(text)},
	}
}

// CodeBlock creates a fenced code block with a language attribute.
func CodeBlock(code, language string) Node {
	if language == "" {
		language = "text"
	}
	return Node{
		Type:    "codeBlock",
		Attrs:   map[string]any{"language": language},
		Content: []Node{Text(code)},
	}
}

// Blockquote wraps block content in a quote node.
func Blockquote(content ...Node) Node {
	return Node{Type: "blockquote", Content: content}
}

// Rule creates a horizontal divider.
func Rule() Node {
	return Node{Type: "rule"}
}

// Panel wraps block content in a colored panel. Unknown panel types
// fall back to info so a bad constant never produces a document Jira
// rejects.
func Panel(panelType string, content ...Node) Node {
	if !panelTypes[panelType] {
		panelType = PanelInfo
	}
	return Node{
		Type:    "panel",
		Attrs:   map[string]any{"panelType": panelType},
		Content: content,
	}
}

// Item wraps a plain string into a list item holding one paragraph.
func Item(text string) Node {
	return Node{Type: "listItem", Content: []Node{P(text)}}
}

// ListItem wraps block content in a list item node.
func ListItem(content ...Node) Node {
	return Node{Type: "listItem", Content: content}
}

// BulletList creates an unordered list from list items.
func BulletList(items ...Node) Node {
	return Node{Type: "bulletList", Content: items}
}

// Bullets creates an unordered list from plain strings.
func Bullets(items ...string) Node {
	content := make([]Node, len(items))
	for i, s := range items {
		content[i] = Item(s)
	}
	return BulletList(content...)
}

// OrderedList creates a numbered list starting at start.
func OrderedList(start int, items ...Node) Node {
	if start < 1 {
		start = 1
	}
	return Node{
		Type:    "orderedList",
		Attrs:   map[string]any{"order": start},
		Content: items,
	}
}

// Numbered creates a numbered list from plain strings, starting at 1.
func Numbered(items ...string) Node {
	content := make([]Node, len(items))
	for i, s := range items {
		content[i] = Item(s)
	}
	return OrderedList(1, content...)
}

// Expand creates a collapsible section with a title.
func Expand(title string, content ...Node) Node {
	return Node{
		Type:    "expand",
		Attrs:   map[string]any{"title": title},
		Content: content,
	}
}

// NestedExpand creates a collapsible section usable inside table
// cells, where a plain expand is not allowed.
func NestedExpand(title string, content ...Node) Node {
	return Node{
		Type:    "nestedExpand",
		Attrs:   map[string]any{"title": title},
		Content: content,
	}
}

// Media references an uploaded attachment by its media services ID.
// mediaType is "file", "link" or "external".
func Media(id, mediaType, collection string) Node {
	return Node{
		Type: "media",
		Attrs: map[string]any{
			"id":         id,
			"type":       mediaType,
			"collection": collection,
		},
	}
}

// MediaSingle places one media item with a layout such as "center",
// "wide" or "full-width".
func MediaSingle(layout string, media Node) Node {
	return Node{
		Type:    "mediaSingle",
		Attrs:   map[string]any{"layout": layout},
		Content: []Node{media},
	}
}

// MediaGroup groups multiple media items into one block.
func MediaGroup(media ...Node) Node {
	return Node{Type: "mediaGroup", Content: media}
}

// HardBreak creates a line break inside a paragraph.
func HardBreak() Node {
	return Node{Type: "hardBreak"}
}

// Emoji creates an emoji node from its shortname, e.g. ":smile:".
// fallback is the plain-text rendering and may be empty.
func Emoji(shortName, fallback string) Node {
	attrs := map[string]any{"shortName": shortName}
	if fallback != "" {
		attrs["text"] = fallback
	}
	return Node{Type: "emoji", Attrs: attrs}
}

// Mention creates a user mention node.
func Mention(accountID, displayText string) Node {
	return Node{
		Type: "mention",
		Attrs: map[string]any{
			"id":          accountID,
			"text":        displayText,
			"accessLevel": "CONTAINER",
			"userType":    "DEFAULT",
		},
	}
}

// DateStamp creates a date node from an ISO 8601 string or millisecond
// unix timestamp.
func DateStamp(timestamp string) Node {
	return Node{Type: "date", Attrs: map[string]any{"timestamp": timestamp}}
}

// StatusLozenge creates a status lozenge. Unknown colors fall back to
// neutral.
func StatusLozenge(text, color string) Node {
	if !statusColors[color] {
		color = "neutral"
	}
	return Node{
		Type: "status",
		Attrs: map[string]any{
			"text":  text,
			"color": color,
			"style": "bold",
		},
	}
}

// InlineCard creates a smart-link card for a URL.
func InlineCard(url string) Node {
	return Node{Type: "inlineCard", Attrs: map[string]any{"url": url}}
}

// Table creates a table node from rows.
func Table(rows ...Node) Node {
	return Node{
		Type: "table",
		Attrs: map[string]any{
			"isNumberColumnEnabled": false,
			"layout":                "default",
		},
		Content: rows,
	}
}

// Row creates a table row of plain-text cells.
func Row(cells ...string) Node {
	content := make([]Node, len(cells))
	for i, s := range cells {
		content[i] = Node{Type: "tableCell", Content: []Node{P(s)}}
	}
	return Node{Type: "tableRow", Content: content}
}

// HeaderRow creates a table row of header cells.
func HeaderRow(cells ...string) Node {
	content := make([]Node, len(cells))
	for i, s := range cells {
		content[i] = Node{Type: "tableHeader", Content: []Node{P(s)}}
	}
	return Node{Type: "tableRow", Content: content}
}

// Strong marks text bold.
func Strong() Mark { return Mark{Type: "strong"} }

// Em marks text italic.
func Em() Mark { return Mark{Type: "em"} }

// Code marks text as inline code.
func Code() Mark { return Mark{Type: "code"} }

// Strike marks text struck through.
func Strike() Mark { return Mark{Type: "strike"} }

// Underline marks text underlined.
func Underline() Mark { return Mark{Type: "underline"} }

// Link marks text as a hyperlink. title may be empty.
func Link(href, title string) Mark {
	attrs := map[string]any{"href": href}
	if title != "" {
		attrs["title"] = title
	}
	return Mark{Type: "link", Attrs: attrs}
}

// Subsup marks text as subscript or superscript. position must be
// "sub" or "sup".
func Subsup(position string) (Mark, error) {
	if position != "sub" && position != "sup" {
		return Mark{}, fmt.Errorf("subsup position %q, want sub or sup", position)
	}
	return Mark{Type: "subsup", Attrs: map[string]any{"type": position}}, nil
}

// TextColor colors text with a hex code like "#ff0000".
func TextColor(color string) (Mark, error) {
	if !strings.HasPrefix(color, "#") {
		return Mark{}, fmt.Errorf("text color %q is not a hex code", color)
	}
	return Mark{Type: "textColor", Attrs: map[string]any{"color": color}}, nil
}

// BackgroundColor highlights text with a hex background color.
func BackgroundColor(color string) (Mark, error) {
	if !strings.HasPrefix(color, "#") {
		return Mark{}, fmt.Errorf("background color %q is not a hex code", color)
	}
	return Mark{Type: "backgroundColor", Attrs: map[string]any{"color": color}}, nil
}

// Bold creates a bold text node.
func Bold(text string) Node { return Text(text, Strong()) }

// Italic creates an italic text node.
func Italic(text string) Node { return Text(text, Em()) }

// CodeText creates an inline-code text node.
func CodeText(text string) Node { return Text(text, Code()) }

// LinkText creates a hyperlinked text node.
func LinkText(text, href string) Node { return Text(text, Link(href, "")) }

// Validate checks that n is a well-formed root document: a version-1
// doc node whose panels and headings carry valid attributes.
func Validate(n Node) error {
	if n.Type != "doc" {
		return fmt.Errorf("root node type is %q, want doc", n.Type)
	}
	if n.Version != 1 {
		return fmt.Errorf("document version is %d, want 1", n.Version)
	}
	return validateContent(n.Content)
}

func validateContent(nodes []Node) error {
	for _, n := range nodes {
		switch n.Type {
		case "doc":
			return fmt.Errorf("nested doc node")
		case "panel":
			pt, _ := n.Attrs["panelType"].(string)
			if !panelTypes[pt] {
				return fmt.Errorf("invalid panel type %q", pt)
			}
		case "heading":
			// Built documents carry int levels; JSON-decoded ones float64.
			var level int
			switch v := n.Attrs["level"].(type) {
			case int:
				level = v
			case float64:
				level = int(v)
			}
			if level != 0 && (level < 1 || level > 6) {
				return fmt.Errorf("heading level %d out of range", level)
			}
		case "text":
			if n.Text == "" {
				return fmt.Errorf("empty text node")
			}
		}
		if err := validateContent(n.Content); err != nil {
			return err
		}
	}
	return nil
}
