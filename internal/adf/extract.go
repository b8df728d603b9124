package adf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractText flattens an ADF document fetched from Jira into plain
// text. raw is the JSON description or comment body; plain JSON
// strings pass through unchanged and anything unrecognized renders
// empty.
func ExtractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return extractValue(v)
}

func extractValue(v any) string {
	switch doc := v.(type) {
	case string:
		return doc
	case map[string]any:
		if doc["type"] != "doc" {
			return ""
		}
		var b strings.Builder
		for _, child := range contentOf(doc) {
			extractNode(child, &b)
		}
		return strings.TrimSpace(b.String())
	default:
		return ""
	}
}

func contentOf(node map[string]any) []map[string]any {
	raw, _ := node["content"].([]any)
	content := make([]map[string]any, 0, len(raw))
	for _, c := range raw {
		if m, ok := c.(map[string]any); ok {
			content = append(content, m)
		}
	}
	return content
}

func attrOf(node map[string]any, key string) any {
	attrs, _ := node["attrs"].(map[string]any)
	return attrs[key]
}

func extractNode(node map[string]any, b *strings.Builder) {
	switch node["type"] {
	case "text":
		text, _ := node["text"].(string)
		b.WriteString(text)
	case "hardBreak":
		b.WriteString("\n")
	case "paragraph":
		ensureNewline(b)
		for _, child := range contentOf(node) {
			extractNode(child, b)
		}
		b.WriteString("\n")
	case "heading":
		level := 1
		if f, ok := attrOf(node, "level").(float64); ok {
			level = int(f)
		}
		ensureNewline(b)
		b.WriteString(strings.Repeat("#", level) + " ")
		for _, child := range contentOf(node) {
			extractNode(child, b)
		}
		b.WriteString("\n")
	case "bulletList":
		for _, item := range contentOf(node) {
			extractListItem(item, "•", b)
		}
	case "orderedList":
		start := 1
		if f, ok := attrOf(node, "order").(float64); ok {
			start = int(f)
		}
		for i, item := range contentOf(node) {
			extractListItem(item, fmt.Sprintf("%d.", start+i), b)
		}
	case "codeBlock":
		lang, _ := attrOf(node, "language").(string)
		b.WriteString("\n```" + lang + "\n")
		for _, child := range contentOf(node) {
			extractNode(child, b)
		}
		b.WriteString("\n```\n")
	case "panel":
		panelType, _ := attrOf(node, "panelType").(string)
		if panelType == "" {
			panelType = "info"
		}
		b.WriteString("\n[" + strings.ToUpper(panelType) + "]\n")
		for _, child := range contentOf(node) {
			extractNode(child, b)
		}
		b.WriteString("\n")
	case "emoji":
		if text, ok := attrOf(node, "text").(string); ok && text != "" {
			b.WriteString(text)
		} else if short, ok := attrOf(node, "shortName").(string); ok {
			b.WriteString(short)
		}
	case "mention":
		if text, ok := attrOf(node, "text").(string); ok {
			b.WriteString(text)
		}
	default:
		for _, child := range contentOf(node) {
			extractNode(child, b)
		}
	}
}

func extractListItem(item map[string]any, bullet string, b *strings.Builder) {
	var text strings.Builder
	for _, child := range contentOf(item) {
		for _, sub := range contentOf(child) {
			if sub["type"] == "text" {
				s, _ := sub["text"].(string)
				text.WriteString(s)
			}
		}
	}
	ensureNewline(b)
	b.WriteString(bullet + " " + text.String())
}

func ensureNewline(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
}
