// Package export renders fetched issues to JSON, JSONL and CSV files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

// Format names accepted on the command line. FormatTable is rendered
// by the CLI layer; Write handles the file formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// maxFlattenDepth caps CSV flattening; structures nested deeper are
// stringified in place.
const maxFlattenDepth = 5

// DecodeIssues parses raw issue documents into generic records,
// preserving every field the tracker returned including custom
// fields.
func DecodeIssues(raw []json.RawMessage) ([]map[string]any, error) {
	issues := make([]map[string]any, 0, len(raw))
	for i, r := range raw {
		var issue map[string]any
		if err := json.Unmarshal(r, &issue); err != nil {
			return nil, fmt.Errorf("decode issue %d: %w", i, err)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// Write renders issues in the named format.
func Write(w io.Writer, format string, issues []map[string]any) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, issues)
	case FormatJSONL:
		return WriteJSONL(w, issues)
	case FormatCSV:
		return WriteCSV(w, issues)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON renders issues as an indented JSON array. NaN and
// infinite floats are replaced with null so the output stays valid
// JSON.
func WriteJSON(w io.Writer, issues []map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(sanitizeValue(issues)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteJSONL renders one compact JSON object per line.
func WriteJSONL(w io.Writer, issues []map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, issue := range issues {
		if err := enc.Encode(sanitizeValue(issue)); err != nil {
			return fmt.Errorf("encode issue %d: %w", i, err)
		}
	}
	return nil
}

// sanitizeValue recursively replaces NaN and infinite floats with nil.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = sanitizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	default:
		return v
	}
}

// Flatten collapses a nested record into dot-notation keys. Lists of
// objects are reduced to a semicolon-joined summary using their name,
// filename or displayName field; lists of primitives join their
// values.
func Flatten(data map[string]any) map[string]string {
	out := make(map[string]string)
	flattenInto(out, data, "", 0)
	return out
}

func flattenInto(out map[string]string, data map[string]any, prefix string, depth int) {
	if depth >= maxFlattenDepth {
		if prefix != "" {
			out[prefix] = fmt.Sprintf("%v", data)
		}
		return
	}
	for key, value := range data {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch v := value.(type) {
		case nil:
			out[name] = ""
		case map[string]any:
			flattenInto(out, v, name, depth+1)
		case []any:
			out[name] = flattenList(v)
		case string:
			out[name] = v
		default:
			out[name] = fmt.Sprintf("%v", v)
		}
	}
}

func flattenList(items []any) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			parts = append(parts, fmt.Sprintf("%v", item))
			continue
		}
		parts = append(parts, summarizeObject(obj))
	}
	return strings.Join(parts, ";")
}

// summarizeObject picks a human-meaningful field from a list element.
func summarizeObject(obj map[string]any) string {
	for _, key := range []string{"name", "filename", "displayName"} {
		if s, ok := obj[key].(string); ok {
			return s
		}
	}
	// First string value, in deterministic key order.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", obj)
}

// protectCell guards against spreadsheet formula injection: cells
// starting with =, +, - or @ get a leading apostrophe.
func protectCell(value string) string {
	if value != "" && strings.ContainsRune("=+-@", rune(value[0])) {
		return "'" + value
	}
	return value
}
