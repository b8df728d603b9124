package export

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIssues(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"key":"PROJ-1","fields":{"summary":"First"}}`),
		json.RawMessage(`{"key":"PROJ-2","fields":{"customfield_10042":"special"}}`),
	}

	issues, err := DecodeIssues(raw)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "PROJ-1", issues[0]["key"])
	fields := issues[1]["fields"].(map[string]any)
	assert.Equal(t, "special", fields["customfield_10042"])

	_, err = DecodeIssues([]json.RawMessage{json.RawMessage(`{broken`)})
	assert.Error(t, err)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", nil)
	assert.ErrorContains(t, err, "xml")
}

func TestWriteJSON_IndentedArray(t *testing.T) {
	issues := []map[string]any{
		{"key": "PROJ-1", "fields": map[string]any{"summary": "Test <summary>"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, issues))

	out := buf.String()
	assert.Contains(t, out, "  \"key\": \"PROJ-1\"")
	// HTML escaping is off so angle brackets survive.
	assert.Contains(t, out, "Test <summary>")

	var back []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Len(t, back, 1)
}

func TestWriteJSON_SanitizesSpecialFloats(t *testing.T) {
	issues := []map[string]any{
		{
			"key": "PROJ-1",
			"metrics": map[string]any{
				"velocity": math.NaN(),
				"burnup":   math.Inf(1),
				"points":   3.5,
			},
			"samples": []any{math.Inf(-1), 1.0},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, issues))

	var back []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	metrics := back[0]["metrics"].(map[string]any)
	assert.Nil(t, metrics["velocity"])
	assert.Nil(t, metrics["burnup"])
	assert.Equal(t, 3.5, metrics["points"])
	samples := back[0]["samples"].([]any)
	assert.Nil(t, samples[0])
	assert.Equal(t, 1.0, samples[1])
}

func TestWriteJSONL_OneObjectPerLine(t *testing.T) {
	issues := []map[string]any{
		{"key": "PROJ-1"},
		{"key": "PROJ-2"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, issues))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for i, line := range lines {
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &obj), "line %d", i)
	}
}

func TestFlatten_DotNotation(t *testing.T) {
	flat := Flatten(map[string]any{
		"key": "PROJ-1",
		"fields": map[string]any{
			"summary": "Test",
			"status":  map[string]any{"name": "Done"},
			"votes":   2.0,
			"archived": false,
			"due":     nil,
		},
	})

	assert.Equal(t, "PROJ-1", flat["key"])
	assert.Equal(t, "Test", flat["fields.summary"])
	assert.Equal(t, "Done", flat["fields.status.name"])
	assert.Equal(t, "2", flat["fields.votes"])
	assert.Equal(t, "false", flat["fields.archived"])
	assert.Equal(t, "", flat["fields.due"])
}

func TestFlatten_ListHandling(t *testing.T) {
	flat := Flatten(map[string]any{
		"labels": []any{"infra", "backend"},
		"components": []any{
			map[string]any{"name": "API", "id": "1"},
			map[string]any{"name": "DB", "id": "2"},
		},
		"attachments": []any{
			map[string]any{"filename": "log.txt"},
		},
		"watchers": []any{
			map[string]any{"displayName": "Dana"},
		},
		"empty": []any{},
	})

	assert.Equal(t, "infra;backend", flat["labels"])
	assert.Equal(t, "API;DB", flat["components"])
	assert.Equal(t, "log.txt", flat["attachments"])
	assert.Equal(t, "Dana", flat["watchers"])
	assert.Equal(t, "", flat["empty"])
}

func TestFlatten_DepthCapStringifies(t *testing.T) {
	deep := map[string]any{"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": map[string]any{"e": map[string]any{"f": "bottom"}}}}}}

	flat := Flatten(deep)
	require.Len(t, flat, 1)
	// The level-5 map is stringified rather than descended into.
	assert.Contains(t, flat["a.b.c.d.e"], "bottom")
}

func TestWriteCSV_UnionHeaderAcrossIssues(t *testing.T) {
	issues := []map[string]any{
		{"key": "PROJ-1", "fields": map[string]any{"summary": "First", "customfield_10042": "x"}},
		{"key": "PROJ-2", "fields": map[string]any{"summary": "Second", "priority": map[string]any{"name": "High"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, issues))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "fields.customfield_10042,fields.priority.name,fields.summary,key", lines[0])
	assert.Equal(t, "x,,First,PROJ-1", lines[1])
	assert.Equal(t, ",High,Second,PROJ-2", lines[2])
}

func TestWriteCSV_EmptyInputWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestWriteCSV_ProtectsFormulaInjection(t *testing.T) {
	issues := []map[string]any{
		{"summary": "=HYPERLINK(\"http://evil\")", "note": "+1 looks fine", "safe": "plain"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, issues))

	out := buf.String()
	assert.Contains(t, out, `'=HYPERLINK`)
	assert.Contains(t, out, "'+1 looks fine")
	assert.Contains(t, out, "plain")
	assert.NotContains(t, out, ",=HYPERLINK")
}

func TestProtectCell(t *testing.T) {
	assert.Equal(t, "'=cmd", protectCell("=cmd"))
	assert.Equal(t, "'-2", protectCell("-2"))
	assert.Equal(t, "'@import", protectCell("@import"))
	assert.Equal(t, "'+sum", protectCell("+sum"))
	assert.Equal(t, "hello", protectCell("hello"))
	assert.Equal(t, "", protectCell(""))
}
