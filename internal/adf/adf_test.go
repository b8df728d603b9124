package adf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimple_ProducesVersionedDoc(t *testing.T) {
	doc := Simple("hello world")

	assert.Equal(t, "doc", doc.Type)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Content, 1)
	assert.Equal(t, "paragraph", doc.Content[0].Type)
	assert.Equal(t, "hello world", doc.Content[0].Content[0].Text)
	require.NoError(t, Validate(doc))
}

func TestText_MarshalsMarks(t *testing.T) {
	node := Text("important", Strong(), Link("https://example.com", "Example"))

	data, err := json.Marshal(node)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "text", got["type"])
	assert.Equal(t, "important", got["text"])

	marks := got["marks"].([]any)
	require.Len(t, marks, 2)
	link := marks[1].(map[string]any)
	assert.Equal(t, "link", link["type"])
	assert.Equal(t, "https://example.com", link["attrs"].(map[string]any)["href"])
}

func TestPlainNodes_OmitEmptyFields(t *testing.T) {
	data, err := json.Marshal(Rule())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rule"}`, string(data))

	data, err = json.Marshal(HardBreak())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"hardBreak"}`, string(data))
}

func TestHeading_ClampsLevel(t *testing.T) {
	assert.Equal(t, 1, Heading("x", 0).Attrs["level"])
	assert.Equal(t, 6, Heading("x", 9).Attrs["level"])
	assert.Equal(t, 3, Heading("x", 3).Attrs["level"])
}

func TestPanel_UnknownTypeFallsBackToInfo(t *testing.T) {
	p := Panel("shiny", P("body"))
	assert.Equal(t, "info", p.Attrs["panelType"])
}

func TestTextColor_RejectsNonHex(t *testing.T) {
	_, err := TextColor("red")
	assert.Error(t, err)

	mark, err := TextColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", mark.Attrs["color"])
}

func TestValidate_RejectsBadDocuments(t *testing.T) {
	assert.Error(t, Validate(P("not a doc")))
	assert.Error(t, Validate(Node{Type: "doc", Version: 2}))
	assert.Error(t, Validate(Doc(Doc())))
	assert.Error(t, Validate(Doc(Paragraph(Node{Type: "text"}))))

	bad := Doc(Node{Type: "panel", Attrs: map[string]any{"panelType": "shiny"}})
	assert.Error(t, Validate(bad))

	// Heading levels are range-checked for both built documents (int
	// attrs) and JSON-decoded ones (float64 attrs).
	assert.Error(t, Validate(Doc(Node{Type: "heading", Attrs: map[string]any{"level": 7}})))
	var decoded Node
	raw := `{"type":"doc","version":1,"content":[{"type":"heading","attrs":{"level":9},"content":[{"type":"text","text":"x"}]}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Error(t, Validate(decoded))
}

func TestMediaNodes(t *testing.T) {
	media := Media("abc-123", "file", "attachments")
	assert.Equal(t, "media", media.Type)
	assert.Equal(t, "abc-123", media.Attrs["id"])

	single := MediaSingle("center", media)
	assert.Equal(t, "mediaSingle", single.Type)
	assert.Equal(t, "center", single.Attrs["layout"])
	require.Len(t, single.Content, 1)

	group := MediaGroup(media, Media("def-456", "file", "attachments"))
	assert.Equal(t, "mediaGroup", group.Type)
	assert.Len(t, group.Content, 2)

	require.NoError(t, Validate(Doc(single, group)))
}

func TestNestedExpand(t *testing.T) {
	cell := NestedExpand("Details", P("hidden"))
	assert.Equal(t, "nestedExpand", cell.Type)
	assert.Equal(t, "Details", cell.Attrs["title"])
	require.Len(t, cell.Content, 1)
}

func TestSubsup(t *testing.T) {
	sup, err := Subsup("sup")
	require.NoError(t, err)
	assert.Equal(t, "subsup", sup.Type)
	assert.Equal(t, "sup", sup.Attrs["type"])

	_, err = Subsup("middle")
	require.Error(t, err)
}

func TestBuilder_ChainsSections(t *testing.T) {
	doc := NewBuilder().
		Heading("Release Notes", 1).
		Text("Changes in this release:").
		BulletList("Faster search", "Bug fixes").
		CodeBlock(`jira-tool search "project = PROJ"`, "bash").
		Build()

	require.NoError(t, Validate(doc))
	require.Len(t, doc.Content, 4)
	assert.Equal(t, "heading", doc.Content[0].Type)
	assert.Equal(t, "bulletList", doc.Content[2].Type)
	assert.Len(t, doc.Content[2].Content, 2)
	assert.Equal(t, "codeBlock", doc.Content[3].Type)
	assert.Equal(t, "bash", doc.Content[3].Attrs["language"])
}

func TestIssueBuilder_Layout(t *testing.T) {
	doc := NewIssueBuilder("Add login form", "Frontend", 3, "PROJ-123").
		Description("Create a responsive login form component").
		ImplementationDetails("Use controlled inputs", "Add validation").
		AcceptanceCriteria("Form validates email", "Shows errors").
		Build()

	require.NoError(t, Validate(doc))
	assert.Equal(t, "📋 Add login form", doc.Content[0].Content[0].Text)

	// Header panel carries component, points and epic.
	header := doc.Content[1]
	assert.Equal(t, "panel", header.Type)
	assert.Equal(t, "info", header.Attrs["panelType"])
	text := ExtractText(mustMarshal(t, doc))
	assert.Contains(t, text, "Component: Frontend")
	assert.Contains(t, text, "Story Points: 3")
	assert.Contains(t, text, "Epic: PROJ-123")
	assert.Contains(t, text, "Acceptance Criteria")
}

func TestIssueBuilder_DefaultsForMissingFields(t *testing.T) {
	doc := NewIssueBuilder("Small fix", "Backend", 0, "").Build()
	text := ExtractText(mustMarshal(t, doc))
	assert.Contains(t, text, "Story Points: TBD")
	assert.Contains(t, text, "Epic: None")
}

func TestEpicBuilder_Layout(t *testing.T) {
	doc := NewEpicBuilder("User Authentication", "P1", "Auth0 SDK", "").
		ProblemStatement("Users cannot securely log in").
		TechnicalDetails("Integrate Auth0", "Add JWT validation").
		OutOfScope("SSO federation").
		Build()

	require.NoError(t, Validate(doc))
	text := ExtractText(mustMarshal(t, doc))
	assert.Contains(t, text, "Priority: P1")
	assert.Contains(t, text, "Dependencies: Auth0 SDK")
	assert.Contains(t, text, "Services: TBD")
	assert.Contains(t, text, "Problem Statement")
	assert.Contains(t, text, "Out of Scope")
}

func TestSubtaskBuilder_OmitsZeroEstimate(t *testing.T) {
	withEstimate := NewSubtaskBuilder("Validate email", "PROJ-456", 1.5).Build()
	text := ExtractText(mustMarshal(t, withEstimate))
	assert.Contains(t, text, "Parent: PROJ-456")
	assert.Contains(t, text, "Estimate: 1.5h")

	without := NewSubtaskBuilder("Validate email", "", 0).Build()
	text = ExtractText(mustMarshal(t, without))
	assert.Contains(t, text, "Parent: None")
	assert.NotContains(t, text, "Estimate")
}

func TestExtractText_PlainStringPassesThrough(t *testing.T) {
	assert.Equal(t, "just text", ExtractText(json.RawMessage(`"just text"`)))
}

func TestExtractText_EmptyAndMalformedInput(t *testing.T) {
	assert.Equal(t, "", ExtractText(nil))
	assert.Equal(t, "", ExtractText(json.RawMessage(`{"type":"paragraph"}`)))
	assert.Equal(t, "", ExtractText(json.RawMessage(`{broken`)))
	assert.Equal(t, "", ExtractText(json.RawMessage(`42`)))
}

func TestExtractText_RendersBlockStructure(t *testing.T) {
	doc := Doc(
		Heading("Overview", 2),
		P("First paragraph."),
		Bullets("alpha", "beta"),
		Numbered("one", "two"),
		CodeBlock("select 1", "sql"),
		Panel(PanelWarning, P("careful")),
	)

	text := ExtractText(mustMarshal(t, doc))
	assert.Contains(t, text, "## Overview")
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "• alpha")
	assert.Contains(t, text, "• beta")
	assert.Contains(t, text, "1. one")
	assert.Contains(t, text, "2. two")
	assert.Contains(t, text, "```sql\nselect 1\n```")
	assert.Contains(t, text, "[WARNING]")
}

func TestExtractText_OrderedListHonorsStart(t *testing.T) {
	doc := Doc(OrderedList(5, Item("five"), Item("six")))
	text := ExtractText(mustMarshal(t, doc))
	assert.Contains(t, text, "5. five")
	assert.Contains(t, text, "6. six")
}

func TestExtractText_EmojiAndMention(t *testing.T) {
	doc := Doc(Paragraph(
		Emoji(":smile:", "😄"),
		Text(" ping "),
		Mention("abc123", "@dana"),
	))
	text := ExtractText(mustMarshal(t, doc))
	assert.Equal(t, "😄 ping @dana", text)
}

func TestRoundTrip_ThroughJSON(t *testing.T) {
	doc := NewBuilder().
		Heading("Title", 1).
		Paragraph(Bold("bold"), Text(" and "), Italic("italic")).
		Build()

	data := mustMarshal(t, doc)
	var back Node
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "doc", back.Type)
	assert.Equal(t, 1, back.Version)
	assert.Equal(t, "Title", back.Content[0].Content[0].Text)
	assert.Equal(t, "strong", back.Content[1].Content[0].Marks[0].Type)
}

func mustMarshal(t *testing.T, doc Node) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}
