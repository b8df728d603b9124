package adf

import "fmt"

// Builder accumulates block nodes and assembles them into a document.
// Methods return the builder so calls chain.
type Builder struct {
	content []Node
}

// NewBuilder creates an empty document builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Heading appends a heading.
func (b *Builder) Heading(text string, level int) *Builder {
	b.content = append(b.content, Heading(text, level))
	return b
}

// Paragraph appends a paragraph of inline nodes.
func (b *Builder) Paragraph(content ...Node) *Builder {
	b.content = append(b.content, Paragraph(content...))
	return b
}

// Text appends a single-paragraph of plain text.
func (b *Builder) Text(text string) *Builder {
	b.content = append(b.content, P(text))
	return b
}

// CodeBlock appends a fenced code block.
func (b *Builder) CodeBlock(code, language string) *Builder {
	b.content = append(b.content, CodeBlock(code, language))
	return b
}

// Blockquote appends a quote of block nodes.
func (b *Builder) Blockquote(content ...Node) *Builder {
	b.content = append(b.content, Blockquote(content...))
	return b
}

// Rule appends a horizontal divider.
func (b *Builder) Rule() *Builder {
	b.content = append(b.content, Rule())
	return b
}

// Panel appends a colored panel of block nodes.
func (b *Builder) Panel(panelType string, content ...Node) *Builder {
	b.content = append(b.content, Panel(panelType, content...))
	return b
}

// BulletList appends an unordered list of plain strings.
func (b *Builder) BulletList(items ...string) *Builder {
	b.content = append(b.content, Bullets(items...))
	return b
}

// OrderedList appends a numbered list of plain strings.
func (b *Builder) OrderedList(items ...string) *Builder {
	b.content = append(b.content, Numbered(items...))
	return b
}

// Expand appends a collapsible section.
func (b *Builder) Expand(title string, content ...Node) *Builder {
	b.content = append(b.content, Expand(title, content...))
	return b
}

// Table appends a table of rows.
func (b *Builder) Table(rows ...Node) *Builder {
	b.content = append(b.content, Table(rows...))
	return b
}

// Add appends an arbitrary block node.
func (b *Builder) Add(n Node) *Builder {
	b.content = append(b.content, n)
	return b
}

// Build assembles the accumulated content into a root document.
func (b *Builder) Build() Node {
	return Doc(b.content...)
}

// Simple builds a one-paragraph document from plain text. Jira accepts
// it anywhere a description or comment body is required.
func Simple(text string) Node {
	return Doc(P(text))
}

// IssueBuilder lays out Task and Story descriptions: a titled header
// with an info panel carrying component, story points and epic link,
// followed by optional structured sections.
type IssueBuilder struct {
	*Builder
}

// NewIssueBuilder starts an issue document. storyPoints zero and
// epicKey empty render as TBD and None.
func NewIssueBuilder(title, component string, storyPoints int, epicKey string) *IssueBuilder {
	points := "TBD"
	if storyPoints > 0 {
		points = fmt.Sprintf("%d", storyPoints)
	}
	if epicKey == "" {
		epicKey = "None"
	}
	b := NewBuilder().
		Heading("📋 "+title, 1).
		Panel(PanelInfo, Paragraph(
			Bold("⚙️ Component: "), Text(component),
			Text(" | "),
			Bold("📊 Story Points: "), Text(points),
			Text(" | "),
			Bold("🔗 Epic: "), Text(epicKey),
		))
	return &IssueBuilder{Builder: b}
}

// Description adds the description section in a note panel.
func (b *IssueBuilder) Description(text string) *IssueBuilder {
	b.Heading("📋 Description", 2).Panel(PanelNote, P(text))
	return b
}

// ImplementationDetails adds an info panel of implementation bullets.
func (b *IssueBuilder) ImplementationDetails(details ...string) *IssueBuilder {
	b.Heading("🔧 Implementation Details", 2).Panel(PanelInfo, Bullets(details...))
	return b
}

// AcceptanceCriteria adds a success panel with a numbered criteria list.
func (b *IssueBuilder) AcceptanceCriteria(criteria ...string) *IssueBuilder {
	b.Heading("✅ Acceptance Criteria", 2).Panel(PanelSuccess, Numbered(criteria...))
	return b
}

// TechnicalNotes adds a note panel of technical bullets.
func (b *IssueBuilder) TechnicalNotes(notes ...string) *IssueBuilder {
	b.Heading("📝 Technical Notes", 2).Panel(PanelNote, Bullets(notes...))
	return b
}

// Dependencies adds a warning panel listing blocking work.
func (b *IssueBuilder) Dependencies(deps ...string) *IssueBuilder {
	b.Heading("🔗 Dependencies", 2).Panel(PanelWarning, Bullets(deps...))
	return b
}

// TestingNotes adds an info panel of testing bullets.
func (b *IssueBuilder) TestingNotes(notes ...string) *IssueBuilder {
	b.Heading("🧪 Testing Notes", 2).Panel(PanelInfo, Bullets(notes...))
	return b
}

// EpicBuilder lays out Epic descriptions: a titled header with a
// warning panel carrying priority, dependencies and affected services.
type EpicBuilder struct {
	*Builder
}

// NewEpicBuilder starts an epic document. Empty dependencies and
// services render as None and TBD.
func NewEpicBuilder(title, priority, dependencies, services string) *EpicBuilder {
	if dependencies == "" {
		dependencies = "None"
	}
	if services == "" {
		services = "TBD"
	}
	b := NewBuilder().
		Heading("🚀 "+title, 1).
		Panel(PanelWarning, Paragraph(
			Bold("⚠️ Priority: "), Text(priority),
			Text(" | "),
			Bold("🔗 Dependencies: "), Text(dependencies),
			Text(" | "),
			Bold("⚙️ Services: "), Text(services),
		))
	return &EpicBuilder{Builder: b}
}

// ProblemStatement adds the problem statement in a note panel.
func (b *EpicBuilder) ProblemStatement(problem string) *EpicBuilder {
	b.Heading("⚠️ Problem Statement", 2).Panel(PanelNote, P(problem))
	return b
}

// Description adds a free-form description paragraph.
func (b *EpicBuilder) Description(text string) *EpicBuilder {
	b.Heading("📋 Description", 2).Text(text)
	return b
}

// TechnicalDetails adds the implementation requirements panel.
func (b *EpicBuilder) TechnicalDetails(requirements ...string) *EpicBuilder {
	b.Heading("🔧 Technical Details", 2).
		Panel(PanelInfo,
			Paragraph(Bold("Implementation Requirements:")),
			Bullets(requirements...),
		)
	return b
}

// AcceptanceCriteria adds a success panel with a numbered criteria list.
func (b *EpicBuilder) AcceptanceCriteria(criteria ...string) *EpicBuilder {
	b.Heading("✅ Acceptance Criteria", 2).Panel(PanelSuccess, Numbered(criteria...))
	return b
}

// EdgeCases adds a note panel of edge-case bullets.
func (b *EpicBuilder) EdgeCases(cases ...string) *EpicBuilder {
	b.Heading("⚡ Edge Cases", 2).Panel(PanelNote, Bullets(cases...))
	return b
}

// OutOfScope adds an error panel clarifying excluded work.
func (b *EpicBuilder) OutOfScope(items ...string) *EpicBuilder {
	b.Heading("🚫 Out of Scope", 2).Panel(PanelError, Bullets(items...))
	return b
}

// SuccessMetrics adds an info panel of metric bullets.
func (b *EpicBuilder) SuccessMetrics(metrics ...string) *EpicBuilder {
	b.Heading("📊 Success Metrics", 2).Panel(PanelInfo, Bullets(metrics...))
	return b
}

// SubtaskBuilder lays out subtask descriptions with a compact header
// linking the parent issue.
type SubtaskBuilder struct {
	*Builder
}

// NewSubtaskBuilder starts a subtask document. estimatedHours zero
// omits the estimate from the header.
func NewSubtaskBuilder(title, parentKey string, estimatedHours float64) *SubtaskBuilder {
	if parentKey == "" {
		parentKey = "None"
	}
	header := []Node{
		Bold("🔗 Parent: "), Text(parentKey),
	}
	if estimatedHours > 0 {
		header = append(header,
			Text(" | "),
			Bold("⏱️ Estimate: "), Text(fmt.Sprintf("%gh", estimatedHours)),
		)
	}
	b := NewBuilder().
		Heading("📌 "+title, 1).
		Panel(PanelInfo, Paragraph(header...))
	return &SubtaskBuilder{Builder: b}
}

// Description adds a brief description paragraph.
func (b *SubtaskBuilder) Description(text string) *SubtaskBuilder {
	b.Text(text)
	return b
}

// Steps adds implementation steps as a numbered list.
func (b *SubtaskBuilder) Steps(steps ...string) *SubtaskBuilder {
	b.Heading("📝 Steps", 2).OrderedList(steps...)
	return b
}

// DoneCriteria adds the definition-of-done panel.
func (b *SubtaskBuilder) DoneCriteria(criteria ...string) *SubtaskBuilder {
	b.Heading("✅ Done When", 2).Panel(PanelSuccess, Bullets(criteria...))
	return b
}

// Blockers adds a warning panel of blocking work.
func (b *SubtaskBuilder) Blockers(blockers ...string) *SubtaskBuilder {
	b.Heading("🚧 Blockers", 2).Panel(PanelWarning, Bullets(blockers...))
	return b
}
