package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskgrid/internal/tree"
)

type styles struct {
	title   lipgloss.Style
	pointer lipgloss.Style
	chip    lipgloss.Style
	large   lipgloss.Style
	medium  lipgloss.Style
	small   lipgloss.Style
	done    lipgloss.Style
	meta    lipgloss.Style
	label   lipgloss.Style
	status  lipgloss.Style
	err     lipgloss.Style
	prompt  lipgloss.Style
	footer  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		pointer: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		chip:    lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("110")),
		large:   lipgloss.NewStyle().Bold(true),
		medium:  lipgloss.NewStyle(),
		small:   lipgloss.NewStyle().Faint(true),
		done:    lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("242")),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		label:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("246")),
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		prompt:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		footer:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("taskgrid"))
	b.WriteString("\n\n")

	if m.showHelp {
		writeHelp(&b, m.styles)
		return b.String()
	}

	for i, n := range m.rows {
		b.WriteString(m.renderRow(i, n))
		b.WriteString("\n")
	}
	if !m.app.ShowCompleted() {
		hidden := tree.CountNodes(m.app.Root()) - len(m.rows)
		if hidden > 0 {
			b.WriteString(m.styles.meta.Render(fmt.Sprintf("  %d completed hidden (c to show)", hidden)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if n := m.selected(); n != nil {
		m.writeDetail(&b, n)
	}

	switch m.mode {
	case modeEdit:
		label := "Title"
		if m.field == editDescription {
			label = "Description"
		}
		b.WriteString(m.styles.prompt.Render(label) + "\n")
		b.WriteString(m.input.View() + "\n")
		b.WriteString(m.styles.footer.Render("enter save · esc cancel") + "\n")
		return b.String()
	case modeConfirm:
		if m.confirm != nil {
			b.WriteString(m.styles.prompt.Render(m.confirm.prompt) + "\n")
		}
		return b.String()
	}

	if m.status != "" {
		style := m.styles.status
		if m.isErr {
			style = m.styles.err
		}
		b.WriteString(style.Render(m.status) + "\n")
	}
	b.WriteString(m.styles.footer.Render("s split · u unsplit · space done · e title · d desc · ? help · q quit") + "\n")
	return b.String()
}

func (m *tuiModel) renderRow(i int, n *tree.Node) string {
	limits := m.app.Model().Limits()

	pointer := "  "
	if i == m.cursor {
		pointer = m.styles.pointer.Render("> ")
	}
	box := "[ ]"
	if n.Completed {
		box = "[x]"
	}
	marker := " "
	if !n.IsLeaf() {
		marker = "▾"
	}

	title := m.fontStyle(n, limits).Render(n.DisplayTitle())
	chip := m.styles.chip.Render(fmt.Sprintf(" L%d ", n.Depth))
	meta := m.styles.meta.Render(fmt.Sprintf("d%d p%d %dpx", n.Difficulty, n.Priority, limits.FontSize(n.Depth)))

	return fmt.Sprintf("%s%s%s %s %s %s  %s", pointer, strings.Repeat("  ", n.Depth), marker, box, chip, title, meta)
}

// fontStyle maps the node's computed font size onto terminal emphasis.
func (m *tuiModel) fontStyle(n *tree.Node, limits tree.Limits) lipgloss.Style {
	if n.Completed {
		return m.styles.done
	}
	size := limits.FontSize(n.Depth)
	switch {
	case size >= limits.BaseFont:
		return m.styles.large
	case size <= limits.MinFont:
		return m.styles.small
	}
	return m.styles.medium
}

func (m *tuiModel) writeDetail(b *strings.Builder, n *tree.Node) {
	limits := m.app.Model().Limits()
	label := m.styles.label.Render

	desc := n.Description
	if strings.TrimSpace(desc) == "" {
		desc = m.styles.meta.Render("(no description)")
	}
	fmt.Fprintf(b, "%s %s\n", label("Task:"), n.DisplayTitle())
	fmt.Fprintf(b, "%s %s\n", label("Notes:"), desc)
	fmt.Fprintf(b, "%s %s  %s %d of %d\n",
		label("Difficulty:"), difficultyDots(n.Difficulty),
		label("Priority:"), n.Priority, tree.CountNodes(m.app.Root()))

	splitInfo := "yes (s)"
	if err := m.app.Model().CheckSplit(n); err != nil {
		splitInfo = "no, " + splitReason(err)
	}
	fmt.Fprintf(b, "%s %d  %s %dpx  %s %s\n\n",
		label("Depth:"), n.Depth,
		label("Font:"), limits.FontSize(n.Depth),
		label("Split:"), splitInfo)
}

func splitReason(err error) string {
	switch {
	case errors.Is(err, tree.ErrAlreadySplit):
		return "already split (u to unsplit)"
	case errors.Is(err, tree.ErrCompleted):
		return "completed"
	}
	return err.Error()
}

func difficultyDots(d int) string {
	if d < tree.MinDifficulty {
		d = tree.MinDifficulty
	}
	if d > tree.MaxDifficulty {
		d = tree.MaxDifficulty
	}
	return strings.Repeat("●", d) + strings.Repeat("○", tree.MaxDifficulty-d)
}

func writeHelp(b *strings.Builder, st styles) {
	b.WriteString(st.label.Render("Keyboard Shortcuts") + "\n\n")
	rows := [][2]string{
		{"↑/k, ↓/j", "Move"},
		{"g, G", "First / last task"},
		{"s", "Split task into 2 sub-tasks"},
		{"u", "Unsplit (removes sub-tasks, asks first)"},
		{"space, x", "Toggle done"},
		{"e", "Edit title"},
		{"d", "Edit description"},
		{"+, -", "Difficulty up / down"},
		{">, <", "Priority up / down"},
		{"c", "Show / hide completed tasks"},
		{"R", "Reset goal"},
		{"C", "Clear saved data"},
		{"?", "Toggle this help"},
		{"q, ctrl+c", "Quit"},
	}
	for _, r := range rows {
		fmt.Fprintf(b, "  %-12s %s\n", r[0], r[1])
	}
	b.WriteString("\n" + st.footer.Render("Press ? or esc to close") + "\n")
}
