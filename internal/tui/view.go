package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	appTitle    = "Dental X-ray Diagnosis"
	reportTitle = "📝 Diagnostic Report"
	// wideLayoutWidth 以上左右分栏，以下上下排列
	wideLayoutWidth = 100
)

func (m Model) View() string {
	// Width 不含边框
	left := m.styles.panel.Width(m.leftWidth() - 2).Render(m.leftPane())
	right := m.styles.panel.Width(m.rightWidth() - 2).Render(m.rightPane())

	var body string
	if m.wide() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render(appTitle),
		body,
		m.help.View(m.keys),
	)
}

func (m Model) leftPane() string {
	if m.pickerOpen {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.header.Render("Choose File"),
			m.styles.muted.Render(m.picker.CurrentDirectory),
			m.picker.View(),
		)
	}

	var sections []string
	sections = append(sections, m.fileLabel(), "", m.styles.button.Render("Predict"))

	if m.loading {
		sections = append(sections, "", m.spinner.View()+m.styles.muted.Render(" Analyzing..."))
	}

	if img := m.imagePane(); img != "" {
		sections = append(sections, "", img)
	}

	return strings.Join(sections, "\n")
}

func (m Model) fileLabel() string {
	if m.selected == nil {
		return m.styles.muted.Render("No file chosen")
	}
	return m.styles.label.Render(m.selected.Name)
}

// imagePane 有标注图片时显示地址，预览就绪后附上字符画
func (m Model) imagePane() string {
	if m.annotatedURL == nil {
		return ""
	}
	lines := []string{
		m.styles.header.Render("Annotated X-ray"),
		m.styles.link.Render(*m.annotatedURL),
	}
	if m.previewEnabled && m.previewURL == *m.annotatedURL && m.previewText != "" {
		lines = append(lines, m.previewText)
	}
	return strings.Join(lines, "\n")
}

func (m Model) rightPane() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.header.Render(reportTitle),
		"",
		m.viewport.View(),
	)
}

// PlainView 非交互模式的输出：文件名、图片地址和报告
func (m Model) PlainView() string {
	var sb strings.Builder
	sb.WriteString(m.fileLabel())
	sb.WriteString("\n")
	if m.annotatedURL != nil {
		sb.WriteString("Annotated X-ray: ")
		sb.WriteString(*m.annotatedURL)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderReport(m.width))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) wide() bool {
	return m.width >= wideLayoutWidth
}

// paneWidths 宽屏时左右 2:3 分栏，含边框
func (m Model) paneWidths() (left, right int) {
	if !m.wide() {
		return m.width - 2, m.width - 2
	}
	left = m.width * 2 / 5
	right = m.width - left - 3
	return left, right
}

func (m Model) leftWidth() int {
	left, _ := m.paneWidths()
	return left
}

func (m Model) rightWidth() int {
	_, right := m.paneWidths()
	return right
}

// reportWidth 报告正文可用宽度，扣除边框和内边距
func (m Model) reportWidth() int {
	w := m.rightWidth() - 4
	if w < minRenderWidth {
		w = minRenderWidth
	}
	return w
}
