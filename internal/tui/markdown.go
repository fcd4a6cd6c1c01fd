package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/russross/blackfriday/v2"
)

const (
	// defaultMaxNesting 限制块级嵌套，低于 blackfriday 自身的 16 层上限，
	// 否则超深的内容会被解析器静默丢弃而不是报错；行内元素单独计数
	defaultMaxNesting = 10
	minRenderWidth    = 12
)

// errNestingTooDeep 嵌套过深的报告不渲染，交给渲染边界处理
var errNestingTooDeep = errors.New("markdown 嵌套层级过深")

// MarkdownRenderer 用 blackfriday 解析 Markdown，再用 lipgloss 输出终端样式
type MarkdownRenderer struct {
	heading    []lipgloss.Style
	strong     lipgloss.Style
	emph       lipgloss.Style
	del        lipgloss.Style
	code       lipgloss.Style
	codeBlock  lipgloss.Style
	link       lipgloss.Style
	quote      lipgloss.Style
	bullet     lipgloss.Style
	rule       lipgloss.Style
	tableHead  lipgloss.Style
	maxNesting int
}

// NewMarkdownRenderer 创建与主题配色一致的渲染器
func NewMarkdownRenderer(theme Theme) *MarkdownRenderer {
	h1 := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Underline(true)
	h2 := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
	h3 := lipgloss.NewStyle().Bold(true).Foreground(theme.Title)

	return &MarkdownRenderer{
		heading:    []lipgloss.Style{h1, h2, h3},
		strong:     lipgloss.NewStyle().Bold(true),
		emph:       lipgloss.NewStyle().Italic(true),
		del:        lipgloss.NewStyle().Strikethrough(true),
		code:       lipgloss.NewStyle().Foreground(theme.Code),
		codeBlock:  lipgloss.NewStyle().Foreground(theme.Code),
		link:       lipgloss.NewStyle().Foreground(theme.Link).Underline(true),
		quote:      lipgloss.NewStyle().Foreground(theme.Muted),
		bullet:     lipgloss.NewStyle().Foreground(theme.Accent),
		rule:       lipgloss.NewStyle().Foreground(theme.Border),
		tableHead:  lipgloss.NewStyle().Bold(true),
		maxNesting: defaultMaxNesting,
	}
}

// Render 渲染 Markdown 文本为 ANSI 格式，按 width 折行
func (r *MarkdownRenderer) Render(source string, width int) (string, error) {
	if width < minRenderWidth {
		width = minRenderWidth
	}

	parser := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := parser.Parse([]byte(source))

	out, err := r.renderChildren(root, 0, width)
	if err != nil {
		return "", err
	}

	// 只清理连续的三个以上换行
	out = strings.TrimRight(out, "\n")
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return out, nil
}

func (r *MarkdownRenderer) renderChildren(parent *blackfriday.Node, depth, width int) (string, error) {
	var sb strings.Builder
	for child := parent.FirstChild; child != nil; child = child.Next {
		s, err := r.renderBlock(child, depth, width)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func (r *MarkdownRenderer) renderBlock(node *blackfriday.Node, depth, width int) (string, error) {
	if depth > r.maxNesting {
		return "", errNestingTooDeep
	}
	if width < minRenderWidth {
		width = minRenderWidth
	}

	switch node.Type {
	case blackfriday.Heading:
		text, err := r.renderInline(node, 0)
		if err != nil {
			return "", err
		}
		return r.headingStyle(node.HeadingData.Level).Render(ansi.Wrap(text, width, "")) + "\n\n", nil

	case blackfriday.Paragraph:
		text, err := r.renderInline(node, 0)
		if err != nil {
			return "", err
		}
		out := ansi.Wrap(text, width, "") + "\n"
		if !inTightList(node) {
			out += "\n"
		}
		return out, nil

	case blackfriday.BlockQuote:
		inner, err := r.renderChildren(node, depth+1, width-2)
		if err != nil {
			return "", err
		}
		return prefixLines(strings.TrimRight(inner, "\n"), r.quote.Render("│ ")) + "\n\n", nil

	case blackfriday.List:
		return r.renderList(node, depth, width)

	case blackfriday.CodeBlock:
		code := strings.TrimRight(string(node.Literal), "\n")
		lines := strings.Split(code, "\n")
		for i, line := range lines {
			lines[i] = r.codeBlock.Render("  " + line)
		}
		return strings.Join(lines, "\n") + "\n\n", nil

	case blackfriday.HorizontalRule:
		n := width
		if n > 40 {
			n = 40
		}
		return r.rule.Render(strings.Repeat("─", n)) + "\n\n", nil

	case blackfriday.HTMLBlock:
		return strings.TrimRight(string(node.Literal), "\n") + "\n\n", nil

	case blackfriday.Table:
		return r.renderTable(node)

	default:
		text, err := r.renderInline(node, 0)
		if err != nil {
			return "", err
		}
		if text == "" {
			return "", nil
		}
		return text + "\n", nil
	}
}

func (r *MarkdownRenderer) renderList(node *blackfriday.Node, depth, width int) (string, error) {
	ordered := node.ListFlags&blackfriday.ListTypeOrdered != 0

	var sb strings.Builder
	index := 1
	for item := node.FirstChild; item != nil; item = item.Next {
		marker := "• "
		if ordered {
			marker = fmt.Sprintf("%d. ", index)
		}
		index++

		body, err := r.renderChildren(item, depth+1, width-len(marker))
		if err != nil {
			return "", err
		}
		body = strings.TrimRight(body, "\n")

		indent := strings.Repeat(" ", len(marker))
		lines := strings.Split(body, "\n")
		for i, line := range lines {
			if i == 0 {
				sb.WriteString(r.bullet.Render(marker) + line)
			} else if line != "" {
				sb.WriteString(indent + line)
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

func (r *MarkdownRenderer) renderTable(node *blackfriday.Node) (string, error) {
	var (
		rows    [][]string
		headers int
	)

	var collect func(n *blackfriday.Node, inHead bool) error
	collect = func(n *blackfriday.Node, inHead bool) error {
		for child := n.FirstChild; child != nil; child = child.Next {
			switch child.Type {
			case blackfriday.TableHead:
				if err := collect(child, true); err != nil {
					return err
				}
			case blackfriday.TableBody:
				if err := collect(child, false); err != nil {
					return err
				}
			case blackfriday.TableRow:
				var cells []string
				for cell := child.FirstChild; cell != nil; cell = cell.Next {
					text, err := r.renderInline(cell, 0)
					if err != nil {
						return err
					}
					cells = append(cells, text)
				}
				rows = append(rows, cells)
				if inHead {
					headers++
				}
			}
		}
		return nil
	}
	if err := collect(node, false); err != nil {
		return "", err
	}

	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	for ri, row := range rows {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if ri < headers {
				padded[i] = r.tableHead.Render(padded[i])
			}
		}
		sb.WriteString(strings.Join(padded, " │ "))
		sb.WriteString("\n")
		if ri == headers-1 {
			seps := make([]string, len(widths))
			for i, w := range widths {
				seps[i] = strings.Repeat("─", w)
			}
			sb.WriteString(r.rule.Render(strings.Join(seps, "─┼─")))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

func (r *MarkdownRenderer) renderInline(node *blackfriday.Node, depth int) (string, error) {
	if depth > r.maxNesting {
		return "", errNestingTooDeep
	}

	var sb strings.Builder
	for child := node.FirstChild; child != nil; child = child.Next {
		switch child.Type {
		case blackfriday.Text, blackfriday.HTMLSpan:
			sb.Write(child.Literal)
		case blackfriday.Softbreak:
			sb.WriteString(" ")
		case blackfriday.Hardbreak:
			sb.WriteString("\n")
		case blackfriday.Code:
			sb.WriteString(r.code.Render(string(child.Literal)))
		case blackfriday.Emph, blackfriday.Strong, blackfriday.Del:
			inner, err := r.renderInline(child, depth+1)
			if err != nil {
				return "", err
			}
			sb.WriteString(r.inlineStyle(child.Type).Render(inner))
		case blackfriday.Link:
			inner, err := r.renderInline(child, depth+1)
			if err != nil {
				return "", err
			}
			dest := string(child.LinkData.Destination)
			sb.WriteString(r.link.Render(inner))
			if dest != "" && dest != inner {
				sb.WriteString(" (" + dest + ")")
			}
		case blackfriday.Image:
			alt, err := r.renderInline(child, depth+1)
			if err != nil {
				return "", err
			}
			sb.WriteString("[image: " + alt + "]")
		default:
			inner, err := r.renderInline(child, depth+1)
			if err != nil {
				return "", err
			}
			sb.WriteString(inner)
		}
	}
	return sb.String(), nil
}

func (r *MarkdownRenderer) inlineStyle(t blackfriday.NodeType) lipgloss.Style {
	switch t {
	case blackfriday.Strong:
		return r.strong
	case blackfriday.Del:
		return r.del
	default:
		return r.emph
	}
}

func (r *MarkdownRenderer) headingStyle(level int) lipgloss.Style {
	if level < 1 {
		level = 1
	}
	if level > len(r.heading) {
		level = len(r.heading)
	}
	return r.heading[level-1]
}

// inTightList 紧凑列表里的段落之间不留空行
func inTightList(node *blackfriday.Node) bool {
	item := node.Parent
	if item == nil || item.Type != blackfriday.Item {
		return false
	}
	list := item.Parent
	return list != nil && list.Type == blackfriday.List && list.ListData.Tight
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
