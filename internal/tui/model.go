package tui

import (
	"context"
	"strings"

	"github.com/Zacy-Sokach/DentalXray/internal/api"
	"github.com/Zacy-Sokach/DentalXray/internal/preview"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Options 是视图的构造参数，服务地址显式传入，不在视图内部读取环境变量
type Options struct {
	BaseURL      string
	Theme        string
	Logger       *zap.Logger
	HTTPClient   api.Doer
	Preview      bool
	PreviewWidth int
	StartDir     string
}

// Model 是上传并查看报告的界面
//
// 视图状态只有四项：选中的文件、标注图片地址、报告文本、加载标记，
// 全部只在 Update 中修改。
type Model struct {
	client   *api.Client
	log      *zap.Logger
	theme    Theme
	styles   styles
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	picker   filepicker.Model
	viewport viewport.Model
	boundary *RenderBoundary

	pickerOpen     bool
	previewEnabled bool
	previewWidth   int
	width          int
	height         int

	selected     *api.SelectedFile
	annotatedURL *string
	report       string
	loading      bool

	// 预览与 annotatedURL 对应，地址变化后旧预览作废
	previewURL  string
	previewText string
}

// NewModel 创建界面模型
func NewModel(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	theme := ThemeByName(opts.Theme)
	st := newStyles(theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	fp := filepicker.New()
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}
	fp.DirAllowed = false
	fp.FileAllowed = true

	renderer := NewMarkdownRenderer(theme)

	m := Model{
		client:         api.NewClientWithDoer(opts.BaseURL, opts.HTTPClient),
		log:            log,
		theme:          theme,
		styles:         st,
		keys:           defaultKeyMap(),
		help:           help.New(),
		spinner:        sp,
		picker:         fp,
		viewport:       viewport.New(defaultWidth, defaultHeight/2),
		boundary:       NewRenderBoundary(renderer.Render, log, st.errorLine),
		previewEnabled: opts.Preview,
		previewWidth:   opts.PreviewWidth,
		width:          defaultWidth,
		height:         defaultHeight,
	}
	if m.previewWidth <= 0 {
		m.previewWidth = 48
	}
	m.resize()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.picker.Init()
}

// SelectFile 替换当前选中的文件，不改变其他状态
func (m Model) SelectFile(file *api.SelectedFile) Model {
	m.selected = file
	return m
}

// Submit 上传当前文件；没有选中文件时什么也不做
// 返回的命令执行一次 POST 请求，结果以 processResultMsg 交回 Update
func (m Model) Submit() (Model, tea.Cmd) {
	if m.selected == nil {
		return m, nil
	}

	m.loading = true
	client, file := m.client, m.selected
	m.log.Info("开始上传", zap.String("file", file.Name), zap.Int("bytes", len(file.Data)))

	return m, func() tea.Msg {
		resp, err := client.Process(context.Background(), file)
		return processResultMsg{file: file.Name, resp: resp, err: err}
	}
}

// RunOnce 同步完成一次上传，供非交互模式使用
func (m Model) RunOnce() Model {
	m, cmd := m.Submit()
	if cmd == nil {
		return m
	}
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func (m Model) SelectedFile() *api.SelectedFile {
	return m.selected
}

func (m Model) Loading() bool {
	return m.loading
}

func (m Model) Report() string {
	return m.report
}

// AnnotatedImageURL 返回标注图片地址，没有时 ok 为 false
func (m Model) AnnotatedImageURL() (url string, ok bool) {
	if m.annotatedURL == nil {
		return "", false
	}
	return *m.annotatedURL, true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()

	case tea.KeyMsg:
		if m.pickerOpen {
			return m.updatePicker(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Open):
			m.pickerOpen = true
			return m, m.picker.Init()
		case key.Matches(msg, m.keys.Submit):
			var cmd tea.Cmd
			m, cmd = m.Submit()
			if cmd == nil {
				return m, nil
			}
			return m, tea.Batch(cmd, m.spinner.Tick)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case fileLoadedMsg:
		if msg.err != nil {
			m.log.Warn("读取选中文件失败", zap.String("path", msg.path), zap.Error(msg.err))
			return m, nil
		}
		return m.SelectFile(msg.file), nil

	case processResultMsg:
		m = m.applyResult(msg)
		return m, m.previewCmd()

	case previewMsg:
		return m.applyPreview(msg), nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// 其余消息（目录读取、窗口尺寸）交给文件选择器
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Force):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close):
		m.pickerOpen = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.pickerOpen = false
		return m, tea.Batch(cmd, loadFileCmd(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.log.Debug("选中了不可用的条目", zap.String("path", path))
	}
	return m, cmd
}

func loadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		file, err := api.LoadSelectedFile(path)
		return fileLoadedMsg{path: path, file: file, err: err}
	}
}

// applyResult 处理上传结果
// 失败时清空报告但保留上一张标注图片；无论成败都结束加载状态
func (m Model) applyResult(msg processResultMsg) Model {
	m.loading = false

	if msg.err != nil {
		m.log.Error("上传文件失败", zap.String("file", msg.file), zap.Error(msg.err))
		m.report = ""
		m.refreshReport()
		return m
	}

	m.annotatedURL = msg.resp.AnnotatedImageURL
	m.report = msg.resp.ReportOrEmpty()
	m.log.Info("分析完成",
		zap.String("file", msg.file),
		zap.Bool("annotated_image", m.annotatedURL != nil),
		zap.Int("report_bytes", len(m.report)))
	m.refreshReport()
	return m
}

func (m Model) previewCmd() tea.Cmd {
	if !m.previewEnabled || m.annotatedURL == nil {
		return nil
	}
	url := *m.annotatedURL
	if url == m.previewURL {
		return nil
	}

	client, width := m.client, min(m.previewWidth, m.leftWidth()-4)
	return func() tea.Msg {
		data, err := client.FetchImage(context.Background(), url)
		if err != nil {
			return previewMsg{url: url, err: err}
		}
		text, err := preview.Render(data, width)
		return previewMsg{url: url, text: text, err: err}
	}
}

func (m Model) applyPreview(msg previewMsg) Model {
	if m.annotatedURL == nil || *m.annotatedURL != msg.url {
		m.log.Debug("丢弃过期的图片预览", zap.String("url", msg.url))
		return m
	}
	m.previewURL = msg.url
	m.previewText = ""
	if msg.err != nil {
		m.log.Warn("生成图片预览失败", zap.String("url", msg.url), zap.Error(msg.err))
		return m
	}
	m.previewText = msg.text
	return m
}

// ReportView 返回报告区域的内容：渲染后的 Markdown、错误提示或占位文字
func (m Model) ReportView() string {
	return m.renderReport(m.reportWidth())
}

func (m Model) renderReport(width int) string {
	if strings.TrimSpace(m.report) == "" {
		return m.styles.placeholder.Render(noReportText)
	}
	return m.boundary.Render(m.report, width)
}

func (m *Model) refreshReport() {
	m.viewport.SetContent(m.renderReport(m.reportWidth()))
	m.viewport.GotoTop()
}

// resize 按窗口尺寸重新计算两个面板
func (m *Model) resize() {
	_, rightW := m.paneWidths()

	vpHeight := m.height - 8
	if !m.wide() {
		vpHeight = m.height / 2
	}
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.viewport.Width = rightW - 4
	m.viewport.Height = vpHeight
	m.help.Width = m.width
	m.refreshReport()
}
