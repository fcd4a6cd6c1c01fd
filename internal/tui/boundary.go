package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	reportErrorText = "Error loading report content."
	noReportText    = "No report yet."
)

// RenderFunc 把 Markdown 渲染成终端文本
type RenderFunc func(source string, width int) (string, error)

// RenderBoundary 隔离报告渲染中的错误和 panic，
// 出错时只把报告区域替换成固定提示，界面其余部分照常显示
type RenderBoundary struct {
	render   RenderFunc
	log      *zap.Logger
	fallback lipgloss.Style
}

// NewRenderBoundary 创建渲染边界
func NewRenderBoundary(render RenderFunc, log *zap.Logger, fallback lipgloss.Style) *RenderBoundary {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderBoundary{
		render:   render,
		log:      log,
		fallback: fallback,
	}
}

// Render 渲染报告，失败时返回固定的错误提示
func (b *RenderBoundary) Render(source string, width int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("渲染报告时发生panic",
				zap.String("panic", fmt.Sprint(r)),
				zap.Stack("stack"))
			out = b.fallback.Render(reportErrorText)
		}
	}()

	rendered, err := b.render(source, width)
	if err != nil {
		b.log.Error("渲染报告失败", zap.Error(err))
		return b.fallback.Render(reportErrorText)
	}
	return rendered
}
