package tui

import (
	"errors"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRenderBoundary_PassesThrough(t *testing.T) {
	b := NewRenderBoundary(func(source string, width int) (string, error) {
		return "rendered:" + source, nil
	}, nil, lipgloss.NewStyle())

	if got := b.Render("x", 10); got != "rendered:x" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderBoundary_Error(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	b := NewRenderBoundary(func(string, int) (string, error) {
		return "", errors.New("bad table")
	}, zap.New(core), lipgloss.NewStyle())

	if got := b.Render("x", 10); got != reportErrorText {
		t.Errorf("Render = %q, want %q", got, reportErrorText)
	}
	if logs.Len() != 1 {
		t.Errorf("expected 1 error log, got %d", logs.Len())
	}
}

func TestRenderBoundary_Panic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	b := NewRenderBoundary(func(string, int) (string, error) {
		var nodes []int
		return string(rune(nodes[3])), nil
	}, zap.New(core), lipgloss.NewStyle())

	if got := b.Render("x", 10); got != reportErrorText {
		t.Errorf("Render = %q, want %q", got, reportErrorText)
	}
	if logs.FilterMessage("渲染报告时发生panic").Len() != 1 {
		t.Error("panic was not logged")
	}
}
