package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// 添加panic恢复
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "程序发生panic: %v\n", r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	if err := newRootCommand(version, commit, date).Execute(); err != nil {
		os.Exit(1)
	}
}

// stdoutIsTerminal 决定进入交互界面还是非交互模式，测试中会替换
var stdoutIsTerminal = isTerminal

func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
