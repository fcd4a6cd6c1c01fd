package utils

import (
	"os"
	"path/filepath"
)

const appDirName = "dentalxray"

// GetConfigDir 获取跨平台的配置目录
// Windows: %APPDATA%/dentalxray
// Linux/macOS: $XDG_CONFIG_HOME/dentalxray 或 ~/.config/dentalxray
func GetConfigDir() (string, error) {
	// 允许用环境变量整体覆盖配置目录（测试里也靠它隔离）
	if configHome := os.Getenv("DENTALXRAY_CONFIG_HOME"); configHome != "" {
		return configHome, nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appDirName), nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", appDirName), nil
}

// GetConfigPathForDisplay 获取用于显示的配置路径字符串
func GetConfigPathForDisplay() string {
	if dir, err := GetConfigDir(); err == nil {
		return filepath.Join(dir, "config.yaml")
	}
	return "~/.config/" + appDirName + "/config.yaml"
}

// ExpandHome 把路径开头的 ~ 展开为用户主目录
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[1:])
}
