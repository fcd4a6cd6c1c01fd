package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Zacy-Sokach/DentalXray/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultTheme        = "dark"
	DefaultPreviewWidth = 48
	logFileName         = "dentalxray.log"
)

// KnownThemes 是界面支持的配色
var KnownThemes = []string{"dark", "light"}

type Config struct {
	APIURL  string        `yaml:"api_url"`
	Theme   string        `yaml:"theme"`
	LogFile string        `yaml:"log_file"`
	Preview PreviewConfig `yaml:"preview"`
}

type PreviewConfig struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		APIURL: DefaultAPIURL,
		Theme:  DefaultTheme,
		Preview: PreviewConfig{
			Enabled: true,
			Width:   DefaultPreviewWidth,
		},
	}
}

// LoadConfig 从默认位置加载配置，再叠加环境变量
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom 从指定文件加载配置，文件不存在时使用默认值
func LoadConfigFrom(configPath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnv(config)
	config.applyDefaults()

	return config, nil
}

// applyEnv 用环境变量覆盖配置文件中的值
// VITE_API_URL 兼容旧的网页前端部署
func applyEnv(config *Config) {
	v := viper.New()
	_ = v.BindEnv("api_url", "DENTALXRAY_API_URL", "VITE_API_URL")
	_ = v.BindEnv("theme", "DENTALXRAY_THEME")
	_ = v.BindEnv("log_file", "DENTALXRAY_LOG_FILE")

	if s := v.GetString("api_url"); s != "" {
		config.APIURL = s
	}
	if s := v.GetString("theme"); s != "" {
		config.Theme = s
	}
	if s := v.GetString("log_file"); s != "" {
		config.LogFile = s
	}
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if c.Preview.Width <= 0 {
		c.Preview.Width = DefaultPreviewWidth
	}
	c.LogFile = utils.ExpandHome(c.LogFile)
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url 无效: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url 必须以 http:// 或 https:// 开头: %q", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url 缺少主机名: %q", c.APIURL)
	}

	known := false
	for _, t := range KnownThemes {
		if c.Theme == t {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("未知的主题 %q，可选: %v", c.Theme, KnownThemes)
	}

	return nil
}

// ResolveLogFile 返回日志文件路径，未配置时放在配置目录下
func (c *Config) ResolveLogFile() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	configDir, err := utils.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("获取配置目录失败: %w", err)
	}
	return filepath.Join(configDir, logFileName), nil
}

// SaveConfig 把配置写回默认位置
func SaveConfig(config *Config) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// ConfigPath 返回默认配置文件路径
func ConfigPath() (string, error) {
	return getConfigPath()
}

func getConfigPath() (string, error) {
	configDir, err := utils.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("获取配置目录失败: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
