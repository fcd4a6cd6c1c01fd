package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/Zacy-Sokach/DentalXray/internal/api"
	"github.com/Zacy-Sokach/DentalXray/internal/config"
	"github.com/Zacy-Sokach/DentalXray/internal/logger"
	"github.com/Zacy-Sokach/DentalXray/internal/tui"
	"github.com/Zacy-Sokach/DentalXray/internal/utils"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errEmptyReport 非交互模式下没有拿到报告
var errEmptyReport = errors.New("no report received")

type rootOptions struct {
	configFile string
	apiURL     string
	theme      string
	file       string
	noPreview  bool
	verbose    bool
}

func newRootCommand(version, commit, date string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "dentalxray",
		Short: "Upload a dental X-ray and read the diagnostic report",
		Long: `dentalxray sends a dental X-ray image to an analysis service and shows
the annotated image together with the markdown diagnostic report.

Run it in a terminal for the interactive view. When stdout is not a terminal,
pass --file to upload once and print the report.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (default "+displayConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	rootCmd.Flags().StringVar(&opts.apiURL, "api-url", "", "analysis service base URL")
	rootCmd.Flags().StringVar(&opts.theme, "theme", "", "color theme ("+strings.Join(config.KnownThemes, ", ")+")")
	rootCmd.Flags().StringVarP(&opts.file, "file", "f", "", "pre-select an image file")
	rootCmd.Flags().BoolVar(&opts.noPreview, "no-preview", false, "do not render the annotated image in the terminal")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if !stdoutIsTerminal() {
		return runHeadless(cmd, cfg, opts)
	}

	logPath, err := cfg.ResolveLogFile()
	if err != nil {
		return err
	}
	log, err := logger.New(logPath)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer log.Sync()

	model := tui.NewModel(modelOptions(cfg, log))
	if opts.file != "" {
		file, err := api.LoadSelectedFile(opts.file)
		if err != nil {
			return err
		}
		model = model.SelectFile(file)
	}

	log.Info("启动界面", zap.String("api_url", cfg.APIURL), zap.String("theme", cfg.Theme))

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("程序运行错误: %w", err)
	}
	return nil
}

// runHeadless 非交互式环境：上传一次并打印结果
func runHeadless(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) error {
	if opts.file == "" {
		return fmt.Errorf("stdout is not a terminal: pass --file to upload without the interactive view")
	}

	log, err := logger.NewConsole(opts.verbose)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer log.Sync()

	file, err := api.LoadSelectedFile(opts.file)
	if err != nil {
		return err
	}

	mo := modelOptions(cfg, log)
	mo.Preview = false
	model := tui.NewModel(mo).SelectFile(file).RunOnce()

	fmt.Fprint(cmd.OutOrStdout(), model.PlainView())

	if strings.TrimSpace(model.Report()) == "" {
		return errEmptyReport
	}
	return nil
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadConfigFrom(opts.configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.theme != "" {
		cfg.Theme = opts.theme
	}
	if opts.noPreview {
		cfg.Preview.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func modelOptions(cfg *config.Config, log *zap.Logger) tui.Options {
	startDir, _ := os.Getwd()
	return tui.Options{
		BaseURL:      cfg.APIURL,
		Theme:        cfg.Theme,
		Logger:       log,
		Preview:      cfg.Preview.Enabled,
		PreviewWidth: cfg.Preview.Width,
		StartDir:     startDir,
	}
}

func displayConfigPath() string {
	if path, err := config.ConfigPath(); err == nil {
		return path
	}
	return utils.GetConfigPathForDisplay()
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "dentalxray %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
