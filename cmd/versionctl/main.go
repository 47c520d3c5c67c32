package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/lucksec/versionctl/internal/config"
	"github.com/lucksec/versionctl/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志系统
	logConfig := &logger.Config{
		Level:         logger.ParseLevel(cfg.Log.Level),
		EnableConsole: cfg.Log.EnableConsole,
		EnableFile:    cfg.Log.EnableFile,
		LogDir:        cfg.Log.LogDir,
		LogFile:       cfg.Log.LogFile,
	}

	log, err := logger.InitLogger(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志系统失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	log.Debug("配置加载成功: Path=%s, SettingsDir=%s, WebserverURL=%s",
		cfg.Path, cfg.SettingsDir, cfg.Perforce.WebserverURL)

	// 初始化服务
	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	rootCmd := newRootCmd(a)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 执行命令
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "执行命令失败: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
}

// newRootCmd 创建根命令及全部子命令
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "versionctl",
		Short: "versionctl 解析项目的 Perforce 连接并维护本地工作区",
		Long: `versionctl 根据 studio / project / site 三层设置，结合当前宿主、项目、用户和计算机名，
解析出 Perforce 服务器与工作区，完成登录、工作区创建和同步。

设置目录结构:
  <settings_dir>/studio.yaml
  <settings_dir>/projects/<project>.yaml
  <settings_dir>/site/<project>.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.target.Project, "project", "p", a.target.Project, "项目名称")
	flags.StringVar(&a.target.Host, "host", a.target.Host, "当前宿主（maya、unreal 等）")
	flags.StringVarP(&a.target.Workspace, "workspace", "w", a.target.Workspace, "工作区名称（为空时按宿主选择主工作区）")

	rootCmd.AddCommand(connectCmd(a))

	// 工作区命令组
	workspaceCmd := &cobra.Command{
		Use:   "workspace",
		Short: "工作区管理命令",
	}
	workspaceCmd.AddCommand(workspaceListCmd(a))
	workspaceCmd.AddCommand(workspaceExistsCmd(a))
	workspaceCmd.AddCommand(workspaceCreateCmd(a))
	workspaceCmd.AddCommand(workspaceEnsureCmd(a))
	rootCmd.AddCommand(workspaceCmd)

	// 同步命令组
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "同步命令",
	}
	syncCmd.AddCommand(syncLatestCmd(a))
	syncCmd.AddCommand(syncTargetCmd(a))
	syncCmd.AddCommand(syncVersionCmd(a))
	rootCmd.AddCommand(syncCmd)

	// 文件命令组
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "文件状态命令",
	}
	filesCmd.AddCommand(filesStatusCmd(a))
	rootCmd.AddCommand(filesCmd)

	rootCmd.AddCommand(changesCmd(a))
	rootCmd.AddCommand(launchCmd(a))
	rootCmd.AddCommand(statusCmd(a))

	// 凭据管理命令组
	rootCmd.AddCommand(credentialCmd(a))

	// 交互式控制台
	rootCmd.AddCommand(newConsoleCmd(a))

	// 设置自动补全
	setupCompletion(rootCmd)
	setupDynamicCompletion(rootCmd, a)

	return rootCmd
}
