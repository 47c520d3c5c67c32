package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/lucksec/versionctl/internal/logger"
	"github.com/spf13/cobra"
)

// console 交互式控制台
// 使用 go-prompt 提供带 Tab 补全的 REPL，每行输入作为一次 versionctl 命令执行，
// use / host / workspace 设置的上下文在整个会话中保留
type console struct {
	app *app
	ctx context.Context
}

// newConsoleCmd 创建控制台命令
func newConsoleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "进入交互式控制台",
		Long: `进入交互式控制台，在同一会话中解析连接、创建和同步工作区。

进入控制台后，可使用命令:
  help                         显示帮助
  use <project>                设置当前项目
  host <name>                  设置当前宿主（不带参数时清除）
  workspace use <name>         设置当前工作区（不带名称时清除）
  connect                      解析连接并登录
  workspace list|exists|create|ensure
  sync latest|target <path>|version <change>
  changes                      列出 changelist
  launch                       启动前准备
  credential list|get|set|remove
  exit / quit                  退出控制台`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &console{app: a, ctx: cmd.Context()}
			return c.run()
		},
	}
	return cmd
}

// run 启动控制台主循环
func (c *console) run() error {
	c.printWelcome()

	p := prompt.New(
		c.executor,
		c.completer,
		prompt.OptionLivePrefix(c.livePrefix),
		prompt.OptionTitle("versionctl console"),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionSuggestionTextColor(prompt.White),
		prompt.OptionSelectedSuggestionBGColor(prompt.Blue),
		prompt.OptionSelectedSuggestionTextColor(prompt.White),
	)

	// Run 会阻塞，直到用户退出（Ctrl+D）
	p.Run()
	fmt.Println("\n已退出控制台。")
	return nil
}

// livePrefix 提示符显示当前项目和宿主
func (c *console) livePrefix() (string, bool) {
	t := c.app.target
	if t.Project == "" {
		return "versionctl> ", true
	}
	prefix := "versionctl[" + t.Project
	if t.Host != "" {
		prefix += "@" + t.Host
	}
	if t.Workspace != "" {
		prefix += "/" + t.Workspace
	}
	return prefix + "]> ", true
}

// executor 执行单行命令
func (c *console) executor(in string) {
	line := strings.TrimSpace(in)
	if line == "" {
		return
	}
	if err := c.handleCommand(line); err != nil {
		fmt.Printf("错误: %v\n", err)
	}
}

// handleCommand 处理控制台内置命令，其余交给 cobra 命令树
func (c *console) handleCommand(line string) error {
	parts := strings.Fields(line)

	switch parts[0] {
	case "help", "h", "?":
		c.printHelp()
		return nil
	case "exit", "quit", "q":
		fmt.Println("退出控制台。")
		logger.Close()
		os.Exit(0)
	case "use":
		if len(parts) != 2 {
			return fmt.Errorf("用法: use <project>")
		}
		c.app.target.Project = parts[1]
		c.app.target.Workspace = ""
		return nil
	case "host":
		c.app.target.Host = ""
		if len(parts) > 1 {
			c.app.target.Host = parts[1]
		}
		return nil
	case "console":
		return fmt.Errorf("已在控制台中")
	}

	if len(parts) >= 2 && parts[0] == "workspace" && parts[1] == "use" {
		c.app.target.Workspace = ""
		if len(parts) > 2 {
			c.app.target.Workspace = parts[2]
		}
		return nil
	}

	// 每次都重建命令树，避免上一条命令的参数残留
	root := newRootCmd(c.app)
	root.SetArgs(parts)
	return root.ExecuteContext(c.ctx)
}

// completer 提供 Tab 补全
func (c *console) completer(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	parts := strings.Fields(text)

	current := ""
	if len(parts) > 0 && !strings.HasSuffix(text, " ") {
		current = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}

	if len(parts) == 0 {
		return filterSuggestions(c.topLevelSuggestions(), current)
	}

	// 标志参数值补全
	switch parts[len(parts)-1] {
	case "-p", "--project":
		return c.completeProjectNames(current)
	case "-w", "--workspace":
		return c.completeWorkspaceNames(current)
	}
	if strings.HasPrefix(current, "-") {
		return filterSuggestions(flagSuggestions, current)
	}

	switch parts[0] {
	case "use":
		if len(parts) == 1 {
			return c.completeProjectNames(current)
		}
	case "credential":
		if len(parts) == 1 {
			return filterSuggestions(subcommandSuggestions(credentialCmd(c.app)), current)
		}
		if len(parts) == 2 && (parts[1] == "get" || parts[1] == "remove" || parts[1] == "set") {
			return c.completeServerNames(current)
		}
	case "workspace":
		if len(parts) == 1 {
			subs := append(subcommandSuggestions(findCommand(newRootCmd(c.app), "workspace")),
				prompt.Suggest{Text: "use", Description: "设置当前工作区"})
			return filterSuggestions(subs, current)
		}
		if len(parts) == 2 && parts[1] == "use" {
			return c.completeWorkspaceNames(current)
		}
	default:
		if len(parts) == 1 {
			if cmd := findCommand(newRootCmd(c.app), parts[0]); cmd != nil {
				return filterSuggestions(subcommandSuggestions(cmd), current)
			}
		}
	}

	return []prompt.Suggest{}
}

// topLevelSuggestions 顶级命令补全
func (c *console) topLevelSuggestions() []prompt.Suggest {
	res := []prompt.Suggest{
		{Text: "help", Description: "显示帮助"},
		{Text: "use", Description: "设置当前项目"},
		{Text: "host", Description: "设置当前宿主"},
	}
	for _, cmd := range newRootCmd(c.app).Commands() {
		if cmd.Hidden || cmd.Name() == "console" || cmd.Name() == "completion" || cmd.Name() == "help" {
			continue
		}
		res = append(res, prompt.Suggest{Text: cmd.Name(), Description: cmd.Short})
	}
	res = append(res,
		prompt.Suggest{Text: "exit", Description: "退出控制台"},
		prompt.Suggest{Text: "quit", Description: "退出控制台"},
	)
	return res
}

var flagSuggestions = []prompt.Suggest{
	{Text: "--project", Description: "项目名称"},
	{Text: "--host", Description: "当前宿主"},
	{Text: "--workspace", Description: "工作区名称"},
}

// subcommandSuggestions 列出子命令
func subcommandSuggestions(cmd *cobra.Command) []prompt.Suggest {
	res := []prompt.Suggest{}
	if cmd == nil {
		return res
	}
	for _, sub := range cmd.Commands() {
		res = append(res, prompt.Suggest{Text: sub.Name(), Description: sub.Short})
	}
	return res
}

// completeProjectNames 补全项目名称
func (c *console) completeProjectNames(current string) []prompt.Suggest {
	projects, err := c.app.source.ListProjects()
	if err != nil {
		return []prompt.Suggest{}
	}
	res := []prompt.Suggest{}
	for _, p := range projects {
		res = append(res, prompt.Suggest{Text: p, Description: "项目"})
	}
	return filterSuggestions(res, current)
}

// completeWorkspaceNames 补全当前项目的工作区名称
func (c *console) completeWorkspaceNames(current string) []prompt.Suggest {
	res := []prompt.Suggest{}
	if c.app.target.Project == "" {
		return res
	}
	workspaces, err := c.app.connections.HostWorkspaces(c.app.target.Project, "")
	if err != nil {
		return res
	}
	for _, ws := range workspaces {
		res = append(res, prompt.Suggest{Text: ws.Name, Description: ws.WorkspaceName})
	}
	return filterSuggestions(res, current)
}

// completeServerNames 补全已缓存凭据的服务器
func (c *console) completeServerNames(current string) []prompt.Suggest {
	servers, err := c.app.store.ListServers()
	if err != nil {
		return []prompt.Suggest{}
	}
	res := []prompt.Suggest{}
	for _, s := range servers {
		res = append(res, prompt.Suggest{Text: s, Description: "服务器"})
	}
	return filterSuggestions(res, current)
}

func filterSuggestions(all []prompt.Suggest, current string) []prompt.Suggest {
	return prompt.FilterHasPrefix(all, current, true)
}

// printWelcome 显示欢迎信息
func (c *console) printWelcome() {
	fmt.Println("========================================")
	fmt.Println(" versionctl 交互式控制台")
	fmt.Println("========================================")
	fmt.Printf("设置目录: %s\n", c.app.source.Dir())
	if c.app.cfg.Perforce.WebserverURL == "" {
		fmt.Println("警告: 未配置 Perforce Web 服务地址（[perforce] webserver_url 或 PERFORCE_WEBSERVER_URL）")
	}
	fmt.Println("输入 'help' 查看命令，Tab 补全，Ctrl+D 退出。")
	fmt.Println()
}

// printHelp 显示帮助信息
func (c *console) printHelp() {
	fmt.Println(`可用命令:
  use <project>                      设置当前项目
  host [name]                        设置或清除当前宿主
  workspace use [name]               设置或清除当前工作区
  status                             显示版本控制启用状态
  connect                            解析连接并登录
  workspace list                     列出工作区
  workspace exists|create|ensure     查询、创建或按需创建工作区
  sync latest                        同步整个工作区
  sync target <path>                 同步文件所在目录
  sync version <change>              同步到指定 changelist
  changes [-n N]                     列出 changelist
  files status <path>...             查询文件是否已提交
  launch [--workfile <path>]         启动前准备
  credential list|get|set|remove     凭据管理
  exit / quit                        退出控制台`)
}
