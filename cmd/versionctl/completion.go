package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// 动态补全函数

// completeProjects 补全项目名称列表
func completeProjects(a *app) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		projects, err := a.source.ListProjects()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var completions []string
		for _, project := range projects {
			if strings.HasPrefix(project, toComplete) {
				completions = append(completions, project)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeWorkspaces 补全当前项目的工作区名称
func completeWorkspaces(a *app) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if a.target.Project == "" {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		workspaces, err := a.connections.HostWorkspaces(a.target.Project, "")
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var completions []string
		for _, ws := range workspaces {
			if strings.HasPrefix(ws.Name, toComplete) {
				// 显示格式：名称<TAB>工作区名 -> 目录
				completions = append(completions, ws.Name+"\t"+ws.WorkspaceName+" -> "+ws.WorkspaceDir)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeServers 补全已缓存凭据的服务器名称
func completeServers(a *app) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		servers, err := a.store.ListServers()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var completions []string
		for _, server := range servers {
			if strings.HasPrefix(server, toComplete) {
				completions = append(completions, server)
			}
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// setupCompletion 设置自动补全命令
func setupCompletion(rootCmd *cobra.Command) {
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "生成自动补全脚本",
		Long: `生成指定 shell 的自动补全脚本。

支持的 shell: bash, zsh, fish, powershell

安装方法:

Bash:
  $ source <(versionctl completion bash)

Zsh:
  $ source <(versionctl completion zsh)

Fish:
  $ versionctl completion fish | source

PowerShell:
  $ versionctl completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			default:
				return rootCmd.GenPowerShellCompletion(os.Stdout)
			}
		},
	}

	rootCmd.AddCommand(completionCmd)
}

// setupDynamicCompletion 设置动态补全
func setupDynamicCompletion(rootCmd *cobra.Command, a *app) {
	// 全局标志的补全
	_ = rootCmd.RegisterFlagCompletionFunc("project", completeProjects(a))
	_ = rootCmd.RegisterFlagCompletionFunc("workspace", completeWorkspaces(a))

	// credential get/set/remove <server>
	for _, name := range []string{"get", "set", "remove"} {
		if cmd := findCommand(rootCmd, "credential", name); cmd != nil {
			cmd.ValidArgsFunction = completeServers(a)
		}
	}
}

// findCommand 按路径查找子命令
func findCommand(root *cobra.Command, path ...string) *cobra.Command {
	current := root
	for _, name := range path {
		var next *cobra.Command
		for _, cmd := range current.Commands() {
			if cmd.Name() == name {
				next = cmd
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}
