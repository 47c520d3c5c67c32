package main

import (
	"fmt"
	"strings"

	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/service"
	"github.com/spf13/cobra"
)

// printConnection 输出连接信息
func printConnection(conn *domain.ConnectionInfo) {
	ws := conn.Workspace
	fmt.Printf("工作区: %s\n", ws.Name)
	fmt.Printf("  名称: %s\n", ws.WorkspaceName)
	fmt.Printf("  目录: %s\n", ws.WorkspaceDir)
	if ws.Stream != "" {
		fmt.Printf("  Stream: %s\n", ws.Stream)
	}
	fmt.Printf("服务器: %s (%s)\n", conn.Server.Name, conn.Server.PerforcePort())
	fmt.Printf("  用户: %s\n", conn.Server.Username)
}

// connectCmd 解析连接并登录
func connectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "解析工作区连接并登录服务器",
		Long: `根据项目设置解析当前宿主的工作区与服务器，读取缓存凭据（没有时提示输入）并登录。

登录失败时会删除缓存的凭据并重新提示，最多尝试 login_attempts 次。`,
		Example: `  # 登录 demo 项目中 maya 的主工作区
  versionctl connect -p demo --host maya

  # 指定工作区名称
  versionctl connect -p demo -w ws1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			printConnection(conn)
			fmt.Println("登录成功")
			return nil
		},
	}
	return cmd
}

// workspaceListCmd 列出宿主适用的工作区
func workspaceListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出项目中适用于当前宿主的工作区",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireProject(); err != nil {
				return err
			}
			workspaces, err := a.connections.HostWorkspaces(a.target.Project, a.target.Host)
			if err != nil {
				return err
			}
			if len(workspaces) == 0 {
				fmt.Println("没有找到工作区")
				return nil
			}

			fmt.Printf("项目 %s 的工作区:\n", a.target.Project)
			for _, ws := range workspaces {
				primary := ""
				if ws.Primary {
					primary = " [主]"
				}
				fmt.Printf("  - %s%s: %s -> %s (服务器 %s, 宿主 %s)\n",
					ws.Name, primary, ws.WorkspaceName, ws.WorkspaceDir, ws.Server, strings.Join(ws.Hosts, ","))
			}
			return nil
		},
	}
	return cmd
}

// workspaceExistsCmd 查询工作区是否存在
func workspaceExistsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exists",
		Short: "查询工作区是否已在服务器上存在",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			exists, err := a.workspaces.WorkspaceExists(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if exists {
				fmt.Printf("工作区 %s 已存在\n", conn.Workspace.WorkspaceName)
			} else {
				fmt.Printf("工作区 %s 不存在\n", conn.Workspace.WorkspaceName)
			}
			return nil
		},
	}
	return cmd
}

// workspaceCreateCmd 创建工作区
func workspaceCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "创建工作区（工作区已存在时报错）",
		Long: `创建本地工作区目录和服务器端工作区，然后同步 startup_files 中的文件。

工作区已存在时不会重复创建；需要按需创建时请使用 workspace ensure。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := a.connect(ctx)
			if err != nil {
				return describeError(err)
			}
			exists, err := a.workspaces.WorkspaceExists(ctx, conn)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("工作区 %s 已存在", conn.Workspace.WorkspaceName)
			}
			if err := a.workspaces.CreateWorkspace(ctx, conn); err != nil {
				return err
			}
			fmt.Printf("工作区 %s 创建成功: %s\n", conn.Workspace.WorkspaceName, conn.Workspace.WorkspaceDir)
			return nil
		},
	}
	return cmd
}

// workspaceEnsureCmd 检查后按需创建
func workspaceEnsureCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "工作区不存在时创建（需要 allow_create_workspace）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			created, err := a.workspaces.EnsureWorkspace(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("工作区 %s 创建成功\n", conn.Workspace.WorkspaceName)
			} else {
				fmt.Printf("工作区 %s 已存在\n", conn.Workspace.WorkspaceName)
			}
			return nil
		},
	}
	return cmd
}

// syncLatestCmd 同步整个工作区
func syncLatestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "将整个工作区同步到最新版本",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			if err := a.workspaces.SyncToLatest(cmd.Context(), conn); err != nil {
				return err
			}
			fmt.Printf("已同步 %s\n", conn.Workspace.SubtreeSpec())
			return nil
		},
	}
	return cmd
}

// syncTargetCmd 同步单个文件所在目录
func syncTargetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target <path>",
		Short: "同步文件所在目录到最新版本（用于恢复缺失的引用）",
		Example: `  # 恢复缺失的引用文件
  versionctl sync target /mnt/work/alice_ws/assets/rig.ma -p demo --host maya`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			if err := a.workspaces.SyncTargetToLatest(cmd.Context(), conn, args[0]); err != nil {
				return err
			}
			fmt.Printf("已同步 %s 所在目录\n", args[0])
			return nil
		},
	}
	return cmd
}

// syncVersionCmd 同步到指定 changelist
func syncVersionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version <change>",
		Short: "将整个工作区同步到指定 changelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			if err := a.workspaces.SyncToVersion(cmd.Context(), conn, args[0]); err != nil {
				return err
			}
			fmt.Printf("已同步 %s 到 changelist %s\n", conn.Workspace.SubtreeSpec(), args[0])
			return nil
		},
	}
	return cmd
}

// changesCmd 列出 changelist
func changesCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "列出已提交的 changelist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			changes, err := a.workspaces.ListChanges(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				fmt.Println("没有 changelist")
				return nil
			}
			if limit > 0 && len(changes) > limit {
				changes = changes[:limit]
			}
			for _, c := range changes {
				desc := strings.TrimSpace(strings.SplitN(c.Description, "\n", 2)[0])
				fmt.Printf("  %-8s %-12s %-20s %s\n", c.ID, c.User, c.Time, desc)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "最多显示的数量（0 表示全部）")
	return cmd
}

// filesStatusCmd 查询文件提交状态
func filesStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <path>...",
		Short: "查询本地文件是否已提交到服务器",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			status, err := a.workspaces.FilesOnServer(cmd.Context(), conn, args)
			if err != nil {
				return err
			}
			printFileStatus(status)
			return nil
		},
	}
	return cmd
}

func printFileStatus(status *service.FileStatus) {
	fmt.Printf("已提交 (%d):\n", len(status.Submitted))
	for _, p := range status.Submitted {
		fmt.Printf("  %s\n", p)
	}
	fmt.Printf("未提交 (%d):\n", len(status.Unsubmitted))
	for _, p := range status.Unsubmitted {
		fmt.Printf("  %s\n", p)
	}
}

// launchCmd 宿主启动前准备
func launchCmd(a *app) *cobra.Command {
	var workfile string

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "宿主启动前确保工作区存在并同步",
		Long: `对当前宿主适用的每个工作区：登录，检查并按需创建工作区，
同步 always_sync 中的路径，enable_autosync 开启时同步整个工作区，
sync_workfile 开启且指定了 --workfile 时同步工作文件所在目录。

项目或宿主未启用版本控制时不做任何事。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireProject(); err != nil {
				return err
			}
			results, err := a.launch.Prepare(cmd.Context(), service.LaunchRequest{
				Project:  a.target.Project,
				Host:     a.target.Host,
				Workfile: workfile,
			})
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("没有需要准备的工作区")
				return nil
			}
			for _, r := range results {
				switch {
				case r.Skipped:
					fmt.Printf("  %s: 已跳过 (%s)\n", r.Workspace, r.Reason)
				case r.Created:
					fmt.Printf("  %s: 已创建, 同步 %d 项\n", r.Workspace, len(r.Synced))
				default:
					fmt.Printf("  %s: 已就绪, 同步 %d 项\n", r.Workspace, len(r.Synced))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workfile, "workfile", "", "最近打开的工作文件")
	return cmd
}

// statusCmd 显示版本控制插件状态
func statusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "显示项目的版本控制启用状态",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireProject(); err != nil {
				return err
			}
			state, err := service.InitializeAddon(a.source, a.target.Project)
			if err != nil {
				return err
			}
			fmt.Println(state.Label())
			fmt.Printf("  项目: %s\n", state.Project)
			fmt.Printf("  启用: %v\n", state.Enabled)
			if a.target.Host != "" {
				fmt.Printf("  宿主 %s: %v\n", a.target.Host, state.IsEnabledFor(a.target.Host))
			}
			fmt.Printf("  Web 服务: %s\n", a.cfg.Perforce.WebserverURL)
			return nil
		},
	}
	return cmd
}
