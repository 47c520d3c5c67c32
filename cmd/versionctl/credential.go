package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucksec/versionctl/internal/credentials"
	"github.com/spf13/cobra"
)

// credentialCmd 凭据管理命令组
func credentialCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Perforce 服务器凭据管理",
		Long: `管理缓存的 Perforce 服务器用户名和密码。

凭据按服务器名称保存在用户配置目录下的 JSON 文件中，
可通过配置文件 [perforce] credential_file 或环境变量 VERSIONCTL_CREDENTIAL_FILE 指定其他路径。
远程登录失败时对应的凭据会被自动删除。`,
	}

	cmd.AddCommand(listCredentialsCmd(a))
	cmd.AddCommand(setCredentialCmd(a))
	cmd.AddCommand(getCredentialCmd(a))
	cmd.AddCommand(removeCredentialCmd(a))

	return cmd
}

// listCredentialsCmd 列出所有已缓存的凭据
func listCredentialsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出所有已缓存凭据的服务器",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			servers, err := a.store.ListServers()
			if err != nil {
				return err
			}

			if len(servers) == 0 {
				fmt.Println("未缓存任何凭据")
				fmt.Println("\n提示: 使用 'versionctl credential set <server>' 设置凭据")
				return nil
			}

			fmt.Printf("已缓存的凭据 (%s):\n", a.store.Path())
			for _, server := range servers {
				creds, err := a.store.GetCredentials(server)
				if err != nil {
					fmt.Printf("  %s: 获取失败 - %v\n", server, err)
					continue
				}
				fmt.Printf("  %s: %s / %s\n", server, creds.Username, credentials.MaskSecret(creds.Password))
			}
			return nil
		},
	}
	return cmd
}

// setCredentialCmd 设置凭据
func setCredentialCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "set <server>",
		Short: "设置服务器凭据",
		Long: `设置指定 Perforce 服务器的用户名和密码。

未通过参数提供时会在终端中提示输入，密码输入不回显。`,
		Example: `  # 交互式设置
  versionctl credential set p4main

  # 通过参数设置
  versionctl credential set p4main --username alice --password secret`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := args[0]
			creds := &credentials.Credentials{Username: username, Password: password}

			if !creds.IsComplete() {
				prompted, err := credentials.NewTerminalPrompter().PromptCredentials(cmd.Context(), server)
				if errors.Is(err, credentials.ErrPromptCancelled) {
					fmt.Println("已取消")
					return nil
				}
				if err != nil {
					return err
				}
				creds = prompted
			}

			if err := a.store.SetCredentials(server, creds); err != nil {
				return fmt.Errorf("设置凭据失败: %w", err)
			}

			fmt.Printf("服务器 %s 的凭据设置成功\n", server)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "用户名")
	cmd.Flags().StringVar(&password, "password", "", "密码（建议留空后交互输入）")

	return cmd
}

// getCredentialCmd 获取凭据
func getCredentialCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <server>",
		Short: "显示服务器凭据",
		Long:  "显示指定服务器缓存的用户名（密码会被隐藏）。",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := args[0]

			creds, err := a.store.GetCredentials(server)
			if errors.Is(err, credentials.ErrNotFound) {
				return fmt.Errorf("未缓存服务器 %s 的凭据", server)
			}
			if err != nil {
				return fmt.Errorf("获取凭据失败: %w", err)
			}

			fmt.Printf("服务器 %s:\n", server)
			fmt.Printf("  用户名: %s\n", creds.Username)
			fmt.Printf("  密码: %s\n", credentials.MaskSecret(creds.Password))
			return nil
		},
	}
	return cmd
}

// removeCredentialCmd 删除凭据
func removeCredentialCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <server>",
		Short: "删除服务器凭据",
		Long:  "从凭据文件中删除指定服务器的凭据，下次登录时会重新提示输入。",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := args[0]

			if !a.store.HasCredentials(server) {
				return fmt.Errorf("未缓存服务器 %s 的凭据", server)
			}

			if !yes {
				fmt.Printf("确认删除服务器 %s 的凭据? (yes/no): ", server)
				var confirm string
				fmt.Scanln(&confirm)

				if strings.ToLower(confirm) != "yes" && strings.ToLower(confirm) != "y" {
					fmt.Println("已取消")
					return nil
				}
			}

			if err := a.store.RemoveCredentials(server); err != nil {
				return fmt.Errorf("删除凭据失败: %w", err)
			}

			fmt.Printf("服务器 %s 的凭据已删除\n", server)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "不再确认")
	return cmd
}
