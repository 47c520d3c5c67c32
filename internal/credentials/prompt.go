package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"golang.org/x/term"
)

// ErrPromptCancelled 用户取消了凭据输入
var ErrPromptCancelled = errors.New("用户取消了凭据输入")

// Prompter 交互式凭据输入，用户取消时返回 ErrPromptCancelled
type Prompter interface {
	PromptCredentials(ctx context.Context, serverName string) (*Credentials, error)
}

// PrompterFunc 函数形式的 Prompter
type PrompterFunc func(ctx context.Context, serverName string) (*Credentials, error)

// PromptCredentials 调用 f
func (f PrompterFunc) PromptCredentials(ctx context.Context, serverName string) (*Credentials, error) {
	return f(ctx, serverName)
}

// TerminalPrompter 在终端中询问用户名和密码：
// 用户名使用 go-prompt 输入（Ctrl+D 取消），密码关闭回显读取
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompter 使用标准输入和标准错误
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// PromptCredentials 询问 serverName 的用户名和密码，任一为空视为取消
func (p *TerminalPrompter) PromptCredentials(ctx context.Context, serverName string) (*Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("没有可用的终端，无法输入服务器 %s 的凭据（请先执行 credential set）", serverName)
	}

	fmt.Fprintf(p.Out, "登录 Perforce 服务器 %s（Ctrl+D 取消）\n", serverName)
	username := strings.TrimSpace(prompt.Input("用户名: ", noSuggestions,
		prompt.OptionTitle("Perforce 登录"),
		prompt.OptionPrefixTextColor(prompt.Cyan),
	))
	if username == "" {
		return nil, ErrPromptCancelled
	}

	fmt.Fprint(p.Out, "密码: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return nil, fmt.Errorf("读取密码失败: %w", err)
	}
	if len(password) == 0 {
		return nil, ErrPromptCancelled
	}

	return &Credentials{Username: username, Password: string(password)}, nil
}

func noSuggestions(prompt.Document) []prompt.Suggest {
	return nil
}
