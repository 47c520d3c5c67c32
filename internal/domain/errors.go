package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLoginCancelled 用户取消了登录
	ErrLoginCancelled = errors.New("登录已取消")

	// ErrIncomparable ServerInfo 只能与 ServerInfo 比较
	ErrIncomparable = errors.New("无法比较的类型")

	// ErrEmptyCredentials 登录成功但凭据为空
	ErrEmptyCredentials = errors.New("凭据为空")
)

// ConfigurationError 设置引用了不存在的根目录、服务器或工作区
type ConfigurationError struct {
	Kind      string // root / server / workspace
	Name      string // 出错的标识
	Workspace string // 相关的工作区（可选）
	Detail    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("配置错误 [%s %s]", e.Kind, e.Name)
	if e.Workspace != "" && !(e.Kind == "workspace" && e.Name == e.Workspace) {
		msg += fmt.Sprintf(" (工作区 %s)", e.Workspace)
	}
	msg += ": " + e.Detail
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NotFoundError 按名称查找工作区或服务器失败
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("未找到%s: %s", e.Kind, e.Name)
}

// ConnectionError 连接缺少凭据，无法执行远程操作
type ConnectionError struct {
	Server    string
	Workspace string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("服务器 %s 没有用户名或密码，无法连接工作区 %s", e.Server, e.Workspace)
}

// LoginError 重试次数耗尽后的最终登录失败
type LoginError struct {
	Server   string
	Attempts int
	Err      error
}

func (e *LoginError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "登录服务器 %s 失败（已尝试 %d 次）", e.Server, e.Attempts)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	b.WriteString("\n可能的原因:\n")
	b.WriteString("  1. 用户名或密码错误\n")
	b.WriteString("  2. 服务器要求重置密码，请先用 p4 客户端登录修改密码\n")
	b.WriteString("  3. 无法连接到服务器或 Perforce Web 服务，请检查网络后联系管理员")
	return b.String()
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// IsNotFound 判断是否为查找失败
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
