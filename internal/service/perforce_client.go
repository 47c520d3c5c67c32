package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/logger"
)

// ErrNoWebserverURL 未配置 Perforce Web 服务地址
var ErrNoWebserverURL = errors.New("unknown url for Perforce: 未配置 Perforce Web 服务地址")

// CommandClient Perforce 命令服务客户端接口
// 每个方法对应 Web 服务的一个命令：POST <base>/perforce/<command>
type CommandClient interface {
	// Login 登录服务器并绑定工作区
	Login(ctx context.Context, req LoginRequest) error

	// WorkspaceExists 查询工作区是否存在
	WorkspaceExists(ctx context.Context, workspaceName string) (bool, error)

	// CreateWorkspace 创建工作区
	CreateWorkspace(ctx context.Context, workspaceRoot, workspaceName, stream, options string) error

	// SyncLatestVersion 将路径同步到最新版本
	SyncLatestVersion(ctx context.Context, path string) error

	// SyncToVersion 将路径同步到指定 changelist
	SyncToVersion(ctx context.Context, path, changeID string) error

	// ExistsOnServer 文件是否已提交到服务器
	ExistsOnServer(ctx context.Context, path string) (bool, error)

	// IsInAnyWorkspace 路径是否属于某个工作区
	IsInAnyWorkspace(ctx context.Context, path string) (bool, error)

	// Checkout 签出文件
	Checkout(ctx context.Context, path, comment string) error

	// IsCheckedOut 文件是否已签出
	IsCheckedOut(ctx context.Context, path string) (bool, error)

	// Add 添加文件
	Add(ctx context.Context, path, comment string) error

	// Delete 删除文件
	Delete(ctx context.Context, path, comment string) error

	// SubmitChangeList 提交当前 changelist
	SubmitChangeList(ctx context.Context, comment string) error

	// GetChanges 列出已提交的 changelist
	GetChanges(ctx context.Context) ([]domain.Change, error)

	// GetLastChangeList 返回最近一次 changelist
	GetLastChangeList(ctx context.Context) (*domain.Change, error)

	// GetStream 返回工作区目录对应的 stream
	GetStream(ctx context.Context, workspaceDir string) (string, error)
}

// LoginRequest 登录参数
type LoginRequest struct {
	Host          string `json:"host"`
	Port          string `json:"port"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	WorkspaceDir  string `json:"workspace_dir,omitempty"`
	WorkspaceName string `json:"workspace_name,omitempty"`
}

// NewLoginRequest 由连接信息构建登录参数
func NewLoginRequest(conn *domain.ConnectionInfo) LoginRequest {
	return LoginRequest{
		Host:          conn.Server.Host,
		Port:          fmt.Sprint(conn.Server.Port),
		Username:      conn.Server.Username,
		Password:      conn.Server.Password,
		WorkspaceDir:  conn.Workspace.WorkspaceDir,
		WorkspaceName: conn.Workspace.WorkspaceName,
	}
}

// TransportError Web 服务返回非 2xx 响应
type TransportError struct {
	Command    string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Perforce 命令 %s 失败: %d, %s", e.Command, e.StatusCode, strings.TrimSpace(e.Body))
}

// restClient CommandClient 的 HTTP 实现
type restClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCommandClient 创建 Perforce 命令服务客户端，timeout 为 0 时不设超时
func NewCommandClient(baseURL string, timeout time.Duration) CommandClient {
	return &restClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login 登录服务器
func (c *restClient) Login(ctx context.Context, req LoginRequest) error {
	return c.call(ctx, "login", req, nil)
}

// WorkspaceExists 查询工作区是否存在
func (c *restClient) WorkspaceExists(ctx context.Context, workspaceName string) (bool, error) {
	return c.callBool(ctx, "workspace_exists", map[string]interface{}{"workspace": workspaceName})
}

// CreateWorkspace 创建工作区
func (c *restClient) CreateWorkspace(ctx context.Context, workspaceRoot, workspaceName, stream, options string) error {
	return c.call(ctx, "create_workspace", map[string]interface{}{
		"workspace_root": workspaceRoot,
		"workspace_name": workspaceName,
		"stream":         stream,
		"options":        options,
	}, nil)
}

// SyncLatestVersion 同步到最新版本
func (c *restClient) SyncLatestVersion(ctx context.Context, path string) error {
	return c.call(ctx, "sync_latest_version", map[string]interface{}{"path": path}, nil)
}

// SyncToVersion 同步到指定 changelist
func (c *restClient) SyncToVersion(ctx context.Context, path, changeID string) error {
	return c.call(ctx, "sync_to_version", map[string]interface{}{"path": path, "version": changeID}, nil)
}

// ExistsOnServer 文件是否已提交到服务器
func (c *restClient) ExistsOnServer(ctx context.Context, path string) (bool, error) {
	return c.callBool(ctx, "exists_on_server", map[string]interface{}{"path": path})
}

// IsInAnyWorkspace 路径是否属于某个工作区
func (c *restClient) IsInAnyWorkspace(ctx context.Context, path string) (bool, error) {
	return c.callBool(ctx, "is_in_any_workspace", map[string]interface{}{"path": path})
}

// Checkout 签出文件
func (c *restClient) Checkout(ctx context.Context, path, comment string) error {
	return c.call(ctx, "checkout", map[string]interface{}{"path": path, "comment": comment}, nil)
}

// IsCheckedOut 文件是否已签出
func (c *restClient) IsCheckedOut(ctx context.Context, path string) (bool, error) {
	return c.callBool(ctx, "is_checkouted", map[string]interface{}{"path": path})
}

// Add 添加文件
func (c *restClient) Add(ctx context.Context, path, comment string) error {
	return c.call(ctx, "add", map[string]interface{}{"path": path, "comment": comment}, nil)
}

// Delete 删除文件
func (c *restClient) Delete(ctx context.Context, path, comment string) error {
	return c.call(ctx, "delete", map[string]interface{}{"path": path, "comment": comment}, nil)
}

// SubmitChangeList 提交当前 changelist
func (c *restClient) SubmitChangeList(ctx context.Context, comment string) error {
	return c.call(ctx, "submit_change_list", map[string]interface{}{"comment": comment}, nil)
}

// GetChanges 列出已提交的 changelist
func (c *restClient) GetChanges(ctx context.Context) ([]domain.Change, error) {
	var changes []domain.Change
	if err := c.call(ctx, "get_changes", map[string]interface{}{}, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// GetLastChangeList 返回最近一次 changelist
func (c *restClient) GetLastChangeList(ctx context.Context) (*domain.Change, error) {
	var change domain.Change
	if err := c.call(ctx, "get_last_change_list", map[string]interface{}{}, &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// GetStream 返回工作区目录对应的 stream
func (c *restClient) GetStream(ctx context.Context, workspaceDir string) (string, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "get_stream", map[string]interface{}{"workspace_dir": workspaceDir}, &raw); err != nil {
		return "", err
	}

	var stream string
	if err := json.Unmarshal(raw, &stream); err == nil {
		return stream, nil
	}
	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return "", fmt.Errorf("解析 get_stream 响应失败: %w", err)
	}
	return wrapped.Value, nil
}

// callBool 调用返回布尔值的命令，兼容 true 与 {"value": true} 两种响应
func (c *restClient) callBool(ctx context.Context, command string, payload interface{}) (bool, error) {
	var raw json.RawMessage
	if err := c.call(ctx, command, payload, &raw); err != nil {
		return false, err
	}
	return decodeBool(command, raw)
}

func decodeBool(command string, raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var wrapped struct {
		Value *bool `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Value == nil {
		return false, fmt.Errorf("解析 %s 响应失败: %s", command, string(raw))
	}
	return *wrapped.Value, nil
}

// call 调用 Perforce Web 服务命令，out 为 nil 时忽略响应体
func (c *restClient) call(ctx context.Context, command string, payload interface{}, out interface{}) error {
	if c.baseURL == "" {
		return ErrNoWebserverURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	requestID := uuid.NewString()
	url := fmt.Sprintf("%s/perforce/%s", c.baseURL, command)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	logger.GetLogger().Debug("Perforce 请求: command=%s, request_id=%s", command, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 失败: %w", command, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Command: command, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("解析 %s 响应失败: %w", command, err)
	}
	return nil
}
