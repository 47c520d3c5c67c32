package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/logger"
)

// WorkspaceService 工作区生命周期：存在性检查、创建和同步。
// 所有操作都要求连接已附加凭据，并在执行前先远程登录
type WorkspaceService interface {
	// WorkspaceExists 查询工作区是否已在服务器上存在
	WorkspaceExists(ctx context.Context, conn *domain.ConnectionInfo) (bool, error)

	// CreateWorkspace 创建本地目录和远程工作区，然后同步 startup_files；
	// 对已存在的工作区调用是错误的，调用方需先检查
	CreateWorkspace(ctx context.Context, conn *domain.ConnectionInfo) error

	// EnsureWorkspace 工作区不存在时创建，allow_create_workspace 关闭时返回配置错误。
	// 返回值表示是否新建
	EnsureWorkspace(ctx context.Context, conn *domain.ConnectionInfo) (bool, error)

	// SyncToLatest 将整个工作区同步到最新版本
	SyncToLatest(ctx context.Context, conn *domain.ConnectionInfo) error

	// SyncTargetToLatest 只同步 target 所在目录
	SyncTargetToLatest(ctx context.Context, conn *domain.ConnectionInfo, target string) error

	// SyncToVersion 将整个工作区同步到指定 changelist
	SyncToVersion(ctx context.Context, conn *domain.ConnectionInfo, changeID string) error

	// SyncPaths 逐个同步路径，stream 开头的 depot 路径映射到工作区目录
	SyncPaths(ctx context.Context, conn *domain.ConnectionInfo, paths []string) error

	// FilesOnServer 将本地文件分为已提交和未提交两组
	FilesOnServer(ctx context.Context, conn *domain.ConnectionInfo, paths []string) (*FileStatus, error)

	// ListChanges 列出已提交的 changelist
	ListChanges(ctx context.Context, conn *domain.ConnectionInfo) ([]domain.Change, error)
}

// FileStatus 文件在服务器上的提交状态
type FileStatus struct {
	Submitted   []string
	Unsubmitted []string
}

// workspaceService 工作区生命周期实现
type workspaceService struct {
	client CommandClient
}

// NewWorkspaceService 创建工作区服务
func NewWorkspaceService(client CommandClient) WorkspaceService {
	return &workspaceService{client: client}
}

// authenticate 校验凭据后远程登录
func (s *workspaceService) authenticate(ctx context.Context, conn *domain.ConnectionInfo) error {
	if err := conn.RequireLogin(); err != nil {
		return err
	}
	if err := s.client.Login(ctx, NewLoginRequest(conn)); err != nil {
		return fmt.Errorf("登录服务器 %s 失败: %w", conn.Server.Name, err)
	}
	return nil
}

// WorkspaceExists 查询工作区是否存在
func (s *workspaceService) WorkspaceExists(ctx context.Context, conn *domain.ConnectionInfo) (bool, error) {
	if err := s.authenticate(ctx, conn); err != nil {
		return false, err
	}
	exists, err := s.client.WorkspaceExists(ctx, conn.Workspace.WorkspaceName)
	if err != nil {
		return false, fmt.Errorf("查询工作区 %s 失败: %w", conn.Workspace.WorkspaceName, err)
	}
	return exists, nil
}

// CreateWorkspace 创建工作区
func (s *workspaceService) CreateWorkspace(ctx context.Context, conn *domain.ConnectionInfo) error {
	if err := s.authenticate(ctx, conn); err != nil {
		return err
	}
	ws := conn.Workspace
	log := logger.GetLogger()

	if err := os.MkdirAll(ws.WorkspaceDir, 0755); err != nil {
		return fmt.Errorf("创建工作区目录失败: %w", err)
	}

	log.Info("创建工作区 %s: 目录 %s, stream %s", ws.WorkspaceName, ws.WorkspaceDir, ws.Stream)
	if err := s.client.CreateWorkspace(ctx, filepath.ToSlash(ws.WorkspaceDir), ws.WorkspaceName, ws.Stream, ws.Options); err != nil {
		return fmt.Errorf("创建工作区 %s 失败: %w", ws.WorkspaceName, err)
	}

	for _, file := range ws.StartupFiles {
		target := ws.LocalPath(file)
		log.Debug("同步启动文件 %s", target)
		if err := s.client.SyncLatestVersion(ctx, target); err != nil {
			return fmt.Errorf("工作区 %s 已创建，但同步启动文件 %s 失败: %w", ws.WorkspaceName, target, err)
		}
	}
	return nil
}

// EnsureWorkspace 检查后按需创建
func (s *workspaceService) EnsureWorkspace(ctx context.Context, conn *domain.ConnectionInfo) (bool, error) {
	exists, err := s.WorkspaceExists(ctx, conn)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	ws := conn.Workspace
	if !ws.AllowCreateWorkspace {
		return false, &domain.ConfigurationError{
			Kind:      "workspace",
			Name:      ws.Name,
			Workspace: ws.Name,
			Detail:    fmt.Sprintf("工作区 %s 不存在且不允许自动创建", ws.WorkspaceName),
		}
	}
	if err := s.CreateWorkspace(ctx, conn); err != nil {
		return false, err
	}
	return true, nil
}

// SyncToLatest 同步整个工作区到最新版本
func (s *workspaceService) SyncToLatest(ctx context.Context, conn *domain.ConnectionInfo) error {
	if err := s.authenticate(ctx, conn); err != nil {
		return err
	}
	if !conn.Server.HasCredentials() {
		return fmt.Errorf("服务器 %s: %w", conn.Server.Name, domain.ErrEmptyCredentials)
	}

	spec := conn.Workspace.SubtreeSpec()
	logger.GetLogger().Info("同步 %s 到最新版本", spec)
	if err := s.client.SyncLatestVersion(ctx, spec); err != nil {
		return fmt.Errorf("同步工作区 %s 失败: %w", conn.Workspace.Name, err)
	}
	return nil
}

// SyncTargetToLatest 同步 target 所在目录到最新版本
func (s *workspaceService) SyncTargetToLatest(ctx context.Context, conn *domain.ConnectionInfo, target string) error {
	if target == "" {
		return fmt.Errorf("同步目标不能为空")
	}
	if err := s.authenticate(ctx, conn); err != nil {
		return err
	}

	spec := path.Dir(filepath.ToSlash(target)) + "/..."
	logger.GetLogger().Info("同步 %s 到最新版本", spec)
	if err := s.client.SyncLatestVersion(ctx, spec); err != nil {
		return fmt.Errorf("同步 %s 失败: %w", target, err)
	}
	return nil
}

// SyncToVersion 同步整个工作区到指定 changelist
func (s *workspaceService) SyncToVersion(ctx context.Context, conn *domain.ConnectionInfo, changeID string) error {
	if changeID == "" {
		return fmt.Errorf("changelist 不能为空")
	}
	if err := s.authenticate(ctx, conn); err != nil {
		return err
	}

	spec := conn.Workspace.SubtreeSpec()
	logger.GetLogger().Info("同步 %s 到 changelist %s", spec, changeID)
	if err := s.client.SyncToVersion(ctx, spec, changeID); err != nil {
		return fmt.Errorf("同步工作区 %s 到 %s 失败: %w", conn.Workspace.Name, changeID, err)
	}
	return nil
}

// SyncPaths 逐个同步路径
func (s *workspaceService) SyncPaths(ctx context.Context, conn *domain.ConnectionInfo, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := s.authenticate(ctx, conn); err != nil {
		return err
	}
	for _, p := range paths {
		local := conn.Workspace.DepotToLocal(p)
		logger.GetLogger().Debug("同步 %s", local)
		if err := s.client.SyncLatestVersion(ctx, local); err != nil {
			return fmt.Errorf("同步 %s 失败: %w", local, err)
		}
	}
	return nil
}

// FilesOnServer 查询文件提交状态
func (s *workspaceService) FilesOnServer(ctx context.Context, conn *domain.ConnectionInfo, paths []string) (*FileStatus, error) {
	if err := s.authenticate(ctx, conn); err != nil {
		return nil, err
	}

	status := &FileStatus{Submitted: []string{}, Unsubmitted: []string{}}
	for _, p := range paths {
		exists, err := s.client.ExistsOnServer(ctx, filepath.ToSlash(p))
		if err != nil {
			return nil, fmt.Errorf("查询 %s 失败: %w", p, err)
		}
		if exists {
			status.Submitted = append(status.Submitted, p)
		} else {
			status.Unsubmitted = append(status.Unsubmitted, p)
		}
	}
	return status, nil
}

// ListChanges 列出已提交的 changelist
func (s *workspaceService) ListChanges(ctx context.Context, conn *domain.ConnectionInfo) ([]domain.Change, error) {
	if err := s.authenticate(ctx, conn); err != nil {
		return nil, err
	}
	changes, err := s.client.GetChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取 changelist 失败: %w", err)
	}
	return changes, nil
}
