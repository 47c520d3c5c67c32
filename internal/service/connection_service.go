package service

import (
	"context"
	"fmt"
	"os"

	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/logger"
	"github.com/lucksec/versionctl/internal/repository"
	"github.com/lucksec/versionctl/internal/settings"
	"github.com/lucksec/versionctl/internal/template"
)

// ConnectionService 解析项目、工作区和宿主对应的连接信息
type ConnectionService interface {
	// GetConnectionInfo 解析工作区、服务器并获取凭据。
	// workspaceName 为空时按 host 选择第一个主工作区；
	// 用户取消登录时返回 (nil, nil)，调用方应视为无法继续
	GetConnectionInfo(ctx context.Context, projectName, workspaceName, host string) (*domain.ConnectionInfo, error)

	// HostWorkspaces 返回适用于 host 的全部工作区，host 为空时返回全部工作区
	HostWorkspaces(projectName, host string) ([]*domain.WorkspaceInfo, error)
}

// connectionService 连接解析实现
type connectionService struct {
	source  settings.Source
	roots   settings.RootResolver
	env     template.Environment
	servers repository.ServerRepository
	login   LoginService
}

// NewConnectionService 创建连接解析服务
func NewConnectionService(source settings.Source, roots settings.RootResolver, env template.Environment, login LoginService) ConnectionService {
	return &connectionService{
		source:  source,
		roots:   roots,
		env:     env,
		servers: repository.NewServerRepository(source),
		login:   login,
	}
}

// GetConnectionInfo 解析连接信息
func (s *connectionService) GetConnectionInfo(ctx context.Context, projectName, workspaceName, host string) (*domain.ConnectionInfo, error) {
	log := logger.GetLogger()

	workspace, err := s.resolveWorkspace(projectName, workspaceName, host)
	if err != nil {
		return nil, err
	}

	if workspace.CreateDirs {
		if err := os.MkdirAll(workspace.WorkspaceDir, 0755); err != nil {
			return nil, fmt.Errorf("创建工作区 %s 的目录失败: %w", workspace.Name, err)
		}
		log.Debug("已确保工作区目录存在: %s", workspace.WorkspaceDir)
	}

	server, err := s.servers.GetServer(projectName, workspace.Server)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.ConfigurationError{
				Kind:      "server",
				Name:      workspace.Server,
				Workspace: workspace.Name,
				Detail:    fmt.Sprintf("项目 %s 中没有工作区引用的服务器", projectName),
				Err:       err,
			}
		}
		return nil, err
	}

	ok, err := s.login.CheckLogin(ctx, server)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warn("未获取服务器 %s 的凭据，无法连接工作区 %s", server.Name, workspace.Name)
		return nil, nil
	}
	if !server.HasCredentials() {
		return nil, fmt.Errorf("服务器 %s: %w", server.Name, domain.ErrEmptyCredentials)
	}

	log.Debug("连接信息: 工作区 %s (%s) -> 服务器 %s", workspace.Name, workspace.WorkspaceName, server)
	return domain.NewConnectionInfo(workspace, server), nil
}

// HostWorkspaces 返回适用于 host 的全部工作区
func (s *connectionService) HostWorkspaces(projectName, host string) ([]*domain.WorkspaceInfo, error) {
	workspaces := repository.NewServerWorkspaces(s.source, s.roots, s.env)
	if err := workspaces.FetchProjectWorkspaces(projectName); err != nil {
		return nil, err
	}
	if host == "" {
		return workspaces.Workspaces(), nil
	}
	return workspaces.GetHostWorkspaces(host, false), nil
}

// resolveWorkspace 按名称或宿主选择工作区
func (s *connectionService) resolveWorkspace(projectName, workspaceName, host string) (*domain.WorkspaceInfo, error) {
	workspaces := repository.NewServerWorkspaces(s.source, s.roots, s.env)
	if err := workspaces.FetchProjectWorkspaces(projectName); err != nil {
		return nil, err
	}

	if workspaceName != "" {
		return workspaces.GetWorkspaceByName(workspaceName)
	}

	candidates := workspaces.GetHostWorkspaces(host, true)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("项目 %s 没有可用的工作区: %w", projectName,
			&domain.NotFoundError{Kind: "主工作区", Name: host})
	}
	return candidates[0], nil
}
