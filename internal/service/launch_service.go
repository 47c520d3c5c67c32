package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/logger"
	"github.com/lucksec/versionctl/internal/settings"
)

// LaunchRequest 宿主启动前的准备参数
type LaunchRequest struct {
	Project  string
	Host     string
	Workfile string // 最近的工作文件，sync_workfile 开启时同步其所在目录
}

// LaunchResult 单个工作区的准备结果
type LaunchResult struct {
	Workspace string
	Created   bool
	Synced    []string
	Skipped   bool
	Reason    string
}

// LaunchService 宿主启动前确保工作区存在并同步
type LaunchService interface {
	// Prepare 依次处理宿主适用的全部工作区，版本控制未启用时不做任何事
	Prepare(ctx context.Context, req LaunchRequest) ([]LaunchResult, error)
}

// launchService 启动准备实现
type launchService struct {
	source      settings.Source
	connections ConnectionService
	login       LoginService
	workspaces  WorkspaceService
}

// NewLaunchService 创建启动准备服务
func NewLaunchService(source settings.Source, connections ConnectionService, login LoginService, workspaces WorkspaceService) LaunchService {
	return &launchService{
		source:      source,
		connections: connections,
		login:       login,
		workspaces:  workspaces,
	}
}

// Prepare 启动前准备
func (s *launchService) Prepare(ctx context.Context, req LaunchRequest) ([]LaunchResult, error) {
	log := logger.GetLogger()

	state, err := InitializeAddon(s.source, req.Project)
	if err != nil {
		return nil, err
	}
	if !state.IsEnabledFor(req.Host) {
		log.Info("项目 %s 未对宿主 %s 启用版本控制", req.Project, req.Host)
		return []LaunchResult{}, nil
	}

	workspaces, err := s.connections.HostWorkspaces(req.Project, req.Host)
	if err != nil {
		return nil, err
	}

	results := make([]LaunchResult, 0, len(workspaces))
	for _, ws := range workspaces {
		result, err := s.prepareWorkspace(ctx, req, ws.Name)
		if err != nil {
			return results, fmt.Errorf("准备工作区 %s 失败: %w", ws.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// prepareWorkspace 处理单个工作区
func (s *launchService) prepareWorkspace(ctx context.Context, req LaunchRequest, name string) (LaunchResult, error) {
	log := logger.GetLogger()
	result := LaunchResult{Workspace: name, Synced: []string{}}

	conn, err := s.connections.GetConnectionInfo(ctx, req.Project, name, req.Host)
	if err != nil {
		return result, err
	}
	if conn == nil {
		log.Warn("跳过工作区 %s: 未登录", name)
		result.Skipped = true
		result.Reason = "未登录"
		return result, nil
	}

	if err := s.login.HandleLogin(ctx, conn); err != nil {
		if errors.Is(err, domain.ErrLoginCancelled) {
			log.Warn("跳过工作区 %s: 用户取消登录", name)
			result.Skipped = true
			result.Reason = "用户取消登录"
			return result, nil
		}
		return result, err
	}

	created, err := s.workspaces.EnsureWorkspace(ctx, conn)
	if err != nil {
		return result, err
	}
	result.Created = created

	ws := conn.Workspace
	if len(ws.AlwaysSync) > 0 {
		if err := s.workspaces.SyncPaths(ctx, conn, ws.AlwaysSync); err != nil {
			return result, err
		}
		result.Synced = append(result.Synced, ws.AlwaysSync...)
	}

	if ws.EnableAutosync {
		if err := s.workspaces.SyncToLatest(ctx, conn); err != nil {
			return result, err
		}
		result.Synced = append(result.Synced, ws.SubtreeSpec())
	}

	if ws.SyncWorkfile && req.Workfile != "" {
		if err := s.workspaces.SyncTargetToLatest(ctx, conn, req.Workfile); err != nil {
			return result, err
		}
		result.Synced = append(result.Synced, req.Workfile)
	}

	log.Info("工作区 %s 准备完成 (新建: %v, 同步: %d)", name, created, len(result.Synced))
	return result, nil
}
