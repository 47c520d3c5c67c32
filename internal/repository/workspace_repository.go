package repository

import (
	"fmt"

	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/logger"
	"github.com/lucksec/versionctl/internal/settings"
	"github.com/lucksec/versionctl/internal/template"
)

// ServerWorkspaces 一个项目的全部工作区定义
type ServerWorkspaces struct {
	source     settings.Source
	roots      settings.RootResolver
	env        template.Environment
	workspaces []*domain.WorkspaceInfo
}

// NewServerWorkspaces 创建工作区集合，需调用 FetchProjectWorkspaces 加载
func NewServerWorkspaces(source settings.Source, roots settings.RootResolver, env template.Environment) *ServerWorkspaces {
	return &ServerWorkspaces{
		source: source,
		roots:  roots,
		env:    env,
	}
}

// FetchProjectWorkspaces 加载项目的工作区设置并整体替换当前列表；
// 任一工作区构建失败则返回错误，当前列表保持不变
func (r *ServerWorkspaces) FetchProjectWorkspaces(projectName string) error {
	ps, err := r.source.ProjectSettings(projectName)
	if err != nil {
		return fmt.Errorf("加载项目 %s 设置失败: %w", projectName, err)
	}

	roots, err := r.roots.Roots(projectName)
	if err != nil {
		return fmt.Errorf("获取项目 %s 的根目录失败: %w", projectName, err)
	}

	workspaces := make([]*domain.WorkspaceInfo, 0, len(ps.VersionControl.Workspaces))
	for _, ws := range ps.VersionControl.Workspaces {
		info, err := domain.NewWorkspaceInfo(ws, projectName, roots, r.env)
		if err != nil {
			return err
		}
		workspaces = append(workspaces, info)
	}

	r.workspaces = workspaces
	logger.GetLogger().Debug("项目 %s 加载了 %d 个工作区", projectName, len(workspaces))
	return nil
}

// Workspaces 返回全部工作区（原始顺序）
func (r *ServerWorkspaces) Workspaces() []*domain.WorkspaceInfo {
	return r.workspaces
}

// GetHostWorkspaces 返回 hosts 包含 host 的工作区，primary 为 true 时只返回主工作区；
// host 为空时返回所有主工作区
func (r *ServerWorkspaces) GetHostWorkspaces(host string, primary bool) []*domain.WorkspaceInfo {
	result := []*domain.WorkspaceInfo{}
	for _, ws := range r.workspaces {
		switch {
		case host == "":
			if ws.Primary {
				result = append(result, ws)
			}
		case ws.HasHost(host) && (!primary || ws.Primary):
			result = append(result, ws)
		}
	}
	return result
}

// GetWorkspaceByName 返回第一个名称匹配的工作区，不存在时返回 NotFoundError
func (r *ServerWorkspaces) GetWorkspaceByName(name string) (*domain.WorkspaceInfo, error) {
	for _, ws := range r.workspaces {
		if ws.Name == name {
			return ws, nil
		}
	}
	return nil, &domain.NotFoundError{Kind: "工作区", Name: name}
}
