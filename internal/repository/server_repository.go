package repository

import (
	"fmt"

	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/settings"
)

// ServerRepository 服务器定义仓库接口
type ServerRepository interface {
	// FetchProjectServers 返回项目配置的全部服务器（不含凭据）
	FetchProjectServers(projectName string) ([]*domain.ServerInfo, error)

	// GetServer 返回名称匹配的服务器，不存在时返回 NotFoundError
	GetServer(projectName, serverName string) (*domain.ServerInfo, error)
}

// serverRepository 服务器仓库实现
type serverRepository struct {
	source settings.Source
}

// NewServerRepository 创建服务器仓库实例
func NewServerRepository(source settings.Source) ServerRepository {
	return &serverRepository{source: source}
}

// FetchProjectServers 返回项目配置的全部服务器
func (r *serverRepository) FetchProjectServers(projectName string) ([]*domain.ServerInfo, error) {
	ps, err := r.source.ProjectSettings(projectName)
	if err != nil {
		return nil, fmt.Errorf("加载项目 %s 设置失败: %w", projectName, err)
	}

	servers := make([]*domain.ServerInfo, 0, len(ps.VersionControl.Servers))
	for _, s := range ps.VersionControl.Servers {
		servers = append(servers, domain.NewServerInfo(s.Name, s.Host, s.Port))
	}
	return servers, nil
}

// GetServer 返回名称匹配的服务器
func (r *serverRepository) GetServer(projectName, serverName string) (*domain.ServerInfo, error) {
	servers, err := r.FetchProjectServers(projectName)
	if err != nil {
		return nil, err
	}
	for _, s := range servers {
		if s.Name == serverName {
			return s, nil
		}
	}
	return nil, &domain.NotFoundError{Kind: "服务器", Name: serverName}
}
