package service

import (
	"fmt"
	"strings"

	"github.com/lucksec/versionctl/internal/settings"
)

// AddonState 版本控制插件的初始化结果
type AddonState struct {
	Project      string
	Enabled      bool
	ActiveSystem string
	hostEnabled  map[string]bool
}

// InitializeAddon 读取项目设置，返回插件是否启用及当前的版本控制系统
func InitializeAddon(source settings.Source, projectName string) (*AddonState, error) {
	ps, err := source.ProjectSettings(projectName)
	if err != nil {
		return nil, fmt.Errorf("加载项目 %s 设置失败: %w", projectName, err)
	}
	vc := ps.VersionControl
	return &AddonState{
		Project:      projectName,
		Enabled:      vc.Enabled,
		ActiveSystem: vc.ActiveSystem,
		hostEnabled:  vc.HostEnabled,
	}, nil
}

// IsEnabledFor 插件启用且宿主未被单独禁用
func (a *AddonState) IsEnabledFor(host string) bool {
	vc := settings.VersionControl{Enabled: a.Enabled, HostEnabled: a.hostEnabled}
	return vc.IsEnabledFor(host)
}

// Label 菜单显示的名称
func (a *AddonState) Label() string {
	if a.ActiveSystem == "" {
		return "Version Control"
	}
	return "Version Control: " + strings.ToUpper(a.ActiveSystem[:1]) + a.ActiveSystem[1:]
}
