package settings

// Layer 单层设置文件（studio / project / site）的内容，未设置的字段保持零值或 nil
type Layer struct {
	VersionControl VersionControlLayer `yaml:"version_control"`
	Anatomy        AnatomyLayer        `yaml:"anatomy"`
}

// AnatomyLayer anatomy 根目录设置
type AnatomyLayer struct {
	Roots map[string]string `yaml:"roots"`
}

// VersionControlLayer version_control 设置
type VersionControlLayer struct {
	Enabled      *bool            `yaml:"enabled"`
	ActiveSystem string           `yaml:"active_version_control_system"`
	Hosts        map[string]bool  `yaml:"hosts"`
	Servers      []ServerLayer    `yaml:"servers"`
	Workspaces   []WorkspaceLayer `yaml:"workspace_settings"`
}

// ServerLayer 单个服务器定义
type ServerLayer struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WorkspaceLayer 单个工作区定义
type WorkspaceLayer struct {
	Name                 string   `yaml:"name"`
	Server               string   `yaml:"server"`
	Primary              *bool    `yaml:"primary"`
	Hosts                []string `yaml:"hosts"`
	WorkspaceRoot        string   `yaml:"workspace_root"`
	WorkspaceName        string   `yaml:"workspace_name"`
	Stream               string   `yaml:"stream"`
	Options              string   `yaml:"options"`
	AllowCreateWorkspace *bool    `yaml:"allow_create_workspace"`
	CreateDirs           *bool    `yaml:"create_dirs"`
	EnableAutosync       *bool    `yaml:"enable_autosync"`
	StartupFiles         []string `yaml:"startup_files"`
	AlwaysSync           []string `yaml:"always_sync"`
	SyncWorkfile         *bool    `yaml:"sync_workfile"`
}

// ProjectSettings 合并后的项目设置
type ProjectSettings struct {
	Project        string
	VersionControl VersionControl
	Roots          map[string]string
}

// VersionControl 合并后的 version_control 设置
type VersionControl struct {
	Enabled      bool
	ActiveSystem string
	HostEnabled  map[string]bool
	Servers      []Server
	Workspaces   []Workspace
}

// Server 合并后的服务器定义
type Server struct {
	Name string
	Host string
	Port int
}

// Workspace 合并后的工作区定义（尚未做模板解析）
type Workspace struct {
	Name                 string
	Server               string
	Primary              bool
	Hosts                []string
	WorkspaceRoot        string
	WorkspaceName        string
	Stream               string
	Options              string
	AllowCreateWorkspace bool
	CreateDirs           bool
	EnableAutosync       bool
	StartupFiles         []string
	AlwaysSync           []string
	SyncWorkfile         bool
}

// IsEnabledFor 项目启用且该宿主未被单独禁用；host 为空时只看项目开关
func (vc VersionControl) IsEnabledFor(host string) bool {
	if !vc.Enabled {
		return false
	}
	if host == "" {
		return true
	}
	enabled, ok := vc.HostEnabled[host]
	return !ok || enabled
}
