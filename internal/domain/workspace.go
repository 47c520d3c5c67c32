package domain

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/lucksec/versionctl/internal/settings"
	"github.com/lucksec/versionctl/internal/template"
)

// WorkspaceInfo 一个本地工作区定义，构建后只读
type WorkspaceInfo struct {
	Name                 string
	Server               string
	ProjectName          string
	Primary              bool
	Hosts                []string
	WorkspaceRoot        string // anatomy 根目录键
	WorkspaceDir         string // 由 WorkspaceRoot 解析出的本地目录
	WorkspaceName        string // 已解析的 Perforce client 名称
	Stream               string
	Options              string
	AllowCreateWorkspace bool
	CreateDirs           bool
	EnableAutosync       bool
	StartupFiles         []string
	AlwaysSync           []string
	SyncWorkfile         bool
}

// NewWorkspaceInfo 由合并后的设置构建工作区：解析 workspace_name 模板，
// 并通过 anatomy 根目录得到 workspace_dir。根目录键不存在时返回 ConfigurationError。
func NewWorkspaceInfo(ws settings.Workspace, projectName string, roots map[string]string, env template.Environment) (*WorkspaceInfo, error) {
	info := &WorkspaceInfo{
		Name:                 ws.Name,
		Server:               ws.Server,
		ProjectName:          projectName,
		Primary:              ws.Primary,
		Hosts:                append([]string(nil), ws.Hosts...),
		WorkspaceRoot:        ws.WorkspaceRoot,
		WorkspaceName:        ws.WorkspaceName,
		Stream:               ws.Stream,
		Options:              ws.Options,
		AllowCreateWorkspace: ws.AllowCreateWorkspace,
		CreateDirs:           ws.CreateDirs,
		EnableAutosync:       ws.EnableAutosync,
		StartupFiles:         append([]string(nil), ws.StartupFiles...),
		AlwaysSync:           append([]string(nil), ws.AlwaysSync...),
		SyncWorkfile:         ws.SyncWorkfile,
	}

	ctx := template.NewContext(env, projectName, roots)

	if template.HasPlaceholders(info.WorkspaceName) {
		name, err := template.Resolve(info.WorkspaceName, ctx)
		if err != nil {
			return nil, &ConfigurationError{Kind: "workspace", Name: ws.Name, Workspace: ws.Name, Detail: "无法解析工作区名称", Err: err}
		}
		info.WorkspaceName = name
	}

	rootPath, ok := roots[ws.WorkspaceRoot]
	if !ok || rootPath == "" {
		return nil, &ConfigurationError{
			Kind:      "root",
			Name:      ws.WorkspaceRoot,
			Workspace: ws.Name,
			Detail:    "无法获取工作区 " + ws.Name + " 的根目录 " + ws.WorkspaceRoot + "，请联系管理员",
		}
	}

	dir, err := template.Resolve(rootPath, ctx)
	if err != nil {
		return nil, &ConfigurationError{Kind: "workspace", Name: ws.Name, Workspace: ws.Name, Detail: "无法解析工作区目录", Err: err}
	}
	info.WorkspaceDir = filepath.Clean(dir)

	return info, nil
}

// HasHost 工作区是否适用于指定宿主
func (w *WorkspaceInfo) HasHost(host string) bool {
	for _, h := range w.Hosts {
		if h == host {
			return true
		}
	}
	return false
}

// DepotToLocal 将以 stream 开头的 depot 路径映射到工作区目录下，其他路径原样返回
func (w *WorkspaceInfo) DepotToLocal(depotPath string) string {
	if w.Stream == "" || !strings.HasPrefix(depotPath, w.Stream) {
		return depotPath
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(depotPath, w.Stream), "/")
	return path.Join(filepath.ToSlash(w.WorkspaceDir), rel)
}

// LocalPath 将相对路径拼接到工作区目录，返回正斜杠形式
func (w *WorkspaceInfo) LocalPath(rel string) string {
	return path.Join(filepath.ToSlash(w.WorkspaceDir), filepath.ToSlash(rel))
}

// SubtreeSpec 返回整个工作区目录的递归路径 <dir>/...
func (w *WorkspaceInfo) SubtreeSpec() string {
	return filepath.ToSlash(w.WorkspaceDir) + "/..."
}
