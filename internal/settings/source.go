package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// 设置文件布局
const (
	StudioFile  = "studio.yaml"
	ProjectsDir = "projects"
	SiteDir     = "site"
)

// Source 项目设置来源
type Source interface {
	// ProjectSettings 返回合并后的项目设置
	ProjectSettings(projectName string) (*ProjectSettings, error)
}

// RootResolver anatomy 根目录解析
type RootResolver interface {
	// Roots 返回项目的根目录键到绝对路径的映射
	Roots(projectName string) (map[string]string, error)
}

// FileSource 基于 YAML 文件的设置来源
type FileSource struct {
	dir string
}

// NewFileSource 创建读取 dir 下 studio.yaml、projects/<project>.yaml、site/<project>.yaml 的设置来源
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Dir 返回设置目录
func (s *FileSource) Dir() string {
	return s.dir
}

// ProjectSettings 按 site > project > studio 的优先级合并三层设置
func (s *FileSource) ProjectSettings(projectName string) (*ProjectSettings, error) {
	if projectName == "" {
		return nil, fmt.Errorf("项目名称不能为空")
	}

	paths := []string{
		filepath.Join(s.dir, SiteDir, projectName+".yaml"),
		filepath.Join(s.dir, ProjectsDir, projectName+".yaml"),
		filepath.Join(s.dir, StudioFile),
	}

	layers := make([]Layer, 0, len(paths))
	for _, path := range paths {
		layer, err := LoadLayer(path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}

	merged := Merge(projectName, layers...)
	return &merged, nil
}

// Roots 返回合并后的 anatomy 根目录
func (s *FileSource) Roots(projectName string) (map[string]string, error) {
	ps, err := s.ProjectSettings(projectName)
	if err != nil {
		return nil, err
	}
	return ps.Roots, nil
}

// ListProjects 列出 projects/ 下定义的项目
func (s *FileSource) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, ProjectsDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取项目目录失败: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		projects = append(projects, strings.TrimSuffix(name, ".yaml"))
	}
	return projects, nil
}

// LoadLayer 读取单个设置层，文件不存在时返回空层
func LoadLayer(path string) (Layer, error) {
	var layer Layer

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return layer, nil
		}
		return layer, fmt.Errorf("读取设置文件 %s 失败: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &layer); err != nil {
		return layer, fmt.Errorf("解析设置文件 %s 失败: %w", path, err)
	}
	return layer, nil
}

// MemorySource 内存中的设置来源，供嵌入方和测试使用
type MemorySource struct {
	Studio   Layer
	Projects map[string]Layer
	Sites    map[string]Layer
}

// ProjectSettings 按 site > project > studio 的优先级合并
func (m *MemorySource) ProjectSettings(projectName string) (*ProjectSettings, error) {
	project, ok := m.Projects[projectName]
	if !ok {
		return nil, fmt.Errorf("项目 %s 不存在", projectName)
	}
	merged := Merge(projectName, m.Sites[projectName], project, m.Studio)
	return &merged, nil
}

// Roots 返回合并后的 anatomy 根目录
func (m *MemorySource) Roots(projectName string) (map[string]string, error) {
	ps, err := m.ProjectSettings(projectName)
	if err != nil {
		return nil, err
	}
	return ps.Roots, nil
}
