package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/jsonc"
)

// 凭据文件默认位置：os.UserConfigDir()/versionctl/perforce_servers.json
const (
	appDirName          = "versionctl"
	credentialFileName  = "perforce_servers.json"
	credentialFileEnv   = "VERSIONCTL_CREDENTIAL_FILE"
	credentialFileMode  = 0600
	credentialDirectory = 0700
)

// ErrNotFound 凭据文件中没有该服务器
var ErrNotFound = errors.New("未找到服务器凭据")

// Credentials 服务器登录凭据
type Credentials struct {
	Username string
	Password string
}

// entry 凭据文件中的一条记录
type entry struct {
	ServerName string `json:"server_name"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// CredentialManager 凭据管理器接口
//
// 每次操作都完整读取并写回整个文件；其他进程在读写之间覆盖文件的竞争不做处理（后写入者生效）。
type CredentialManager interface {
	// GetCredentials 获取指定服务器的凭据，不存在时返回 ErrNotFound
	GetCredentials(serverName string) (*Credentials, error)

	// SetCredentials 设置指定服务器的凭据（新服务器追加到末尾）
	SetCredentials(serverName string, creds *Credentials) error

	// HasCredentials 检查是否已缓存凭据
	HasCredentials(serverName string) bool

	// ListServers 列出所有已缓存凭据的服务器
	ListServers() ([]string, error)

	// RemoveCredentials 删除指定服务器的凭据，不存在时不报错
	RemoveCredentials(serverName string) error

	// Path 返回凭据文件路径
	Path() string
}

// credentialManager 基于 JSON 文件的凭据管理器
type credentialManager struct {
	configPath string
	mu         sync.Mutex
}

// NewCredentialManager 创建凭据管理器实例，configPath 为空时使用默认路径
func NewCredentialManager(configPath string) (CredentialManager, error) {
	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}
	return &credentialManager{configPath: configPath}, nil
}

// DefaultPath 返回默认凭据文件路径，环境变量 VERSIONCTL_CREDENTIAL_FILE 优先
func DefaultPath() (string, error) {
	if p := os.Getenv(credentialFileEnv); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("获取用户配置目录失败: %w", err)
	}
	return filepath.Join(dir, appDirName, credentialFileName), nil
}

// Path 返回凭据文件路径
func (m *credentialManager) Path() string {
	return m.configPath
}

// GetCredentials 获取指定服务器的凭据
func (m *credentialManager) GetCredentials(serverName string) (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ServerName == serverName {
			return &Credentials{Username: e.Username, Password: e.Password}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, serverName)
}

// SetCredentials 设置指定服务器的凭据
func (m *credentialManager) SetCredentials(serverName string, creds *Credentials) error {
	if serverName == "" {
		return fmt.Errorf("服务器名称不能为空")
	}
	if creds == nil {
		return fmt.Errorf("凭据不能为空")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return err
	}

	updated := false
	for i := range entries {
		if entries[i].ServerName == serverName {
			entries[i].Username = creds.Username
			entries[i].Password = creds.Password
			updated = true
			break
		}
	}
	if !updated {
		entries = append(entries, entry{ServerName: serverName, Username: creds.Username, Password: creds.Password})
	}

	return m.save(entries)
}

// HasCredentials 检查是否已缓存凭据
func (m *credentialManager) HasCredentials(serverName string) bool {
	_, err := m.GetCredentials(serverName)
	return err == nil
}

// ListServers 列出所有已缓存凭据的服务器
func (m *credentialManager) ListServers() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return nil, err
	}
	servers := make([]string, 0, len(entries))
	for _, e := range entries {
		servers = append(servers, e.ServerName)
	}
	return servers, nil
}

// RemoveCredentials 删除指定服务器的凭据
func (m *credentialManager) RemoveCredentials(serverName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ServerName != serverName {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return m.save(kept)
}

// load 读取整个凭据文件，文件不存在时创建空列表
func (m *credentialManager) load() ([]entry, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("读取凭据文件失败: %w", err)
		}
		if err := m.save([]entry{}); err != nil {
			return nil, err
		}
		return []entry{}, nil
	}

	// 文件可能被手动编辑过，允许注释和尾随逗号
	var entries []entry
	if err := json.Unmarshal(jsonc.ToJSON(data), &entries); err != nil {
		return nil, fmt.Errorf("解析凭据文件 %s 失败: %w", m.configPath, err)
	}
	if entries == nil {
		entries = []entry{}
	}
	return entries, nil
}

// save 写回整个凭据文件
func (m *credentialManager) save(entries []entry) error {
	if dir := filepath.Dir(m.configPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, credentialDirectory); err != nil {
			return fmt.Errorf("创建凭据目录失败: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("序列化凭据失败: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, credentialFileMode); err != nil {
		return fmt.Errorf("写入凭据文件失败: %w", err)
	}
	return nil
}
