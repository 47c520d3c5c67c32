package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// 配置文件名与环境变量
const (
	ConfigFileName     = ".versionctl.ini"
	WebserverURLEnv    = "PERFORCE_WEBSERVER_URL"
	DefaultLoginTries  = 3
	DefaultTimeoutSecs = 30
)

// Config 应用配置
type Config struct {
	// 配置文件路径（未找到时为空）
	Path string

	// 项目设置目录（studio.yaml / projects / site）
	SettingsDir string

	// 当前宿主名称（maya、unreal 等），为空表示不限定宿主
	Host string

	// 默认项目
	Project string

	// Perforce 配置
	Perforce PerforceConfig

	// 日志配置
	Log LogConfig
}

// PerforceConfig Perforce Web 服务与登录相关配置
type PerforceConfig struct {
	// Perforce Web 服务地址
	WebserverURL string

	// 凭据文件路径（为空时使用用户配置目录下的默认路径）
	CredentialFile string

	// 登录失败时的最大尝试次数
	LoginAttempts int

	// 单次请求超时（秒）
	TimeoutSeconds int
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别：DEBUG, INFO, WARN, ERROR
	Level string

	// 是否启用控制台输出
	EnableConsole bool

	// 是否启用文件输出
	EnableFile bool

	// 日志目录
	LogDir string

	// 日志文件名（如果为空，则使用默认格式）
	LogFile string
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		SettingsDir: "./settings",
		Perforce: PerforceConfig{
			LoginAttempts:  DefaultLoginTries,
			TimeoutSeconds: DefaultTimeoutSecs,
		},
		Log: LogConfig{
			Level:         "WARN",
			EnableConsole: true,
			EnableFile:    false,
			LogDir:        "logs",
		},
	}
}

// SearchPaths 配置文件查找顺序：当前目录，然后 $HOME/.versionctl/
func SearchPaths() []string {
	paths := []string{ConfigFileName}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".versionctl", ConfigFileName))
	}
	return paths
}

// LoadConfig 加载第一个存在的配置文件，都不存在时使用默认配置
func LoadConfig() (*Config, error) {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return LoadConfigFrom(path)
		}
	}
	cfg := Default()
	applyEnv(cfg)
	return cfg, nil
}

// LoadConfigFrom 从指定文件加载配置
func LoadConfigFrom(path string) (*Config, error) {
	cfgFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("加载配置文件 %s 失败: %w", path, err)
	}

	config := Default()
	config.Path = path

	section := cfgFile.Section("default")
	if v := section.Key("settings_dir").String(); v != "" {
		config.SettingsDir = v
	}
	config.Host = section.Key("host").String()
	config.Project = section.Key("project").String()

	section = cfgFile.Section("perforce")
	config.Perforce.WebserverURL = strings.TrimRight(section.Key("webserver_url").String(), "/")
	config.Perforce.CredentialFile = section.Key("credential_file").String()
	if section.HasKey("login_attempts") {
		n, err := section.Key("login_attempts").Int()
		if err != nil || n < 1 {
			return nil, fmt.Errorf("配置项 perforce.login_attempts 无效: %q", section.Key("login_attempts").String())
		}
		config.Perforce.LoginAttempts = n
	}
	if section.HasKey("timeout_seconds") {
		n, err := section.Key("timeout_seconds").Int()
		if err != nil || n < 0 {
			return nil, fmt.Errorf("配置项 perforce.timeout_seconds 无效: %q", section.Key("timeout_seconds").String())
		}
		config.Perforce.TimeoutSeconds = n
	}

	section = cfgFile.Section("log")
	if v := section.Key("level").String(); v != "" {
		config.Log.Level = v
	}
	if section.HasKey("enable_console") {
		config.Log.EnableConsole = section.Key("enable_console").MustBool(config.Log.EnableConsole)
	}
	if section.HasKey("enable_file") {
		config.Log.EnableFile = section.Key("enable_file").MustBool(config.Log.EnableFile)
	}
	if v := section.Key("log_dir").String(); v != "" {
		config.Log.LogDir = v
	}
	config.Log.LogFile = section.Key("log_file").String()

	applyEnv(config)
	return config, nil
}

// applyEnv 配置文件未设置 Web 服务地址时读取环境变量
func applyEnv(config *Config) {
	if config.Perforce.WebserverURL == "" {
		config.Perforce.WebserverURL = strings.TrimRight(os.Getenv(WebserverURLEnv), "/")
	}
}

// Save 将配置写入 path
func Save(config *Config, path string) error {
	cfg := ini.Empty()

	section := cfg.Section("default")
	section.Key("settings_dir").SetValue(config.SettingsDir)
	section.Key("host").SetValue(config.Host)
	section.Key("project").SetValue(config.Project)

	section = cfg.Section("perforce")
	section.Key("webserver_url").SetValue(config.Perforce.WebserverURL)
	section.Key("credential_file").SetValue(config.Perforce.CredentialFile)
	section.Key("login_attempts").SetValue(fmt.Sprint(config.Perforce.LoginAttempts))
	section.Key("timeout_seconds").SetValue(fmt.Sprint(config.Perforce.TimeoutSeconds))

	section = cfg.Section("log")
	section.Key("level").SetValue(config.Log.Level)
	section.Key("enable_console").SetValue(fmt.Sprint(config.Log.EnableConsole))
	section.Key("enable_file").SetValue(fmt.Sprint(config.Log.EnableFile))
	section.Key("log_dir").SetValue(config.Log.LogDir)
	section.Key("log_file").SetValue(config.Log.LogFile)

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	return cfg.SaveTo(path)
}
