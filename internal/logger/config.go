package logger

// Config 日志配置
type Config struct {
	// Level 日志级别：DEBUG, INFO, WARN, ERROR
	Level LogLevel

	// EnableConsole 是否输出到标准错误（标准输出留给命令结果）
	EnableConsole bool

	// EnableFile 是否启用文件输出
	EnableFile bool

	// LogDir 日志目录
	LogDir string

	// LogFile 日志文件名（为空时使用 versionctl-YYYY-MM-DD.log）
	LogFile string
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Level:         INFO,
		EnableConsole: true,
		EnableFile:    false,
		LogDir:        "logs",
	}
}
