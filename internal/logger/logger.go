package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel 日志级别
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Logger 日志接口
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// loggerImpl 日志实现
type loggerImpl struct {
	mu     sync.Mutex
	level  LogLevel
	logger *log.Logger
	closer io.Closer
}

var (
	defaultLogger Logger
	defaultMu     sync.Mutex
)

// InitLogger 初始化日志系统，并将其设为默认日志实例
func InitLogger(config *Config) (Logger, error) {
	var writers []io.Writer
	var closer io.Closer

	if config.EnableConsole {
		writers = append(writers, os.Stderr)
	}

	if config.EnableFile {
		logDir := config.LogDir
		if logDir == "" {
			logDir = "logs"
		}

		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}

		logFile := config.LogFile
		if logFile == "" {
			logFile = fmt.Sprintf("versionctl-%s.log", time.Now().Format("2006-01-02"))
		}

		file, err := os.OpenFile(filepath.Join(logDir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		closer = file
		writers = append(writers, file)
	}

	l := &loggerImpl{
		level:  config.Level,
		logger: log.New(io.MultiWriter(writers...), "", 0),
		closer: closer,
	}
	SetDefault(l)
	return l, nil
}

// NewWriterLogger 创建写入指定 io.Writer 的日志实例（不修改默认实例）
func NewWriterLogger(w io.Writer, level LogLevel) Logger {
	return &loggerImpl{
		level:  level,
		logger: log.New(w, "", 0),
	}
}

// SetDefault 替换默认日志实例
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// GetLogger 获取默认日志实例，未初始化时返回只输出 WARN 以上级别的控制台日志
func GetLogger() Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewWriterLogger(os.Stderr, WARN)
	}
	return defaultLogger
}

// Close 关闭日志文件（如果有）
func Close() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if l, ok := defaultLogger.(*loggerImpl); ok && l.closer != nil {
		closer := l.closer
		l.closer = nil
		return closer.Close()
	}
	return nil
}

// SetLevel 设置日志级别
func (l *loggerImpl) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel 获取日志级别
func (l *loggerImpl) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// log 内部日志方法
func (l *loggerImpl) log(level LogLevel, format string, args ...interface{}) {
	if level < l.GetLevel() {
		return
	}

	// 调用者信息：log -> Debug/Info/... -> 调用方
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
		line = 0
	} else {
		file = filepath.Base(file)
	}

	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s:%d] %s", timestamp, levelNames[level], file, line, message)
}

// Debug 调试日志
func (l *loggerImpl) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info 信息日志
func (l *loggerImpl) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn 警告日志
func (l *loggerImpl) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error 错误日志
func (l *loggerImpl) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// ParseLevel 解析日志级别字符串，无法识别时返回 INFO
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// String 返回日志级别的字符串表示
func (l LogLevel) String() string {
	return levelNames[l]
}
