package template

import (
	"fmt"
	"os"
	"os/user"
	"strings"
)

// 占位符上下文的规范字段集合
const (
	FieldComputerName = "computername"
	FieldUser         = "user"
	FieldProject      = "project"
	FieldRoot         = "root"
)

// Context 占位符上下文，值可以是字符串、数字或嵌套的 map[string]interface{} / map[string]string
type Context map[string]interface{}

// TemplateResolutionError 占位符在上下文中没有对应的值
type TemplateResolutionError struct {
	Template string
	Field    string
}

func (e *TemplateResolutionError) Error() string {
	return fmt.Sprintf("无法解析模板 %q: 上下文中缺少字段 %q", e.Template, e.Field)
}

// Environment 运行时环境信息（机器名、操作系统用户名）
type Environment struct {
	ComputerName string
	User         string
}

// CurrentEnvironment 读取当前机器名和操作系统用户名
func CurrentEnvironment() (Environment, error) {
	host, err := os.Hostname()
	if err != nil {
		return Environment{}, fmt.Errorf("获取机器名失败: %w", err)
	}

	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
		// Windows 下形如 DOMAIN\user
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
	}
	if name == "" {
		return Environment{}, fmt.Errorf("无法确定当前用户名")
	}

	return Environment{ComputerName: host, User: name}, nil
}

// NewContext 构建规范上下文：computername、user、project.name、root.<key>，
// 以及每个 anatomy 根目录键的顶层别名
func NewContext(env Environment, projectName string, roots map[string]string) Context {
	ctx := Context{
		FieldComputerName: env.ComputerName,
		FieldUser:         env.User,
		FieldProject:      map[string]interface{}{"name": projectName},
	}

	rootMap := make(map[string]interface{}, len(roots))
	for key, value := range roots {
		rootMap[key] = value
		if _, reserved := ctx[key]; !reserved {
			ctx[key] = value
		}
	}
	ctx[FieldRoot] = rootMap
	return ctx
}

// Resolve 替换 tmpl 中的全部占位符
func Resolve(tmpl string, ctx Context) (string, error) {
	if !strings.Contains(tmpl, "{") {
		return tmpl, nil
	}

	var b strings.Builder
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return "", &TemplateResolutionError{Template: tmpl, Field: rest[open+1:]}
		}
		closing += open

		field := rest[open+1 : closing]
		value, ok := lookup(ctx, field)
		if !ok {
			return "", &TemplateResolutionError{Template: tmpl, Field: field}
		}

		b.WriteString(rest[:open])
		b.WriteString(value)
		rest = rest[closing+1:]
	}
	return b.String(), nil
}

// ResolveValue 字符串做占位符替换，其余类型原样返回
func ResolveValue(value interface{}, ctx Context) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	return Resolve(s, ctx)
}

// HasPlaceholders 判断字符串是否仍包含占位符
func HasPlaceholders(s string) bool {
	open := strings.IndexByte(s, '{')
	return open >= 0 && strings.IndexByte(s[open:], '}') > 0
}

// lookup 按 a.b 或 a[b] 路径查找字段
func lookup(ctx Context, field string) (string, bool) {
	path := splitPath(field)
	if len(path) == 0 {
		return "", false
	}

	var current interface{} = map[string]interface{}(ctx)
	for _, key := range path {
		switch m := current.(type) {
		case map[string]interface{}:
			v, ok := m[key]
			if !ok {
				return "", false
			}
			current = v
		case map[string]string:
			v, ok := m[key]
			if !ok {
				return "", false
			}
			current = v
		case Context:
			v, ok := m[key]
			if !ok {
				return "", false
			}
			current = v
		default:
			return "", false
		}
	}

	switch v := current.(type) {
	case string:
		return v, true
	case map[string]interface{}, map[string]string, Context:
		return "", false
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

func splitPath(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}

	var parts []string
	for _, segment := range strings.Split(field, ".") {
		for segment != "" {
			open := strings.IndexByte(segment, '[')
			if open < 0 {
				parts = append(parts, segment)
				break
			}
			if open > 0 {
				parts = append(parts, segment[:open])
			}
			closing := strings.IndexByte(segment[open:], ']')
			if closing < 0 {
				return nil
			}
			closing += open
			parts = append(parts, segment[open+1:closing])
			segment = segment[closing+1:]
		}
	}

	for _, p := range parts {
		if p == "" {
			return nil
		}
	}
	return parts
}
