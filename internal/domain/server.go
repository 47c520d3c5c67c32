package domain

import (
	"fmt"
	"strconv"
)

// ServerInfo 一台 Perforce 服务器，相等性只比较 Name
//
// 从设置构建时不含凭据；登录流程会通过 SetCredentials 写入一次用户名和密码。
type ServerInfo struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"-"`
	Password string `json:"-"`
}

// NewServerInfo 创建不含凭据的服务器信息
func NewServerInfo(name, host string, port int) *ServerInfo {
	return &ServerInfo{Name: name, Host: host, Port: port}
}

// Equal 按名称比较，other 必须是 ServerInfo 或 *ServerInfo
func (s *ServerInfo) Equal(other interface{}) (bool, error) {
	switch o := other.(type) {
	case *ServerInfo:
		if o == nil {
			return false, fmt.Errorf("%w: nil *ServerInfo", ErrIncomparable)
		}
		return s.Name == o.Name, nil
	case ServerInfo:
		return s.Name == o.Name, nil
	default:
		return false, fmt.Errorf("%w: 不能将 %T 与 ServerInfo 比较", ErrIncomparable, other)
	}
}

// PerforcePort 返回 host:port
func (s *ServerInfo) PerforcePort() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// HasCredentials 用户名和密码均非空
func (s *ServerInfo) HasCredentials() bool {
	return s.Username != "" && s.Password != ""
}

// SetCredentials 写入登录凭据
func (s *ServerInfo) SetCredentials(username, password string) {
	s.Username = username
	s.Password = password
}

// ClearCredentials 清除远程登录失败的凭据
func (s *ServerInfo) ClearCredentials() {
	s.Username = ""
	s.Password = ""
}

func (s *ServerInfo) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.PerforcePort())
}
