package domain

// ConnectionInfo 一个工作区与其服务器的配对，每次操作临时构建
type ConnectionInfo struct {
	Workspace *WorkspaceInfo
	Server    *ServerInfo
}

// NewConnectionInfo 创建连接信息
func NewConnectionInfo(workspace *WorkspaceInfo, server *ServerInfo) *ConnectionInfo {
	return &ConnectionInfo{Workspace: workspace, Server: server}
}

// CanLogin 服务器的用户名和密码均非空
func (c *ConnectionInfo) CanLogin() bool {
	return c != nil && c.Server != nil && c.Workspace != nil && c.Server.HasCredentials()
}

// RequireLogin CanLogin 不成立时返回 ConnectionError
func (c *ConnectionInfo) RequireLogin() error {
	if c.CanLogin() {
		return nil
	}
	err := &ConnectionError{}
	if c != nil && c.Server != nil {
		err.Server = c.Server.Name
	}
	if c != nil && c.Workspace != nil {
		err.Workspace = c.Workspace.Name
	}
	return err
}
