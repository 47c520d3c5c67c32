package credentials

// MaskSecret 隐藏密码，不显示任何字符；空密码返回空串
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}

// IsComplete 用户名和密码均非空
func (c *Credentials) IsComplete() bool {
	return c != nil && c.Username != "" && c.Password != ""
}
