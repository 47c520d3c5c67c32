package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lucksec/versionctl/internal/config"
	"github.com/lucksec/versionctl/internal/credentials"
	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/logger"
)

// LoginService 登录编排：凭据缓存 -> 交互输入 -> 远程登录，失败时有限次重试
type LoginService interface {
	// CheckLogin 为服务器附加凭据：缓存命中时直接使用，否则询问用户并写入缓存。
	// 用户取消时返回 false 且不返回错误
	CheckLogin(ctx context.Context, server *domain.ServerInfo) (bool, error)

	// HandleLogin 使用连接的凭据执行远程登录，失败时删除缓存并重新询问，
	// 超过重试次数或无法获取凭据时返回 *domain.LoginError，用户中途取消返回 domain.ErrLoginCancelled
	HandleLogin(ctx context.Context, conn *domain.ConnectionInfo) error

	// Attempts 返回最大尝试次数
	Attempts() int
}

// loginService 登录编排实现
type loginService struct {
	client   CommandClient
	store    credentials.CredentialManager
	prompter credentials.Prompter
	attempts int
}

// NewLoginService 创建登录服务，attempts 小于 1 时使用默认值
func NewLoginService(client CommandClient, store credentials.CredentialManager, prompter credentials.Prompter, attempts int) LoginService {
	if attempts < 1 {
		attempts = config.DefaultLoginTries
	}
	return &loginService{
		client:   client,
		store:    store,
		prompter: prompter,
		attempts: attempts,
	}
}

// Attempts 返回最大尝试次数
func (s *loginService) Attempts() int {
	return s.attempts
}

// CheckLogin 为服务器附加凭据
func (s *loginService) CheckLogin(ctx context.Context, server *domain.ServerInfo) (bool, error) {
	log := logger.GetLogger()

	cached, err := s.store.GetCredentials(server.Name)
	if err == nil {
		server.SetCredentials(cached.Username, cached.Password)
		log.Debug("使用缓存的凭据登录服务器 %s", server.Name)
		return true, nil
	}
	if !errors.Is(err, credentials.ErrNotFound) {
		return false, fmt.Errorf("读取服务器 %s 的凭据失败: %w", server.Name, err)
	}

	if s.prompter == nil {
		return false, fmt.Errorf("服务器 %s 没有缓存的凭据，且没有可用的输入方式", server.Name)
	}

	creds, err := s.prompter.PromptCredentials(ctx, server.Name)
	if errors.Is(err, credentials.ErrPromptCancelled) {
		log.Info("用户取消了服务器 %s 的登录", server.Name)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("获取服务器 %s 的凭据失败: %w", server.Name, err)
	}
	if creds == nil || !creds.IsComplete() {
		log.Info("服务器 %s 的凭据不完整，视为取消", server.Name)
		return false, nil
	}

	if err := s.store.SetCredentials(server.Name, creds); err != nil {
		return false, fmt.Errorf("保存服务器 %s 的凭据失败: %w", server.Name, err)
	}
	server.SetCredentials(creds.Username, creds.Password)
	log.Info("已保存服务器 %s 的凭据 (用户: %s)", server.Name, creds.Username)
	return true, nil
}

// HandleLogin 远程登录，失败时重试
func (s *loginService) HandleLogin(ctx context.Context, conn *domain.ConnectionInfo) error {
	if conn == nil || conn.Server == nil || conn.Workspace == nil {
		return fmt.Errorf("连接信息不完整")
	}
	log := logger.GetLogger()
	server := conn.Server

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !server.HasCredentials() {
			ok, err := s.CheckLogin(ctx, server)
			if err != nil {
				return &domain.LoginError{Server: server.Name, Attempts: attempt, Err: err}
			}
			if !ok {
				return domain.ErrLoginCancelled
			}
		}

		err := s.client.Login(ctx, NewLoginRequest(conn))
		if err == nil {
			log.Info("已登录服务器 %s (%s)", server.Name, server.PerforcePort())
			return nil
		}

		lastErr = err
		log.Warn("登录服务器 %s 失败 (第 %d/%d 次): %v", server.Name, attempt, s.attempts, err)
		if rmErr := s.store.RemoveCredentials(server.Name); rmErr != nil {
			log.Warn("删除服务器 %s 的缓存凭据失败: %v", server.Name, rmErr)
		}
		server.ClearCredentials()
	}

	return &domain.LoginError{Server: server.Name, Attempts: s.attempts, Err: lastErr}
}
