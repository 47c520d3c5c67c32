package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lucksec/versionctl/internal/config"
	"github.com/lucksec/versionctl/internal/credentials"
	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/settings"
	"github.com/lucksec/versionctl/internal/service"
	"github.com/lucksec/versionctl/internal/template"
)

// target 命令作用的项目、宿主和工作区
type target struct {
	Project   string
	Host      string
	Workspace string
}

// app 命令行共享的服务
type app struct {
	cfg    *config.Config
	target target

	source      *settings.FileSource
	store       credentials.CredentialManager
	client      service.CommandClient
	login       service.LoginService
	connections service.ConnectionService
	workspaces  service.WorkspaceService
	launch      service.LaunchService
}

// newApp 根据配置组装服务
func newApp(cfg *config.Config) (*app, error) {
	env, err := template.CurrentEnvironment()
	if err != nil {
		return nil, err
	}

	store, err := credentials.NewCredentialManager(cfg.Perforce.CredentialFile)
	if err != nil {
		return nil, err
	}

	source := settings.NewFileSource(cfg.SettingsDir)
	client := service.NewCommandClient(cfg.Perforce.WebserverURL, time.Duration(cfg.Perforce.TimeoutSeconds)*time.Second)
	login := service.NewLoginService(client, store, credentials.NewTerminalPrompter(), cfg.Perforce.LoginAttempts)
	connections := service.NewConnectionService(source, source, env, login)
	workspaces := service.NewWorkspaceService(client)

	return &app{
		cfg:         cfg,
		target:      target{Project: cfg.Project, Host: cfg.Host},
		source:      source,
		store:       store,
		client:      client,
		login:       login,
		connections: connections,
		workspaces:  workspaces,
		launch:      service.NewLaunchService(source, connections, login, workspaces),
	}, nil
}

// requireProject 未指定项目时返回错误
func (a *app) requireProject() error {
	if a.target.Project == "" {
		return fmt.Errorf("未指定项目，请使用 --project 或在配置文件 [default] project 中设置")
	}
	return nil
}

// connect 解析连接并远程登录，用户取消时返回 domain.ErrLoginCancelled
func (a *app) connect(ctx context.Context) (*domain.ConnectionInfo, error) {
	if err := a.requireProject(); err != nil {
		return nil, err
	}

	conn, err := a.connections.GetConnectionInfo(ctx, a.target.Project, a.target.Workspace, a.target.Host)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, domain.ErrLoginCancelled
	}

	if err := a.login.HandleLogin(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// describeError 将登录取消转换为提示信息
func describeError(err error) error {
	if errors.Is(err, domain.ErrLoginCancelled) {
		return fmt.Errorf("未登录 Perforce，操作已取消")
	}
	return err
}
