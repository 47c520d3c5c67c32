package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucksec/versionctl/internal/credentials"
	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aliceEnv = template.Environment{ComputerName: "studio-pc", User: "alice"}

func TestGetConnectionInfo_EndToEnd(t *testing.T) {
	src := demoSource("/mnt/work", demoWorkspace())
	store := newStore(t)
	prompter := &countingPrompter{creds: &credentials.Credentials{Username: "alice", Password: "secret"}}
	login := NewLoginService(newFakeClient(), store, prompter, 0)
	svc := NewConnectionService(src, src, aliceEnv, login)

	conn, err := svc.GetConnectionInfo(context.Background(), "demo", "", "maya")
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Equal(t, "alice_ws", conn.Workspace.WorkspaceName)
	assert.Equal(t, "/mnt/work", conn.Workspace.WorkspaceDir)
	assert.Equal(t, "p4main", conn.Server.Name)
	assert.Equal(t, "p4.local:1666", conn.Server.PerforcePort())
	assert.Equal(t, "alice", conn.Server.Username)
	assert.True(t, conn.CanLogin())
	assert.Equal(t, 1, prompter.calls)
	assert.True(t, store.HasCredentials("p4main"))
}

func TestGetConnectionInfo_ByName(t *testing.T) {
	src := demoSource("/mnt/work", demoWorkspace())
	store := newStore(t)
	require.NoError(t, store.SetCredentials("p4main", &credentials.Credentials{Username: "alice", Password: "secret"}))
	svc := NewConnectionService(src, src, aliceEnv, NewLoginService(newFakeClient(), store, nil, 0))

	conn, err := svc.GetConnectionInfo(context.Background(), "demo", "ws1", "")
	require.NoError(t, err)
	assert.Equal(t, "ws1", conn.Workspace.Name)

	_, err = svc.GetConnectionInfo(context.Background(), "demo", "nope", "")
	assert.True(t, domain.IsNotFound(err))
}

func TestGetConnectionInfo_Cancelled(t *testing.T) {
	src := demoSource("/mnt/work", demoWorkspace())
	login := NewLoginService(newFakeClient(), newStore(t), &countingPrompter{err: credentials.ErrPromptCancelled}, 0)
	svc := NewConnectionService(src, src, aliceEnv, login)

	conn, err := svc.GetConnectionInfo(context.Background(), "demo", "", "maya")
	assert.NoError(t, err)
	assert.Nil(t, conn)
}

func TestGetConnectionInfo_NoWorkspaceForHost(t *testing.T) {
	src := demoSource("/mnt/work", demoWorkspace())
	svc := NewConnectionService(src, src, aliceEnv, NewLoginService(newFakeClient(), newStore(t), nil, 0))

	_, err := svc.GetConnectionInfo(context.Background(), "demo", "", "houdini")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Contains(t, err.Error(), "demo")
}

func TestGetConnectionInfo_MissingServer(t *testing.T) {
	ws := demoWorkspace()
	ws.Server = "p4gone"
	src := demoSource("/mnt/work", ws)
	svc := NewConnectionService(src, src, aliceEnv, NewLoginService(newFakeClient(), newStore(t), nil, 0))

	_, err := svc.GetConnectionInfo(context.Background(), "demo", "", "maya")
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "server", cfgErr.Kind)
	assert.Equal(t, "p4gone", cfgErr.Name)
	assert.Equal(t, "ws1", cfgErr.Workspace)
}

func TestGetConnectionInfo_MissingRoot(t *testing.T) {
	ws := demoWorkspace()
	ws.WorkspaceRoot = "render"
	src := demoSource("/mnt/work", ws)
	svc := NewConnectionService(src, src, aliceEnv, NewLoginService(newFakeClient(), newStore(t), nil, 0))

	_, err := svc.GetConnectionInfo(context.Background(), "demo", "", "maya")
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "root", cfgErr.Kind)
	assert.Equal(t, "render", cfgErr.Name)
}

func TestHostWorkspaces(t *testing.T) {
	src := demoSource("/mnt/work", demoWorkspace())
	svc := NewConnectionService(src, src, aliceEnv, NewLoginService(newFakeClient(), newStore(t), nil, 0))

	all, err := svc.HostWorkspaces("demo", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := svc.HostWorkspaces("demo", "unreal")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetConnectionInfo_CreateDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not", "yet")
	ws := demoWorkspace()
	ws.CreateDirs = boolPtr(true)
	src := demoSource(root, ws)

	store := newStore(t)
	require.NoError(t, store.SetCredentials("p4main", &credentials.Credentials{Username: "alice", Password: "secret"}))
	svc := NewConnectionService(src, src, aliceEnv, NewLoginService(newFakeClient(), store, nil, 0))

	conn, err := svc.GetConnectionInfo(context.Background(), "demo", "", "maya")
	require.NoError(t, err)
	require.NotNil(t, conn)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGetConnectionInfo_NoCreateDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not", "yet")
	src := demoSource(root, demoWorkspace())

	store := newStore(t)
	require.NoError(t, store.SetCredentials("p4main", &credentials.Credentials{Username: "alice", Password: "secret"}))
	svc := NewConnectionService(src, src, aliceEnv, NewLoginService(newFakeClient(), store, nil, 0))

	_, err := svc.GetConnectionInfo(context.Background(), "demo", "", "maya")
	require.NoError(t, err)

	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}

func TestGetConnectionInfo_EmptyCredentials(t *testing.T) {
	src := demoSource("/mnt/work", demoWorkspace())
	store := newStore(t)
	require.NoError(t, store.SetCredentials("p4main", &credentials.Credentials{Username: "alice", Password: ""}))
	svc := NewConnectionService(src, src, aliceEnv, NewLoginService(newFakeClient(), store, nil, 0))

	conn, err := svc.GetConnectionInfo(context.Background(), "demo", "", "maya")
	require.ErrorIs(t, err, domain.ErrEmptyCredentials)
	assert.Nil(t, conn)
}
