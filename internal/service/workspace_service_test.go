package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucksec/versionctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkspaceThenExists(t *testing.T) {
	client := newFakeClient()
	svc := NewWorkspaceService(client)
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "alice_ws")
	conn := testConnection(dir)
	conn.Workspace.StartupFiles = []string{"config/startup.mel", "tools"}

	exists, err := svc.WorkspaceExists(ctx, conn)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, svc.CreateWorkspace(ctx, conn))

	exists, err = svc.WorkspaceExists(ctx, conn)
	require.NoError(t, err)
	assert.True(t, exists)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, []string{"alice_ws"}, client.created)
	assert.Equal(t, []string{
		filepath.ToSlash(dir) + "/config/startup.mel",
		filepath.ToSlash(dir) + "/tools",
	}, client.synced)
	assert.Len(t, client.logins, 3)
}

func TestCreateWorkspace_StartupSyncFailure(t *testing.T) {
	client := newFakeClient()
	dir := t.TempDir()
	conn := testConnection(dir)
	conn.Workspace.StartupFiles = []string{"a.ma"}

	boom := errors.New("file not in depot")
	client.syncErr[filepath.ToSlash(dir)+"/a.ma"] = boom

	err := NewWorkspaceService(client).CreateWorkspace(context.Background(), conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"alice_ws"}, client.created)
}

func TestWorkspaceOperations_RequireCredentials(t *testing.T) {
	client := newFakeClient()
	svc := NewWorkspaceService(client)
	ctx := context.Background()

	conn := testConnection(t.TempDir())
	conn.Server.ClearCredentials()

	var connErr *domain.ConnectionError

	_, err := svc.WorkspaceExists(ctx, conn)
	assert.ErrorAs(t, err, &connErr)
	assert.ErrorAs(t, svc.CreateWorkspace(ctx, conn), &connErr)
	assert.ErrorAs(t, svc.SyncToLatest(ctx, conn), &connErr)
	assert.ErrorAs(t, svc.SyncTargetToLatest(ctx, conn, "/tmp/a.ma"), &connErr)
	assert.ErrorAs(t, svc.SyncToVersion(ctx, conn, "42"), &connErr)
	_, err = svc.ListChanges(ctx, conn)
	assert.ErrorAs(t, err, &connErr)

	assert.Empty(t, client.logins)
	assert.Equal(t, "p4main", connErr.Server)
}

func TestSyncOperations(t *testing.T) {
	client := newFakeClient()
	svc := NewWorkspaceService(client)
	ctx := context.Background()
	conn := testConnection("/mnt/work/alice_ws")

	require.NoError(t, svc.SyncToLatest(ctx, conn))
	require.NoError(t, svc.SyncTargetToLatest(ctx, conn, "/mnt/work/alice_ws/shots/sh010/anim.ma"))
	require.NoError(t, svc.SyncToVersion(ctx, conn, "1234"))
	require.NoError(t, svc.SyncPaths(ctx, conn, []string{"//demo/main/assets/rig.ma", "/abs/other"}))

	assert.Equal(t, []string{
		"/mnt/work/alice_ws/...",
		"/mnt/work/alice_ws/shots/sh010/...",
		"/mnt/work/alice_ws/assets/rig.ma",
		"/abs/other",
	}, client.synced)
	assert.Equal(t, []string{"/mnt/work/alice_ws/...@1234"}, client.versions)

	assert.Error(t, svc.SyncToVersion(ctx, conn, ""))
	assert.Error(t, svc.SyncTargetToLatest(ctx, conn, ""))
}

func TestEnsureWorkspace(t *testing.T) {
	ctx := context.Background()

	t.Run("已存在", func(t *testing.T) {
		client := newFakeClient()
		client.workspaces["alice_ws"] = true
		created, err := NewWorkspaceService(client).EnsureWorkspace(ctx, testConnection(t.TempDir()))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, client.created)
	})

	t.Run("允许创建", func(t *testing.T) {
		client := newFakeClient()
		conn := testConnection(t.TempDir())
		conn.Workspace.AllowCreateWorkspace = true
		created, err := NewWorkspaceService(client).EnsureWorkspace(ctx, conn)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, []string{"alice_ws"}, client.created)
	})

	t.Run("不允许创建", func(t *testing.T) {
		client := newFakeClient()
		_, err := NewWorkspaceService(client).EnsureWorkspace(ctx, testConnection(t.TempDir()))
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "ws1", cfgErr.Name)
		assert.Empty(t, client.created)
	})
}

func TestFilesOnServer(t *testing.T) {
	client := newFakeClient()
	client.onServer["/w/a.ma"] = true
	conn := testConnection("/w")

	status, err := NewWorkspaceService(client).FilesOnServer(context.Background(), conn, []string{"/w/a.ma", "/w/b.ma"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/w/a.ma"}, status.Submitted)
	assert.Equal(t, []string{"/w/b.ma"}, status.Unsubmitted)
}

func TestListChanges(t *testing.T) {
	client := newFakeClient()
	client.changes = []domain.Change{{ID: "12", User: "alice", Description: "init"}}

	changes, err := NewWorkspaceService(client).ListChanges(context.Background(), testConnection("/w"))
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "12", changes[0].ID.String())
}
