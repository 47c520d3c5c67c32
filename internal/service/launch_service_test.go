package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucksec/versionctl/internal/credentials"
	"github.com/lucksec/versionctl/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLaunch(t *testing.T, src *settings.MemorySource, client *fakeClient, prompter credentials.Prompter) (LaunchService, credentials.CredentialManager) {
	t.Helper()
	store := newStore(t)
	login := NewLoginService(client, store, prompter, 0)
	connections := NewConnectionService(src, src, aliceEnv, login)
	return NewLaunchService(src, connections, login, NewWorkspaceService(client)), store
}

func TestPrepare_CreatesAndSyncs(t *testing.T) {
	root := filepath.ToSlash(t.TempDir())
	ws := demoWorkspace()
	ws.WorkspaceRoot = "work"
	ws.AllowCreateWorkspace = boolPtr(true)
	ws.EnableAutosync = boolPtr(true)
	ws.SyncWorkfile = boolPtr(true)
	ws.AlwaysSync = []string{"//demo/main/assets/rig.ma"}
	src := demoSource(root, ws)

	client := newFakeClient()
	prompter := &countingPrompter{creds: &credentials.Credentials{Username: "alice", Password: "secret"}}
	launch, store := newLaunch(t, src, client, prompter)

	results, err := launch.Prepare(context.Background(), LaunchRequest{
		Project:  "demo",
		Host:     "maya",
		Workfile: root + "/shots/sh010/anim_v001.ma",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "ws1", r.Workspace)
	assert.True(t, r.Created)
	assert.False(t, r.Skipped)
	assert.Equal(t, []string{"alice_ws"}, client.created)
	assert.Equal(t, []string{
		root + "/assets/rig.ma",
		root + "/...",
		root + "/shots/sh010/...",
	}, client.synced)
	assert.Equal(t, 1, prompter.calls)
	assert.True(t, store.HasCredentials("p4main"))
}

func TestPrepare_ExistingWorkspaceNoSync(t *testing.T) {
	src := demoSource(t.TempDir(), demoWorkspace())
	client := newFakeClient()
	client.workspaces["alice_ws"] = true
	launch, store := newLaunch(t, src, client, nil)
	require.NoError(t, store.SetCredentials("p4main", &credentials.Credentials{Username: "alice", Password: "secret"}))

	results, err := launch.Prepare(context.Background(), LaunchRequest{Project: "demo", Host: "maya"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Created)
	assert.Empty(t, results[0].Synced)
	assert.Empty(t, client.synced)
}

func TestPrepare_SkipsWhenCancelled(t *testing.T) {
	src := demoSource(t.TempDir(), demoWorkspace())
	client := newFakeClient()
	launch, _ := newLaunch(t, src, client, &countingPrompter{err: credentials.ErrPromptCancelled})

	results, err := launch.Prepare(context.Background(), LaunchRequest{Project: "demo", Host: "maya"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.Empty(t, client.logins)
}

func TestPrepare_Disabled(t *testing.T) {
	src := demoSource(t.TempDir(), demoWorkspace())
	layer := src.Projects["demo"]
	layer.VersionControl.Hosts = map[string]bool{"maya": false}
	src.Projects["demo"] = layer

	client := newFakeClient()
	launch, _ := newLaunch(t, src, client, nil)

	results, err := launch.Prepare(context.Background(), LaunchRequest{Project: "demo", Host: "maya"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, client.logins)
}

func TestInitializeAddon(t *testing.T) {
	src := demoSource("/mnt/work", demoWorkspace())
	src.Studio = settings.Layer{VersionControl: settings.VersionControlLayer{Hosts: map[string]bool{"unreal": false}}}

	state, err := InitializeAddon(src, "demo")
	require.NoError(t, err)
	assert.True(t, state.Enabled)
	assert.Equal(t, "perforce", state.ActiveSystem)
	assert.Equal(t, "Version Control: Perforce", state.Label())
	assert.True(t, state.IsEnabledFor("maya"))
	assert.False(t, state.IsEnabledFor("unreal"))

	_, err = InitializeAddon(src, "missing")
	assert.Error(t, err)
}
