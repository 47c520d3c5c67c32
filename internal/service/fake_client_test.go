package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lucksec/versionctl/internal/credentials"
	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/settings"
	"github.com/stretchr/testify/require"
)

// fakeClient 记录调用的 CommandClient，远程工作区状态保存在内存中
type fakeClient struct {
	loginFn    func(req LoginRequest) error
	logins     []LoginRequest
	workspaces map[string]bool
	created    []string
	synced     []string
	versions   []string
	syncErr    map[string]error
	onServer   map[string]bool
	changes    []domain.Change
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		workspaces: map[string]bool{},
		syncErr:    map[string]error{},
		onServer:   map[string]bool{},
	}
}

func (f *fakeClient) Login(_ context.Context, req LoginRequest) error {
	f.logins = append(f.logins, req)
	if f.loginFn != nil {
		return f.loginFn(req)
	}
	return nil
}

func (f *fakeClient) WorkspaceExists(_ context.Context, name string) (bool, error) {
	return f.workspaces[name], nil
}

func (f *fakeClient) CreateWorkspace(_ context.Context, _, name, _, _ string) error {
	f.workspaces[name] = true
	f.created = append(f.created, name)
	return nil
}

func (f *fakeClient) SyncLatestVersion(_ context.Context, path string) error {
	if err := f.syncErr[path]; err != nil {
		return err
	}
	f.synced = append(f.synced, path)
	return nil
}

func (f *fakeClient) SyncToVersion(_ context.Context, path, changeID string) error {
	f.versions = append(f.versions, path+"@"+changeID)
	return nil
}

func (f *fakeClient) ExistsOnServer(_ context.Context, path string) (bool, error) {
	return f.onServer[path], nil
}

func (f *fakeClient) IsInAnyWorkspace(context.Context, string) (bool, error) { return false, nil }

func (f *fakeClient) Checkout(context.Context, string, string) error { return nil }

func (f *fakeClient) IsCheckedOut(context.Context, string) (bool, error) { return false, nil }

func (f *fakeClient) Add(context.Context, string, string) error { return nil }

func (f *fakeClient) Delete(context.Context, string, string) error { return nil }

func (f *fakeClient) SubmitChangeList(context.Context, string) error { return nil }

func (f *fakeClient) GetChanges(context.Context) ([]domain.Change, error) { return f.changes, nil }

func (f *fakeClient) GetLastChangeList(context.Context) (*domain.Change, error) {
	return &domain.Change{}, nil
}

func (f *fakeClient) GetStream(context.Context, string) (string, error) { return "", nil }

// countingPrompter 返回固定凭据并记录调用次数
type countingPrompter struct {
	creds *credentials.Credentials
	err   error
	calls int
}

func (p *countingPrompter) PromptCredentials(_ context.Context, _ string) (*credentials.Credentials, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	c := *p.creds
	return &c, nil
}

func boolPtr(b bool) *bool { return &b }

func newStore(t *testing.T) credentials.CredentialManager {
	t.Helper()
	store, err := credentials.NewCredentialManager(filepath.Join(t.TempDir(), "perforce_servers.json"))
	require.NoError(t, err)
	return store
}

// demoSource 单服务器单工作区的 demo 项目
func demoSource(root string, ws settings.WorkspaceLayer) *settings.MemorySource {
	return &settings.MemorySource{
		Projects: map[string]settings.Layer{
			"demo": {
				VersionControl: settings.VersionControlLayer{
					Enabled:      boolPtr(true),
					ActiveSystem: "perforce",
					Servers:      []settings.ServerLayer{{Name: "p4main", Host: "p4.local", Port: 1666}},
					Workspaces:   []settings.WorkspaceLayer{ws},
				},
				Anatomy: settings.AnatomyLayer{Roots: map[string]string{"work": root}},
			},
		},
	}
}

func demoWorkspace() settings.WorkspaceLayer {
	return settings.WorkspaceLayer{
		Name:          "ws1",
		Server:        "p4main",
		Primary:       boolPtr(true),
		Hosts:         []string{"maya"},
		WorkspaceRoot: "work",
		WorkspaceName: "{user}_ws",
		Stream:        "//demo/main",
	}
}

// testConnection 已附加凭据的连接
func testConnection(dir string) *domain.ConnectionInfo {
	server := domain.NewServerInfo("p4main", "p4.local", 1666)
	server.SetCredentials("alice", "secret")
	ws := &domain.WorkspaceInfo{
		Name:          "ws1",
		Server:        "p4main",
		WorkspaceRoot: "work",
		WorkspaceDir:  dir,
		WorkspaceName: "alice_ws",
		Stream:        "//demo/main",
	}
	return domain.NewConnectionInfo(ws, server)
}
