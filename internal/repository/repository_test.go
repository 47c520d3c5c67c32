package repository

import (
	"errors"
	"testing"

	"github.com/lucksec/versionctl/internal/domain"
	"github.com/lucksec/versionctl/internal/settings"
	"github.com/lucksec/versionctl/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func testSource() *settings.MemorySource {
	return &settings.MemorySource{
		Projects: map[string]settings.Layer{
			"demo": {
				VersionControl: settings.VersionControlLayer{
					Servers: []settings.ServerLayer{
						{Name: "p4main", Host: "p4.local", Port: 1666},
						{Name: "p4backup", Host: "p4b.local", Port: 1667},
					},
					Workspaces: []settings.WorkspaceLayer{
						{Name: "maya_main", Server: "p4main", Primary: boolPtr(true), Hosts: []string{"maya"}, WorkspaceRoot: "work", WorkspaceName: "{user}_maya"},
						{Name: "maya_extra", Server: "p4main", Hosts: []string{"maya", "houdini"}, WorkspaceRoot: "work", WorkspaceName: "extra"},
						{Name: "unreal_main", Server: "p4backup", Primary: boolPtr(true), Hosts: []string{"unreal"}, WorkspaceRoot: "work", WorkspaceName: "ue"},
					},
				},
				Anatomy: settings.AnatomyLayer{Roots: map[string]string{"work": "/mnt/work"}},
			},
			"broken": {
				VersionControl: settings.VersionControlLayer{
					Workspaces: []settings.WorkspaceLayer{
						{Name: "ok", WorkspaceRoot: "work"},
						{Name: "bad", WorkspaceRoot: "missing"},
					},
				},
				Anatomy: settings.AnatomyLayer{Roots: map[string]string{"work": "/mnt/work"}},
			},
		},
	}
}

func loadDemo(t *testing.T) *ServerWorkspaces {
	t.Helper()
	src := testSource()
	r := NewServerWorkspaces(src, src, template.Environment{ComputerName: "pc", User: "alice"})
	require.NoError(t, r.FetchProjectWorkspaces("demo"))
	return r
}

func names(ws []*domain.WorkspaceInfo) []string {
	out := []string{}
	for _, w := range ws {
		out = append(out, w.Name)
	}
	return out
}

func TestFetchProjectWorkspaces(t *testing.T) {
	r := loadDemo(t)
	require.Len(t, r.Workspaces(), 3)
	assert.Equal(t, "alice_maya", r.Workspaces()[0].WorkspaceName)
	assert.Equal(t, "demo", r.Workspaces()[0].ProjectName)
}

func TestFetchProjectWorkspacesFailsWholesale(t *testing.T) {
	r := loadDemo(t)
	before := r.Workspaces()

	err := r.FetchProjectWorkspaces("broken")
	require.Error(t, err)
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "bad", cfgErr.Workspace)
	assert.Equal(t, before, r.Workspaces(), "failed fetch must not replace the list")

	assert.Error(t, r.FetchProjectWorkspaces("unknown"))
}

func TestGetHostWorkspaces(t *testing.T) {
	r := loadDemo(t)

	tests := []struct {
		name    string
		host    string
		primary bool
		want    []string
	}{
		{"host all", "maya", false, []string{"maya_main", "maya_extra"}},
		{"host primary", "maya", true, []string{"maya_main"}},
		{"other host", "houdini", false, []string{"maya_extra"}},
		{"host without primary", "houdini", true, []string{}},
		{"unknown host", "nuke", false, []string{}},
		{"no host returns primaries", "", false, []string{"maya_main", "unreal_main"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.GetHostWorkspaces(tt.host, tt.primary)
			assert.Equal(t, tt.want, names(got))
			for _, ws := range got {
				if tt.primary {
					assert.True(t, ws.Primary)
					assert.True(t, ws.HasHost(tt.host))
				}
			}
		})
	}
}

func TestGetWorkspaceByName(t *testing.T) {
	r := loadDemo(t)

	ws, err := r.GetWorkspaceByName("unreal_main")
	require.NoError(t, err)
	assert.Equal(t, "p4backup", ws.Server)

	_, err = r.GetWorkspaceByName("nope")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestServerRepository(t *testing.T) {
	repo := NewServerRepository(testSource())

	servers, err := repo.FetchProjectServers("demo")
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.False(t, servers[0].HasCredentials())

	s, err := repo.GetServer("demo", "p4backup")
	require.NoError(t, err)
	assert.Equal(t, "p4b.local:1667", s.PerforcePort())

	_, err = repo.GetServer("demo", "ghost")
	assert.True(t, domain.IsNotFound(err))
	assert.Contains(t, err.Error(), "ghost")
}
