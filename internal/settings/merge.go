package settings

// Merge 按优先级从高到低合并设置层：每个字段取第一个非空值，
// 服务器与工作区按 name 逐字段合并，条目顺序为从最低层向上首次出现的顺序
func Merge(project string, layers ...Layer) ProjectSettings {
	merged := ProjectSettings{
		Project: project,
		Roots:   make(map[string]string),
		VersionControl: VersionControl{
			Enabled:     true,
			HostEnabled: make(map[string]bool),
		},
	}

	vc := &merged.VersionControl
	for _, layer := range layers {
		lvc := layer.VersionControl
		vc.ActiveSystem = firstString(vc.ActiveSystem, lvc.ActiveSystem)
		for host, enabled := range lvc.Hosts {
			if _, ok := vc.HostEnabled[host]; !ok {
				vc.HostEnabled[host] = enabled
			}
		}
		for key, root := range layer.Anatomy.Roots {
			if merged.Roots[key] == "" {
				merged.Roots[key] = root
			}
		}
	}
	if enabled := firstBool(layers, func(l Layer) *bool { return l.VersionControl.Enabled }); enabled != nil {
		vc.Enabled = *enabled
	}

	vc.Servers = mergeServers(layers)
	vc.Workspaces = mergeWorkspaces(layers)
	return merged
}

func mergeServers(layers []Layer) []Server {
	var order []string
	byName := make(map[string]*Server)

	for i := len(layers) - 1; i >= 0; i-- {
		for _, s := range layers[i].VersionControl.Servers {
			if _, ok := byName[s.Name]; !ok {
				order = append(order, s.Name)
				byName[s.Name] = &Server{Name: s.Name}
			}
		}
	}

	for _, layer := range layers {
		for _, s := range layer.VersionControl.Servers {
			m := byName[s.Name]
			m.Host = firstString(m.Host, s.Host)
			if m.Port == 0 {
				m.Port = s.Port
			}
		}
	}

	servers := make([]Server, 0, len(order))
	for _, name := range order {
		servers = append(servers, *byName[name])
	}
	return servers
}

type workspaceMerge struct {
	ws Workspace

	primary, allowCreate, createDirs, autosync, syncWorkfile *bool
}

func mergeWorkspaces(layers []Layer) []Workspace {
	var order []string
	byName := make(map[string]*workspaceMerge)

	for i := len(layers) - 1; i >= 0; i-- {
		for _, w := range layers[i].VersionControl.Workspaces {
			if _, ok := byName[w.Name]; !ok {
				order = append(order, w.Name)
				byName[w.Name] = &workspaceMerge{ws: Workspace{Name: w.Name}}
			}
		}
	}

	for _, layer := range layers {
		for _, w := range layer.VersionControl.Workspaces {
			m := byName[w.Name]
			m.ws.Server = firstString(m.ws.Server, w.Server)
			m.ws.WorkspaceRoot = firstString(m.ws.WorkspaceRoot, w.WorkspaceRoot)
			m.ws.WorkspaceName = firstString(m.ws.WorkspaceName, w.WorkspaceName)
			m.ws.Stream = firstString(m.ws.Stream, w.Stream)
			m.ws.Options = firstString(m.ws.Options, w.Options)
			m.ws.Hosts = firstList(m.ws.Hosts, w.Hosts)
			m.ws.StartupFiles = firstList(m.ws.StartupFiles, w.StartupFiles)
			m.ws.AlwaysSync = firstList(m.ws.AlwaysSync, w.AlwaysSync)
			m.primary = firstPtr(m.primary, w.Primary)
			m.allowCreate = firstPtr(m.allowCreate, w.AllowCreateWorkspace)
			m.createDirs = firstPtr(m.createDirs, w.CreateDirs)
			m.autosync = firstPtr(m.autosync, w.EnableAutosync)
			m.syncWorkfile = firstPtr(m.syncWorkfile, w.SyncWorkfile)
		}
	}

	workspaces := make([]Workspace, 0, len(order))
	for _, name := range order {
		m := byName[name]
		ws := m.ws
		ws.Primary = deref(m.primary)
		ws.AllowCreateWorkspace = deref(m.allowCreate)
		ws.CreateDirs = deref(m.createDirs)
		ws.EnableAutosync = deref(m.autosync)
		ws.SyncWorkfile = deref(m.syncWorkfile)
		workspaces = append(workspaces, ws)
	}
	return workspaces
}

func firstString(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}

func firstList(current, candidate []string) []string {
	if len(current) > 0 {
		return current
	}
	if len(candidate) == 0 {
		return current
	}
	return append([]string(nil), candidate...)
}

func firstPtr(current, candidate *bool) *bool {
	if current != nil {
		return current
	}
	return candidate
}

func firstBool(layers []Layer, get func(Layer) *bool) *bool {
	for _, l := range layers {
		if v := get(l); v != nil {
			return v
		}
	}
	return nil
}

func deref(b *bool) bool {
	return b != nil && *b
}
