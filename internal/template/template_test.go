package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() Context {
	return NewContext(
		Environment{ComputerName: "ws-042", User: "alice"},
		"demo",
		map[string]string{"work": "/mnt/work", "render": "/mnt/render"},
	)
}

func TestResolve(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"no placeholders", "plain_name", "plain_name"},
		{"user", "{user}_ws", "alice_ws"},
		{"computer and project dotted", "{computername}_{project.name}", "ws-042_demo"},
		{"project bracket", "{project[name]}", "demo"},
		{"root bracket", "{root[work]}/demo", "/mnt/work/demo"},
		{"root dotted", "{root.render}", "/mnt/render"},
		{"flattened root", "{work}/shots", "/mnt/work/shots"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.tmpl, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, HasPlaceholders(got))

			again, err := Resolve(got, ctx)
			require.NoError(t, err)
			assert.Equal(t, got, again, "resolution must be idempotent")
		})
	}
}

func TestResolveMissingField(t *testing.T) {
	ctx := testContext()

	for _, tmpl := range []string{"{nope}", "{root[cache]}/x", "{project.code}", "{project}", "{user", "{}"} {
		t.Run(tmpl, func(t *testing.T) {
			_, err := Resolve(tmpl, ctx)
			require.Error(t, err)

			var resErr *TemplateResolutionError
			require.True(t, errors.As(err, &resErr))
			assert.Equal(t, tmpl, resErr.Template)
		})
	}
}

func TestResolveValuePassesThroughNonStrings(t *testing.T) {
	ctx := testContext()

	for _, v := range []interface{}{true, 1666, []string{"{user}"}, nil} {
		got, err := ResolveValue(v, ctx)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	got, err := ResolveValue("{user}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestNewContextKeepsReservedFields(t *testing.T) {
	ctx := NewContext(Environment{ComputerName: "pc", User: "bob"}, "demo", map[string]string{"user": "/mnt/user"})

	got, err := Resolve("{user}|{root[user]}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob|/mnt/user", got)
}

func TestHasPlaceholders(t *testing.T) {
	assert.True(t, HasPlaceholders("{user}_ws"))
	assert.False(t, HasPlaceholders("alice_ws"))
	assert.False(t, HasPlaceholders("}{"))
}
