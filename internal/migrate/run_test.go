package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SortedByVersion(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "0001_roles", migrations[0].Version)
	assert.Equal(t, "0002_beta_invites", migrations[1].Version)
}

func TestLoad_DefinesCoreTables(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)

	var schema strings.Builder
	for _, m := range migrations {
		schema.WriteString(m.SQL)
	}
	for _, table := range []string{"profiles", "user_roles", "beta_invites", "beta_users"} {
		assert.Contains(t, schema.String(), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema.String(), "beta_invites_active_code_idx")
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: "0001_a"}, {Version: "0002_b"}, {Version: "0003_c"}}

	assert.Equal(t, all, Pending(all, nil))
	assert.Equal(t, []Migration{{Version: "0002_b"}}, Pending(all, map[string]bool{"0001_a": true, "0003_c": true}))
	assert.Empty(t, Pending(all, map[string]bool{"0001_a": true, "0002_b": true, "0003_c": true}))
}
