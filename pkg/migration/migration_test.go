package migration

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_trades.up.sql":   {Data: []byte("CREATE TABLE trades (id TEXT);")},
		"0001_orders.up.sql":   {Data: []byte("CREATE TABLE orders (id TEXT);\n")},
		"0001_orders.down.sql": {Data: []byte("DROP TABLE orders;")},
		"README.md":            {Data: []byte("ignored")},
	}

	migrations, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "0001_orders", migrations[0].ID)
	assert.Equal(t, "CREATE TABLE orders (id TEXT);", migrations[0].UpSQL)
	assert.Equal(t, "DROP TABLE orders;", migrations[0].DownSQL)
	assert.Equal(t, "0002_trades", migrations[1].ID)
	assert.Empty(t, migrations[1].DownSQL)
}

func TestPending(t *testing.T) {
	migrations := []Migration{{ID: "0001"}, {ID: "0002"}, {ID: "0003"}}

	testCases := []struct {
		name     string
		applied  map[string]bool
		steps    int
		expected []string
	}{
		{name: "nothing applied", applied: map[string]bool{}, expected: []string{"0001", "0002", "0003"}},
		{name: "first applied", applied: map[string]bool{"0001": true}, expected: []string{"0002", "0003"}},
		{name: "limited steps", applied: map[string]bool{}, steps: 1, expected: []string{"0001"}},
		{name: "all applied", applied: map[string]bool{"0001": true, "0002": true, "0003": true}, expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ids []string
			for _, m := range Pending(migrations, tc.applied, tc.steps) {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}
