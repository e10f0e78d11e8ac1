package postgresql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	script := `
-- orders
CREATE TABLE a (
  id TEXT PRIMARY KEY
);

CREATE INDEX a_idx ON a (id);
SELECT 1`

	statements := SplitStatements(script)

	assert.Equal(t, []string{
		"CREATE TABLE a (\nid TEXT PRIMARY KEY\n);",
		"CREATE INDEX a_idx ON a (id);",
		"SELECT 1",
	}, statements)
}

func TestBuildConnectionString(t *testing.T) {
	conn := buildConnectionString(Config{
		Host:     "db",
		Port:     5432,
		Database: "clob",
		Username: "u",
		Password: "p",
		SSLMode:  "disable",
	})

	assert.Equal(t, "postgres://u:p@db:5432/clob?sslmode=disable", conn)
}

func TestBuildConnectionString_EscapesCredentials(t *testing.T) {
	conn := buildConnectionString(Config{
		Host:        "db",
		Port:        5432,
		Database:    "clob",
		Username:    "u",
		Password:    "p@ss/word",
		SSLMode:     "verify-full",
		SSLRootCert: "/certs/ca.pem",
	})

	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5432/clob?sslmode=verify-full&sslrootcert=%2Fcerts%2Fca.pem", conn)
}

func TestRuntimeParams(t *testing.T) {
	params := runtimeParams(Config{ApplicationName: "clob-sequencer", QueryTimeout: 30 * time.Second})

	assert.Equal(t, map[string]string{
		"application_name":  "clob-sequencer",
		"statement_timeout": "30000",
	}, params)
}
