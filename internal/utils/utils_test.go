package utils

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDriverFromEnv(t *testing.T) {
	t.Setenv("RECORD_DB_DRIVER", "")
	d, err := RecordDriverFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, d)

	t.Setenv("RECORD_DB_DRIVER", "mysql")
	d, err = RecordDriverFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, d)

	t.Setenv("RECORD_DB_DRIVER", "sqlite")
	_, err = RecordDriverFromEnv()
	assert.Error(t, err)
}

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_USER", "reader")
	t.Setenv("PG_PASSWORD", "pw")
	t.Setenv("PG_DB", "survey")
	t.Setenv("PG_SSLMODE", "")
	assert.Equal(t, "postgres://reader:pw@db:6543/survey?sslmode=disable", BuildPostgresDSNFromEnv())
}

func TestBuildMySQLDSNFromEnv(t *testing.T) {
	t.Setenv("MYSQL_HOST", "mysql")
	t.Setenv("MYSQL_PORT", "")
	t.Setenv("MYSQL_USER", "root")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_DB", "")
	cfg, err := mysql.ParseDSN(BuildMySQLDSNFromEnv())
	require.NoError(t, err)
	assert.Equal(t, "mysql:3306", cfg.Addr)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "mobile_usage", cfg.DBName)
}

func TestOpenRedisFromEnv_Disabled(t *testing.T) {
	t.Setenv("REDIS_ENABLE", "")
	assert.Nil(t, OpenRedisFromEnv())

	t.Setenv("REDIS_ENABLE", "true")
	t.Setenv("REDIS_DB", "2")
	c := OpenRedisFromEnv()
	require.NotNil(t, c)
	defer c.Close()
	assert.Equal(t, 2, c.Options().DB)
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "keys", "server.key")
	require.NoError(t, EnsureSelfSignedCert(cert, key, "usage-map.local"))
	_, err := tls.LoadX509KeyPair(cert, key)
	require.NoError(t, err)

	before, err := os.ReadFile(cert)
	require.NoError(t, err)
	require.NoError(t, EnsureSelfSignedCert(cert, key, "other"))
	after, err := os.ReadFile(cert)
	require.NoError(t, err)
	assert.Equal(t, before, after, "existing pair is kept")
}
