package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir 切换到临时目录执行（Load按相对路径查找配置文件）
func inTempDir(t *testing.T, yaml string) {
	t.Helper()

	dir := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(yaml), 0o644))
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	inTempDir(t, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, time.Minute, cfg.Notification.PollInterval)
	assert.Equal(t, "/UploadedFiles", cfg.Server.UploadPath)
	assert.False(t, cfg.Order.ReserveStock)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	inTempDir(t, "server:\n  port: 9000\ndatabase:\n  password: from-file\n")
	t.Setenv("BOOKSTORE_DATABASE_PASSWORD", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:       ServerConfig{Port: 8080, Mode: "release"},
			Database:     DatabaseConfig{Driver: "mysql"},
			JWT:          JWTConfig{Secret: "a-real-secret"},
			Notification: NotificationConfig{PollInterval: time.Minute},
		}
	}

	assert.NoError(t, validate(base()))

	cfg := base()
	cfg.JWT.Secret = defaultJWTSecret
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Database.Driver = "sqlite"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Notification.PollInterval = 0
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.MQ.Enabled = true
	assert.Error(t, validate(cfg))
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "mysql", User: "root", Password: "pw", Host: "db", Port: 3306,
		DBName: "bookshop", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai"}
	assert.Equal(t, "root:pw@tcp(db:3306)/bookshop?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", d.DSN())

	d.Driver = "postgres"
	d.Port = 5432
	d.SSLMode = "disable"
	assert.Contains(t, d.DSN(), "host=db port=5432")
}
