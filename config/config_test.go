package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adventureworks/database"
)

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: db.internal
  port: 6543
  schema: aw
paths:
  csv_dir: /data/aw
load:
  mode: server
  tables:
    sale: Sales_2017
report:
  limit: 5
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "aw", cfg.Database.Schema)
	assert.Equal(t, database.LoadModeServer, cfg.Load.Mode)
	assert.Equal(t, 5, cfg.Report.Limit)
	assert.True(t, cfg.Load.DropExisting)

	files := cfg.CSVFiles()
	assert.Len(t, files, 7)
	assert.Equal(t, filepath.Join("/data/aw", "AdventureWorks_Sales_2017.csv"), files["sale"])
	assert.Equal(t, filepath.Join("/data/aw", "AdventureWorks_Product_Categories.csv"), files["category"])
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [1, 2"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AW_DB_PASSWORD": "s3cret",
		"AW_DB_PORT":     "5433",
		"AW_CSV_DIR":     "/mnt/csv",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, applyEnv(cfg, lookup))
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "/mnt/csv", cfg.Paths.CSVDir)
	assert.Equal(t, "localhost", cfg.Database.Host)

	env["AW_DB_PORT"] = "not-a-port"
	assert.Error(t, applyEnv(Default(), lookup))
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("AW_DB_NAME", "adventure")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "adventure", cfg.Database.DBName)
}

func TestGetConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "it's a secret",
		DBName:   "postgres",
		SSLMode:  "disable",
		Schema:   "adventure_works",
	}
	assert.Equal(t,
		`host=localhost port=5432 user=postgres dbname=postgres sslmode=disable password='it\'s a secret' search_path=adventure_works`,
		db.GetConnectionString(),
	)

	db.Password = ""
	db.Schema = ""
	assert.Equal(t, "host=localhost port=5432 user=postgres dbname=postgres sslmode=disable", db.GetConnectionString())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Database.Host = ""
	cfg.Database.Port = 0
	cfg.Load.Mode = "ftp"
	cfg.Report.Limit = 0
	err := cfg.Validate()
	require.Error(t, err)
	for _, msg := range []string{"host is required", "invalid database port 0", `unknown load mode "ftp"`, "report limit must be positive"} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestDefault_IsolatedTables(t *testing.T) {
	cfg := Default()
	cfg.Load.Tables["sale"] = "Sales_2015"
	assert.Equal(t, "Sales", DefaultTableFiles["sale"])
}

func TestGetDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	assert.Empty(t, GetDefaultConfigPath())

	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultConfigFile), 0o755))
	assert.Empty(t, GetDefaultConfigPath())
	require.NoError(t, os.Remove(filepath.Join(dir, DefaultConfigFile)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("report:\n  limit: 3\n"), 0o600))
	path := GetDefaultConfigPath()
	require.NotEmpty(t, path)
	assert.Equal(t, DefaultConfigFile, filepath.Base(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Report.Limit)
}
