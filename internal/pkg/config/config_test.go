package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
database:
  driver: postgres
  host: db
  port: 5432
  database: tenants
  username: svc
  password: pw
hosting:
  default_repository: https://github.com/acme/site
core:
  deploy:
    propagation_delay: 1s
`

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	t.Setenv("VERCEL_TOKEN", "tok-123")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://store.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "tok-123", cfg.Hosting.Token)
	assert.Equal(t, "https://store.example.com", cfg.SiteEnv.DataStoreURL)
	assert.Equal(t, "vercel.app", cfg.Hosting.SiteDomain)
	assert.Equal(t, time.Second, cfg.Core.Deploy.PropagationDelay)
	assert.Equal(t, 5*time.Second, cfg.Core.Deploy.RetryDelay)
	assert.Equal(t, "https://github.com/acme/site", cfg.Hosting.DefaultRepository)
}

func TestGetDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, Database: "tenants", Username: "svc", Password: "pw"}
	assert.Equal(t, "host=db user=svc password=pw dbname=tenants port=5432 sslmode=disable TimeZone=UTC", pg.GetDSN())

	my := DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, Database: "tenants", Username: "svc", Password: "pw"}
	assert.Equal(t, "svc:pw@tcp(db:3306)/tenants?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	lite := DatabaseConfig{Driver: "sqlite", Database: "file:local.db"}
	assert.Equal(t, "file:local.db", lite.GetDSN())
}
