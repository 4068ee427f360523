package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agenda-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "agenda-api", cfg.App.Name)
	assert.Equal(t, 5*time.Second, cfg.DB.QueryTimeout)
	assert.Equal(t, 1, cfg.DB.Retries)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.True(t, cfg.DB.ForceIPv4)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Contains(t, cfg.Access.ExecutiveSectors, "DIREX")
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_QUERY_TIMEOUT_MS", "250")
	t.Setenv("DB_RETRIES", "2")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_MIN_CONNS", "8")
	t.Setenv("EXECUTIVE_SECTORS", "Presidência, Gabinete ,")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.DB.QueryTimeout)
	assert.Equal(t, 2, cfg.DB.Retries)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, int32(4), cfg.DB.MaxConns)
	assert.Equal(t, int32(1), cfg.DB.MinConns, "mínimo mayor que el máximo vuelve al valor por defecto")
	assert.Equal(t, []string{"Presidência", "Gabinete"}, cfg.Access.ExecutiveSectors)
}

func TestLoad_ProductionExigeSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss:w/rd", DBName: "agenda", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%3Aw%2Frd@db:5432/agenda?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
