package app

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/leadbot/core/config"
	"github.com/m3rciful/leadbot/leadbot/config"
	"github.com/m3rciful/leadbot/leadbot/leads"
)

type foreignConfig struct{}

func (foreignConfig) CoreConfig() *coreconfig.Config { return &coreconfig.Config{} }

func TestBootstrapRejectsForeignConfig(t *testing.T) {
	_, err := Bootstrap(foreignConfig{})
	assert.ErrorContains(t, err, "unexpected config type")
}

func TestBuildSinkPostgres(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	cfg := config.Defaults()
	a := &App{cfg: &cfg, db: sqlx.NewDb(raw, "postgres")}
	sink, err := a.buildSink(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &leads.MultiSink{}, sink)
}

func TestBuildSinkErrors(t *testing.T) {
	cfg := config.Defaults()
	a := &App{cfg: &cfg}
	_, err := a.buildSink(context.Background())
	assert.ErrorContains(t, err, "without database")

	cfg.Leads.Backends = []string{"mongo"}
	_, err = a.buildSink(context.Background())
	assert.ErrorContains(t, err, "unknown lead backend")

	cfg.Leads.Backends = nil
	_, err = a.buildSink(context.Background())
	assert.ErrorIs(t, err, leads.ErrNoBackends)
}

func TestCloseWithoutResources(t *testing.T) {
	assert.NoError(t, (&App{}).Close())
}
