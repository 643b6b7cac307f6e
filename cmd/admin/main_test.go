package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace-admin/internal/core/config"
)

func TestRunIndexesMemory(t *testing.T) {
	cfg := &config.Config{Mongo: config.Mongo{Driver: "memory", TimeoutSec: 1}}
	assert.NoError(t, runIndexes(cfg, zap.NewNop()))
}

func TestRunIndexesReturnsOpenError(t *testing.T) {
	cfg := &config.Config{Mongo: config.Mongo{Driver: "cassandra"}}
	err := runIndexes(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store open")
}

func TestRunTokenNeedsSecret(t *testing.T) {
	err := runToken(&config.Config{}, []string{"-email", "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_JWT_SECRET")

	cfg := &config.Config{JWT: config.JWT{Secret: "k", Issuer: "test", TTLMin: 5}}
	assert.NoError(t, runToken(cfg, []string{"-email", "a@example.com"}))
}
