package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.Equal(t, "top", cfg.DefaultLayer)
	require.False(t, cfg.NaturalScroll)
	require.Equal(t, "info", cfg.LogLevel)
}
