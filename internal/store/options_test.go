package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atom/internal/host"
)

func TestOptions_GetUpdateAll(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, ok, err := s.GetOption(ctx, "api_key")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.UpdateOption(ctx, "api_key", "one"))
	require.NoError(t, s.UpdateOption(ctx, "api_key", "two"))
	require.NoError(t, s.UpdateOption(ctx, "max", "5"))

	v, ok, err := s.GetOption(ctx, "api_key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	all, err := s.AllOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"api_key": "two", "max": "5"}, all)
}

func TestOptions_BackHostSettings(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	h := host.New(host.WithOptionStore(s))
	h.RegisterSetting("shop", "currency", "text")

	require.NoError(t, h.SaveSettings(ctx, "shop", map[string]string{"currency": "EUR"}, nil))

	v, ok, err := s.GetOption(ctx, "currency")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "EUR", v)
}
