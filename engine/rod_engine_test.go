package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/newgoods/config"
)

func TestToHeadersMap(t *testing.T) {
	m := toHeadersMap(map[string]string{"Accept-Language": "ja,en;q=0.8"})
	require.Len(t, m, 1)
	assert.Equal(t, "ja,en;q=0.8", m["Accept-Language"].Str())
}

func TestRodEngine_CloseWithoutBrowser(t *testing.T) {
	e := NewRodEngine(config.BrowserConfig{})
	assert.Equal(t, "rod", e.Name())
	assert.NoError(t, e.Close())
}
