package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetActive(t *testing.T) {
	t.Cleanup(func() { Active = FlexokiDark })

	assert.True(t, SetActive("tokyo-night"))
	assert.Equal(t, TokyoNight, Active)

	assert.False(t, SetActive("solarized"))
	assert.Equal(t, FlexokiDark, Active)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"flexoki-dark", "catppuccin-mocha", "tokyo-night", "terminal"}, Names())
}
