package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemeFor(t *testing.T) {
	assert.Equal(t, themes[DarkTheme], ThemeFor(true))
	assert.Equal(t, themes[LightTheme], ThemeFor(false))
	assert.Equal(t, []string{LightTheme, DarkTheme}, ThemeNames())
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(ThemeFor(true)) })

	SetTheme(ThemeFor(false))
	assert.Equal(t, themes[LightTheme], CurrentPalette)
	assert.Equal(t, themes[LightTheme].Error, TextErrorStyle.GetForeground())
}
