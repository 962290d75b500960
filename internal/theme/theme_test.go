package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorString(t *testing.T) {
	tests := []struct {
		in   string
		want tcell.Color
	}{
		{"#ff0000", tcell.NewRGBColor(255, 0, 0)},
		{"#0f0", tcell.NewRGBColor(0, 255, 0)},
		{" rgb(1, 2, 3) ", tcell.NewRGBColor(1, 2, 3)},
		{"rgb(1,2)", tcell.ColorDefault},
		{"rgb(300,0,0)", tcell.ColorDefault},
		{"#12", tcell.ColorDefault},
		{"blue", tcell.ColorDefault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseColorString(tt.in), tt.in)
	}
}

func TestBlend(t *testing.T) {
	black := HexToColor("#000000")
	white := HexToColor("#ffffff")

	assert.Equal(t, black, Blend(black, white, 0))
	assert.Equal(t, white, Blend(black, white, 1))
	assert.Equal(t, white, Blend(tcell.ColorDefault, white, 0.5))

	r, g, b := Blend(black, white, 0.5).RGB()
	assert.Greater(t, r, int32(0))
	assert.Less(t, r, int32(255))
	assert.InDelta(t, r, g, 1)
	assert.InDelta(t, g, b, 1)
}

func TestLoadThemeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.toml")
	content := `name = "mine"

[colors]
diff_inserted = "#00ff00"
background = "rgb(10, 10, 10)"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	th, err := LoadThemeFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "mine", th.Name)
	assert.Equal(t, tcell.NewRGBColor(0, 255, 0), th.Colors.DiffInserted)
	assert.Equal(t, tcell.NewRGBColor(10, 10, 10), th.Colors.Background)
	assert.Equal(t, TokyoNight().Colors.DiffDeleted, th.Colors.DiffDeleted)
}

func TestLoadThemeOrDefault(t *testing.T) {
	assert.Equal(t, "default", LoadThemeOrDefault("default").Name)
	assert.Equal(t, "tokyo-night", LoadThemeOrDefault("does-not-exist").Name)
}
