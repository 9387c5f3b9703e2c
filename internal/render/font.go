package render

import (
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	logging "health-scatter/internal/infra/log"
)

// Fonts holds parsed TrueType fonts. Faces are created per call because
// a font.Face must not be shared between goroutines.
type Fonts struct {
	regular *truetype.Font
	bold    *truetype.Font
	Path    string // empty when the bundled Go fonts are used
}

// LoadFonts uses the first readable TTF in paths for regular text and
// falls back to the bundled Go Regular face.
func LoadFonts(paths []string) *Fonts {
	bold, _ := truetype.Parse(gobold.TTF)
	fonts := &Fonts{bold: bold}

	for _, p := range paths {
		p = expandHome(p)
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			logging.LogWarn("Font file exists but failed to parse", zap.String("path", p), zap.Error(err))
			continue
		}
		fonts.regular = f
		fonts.Path = p
		logging.LogDebug("Loaded chart font", zap.String("path", p))
		return fonts
	}

	fonts.regular, _ = truetype.Parse(goregular.TTF)
	logging.LogDebug("Using bundled Go font", zap.Int("paths_checked", len(paths)))
	return fonts
}

// Face returns a new face of the given size in points.
func (f *Fonts) Face(size float64, bold bool) font.Face {
	src := f.regular
	if bold {
		src = f.bold
	}
	return truetype.NewFace(src, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
