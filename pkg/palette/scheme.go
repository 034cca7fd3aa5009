package palette

import (
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tmonheim/chainview/pkg/annot"
	"github.com/tmonheim/chainview/pkg/errors"
)

// schemeFile is the TOML shape of a custom color scheme:
//
//	[colors]
//	CDR = "#e91e63"
//	FR = "#90caf9"
//
// Keys are canonical category names; omitted categories keep their built-in
// color.
type schemeFile struct {
	Colors map[string]string `toml:"colors"`
}

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadScheme reads a custom color scheme from a TOML file. The returned
// scheme starts from the built-in defaults and applies the file's overrides.
func LoadScheme(path string) (*Scheme, error) {
	var file schemeFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScheme, err, "read color scheme %s", path)
	}
	return buildScheme(file)
}

// ParseScheme reads a custom color scheme from TOML text.
func ParseScheme(data string) (*Scheme, error) {
	var file schemeFile
	if _, err := toml.Decode(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScheme, err, "parse color scheme")
	}
	return buildScheme(file)
}

func buildScheme(file schemeFile) (*Scheme, error) {
	colors := make(map[annot.RegionType]string, len(defaultColors))
	for cat, color := range defaultColors {
		colors[cat] = color
	}

	for key, color := range file.Colors {
		cat := annot.RegionType(strings.ToUpper(key))
		if _, ok := defaultColors[cat]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidScheme, "unknown region category %q", key)
		}
		if !hexColorRegex.MatchString(color) {
			return nil, errors.New(errors.ErrCodeInvalidScheme, "invalid color %q for %s (expected #rrggbb)", color, key)
		}
		colors[cat] = color
	}

	return &Scheme{colors: colors}, nil
}
