// Package palette assigns display colors to annotated region types.
//
// The default scheme is total over the region-type enumeration: any type it
// does not recognize receives the neutral default color and the CONSTANT
// category rather than an error. Custom schemes can override individual
// colors via a TOML file (see LoadScheme).
package palette

import (
	"strings"

	"github.com/tmonheim/chainview/pkg/annot"
)

// DefaultColor is assigned to region types the scheme does not recognize.
const DefaultColor = "#9e9e9e"

// Assignment is the color and category resolved for a region type.
type Assignment struct {
	Color    string           `json:"color"`
	Category annot.RegionType `json:"category"`
}

// defaultColors is the built-in color per canonical region category.
var defaultColors = map[annot.RegionType]string{
	annot.RegionCDR:       "#ef5350",
	annot.RegionFR:        "#64b5f6",
	annot.RegionConstant:  "#b0bec5",
	annot.RegionLinker:    "#ffb74d",
	annot.RegionMutation:  "#ba68c8",
	annot.RegionLiability: "#ff8a65",
}

// categoryPrefixes resolves raw type strings (CDR1, FR4, ...) to categories.
// Checked in order; first matching prefix wins.
var categoryPrefixes = []struct {
	prefix string
	cat    annot.RegionType
}{
	{"CDR", annot.RegionCDR},
	{"FR", annot.RegionFR},
	{"LINKER", annot.RegionLinker},
	{"MUTATION", annot.RegionMutation},
	{"LIABILITY", annot.RegionLiability},
	{"CONSTANT", annot.RegionConstant},
}

// Scheme maps region types to colors. The zero value is not usable; create
// schemes with Default or LoadScheme.
type Scheme struct {
	colors map[annot.RegionType]string
}

// Default returns the built-in color scheme.
func Default() *Scheme {
	return &Scheme{colors: defaultColors}
}

// Assignment resolves a raw region type string to its color and category.
// The function is total: unknown types receive DefaultColor and CONSTANT.
func (s *Scheme) Assignment(regionType string) Assignment {
	cat := category(regionType)
	color, ok := s.colors[cat]
	if !ok {
		color = DefaultColor
	}
	return Assignment{Color: color, Category: cat}
}

// ColorFor implements annot.ColorAssigner.
func (s *Scheme) ColorFor(regionType string) (string, annot.RegionType) {
	a := s.Assignment(regionType)
	return a.Color, a.Category
}

func category(regionType string) annot.RegionType {
	t := strings.ToUpper(regionType)
	for _, e := range categoryPrefixes {
		if strings.HasPrefix(t, e.prefix) {
			return e.cat
		}
	}
	return annot.RegionConstant
}

// Ensure Scheme implements the normalizer's assigner interface.
var _ annot.ColorAssigner = (*Scheme)(nil)
