package annot

// =============================================================================
// Region and Chain Types - Single Source of Truth
// =============================================================================

// RegionType categorizes an annotated region within a chain.
type RegionType string

// Region type categories.
const (
	RegionFR        RegionType = "FR"
	RegionCDR       RegionType = "CDR"
	RegionConstant  RegionType = "CONSTANT"
	RegionLinker    RegionType = "LINKER"
	RegionMutation  RegionType = "MUTATION"
	RegionLiability RegionType = "LIABILITY"
)

// Chain types reported by the annotation service.
const (
	ChainHeavy  = "heavy_chain"
	ChainLight  = "light_chain"
	ChainScFv   = "scfv"
	ChainCustom = "custom"
)

// ColorAssigner maps a raw region type string to a display color and
// category. Implementations must be total: unknown types receive a default
// assignment rather than an error.
type ColorAssigner interface {
	ColorFor(regionType string) (color string, category RegionType)
}

// =============================================================================
// Normalized Model
// =============================================================================

// SequenceModel is the flattened, addressable form of one annotated sequence.
// It is created once per annotation response and replaced wholesale on
// re-annotation; callers must not mutate it.
type SequenceModel struct {
	ID      string       `json:"id" bson:"id"`
	Name    string       `json:"name" bson:"name"`
	Species string       `json:"species,omitempty" bson:"species,omitempty"`
	Chains  []ChainModel `json:"chains" bson:"chains"`
}

// ChainModel is one chain of a sequence. Sequence is the concatenation of
// all domain sequences belonging to the chain, in domain order.
type ChainModel struct {
	ID          string        `json:"id" bson:"id"`
	Name        string        `json:"name" bson:"name"`
	Type        string        `json:"type" bson:"type"`
	Sequence    string        `json:"sequence" bson:"sequence"`
	Annotations []RegionModel `json:"annotations" bson:"annotations"`
}

// RegionModel is one annotated region in chain-relative coordinates.
// Start and Stop are 1-based and inclusive within ChainModel.Sequence.
// The ID is stable across re-renders: chain id + region name + occurrence
// index, so repeated names (two CDR1 in a DVD-Ig) stay addressable.
type RegionModel struct {
	ID       string         `json:"id" bson:"id"`
	Name     string         `json:"name" bson:"name"`
	Type     RegionType     `json:"type" bson:"type"`
	Start    int            `json:"start" bson:"start"`
	Stop     int            `json:"stop" bson:"stop"`
	Sequence string         `json:"sequence" bson:"sequence"`
	Color    string         `json:"color,omitempty" bson:"color,omitempty"`
	Details  map[string]any `json:"details,omitempty" bson:"details,omitempty"`
}

// Length returns the number of positions the region covers.
func (r *RegionModel) Length() int {
	return r.Stop - r.Start + 1
}

// Region returns the annotation with the given ID, if present.
func (c *ChainModel) Region(id string) (RegionModel, bool) {
	for _, r := range c.Annotations {
		if r.ID == id {
			return r, true
		}
	}
	return RegionModel{}, false
}
