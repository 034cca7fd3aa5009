// Package annot normalizes the nested, heterogeneous response of the external
// annotation service into a flat, addressable sequence model.
//
// The service reports one result per submitted sequence. Each result nests
// chains, chain sequence entries, domains, and features, with feature
// coordinates relative to their domain. Normalization concatenates the domain
// sequences of each chain, translates feature coordinates into chain-relative
// positions, and emits one RegionModel per feature with a stable ID.
//
// Failures are partial: a malformed entry is skipped and reported alongside
// the successfully normalized sequences, never raised as an error for the
// whole batch.
package annot

import (
	"fmt"
	"sort"
	"strings"
)

// ItemFailure reports one skipped entry: the item name and why it was skipped.
type ItemFailure struct {
	Name   string `json:"name" bson:"name"`
	Reason string `json:"reason" bson:"reason"`
}

// Normalizer flattens annotation responses into SequenceModels.
type Normalizer struct {
	colors ColorAssigner
}

// NewNormalizer creates a Normalizer using the given color assigner.
// A nil assigner leaves RegionModel.Color empty.
func NewNormalizer(colors ColorAssigner) *Normalizer {
	return &Normalizer{colors: colors}
}

// regionKinds maps feature_type prefixes to region categories. The table is
// checked in order; the first matching prefix wins.
var regionKinds = []struct {
	prefix string
	kind   RegionType
}{
	{"CDR", RegionCDR},
	{"FR", RegionFR},
	{"LINKER", RegionLinker},
	{"MUTATION", RegionMutation},
	{"LIABILITY", RegionLiability},
	{"CONSTANT", RegionConstant},
}

// regionKind derives the region category from a feature type. Features that
// match no prefix land in the CONSTANT bucket: this covers everything a
// constant domain reports (CH1, hinge, CL) as well as unrecognized types,
// which render in the neutral default color.
func regionKind(featureType string) RegionType {
	ft := strings.ToUpper(featureType)
	for _, e := range regionKinds {
		if strings.HasPrefix(ft, e.prefix) {
			return e.kind
		}
	}
	return RegionConstant
}

// Normalize builds one SequenceModel per successful result. Entries that
// cannot be normalized (failed results, missing sequence data, invalid
// feature ranges) are reported in the failure list and skipped.
func (n *Normalizer) Normalize(resp Response) ([]SequenceModel, []ItemFailure) {
	models := make([]SequenceModel, 0, len(resp.Results))
	var failures []ItemFailure

	for _, res := range resp.Results {
		if !res.Success {
			reason := res.Error
			if reason == "" {
				reason = "annotation failed"
			}
			failures = append(failures, ItemFailure{Name: res.Name, Reason: reason})
			continue
		}
		if res.Data.Sequence == nil {
			failures = append(failures, ItemFailure{Name: res.Name, Reason: "result has no sequence data"})
			continue
		}
		models = append(models, n.normalizeSequence(res.Name, res.Data.Sequence, &failures))
	}

	return models, failures
}

func (n *Normalizer) normalizeSequence(name string, raw *RawSequence, failures *[]ItemFailure) SequenceModel {
	if name == "" {
		name = raw.Name
	}
	model := SequenceModel{
		ID:      name,
		Name:    name,
		Species: raw.Species,
		Chains:  make([]ChainModel, 0, len(raw.Chains)),
	}

	for _, rc := range raw.Chains {
		chain := n.normalizeChain(name, rc, failures)
		if model.Species == "" {
			model.Species = chainSpecies(rc)
		}
		model.Chains = append(model.Chains, chain)
	}

	return model
}

// candidate is a region before range validation and ID assignment.
type candidate struct {
	name    string
	kind    RegionType
	start   int
	stop    int
	details map[string]any
}

func (n *Normalizer) normalizeChain(seqID string, rc RawChain, failures *[]ItemFailure) ChainModel {
	chain := ChainModel{
		ID:   seqID + ":" + rc.Name,
		Name: rc.Name,
		Type: rc.ChainType,
	}

	// First pass: concatenate domain sequences and collect region candidates
	// with chain-relative coordinates. The offset of a domain is the running
	// total of all prior domain lengths within the chain.
	var cands []candidate
	var sb strings.Builder
	offset := 0
	for _, entry := range rc.Sequences {
		for _, d := range entry.Domains {
			if d.PrecedingLinker != nil {
				// Linkers are reported as domain metadata, not as features.
				// Synthesize a region so they stay selectable like any other.
				cands = append(cands, linkerCandidate(d.PrecedingLinker))
			}
			for _, f := range d.Features {
				cands = append(cands, featureCandidate(f, d, offset))
			}
			sb.WriteString(d.SequenceData)
			offset += len(d.SequenceData)
		}
	}
	chain.Sequence = sb.String()

	// Second pass: validate ranges, assign occurrence-indexed IDs, slice
	// sequences, and attach colors.
	occ := make(map[string]int)
	chain.Annotations = make([]RegionModel, 0, len(cands))
	for _, c := range cands {
		if c.start > c.stop {
			*failures = append(*failures, ItemFailure{
				Name:   chain.ID + ":" + c.name,
				Reason: fmt.Sprintf("invalid range: start %d > stop %d", c.start, c.stop),
			})
			continue
		}
		if c.start < 1 || c.stop > len(chain.Sequence) {
			*failures = append(*failures, ItemFailure{
				Name:   chain.ID + ":" + c.name,
				Reason: fmt.Sprintf("range [%d,%d] outside chain sequence of length %d", c.start, c.stop, len(chain.Sequence)),
			})
			continue
		}

		idx := occ[c.name]
		occ[c.name] = idx + 1

		region := RegionModel{
			ID:       fmt.Sprintf("%s:%s:%d", chain.ID, c.name, idx),
			Name:     c.name,
			Type:     c.kind,
			Start:    c.start,
			Stop:     c.stop,
			Sequence: chain.Sequence[c.start-1 : c.stop],
			Details:  c.details,
		}
		if n.colors != nil {
			region.Color, _ = n.colors.ColorFor(string(c.kind))
		}
		chain.Annotations = append(chain.Annotations, region)
	}

	sort.SliceStable(chain.Annotations, func(i, j int) bool {
		return chain.Annotations[i].Start < chain.Annotations[j].Start
	})

	chain.Annotations = dropOverlaps(chain.ID, chain.Annotations, failures)
	return chain
}

func featureCandidate(f RawFeature, d RawDomain, offset int) candidate {
	details := map[string]any{"feature_type": f.FeatureType}
	if f.Value != "" {
		details["value"] = f.Value
	}
	if d.DomainType != "" {
		details["domain_type"] = d.DomainType
	}
	if d.Germline != "" {
		details["germline"] = d.Germline
	}
	if d.Isotype != "" {
		details["isotype"] = d.Isotype
	}
	return candidate{
		name:    f.Name,
		kind:    regionKind(f.FeatureType),
		start:   offset + f.StartPosition,
		stop:    offset + f.EndPosition,
		details: details,
	}
}

// linkerCandidate builds a synthetic LINKER region. Linker coordinates are
// already chain-relative in the service response.
func linkerCandidate(l *RawLinker) candidate {
	name := l.Name
	if name == "" {
		name = "linker"
	}
	return candidate{
		name:  name,
		kind:  RegionLinker,
		start: l.StartPosition,
		stop:  l.EndPosition,
	}
}

// dropOverlaps enforces the non-overlap invariant: regions of one chain must
// be pairwise disjoint. Later regions (in ascending start order) that overlap
// an already accepted one are skipped and reported.
func dropOverlaps(chainID string, regions []RegionModel, failures *[]ItemFailure) []RegionModel {
	out := regions[:0]
	prevStop := 0
	for _, r := range regions {
		if r.Start <= prevStop {
			*failures = append(*failures, ItemFailure{
				Name:   r.ID,
				Reason: fmt.Sprintf("overlaps preceding region ending at %d", prevStop),
			})
			continue
		}
		out = append(out, r)
		prevStop = r.Stop
	}
	return out
}

func chainSpecies(rc RawChain) string {
	for _, entry := range rc.Sequences {
		for _, d := range entry.Domains {
			if d.Species != "" {
				return d.Species
			}
		}
	}
	return ""
}
