package annot

import (
	"encoding/json"

	"github.com/tmonheim/chainview/pkg/errors"
)

// =============================================================================
// Raw Annotation Payload
// =============================================================================
//
// These types mirror the nested response of the external annotation service.
// The shape is heterogeneous: per-result success flags, chains holding
// sequence entries holding domains holding features, with coordinates that
// are domain-relative. Normalize flattens all of this into SequenceModels.

// Response is the top-level annotation service response.
type Response struct {
	Results []Result `json:"results"`
}

// Result is one sequence entry in the response. Failed entries carry
// Success=false and an optional Error string instead of data.
type Result struct {
	Name    string     `json:"name"`
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Data    ResultData `json:"data"`
}

// ResultData wraps the annotated sequence. Sequence is nil when the
// service produced no annotation for the entry.
type ResultData struct {
	Sequence *RawSequence `json:"sequence"`
}

// RawSequence is the annotated sequence as reported by the service.
type RawSequence struct {
	Name    string     `json:"name"`
	Species string     `json:"species,omitempty"`
	Chains  []RawChain `json:"chains"`
}

// RawChain groups the sequence entries of one chain.
type RawChain struct {
	Name      string     `json:"name"`
	ChainType string     `json:"chain_type"`
	Sequences []RawEntry `json:"sequences"`
}

// RawEntry holds the domains of one chain sequence entry.
type RawEntry struct {
	Domains []RawDomain `json:"domains"`
}

// RawDomain is one variable or constant domain. Feature coordinates are
// relative to the domain; PrecedingLinker, when present, describes a linker
// peptide in chain-relative coordinates that has no feature entry of its own.
type RawDomain struct {
	DomainType      string       `json:"domain_type"`
	StartPosition   int          `json:"start_position"`
	EndPosition     int          `json:"end_position"`
	SequenceData    string       `json:"sequence_data"`
	Species         string       `json:"species,omitempty"`
	Germline        string       `json:"germline,omitempty"`
	Isotype         string       `json:"isotype,omitempty"`
	PrecedingLinker *RawLinker   `json:"preceding_linker,omitempty"`
	Features        []RawFeature `json:"features"`
}

// RawLinker describes a synthetic linker preceding a domain.
type RawLinker struct {
	Name          string `json:"name,omitempty"`
	StartPosition int    `json:"start_position"`
	EndPosition   int    `json:"end_position"`
	Sequence      string `json:"sequence,omitempty"`
}

// RawFeature is one annotated feature within a domain. StartPosition and
// EndPosition are 1-based, inclusive, domain-relative.
type RawFeature struct {
	Name          string `json:"name"`
	FeatureType   string `json:"feature_type"`
	Value         string `json:"value,omitempty"`
	StartPosition int    `json:"start_position"`
	EndPosition   int    `json:"end_position"`
}

// DecodeResponse parses a raw annotation service payload.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode annotation payload")
	}
	return resp, nil
}
