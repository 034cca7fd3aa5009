// Package history persists past annotation runs so the UI can reload them
// without re-annotating.
//
// A run stores the submitted FASTA content, the numbering scheme used, and
// the normalized result. Two backends are provided: a file store for CLI
// usage and a Mongo store for server deployments.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tmonheim/chainview/pkg/annot"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("not found")

// Result is the outcome of one annotation run: the normalized sequences plus
// the per-item failures.
type Result struct {
	Sequences []annot.SequenceModel `json:"sequences" bson:"sequences"`
	Failures  []annot.ItemFailure   `json:"failures,omitempty" bson:"failures,omitempty"`
}

// Summary holds the headline numbers shown in run listings.
type Summary struct {
	Sequences int `json:"sequences" bson:"sequences"`
	Chains    int `json:"chains" bson:"chains"`
	Regions   int `json:"regions" bson:"regions"`
	Failures  int `json:"failures" bson:"failures"`
}

// Run is one persisted annotation run.
type Run struct {
	ID              string    `json:"id" bson:"id"`
	Name            string    `json:"name" bson:"name"`
	FastaContent    string    `json:"fasta_content,omitempty" bson:"fasta_content,omitempty"`
	NumberingScheme string    `json:"numbering_scheme,omitempty" bson:"numbering_scheme,omitempty"`
	Timestamp       time.Time `json:"timestamp" bson:"timestamp"`
	Summary         Summary   `json:"summary" bson:"summary"`
	Result          Result    `json:"result" bson:"result"`
}

// Store persists runs. Implementations must treat runs as opaque records;
// List returns runs newest first.
type Store interface {
	Save(ctx context.Context, run Run) error
	Get(ctx context.Context, id string) (Run, error)
	List(ctx context.Context) ([]Run, error)
	Clear(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewRun builds a run record for a completed annotation.
func NewRun(name, fastaContent, numberingScheme string, result Result) Run {
	return Run{
		ID:              uuid.NewString(),
		Name:            name,
		FastaContent:    fastaContent,
		NumberingScheme: numberingScheme,
		Timestamp:       time.Now().UTC(),
		Summary:         Summarize(result),
		Result:          result,
	}
}

// Summarize computes the listing summary for a result.
func Summarize(result Result) Summary {
	s := Summary{
		Sequences: len(result.Sequences),
		Failures:  len(result.Failures),
	}
	for _, m := range result.Sequences {
		s.Chains += len(m.Chains)
		for _, c := range m.Chains {
			s.Regions += len(c.Annotations)
		}
	}
	return s
}
