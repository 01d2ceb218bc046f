package analysis

import (
	"errors"

	"github.com/rutaviva/contentgate/pkg/domain/moderation"
)

// Status is the per-file state machine: pending → analyzing → approved or
// rejected. A rejected file may re-enter analyzing through an explicit
// re-analysis request; no other transition is legal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

var (
	ErrUnknownFile       = errors.New("file is not tracked in this batch")
	ErrIllegalTransition = errors.New("illegal analysis state transition")
	// ErrNothingEligible distinguishes "no approved files at all" from
	// "some files rejected" at the upload gate.
	ErrNothingEligible = errors.New("no approved files eligible for upload")
)

// File is an upload candidate handed to the coordinator. The name keys the
// per-file state, so filenames must be unique within one batch; this is a
// documented constraint, duplicates are not deduplicated. Data feeds the
// local engine, Path feeds the remote service's path contract.
type File struct {
	Name string
	Data []byte
	Path string
}

// FileState is the tracked state of one upload candidate. Verdict is set
// once status reaches approved or rejected.
type FileState struct {
	Name    string              `json:"name"`
	Status  Status              `json:"status"`
	Verdict *moderation.Verdict `json:"verdict,omitempty"`
}

// Counts is a pure projection over the batch, recomputed on every call.
type Counts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Analyzing int `json:"analyzing"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
}
