// internal/models/dedup.go
package models

// DuplicationCheck is the verdict for a single candidate against the store.
// ExistingProviderID is set only when IsDuplicate is true. Confidence is the
// sum of triggered signal points and is not capped.
type DuplicationCheck struct {
	IsDuplicate        bool   `json:"isDuplicate"`
	ExistingProviderID string `json:"existingProviderId,omitempty"`
	MatchReason        string `json:"matchReason,omitempty"`
	Confidence         int    `json:"confidence"`
}

// MergeResult reports a merge of duplicates into one surviving record.
// MergedData is the survivor as written back; it is nil when the merge
// failed before or during the write-back.
type MergeResult struct {
	Success     bool             `json:"success"`
	SurvivingID string           `json:"survivingId"`
	RemovedIDs  []string         `json:"removedIds"`
	MergedData  *ProviderProfile `json:"mergedData"`
	Errors      []string         `json:"errors"`
}

// DuplicateGroup is a survivor and the records judged duplicates of it.
type DuplicateGroup struct {
	PrimaryID    string   `json:"primaryId"`
	DuplicateIDs []string `json:"duplicateIds"`
}

// PassReport summarises a full deduplication pass over the store.
type PassReport struct {
	PassID          string           `json:"passId"`
	DuplicatesFound int              `json:"duplicatesFound"`
	MergesCompleted int              `json:"mergesCompleted"`
	Errors          []string         `json:"errors"`
	Groups          []DuplicateGroup `json:"groups"`
	Merges          []MergeResult    `json:"merges"`
}
