package mergeduplicateproviders

import "provider-matching-workers/internal/models"

type Input struct {
	PrimaryID    string   `json:"primaryId"`
	DuplicateIDs []string `json:"duplicateIds"`
}

type Output = models.MergeResult
