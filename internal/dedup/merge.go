// internal/dedup/merge.go
package dedup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"provider-matching-workers/internal/models"
	"provider-matching-workers/internal/storage"
)

// MergeDuplicateProfiles folds the duplicates into the primary, writes the
// primary back, deletes the duplicates and repoints leads. Duplicates that no
// longer exist are skipped, so re-running a merge is harmless. A duplicate
// that fails to load keeps its data and its lead assignments. Success is
// false only when the primary is missing or cannot be written back; later
// failures are reported in Errors.
func (e *Engine) MergeDuplicateProfiles(ctx context.Context, primaryID string, duplicateIDs []string) models.MergeResult {
	result := models.MergeResult{
		SurvivingID: primaryID,
		RemovedIDs:  []string{},
		Errors:      []string{},
	}
	log := e.logger.WithFields(map[string]interface{}{"primaryId": primaryID})

	primary, err := e.store.GetProvider(ctx, primaryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			result.Errors = append(result.Errors, primaryNotFound(primaryID))
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to load primary provider %s: %v", primaryID, err))
		}
		return result
	}

	duplicateIDs = normalizeDuplicateIDs(primaryID, duplicateIDs)

	duplicates := make([]models.ProviderProfile, 0, len(duplicateIDs))
	// ids whose leads belong to the primary after this merge
	absorbed := make([]string, 0, len(duplicateIDs))
	for _, id := range duplicateIDs {
		dup, err := e.store.GetProvider(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			log.Debug("duplicate already gone", map[string]interface{}{"duplicateId": id})
			absorbed = append(absorbed, id)
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to load provider %s: %v", id, err))
			continue
		}
		duplicates = append(duplicates, *dup)
		absorbed = append(absorbed, id)
	}

	merged := MergeProviderData(*primary, duplicates, e.now().UTC())
	if err := e.store.UpdateProvider(ctx, &merged); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to update primary provider %s: %v", primaryID, err))
		return result
	}
	result.Success = true
	result.MergedData = &merged

	// only records merged above are deleted; one that failed to load keeps its data
	for _, dup := range duplicates {
		err := e.store.DeleteProvider(ctx, dup.ID)
		switch {
		case err == nil:
			result.RemovedIDs = append(result.RemovedIDs, dup.ID)
		case errors.Is(err, storage.ErrNotFound):
			// removed concurrently; nothing left to do
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("failed to remove provider %s: %v", dup.ID, err))
		}
	}

	result.Errors = append(result.Errors, e.repointLeads(ctx, absorbed, primaryID)...)

	log.Info("providers merged", map[string]interface{}{
		"removed": len(result.RemovedIDs),
		"errors":  len(result.Errors),
	})
	return result
}

// PrimaryMissing reports whether a merge failed because its primary record
// does not exist.
func PrimaryMissing(r models.MergeResult) bool {
	return !r.Success && len(r.Errors) == 1 && r.Errors[0] == primaryNotFound(r.SurvivingID)
}

func primaryNotFound(id string) string {
	return fmt.Sprintf("primary provider %s not found", id)
}

func normalizeDuplicateIDs(primaryID string, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == primaryID || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// repointLeads replaces every duplicate id in lead assignments with the
// primary id and drops repeats, keeping first occurrences in order.
func (e *Engine) repointLeads(ctx context.Context, duplicateIDs []string, primaryID string) []string {
	if len(duplicateIDs) == 0 {
		return nil
	}

	leads, err := e.store.ListLeads(ctx)
	if err != nil {
		return []string{fmt.Sprintf("failed to list leads: %v", err)}
	}

	var errs []string
	for _, lead := range leads {
		assigned, changed := repoint(lead.AssignedProviders, duplicateIDs, primaryID)
		if !changed {
			continue
		}
		lead.AssignedProviders = assigned
		lead.UpdatedAt = e.now().UTC()
		if err := e.store.UpdateLead(ctx, &lead); err != nil {
			errs = append(errs, fmt.Sprintf("failed to update lead %s: %v", lead.ID, err))
		}
	}
	return errs
}

func repoint(assigned, duplicateIDs []string, primaryID string) ([]string, bool) {
	changed := false
	out := make([]string, 0, len(assigned))
	for _, id := range assigned {
		if slices.Contains(duplicateIDs, id) {
			id = primaryID
			changed = true
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out, changed
}

// MergeProviderData builds the survivor record. The primary's identity and
// any field not covered below are kept unchanged.
//
//   - list fields are unioned, primary entries first
//   - portfolio items are unioned by title
//   - rating, review count, projects completed and team size take the maximum
//   - phone, website, email and the external identifiers keep the primary's
//     value or take the first non-empty duplicate value
//   - the longest description wins, earlier records on ties
func MergeProviderData(primary models.ProviderProfile, duplicates []models.ProviderProfile, now time.Time) models.ProviderProfile {
	merged := primary

	for _, dup := range duplicates {
		merged.Services = unionStrings(merged.Services, dup.Services)
		merged.Certifications = unionStrings(merged.Certifications, dup.Certifications)
		merged.Awards = unionStrings(merged.Awards, dup.Awards)
		merged.Languages = unionStrings(merged.Languages, dup.Languages)
		merged.TradeshowExperience = unionStrings(merged.TradeshowExperience, dup.TradeshowExperience)
		merged.ServiceLocations = unionLocations(merged.ServiceLocations, dup.ServiceLocations)
		merged.Portfolio.Items = unionPortfolioItems(merged.Portfolio.Items, dup.Portfolio.Items)

		merged.Ratings.Overall = max(merged.Ratings.Overall, dup.Ratings.Overall)
		merged.ReviewCount = max(merged.ReviewCount, dup.ReviewCount)
		merged.ProjectsCompleted = max(merged.ProjectsCompleted, dup.ProjectsCompleted)
		merged.TeamSize = max(merged.TeamSize, dup.TeamSize)

		fillEmpty(&merged.Phone, dup.Phone)
		fillEmpty(&merged.Website, dup.Website)
		fillEmpty(&merged.Email, dup.Email)
		fillEmpty(&merged.GMBPlaceID, dup.GMBPlaceID)
		fillEmpty(&merged.RegistrationNumber, dup.RegistrationNumber)

		if utf8.RuneCountInString(dup.Description) > utf8.RuneCountInString(merged.Description) {
			merged.Description = dup.Description
		}
	}

	audit := slices.Clone(primary.MergedProfiles)
	for _, dup := range duplicates {
		audit = append(audit, models.MergedProfile{ID: dup.ID, Name: dup.Name, MergedAt: now})
	}
	merged.MergedProfiles = audit
	merged.UpdatedAt = now

	return merged
}

func fillEmpty(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func unionStrings(a, b []string) []string {
	out := slices.Clone(a)
	for _, v := range b {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func unionLocations(a, b []models.Location) []models.Location {
	out := slices.Clone(a)
	for _, v := range b {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func unionPortfolioItems(a, b []models.PortfolioItem) []models.PortfolioItem {
	out := slices.Clone(a)
	for _, item := range b {
		exists := slices.ContainsFunc(out, func(existing models.PortfolioItem) bool {
			return existing.Title == item.Title
		})
		if !exists {
			out = append(out, item)
		}
	}
	return out
}
