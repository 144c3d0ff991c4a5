// Package dedup detects provider records that describe the same company and
// merges them into one survivor, repointing lead assignments as it goes.
//
// Compare is asymmetric: the second argument is the existing record whose id
// is reported, and a pass always keeps the earlier record in store order.
package dedup

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/models"
	"provider-matching-workers/internal/similarity"
	"provider-matching-workers/internal/storage"
)

// Signal reasons, joined with ", " into DuplicationCheck.MatchReason.
const (
	ReasonExactName          = "Company name match"
	ReasonSimilarName        = "Similar company name"
	ReasonEmail              = "Email match"
	ReasonPhone              = "Phone match"
	ReasonWebsite            = "Website match"
	ReasonAddress            = "Address similarity"
	ReasonGMBPlaceID         = "GMB Place ID match"
	ReasonRegistrationNumber = "Registration number match"
)

type Engine struct {
	config Config
	store  storage.Store
	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

type Option func(*Engine)

// WithClock overrides the time source stamped on merged records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithPassIDs overrides how pass ids are generated.
func WithPassIDs(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

func NewEngine(config Config, store storage.Store, log logger.Logger, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dedup config: %w", err)
	}
	e := &Engine{
		config: config,
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.WithFields(map[string]interface{}{"component": "dedup"}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Compare scores candidate against existing. Signals only fire when both
// sides carry a value.
func (e *Engine) Compare(candidate, existing models.ProviderProfile) models.DuplicationCheck {
	pts := e.config.Points
	confidence := 0
	reasons := []string{}

	nameA, nameB := similarity.NormalizeName(candidate.Name), similarity.NormalizeName(existing.Name)
	if nameA != "" && nameA == nameB {
		confidence += pts.ExactName
		reasons = append(reasons, ReasonExactName)
	} else if similarity.StringSimilarity(candidate.Name, existing.Name) > e.config.FuzzyNameThreshold {
		confidence += pts.SimilarName
		reasons = append(reasons, ReasonSimilarName)
	}

	if candidate.Email != "" && existing.Email != "" && strings.EqualFold(candidate.Email, existing.Email) {
		confidence += pts.Email
		reasons = append(reasons, ReasonEmail)
	}

	phoneA, phoneB := similarity.NormalizePhone(candidate.Phone), similarity.NormalizePhone(existing.Phone)
	if phoneA != "" && phoneA == phoneB {
		confidence += pts.Phone
		reasons = append(reasons, ReasonPhone)
	}

	webA, webB := similarity.NormalizeWebsite(candidate.Website), similarity.NormalizeWebsite(existing.Website)
	if webA != "" && webA == webB {
		confidence += pts.Website
		reasons = append(reasons, ReasonWebsite)
	}

	if similarity.AddressSimilarity(candidate.Location, existing.Location) > e.config.AddressThreshold {
		confidence += pts.Address
		reasons = append(reasons, ReasonAddress)
	}

	if candidate.GMBPlaceID != "" && candidate.GMBPlaceID == existing.GMBPlaceID {
		confidence += pts.GMBPlaceID
		reasons = append(reasons, ReasonGMBPlaceID)
	}

	if candidate.RegistrationNumber != "" && candidate.RegistrationNumber == existing.RegistrationNumber {
		confidence += pts.RegistrationNumber
		reasons = append(reasons, ReasonRegistrationNumber)
	}

	check := models.DuplicationCheck{
		IsDuplicate: confidence >= e.config.Threshold,
		MatchReason: strings.Join(reasons, ", "),
		Confidence:  confidence,
	}
	if check.IsDuplicate {
		check.ExistingProviderID = existing.ID
	}
	return check
}

// CheckAgainst returns the verdict for the first existing provider the
// candidate duplicates, in slice order. A record with the candidate's own id
// is skipped.
func (e *Engine) CheckAgainst(candidate models.ProviderProfile, existing []models.ProviderProfile) models.DuplicationCheck {
	for _, other := range existing {
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if check := e.Compare(candidate, other); check.IsDuplicate {
			return check
		}
	}
	return models.DuplicationCheck{IsDuplicate: false, Confidence: 0}
}

// CheckForDuplicates checks a candidate against every stored provider.
func (e *Engine) CheckForDuplicates(ctx context.Context, candidate models.ProviderProfile) (models.DuplicationCheck, error) {
	existing, err := e.store.ListProviders(ctx)
	if err != nil {
		return models.DuplicationCheck{}, fmt.Errorf("list providers: %w", err)
	}

	check := e.CheckAgainst(candidate, existing)
	if check.IsDuplicate {
		e.logger.Info("duplicate provider detected", map[string]interface{}{
			"candidateName":      candidate.Name,
			"existingProviderId": check.ExistingProviderID,
			"confidence":         check.Confidence,
			"reason":             check.MatchReason,
		})
	}
	return check, nil
}

// FindDuplicateGroups partitions providers into groups closed under the
// duplicate relation. A record joins a group when it duplicates any member
// or the group's merged view, and two groups that come to match combine. The
// earliest record in slice order is the primary and duplicates keep slice
// order, so merging every group leaves nothing for a second pass to find. A
// provider lands in at most one group.
func (e *Engine) FindDuplicateGroups(providers []models.ProviderProfile) []models.DuplicateGroup {
	clusters := make([]*cluster, 0, len(providers))
	seen := make(map[string]bool, len(providers))
	for i, p := range providers {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		clusters = append(clusters, &cluster{members: []int{i}, view: p})
	}

	queue := make([]int, len(clusters))
	for i := range clusters {
		queue[i] = i
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if clusters[i] == nil {
			continue
		}
		for j, other := range clusters {
			if j == i || other == nil {
				continue
			}
			keep, drop := min(i, j), max(i, j)
			if !e.clustersMatch(providers, clusters[keep], clusters[drop]) {
				continue
			}
			clusters[keep].absorb(clusters[drop], providers)
			clusters[drop] = nil
			// the survivor's view changed; compare it against everything again
			queue = append(queue, keep)
			break
		}
	}

	groups := []models.DuplicateGroup{}
	for _, c := range clusters {
		if c == nil || len(c.members) < 2 {
			continue
		}
		ids := make([]string, 0, len(c.members)-1)
		for _, m := range c.members[1:] {
			ids = append(ids, providers[m].ID)
		}
		groups = append(groups, models.DuplicateGroup{PrimaryID: providers[c.members[0]].ID, DuplicateIDs: ids})
	}
	return groups
}

// cluster is a group under construction. members are slice indexes in
// ascending order; view is what merging them would write back.
type cluster struct {
	members []int
	view    models.ProviderProfile
}

func (c *cluster) absorb(other *cluster, providers []models.ProviderProfile) {
	c.members = append(c.members, other.members...)
	slices.Sort(c.members)

	duplicates := make([]models.ProviderProfile, 0, len(c.members)-1)
	for _, m := range c.members[1:] {
		duplicates = append(duplicates, providers[m])
	}
	c.view = MergeProviderData(providers[c.members[0]], duplicates, time.Time{})
}

func (e *Engine) clustersMatch(providers []models.ProviderProfile, a, b *cluster) bool {
	if e.Compare(a.view, b.view).IsDuplicate {
		return true
	}
	if len(a.members) == 1 && len(b.members) == 1 {
		return false
	}
	for _, i := range a.members {
		for _, j := range b.members {
			if e.Compare(providers[i], providers[j]).IsDuplicate {
				return true
			}
		}
	}
	return false
}

// FindAndMergeAllDuplicates runs one full pass: group, then merge each group.
// A second pass over an unchanged store finds nothing. Callers must not run
// passes concurrently; see Coordinator.
func (e *Engine) FindAndMergeAllDuplicates(ctx context.Context) (models.PassReport, error) {
	report := models.PassReport{
		PassID: e.newID(),
		Errors: []string{},
		Groups: []models.DuplicateGroup{},
		Merges: []models.MergeResult{},
	}
	log := e.logger.WithFields(map[string]interface{}{"passId": report.PassID})

	providers, err := e.store.ListProviders(ctx)
	if err != nil {
		return report, fmt.Errorf("list providers: %w", err)
	}

	report.Groups = e.FindDuplicateGroups(providers)
	for _, g := range report.Groups {
		report.DuplicatesFound += len(g.DuplicateIDs)
	}

	log.Info("duplicate scan complete", map[string]interface{}{
		"providers":       len(providers),
		"groups":          len(report.Groups),
		"duplicatesFound": report.DuplicatesFound,
	})

	for _, g := range report.Groups {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("pass interrupted before group %s: %v", g.PrimaryID, err))
			break
		}

		result := e.MergeDuplicateProfiles(ctx, g.PrimaryID, g.DuplicateIDs)
		report.Merges = append(report.Merges, result)

		if !result.Success {
			report.Errors = append(report.Errors, fmt.Sprintf("failed to merge group %s: %s", g.PrimaryID, strings.Join(result.Errors, ", ")))
			continue
		}
		report.MergesCompleted++
		for _, msg := range result.Errors {
			report.Errors = append(report.Errors, fmt.Sprintf("group %s: %s", g.PrimaryID, msg))
		}
	}

	log.Info("deduplication pass complete", map[string]interface{}{
		"mergesCompleted": report.MergesCompleted,
		"groups":          len(report.Groups),
		"errors":          len(report.Errors),
	})
	return report, nil
}
