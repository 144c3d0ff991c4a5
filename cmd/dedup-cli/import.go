package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"provider-matching-workers/internal/dedup"
	"provider-matching-workers/internal/models"
)

type providerWriter interface {
	UpsertProvider(ctx context.Context, p *models.ProviderProfile) error
}

type skippedProvider struct {
	ID     string                   `json:"id"`
	Name   string                   `json:"name"`
	Reason string                   `json:"reason"`
	Check  *models.DuplicationCheck `json:"check,omitempty"`
}

const (
	skipDuplicate = "duplicate"
	skipIDTaken   = "id already exists"
)

type importSummary struct {
	Imported []string          `json:"imported"`
	Skipped  []skippedProvider `json:"skipped"`
	Errors   []string          `json:"errors"`

	written []models.ProviderProfile
}

// importProviders writes each provider unless its id is taken or it
// duplicates a stored one or one imported earlier in the same batch. force
// skips both checks, so a taken id overwrites the stored record. Providers
// without an id get a generated one.
func importProviders(ctx context.Context, providers []models.ProviderProfile, existing []models.ProviderProfile, engine *dedup.Engine, w providerWriter, force bool, now time.Time) importSummary {
	summary := importSummary{Imported: []string{}, Skipped: []skippedProvider{}, Errors: []string{}}
	known := append([]models.ProviderProfile(nil), existing...)
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p.ID] = true
	}

	for _, p := range providers {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if !force {
			if taken[p.ID] {
				summary.Skipped = append(summary.Skipped, skippedProvider{ID: p.ID, Name: p.Name, Reason: skipIDTaken})
				continue
			}
			if check := engine.CheckAgainst(p, known); check.IsDuplicate {
				summary.Skipped = append(summary.Skipped, skippedProvider{ID: p.ID, Name: p.Name, Reason: skipDuplicate, Check: &check})
				continue
			}
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now

		if err := w.UpsertProvider(ctx, &p); err != nil {
			summary.Errors = append(summary.Errors, err.Error())
			continue
		}
		known = append(known, p)
		taken[p.ID] = true
		summary.Imported = append(summary.Imported, p.ID)
		summary.written = append(summary.written, p)
	}
	return summary
}

func newImportCmd() *cobra.Command {
	var file string
	var force bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import providers, skipping taken ids and duplicates of stored providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			providers, err := readProviders(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			existing, err := a.stores.Providers.ListProviders(ctx)
			if err != nil {
				return fmt.Errorf("list providers: %w", err)
			}

			summary := importProviders(ctx, providers, existing, a.engines.Dedup, a.stores.Providers, force, time.Now().UTC())

			if len(summary.written) > 0 {
				if err := a.stores.Cache.Invalidate(ctx); err != nil {
					a.log.Warn("candidate cache invalidation failed", map[string]interface{}{"error": err})
				}
				if a.stores.Index != nil {
					for _, p := range summary.written {
						if err := a.stores.Index.IndexProvider(ctx, p); err != nil {
							summary.Errors = append(summary.Errors, fmt.Sprintf("index provider %s: %v", p.ID, err))
						}
					}
				}
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON provider or array of providers (- for stdin)")
	cmd.Flags().BoolVar(&force, "force", false, "import duplicates too and overwrite providers with the same id")
	return cmd
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the provider search index from the provider store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.stores.Index == nil {
				return fmt.Errorf("elasticsearch is not configured")
			}

			ctx := cmd.Context()
			providers, err := a.stores.Providers.ListProviders(ctx)
			if err != nil {
				return fmt.Errorf("list providers: %w", err)
			}

			failed := 0
			for _, p := range providers {
				if err := a.stores.Index.IndexProvider(ctx, p); err != nil {
					failed++
					a.log.Error("index provider failed", map[string]interface{}{"providerId": p.ID, "error": err})
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d providers\n", len(providers)-failed, len(providers))
			if failed > 0 {
				return fmt.Errorf("%d providers failed to index", failed)
			}
			return nil
		},
	}
}
