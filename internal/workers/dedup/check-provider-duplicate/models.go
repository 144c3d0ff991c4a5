package checkproviderduplicate

import "provider-matching-workers/internal/models"

type Input struct {
	Candidate models.ProviderProfile `json:"candidate"`
}

// Output is the duplicate verdict as process variables.
type Output = models.DuplicationCheck
