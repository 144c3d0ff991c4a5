package camunda

import (
	"encoding/json"
	"fmt"
	"strings"

	"provider-matching-workers/internal/common/errors"
	"provider-matching-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
)

// DecodeVariables validates the job variables against schema and decodes
// them into out. Malformed or invalid variables are INVALID_JOB_INPUT errors.
func DecodeVariables(job entities.Job, schema map[string]interface{}, out interface{}) error {
	raw := job.Variables
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}

	var variables map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &variables); err != nil {
		return errors.NewInvalidJobInputError(fmt.Sprintf("failed to parse job variables: %v", err))
	}

	result, err := validation.ValidateInput(variables, schema)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if !result.Valid {
		return errors.NewInvalidJobInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return errors.NewInvalidJobInputError(fmt.Sprintf("failed to decode job variables: %v", err))
	}
	return nil
}
