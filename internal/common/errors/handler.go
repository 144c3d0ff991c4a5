// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler fails or throws jobs according to the error code's retry policy.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError retries the job while the code allows it and the job has
// retries left, and throws a BPMN error otherwise.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if bpmnErr.Retries > 0 && job.Retries > 1 {
		h.failJobWithRetries(ctx, client, job, bpmnErr)
		return
	}
	h.throwBPMNError(ctx, client, job, bpmnErr)
}

// Normalize returns the StandardError in err's chain, classifying deadline
// errors as timeouts and anything else as internal.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("job", err)
	}
	return NewInternalError(err)
}

// RemainingRetries caps the policy's retry count by what the job has left,
// consuming one attempt.
func RemainingRetries(job entities.Job, policy int) int32 {
	remaining := job.Retries - 1
	if int32(policy) < remaining {
		remaining = int32(policy)
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(RemainingRetries(job, bpmnErr.Retries)).
		ErrorMessage("[" + bpmnErr.Code + "] " + bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		h.logger.Error("failed to attach error variables", map[string]interface{}{"jobKey": job.Key, "error": err})
		if _, err := cmd.Send(ctx); err != nil {
			h.logger.Error("failed to send fail job command", map[string]interface{}{"jobKey": job.Key, "error": err})
		}
		return
	}
	if _, err := withVars.Send(ctx); err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		h.logger.Error("failed to encode error variables", map[string]interface{}{"jobKey": job.Key, "error": err})
		if _, err := cmd.Send(ctx); err != nil {
			h.logger.Error("failed to throw BPMN error", map[string]interface{}{"jobKey": job.Key, "error": err})
		}
		return
	}
	withVars, err := cmd.VariablesFromString(string(varsJSON))
	if err != nil {
		h.logger.Error("failed to attach error variables", map[string]interface{}{"jobKey": job.Key, "error": err})
		if _, err := cmd.Send(ctx); err != nil {
			h.logger.Error("failed to throw BPMN error", map[string]interface{}{"jobKey": job.Key, "error": err})
		}
		return
	}
	if _, err := withVars.Send(ctx); err != nil {
		h.logger.Error("failed to throw BPMN error", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
