package task

import (
	"context"
	"encoding/json"

	"harness/internal/harnesserr"
	"harness/internal/registry"
	"harness/pkg/logging"
)

// Runner dispatches named task invocations to a TaskType built from the
// type Registry, persisting progress in the service registry's task
// key-space so a restart can observe whether a task already ran.
type Runner struct {
	reg   *registry.Registry
	types *Registry
}

// NewRunner returns a Runner that persists task state in reg and resolves
// task_type discriminants through types.
func NewRunner(reg *registry.Registry, types *Registry) *Runner {
	return &Runner{reg: reg, types: types}
}

// Run looks up taskType, checks its idempotency predicate against any
// prior record for name, and — unless already completed — executes it,
// forwarding emitted events on the returned channel and recording the
// final state (Completed or Failed) once the task type's own event stream
// closes.
func (r *Runner) Run(ctx context.Context, name, taskType string, input json.RawMessage) (<-chan json.RawMessage, error) {
	t, err := r.types.New(taskType)
	if err != nil {
		return nil, harnesserr.NewConfigError(err.Error())
	}

	done, err := t.IsCompleted(ctx, input)
	if err != nil {
		return nil, err
	}
	if done {
		if err := r.record(ctx, name, taskType, input, registry.TaskCompleted, ""); err != nil {
			return nil, err
		}
		out := make(chan json.RawMessage)
		close(out)
		return out, nil
	}

	if err := r.record(ctx, name, taskType, input, registry.TaskRunning, ""); err != nil {
		return nil, err
	}

	events, err := t.Execute(ctx, input)
	if err != nil {
		_ = r.record(ctx, name, taskType, input, registry.TaskFailed, err.Error())
		return nil, err
	}

	out := make(chan json.RawMessage)
	go r.drain(name, taskType, input, events, out)
	return out, nil
}

func (r *Runner) drain(name, taskType string, input json.RawMessage, events <-chan json.RawMessage, out chan<- json.RawMessage) {
	defer close(out)
	for evt := range events {
		out <- evt
	}
	if err := r.record(context.Background(), name, taskType, input, registry.TaskCompleted, ""); err != nil {
		logging.WithComponent("task").Warn().Str("task", name).Err(err).Msg("failed to persist task completion")
	}
}

func (r *Runner) record(ctx context.Context, name, taskType string, input json.RawMessage, state registry.TaskState, errMsg string) error {
	return r.reg.PutTask(ctx, registry.TaskRecord{
		Name:     name,
		TaskType: taskType,
		State:    state,
		Input:    input,
		Error:    errMsg,
	})
}

// Status returns the persisted record for name.
func (r *Runner) Status(ctx context.Context, name string) (registry.TaskRecord, error) {
	return r.reg.GetTask(ctx, name)
}
