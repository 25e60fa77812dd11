package queue

import (
	"context"

	"github.com/xmidt-org/cqsync/event"
)

// Task is the function type executed by task commands.  A task is used,
// rather than a Command directly, to allow arbitrary application work to
// be gated on events without implementing the full Command interface.
type Task func(context.Context) error

type taskCommand struct {
	event    *event.Event
	waitList []*event.Event
	task     Task
}

func (tc *taskCommand) Event() *event.Event {
	return tc.event
}

func (tc *taskCommand) WaitList() []*event.Event {
	return tc.waitList
}

func (tc *taskCommand) Execute(ctx context.Context) error {
	if tc.task == nil {
		return nil
	}

	return tc.task(ctx)
}

// SubmitTask wraps fn in a command gated on waitList and submits it,
// returning the command's completion event.  A nil fn produces a command
// that completes as soon as it is eligible, useful as a pure
// synchronization point.
func (q *Queue) SubmitTask(fn Task, waitList ...*event.Event) (*event.Event, error) {
	tc := &taskCommand{
		event:    event.New(),
		waitList: waitList,
		task:     fn,
	}

	if err := q.Submit(tc); err != nil {
		return nil, err
	}

	return tc.event, nil
}
