package conveyor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/get-conveyor/go-conveyor/logger"
	"github.com/get-conveyor/go-conveyor/transport"
)

// ScenarioInit is the entrypoint of the command execution scenario API.
//
// A scenario runs a single command through an Executor wired with
// scripted collaborators, then asserts on the transaction's outcome.
// Set up hook subscriptions with Given(), or test a clean-slate
// execution by using When() directly.
type ScenarioInit struct{}

// Scenario is a scenario type to test the outcome of commands run
// through the execution lifecycle: the result they produce, or the
// error they surface to the caller.
func Scenario() ScenarioInit {
	return ScenarioInit{}
}

// Given sets the scenario preconditions as setup functions applied to
// the command before execution, typically hook subscriptions.
func (sc ScenarioInit) Given(setup ...func(*Command)) ScenarioGiven {
	return ScenarioGiven{given: setup}
}

// When provides the command payload to execute.
func (sc ScenarioInit) When(payload Payload, opts ...CommandOption) ScenarioWhen {
	return ScenarioWhen{
		ScenarioGiven: ScenarioGiven{given: nil},
		payload:       payload,
		opts:          opts,
	}
}

// ScenarioGiven is the state of the scenario once its preconditions
// have been provided.
type ScenarioGiven struct {
	given []func(*Command)
}

// When provides the command payload to execute.
func (sc ScenarioGiven) When(payload Payload, opts ...CommandOption) ScenarioWhen {
	return ScenarioWhen{
		ScenarioGiven: sc,
		payload:       payload,
		opts:          opts,
	}
}

// ScenarioWhen is the state of the scenario once the command to
// execute has been provided.
type ScenarioWhen struct {
	ScenarioGiven

	payload Payload
	opts    []CommandOption
}

// Then sets a positive expectation on the scenario outcome: the
// execution succeeds and the transaction carries the given result.
func (sc ScenarioWhen) Then(result any) ScenarioThen {
	return ScenarioThen{
		ScenarioWhen: sc,
		then:         result,
		thenError:    nil,
		wantError:    false,
	}
}

// ThenError sets a negative expectation on the scenario outcome, to
// surface an error value matching the one provided in input.
//
// Error assertion happens using errors.Is(), so the error raised by
// the execution is unwrapped down to its cause to match the
// expectation.
func (sc ScenarioWhen) ThenError(err error) ScenarioThen {
	return ScenarioThen{
		ScenarioWhen: sc,
		then:         nil,
		thenError:    err,
		wantError:    true,
	}
}

// ThenFails sets a negative expectation on the scenario outcome, with
// no particular assertion on the error returned.
//
// This is useful when the exact error is not important for the command
// you are testing.
func (sc ScenarioWhen) ThenFails() ScenarioThen {
	return ScenarioThen{
		ScenarioWhen: sc,
		then:         nil,
		thenError:    nil,
		wantError:    true,
	}
}

// ScenarioThen is the state of the scenario once the preconditions
// and expectations have been fully specified.
type ScenarioThen struct {
	ScenarioWhen

	then      any
	thenError error
	wantError bool
}

// AssertOn performs the specified expectations of the scenario,
// executing the command on an Executor built from the provided client
// and transport.
//
// Future-flagged commands are waited on, so the assertions always run
// against a settled transaction.
func (sc ScenarioThen) AssertOn(t *testing.T, client Client, tr transport.Transport) {
	t.Helper()

	ctx := context.Background()

	cmd := NewCommand(sc.payload, sc.opts...)
	for _, setup := range sc.given {
		setup(cmd)
	}

	executor := Executor{
		Transport: tr,
		Logger:    logger.NewTest(t),
	}

	tx, err := executor.Execute(ctx, client, cmd)
	if err == nil && cmd.Future {
		err = tx.Wait(ctx)
	}

	if !sc.wantError {
		assert.NoError(t, err)

		if assert.NotNil(t, tx) {
			assert.Equal(t, sc.then, tx.Result)
		}

		return
	}

	if !assert.Error(t, err) {
		return
	}

	if sc.thenError != nil {
		assert.ErrorIs(t, err, sc.thenError)
	}
}
