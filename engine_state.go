package phoneverify

import (
	"context"
	"fmt"
)

// State derives the lifecycle state of phone from the records present. The
// three reads are pipelined but not atomic.
func (e *Engine) State(ctx context.Context, phone string) (PhoneState, error) {
	if e == nil || e.store == nil {
		return StateUnregistered, ErrEngineNotReady
	}

	snap, err := e.store.Snapshot(ctx, phone)
	if err != nil {
		e.metricInc(MetricStoreFailure)
		return StateUnregistered, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	switch {
	case snap.HasPassword:
		return StatePasswordSet, nil
	case !snap.Registered || snap.Registration != phone:
		return StateUnregistered, nil
	case snap.HasChallenge:
		return StatePending, nil
	default:
		return StateRegistered, nil
	}
}
