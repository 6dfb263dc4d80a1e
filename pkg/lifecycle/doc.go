// Package lifecycle provides the service state machine and in-flight worker
// accounting.
//
// The command service moves through Stopped, Starting, Running and Stopping.
// A failed registration or a shutdown that exceeds its grace period lands in
// Crashed, from which the service may be started again.
//
//	manager := lifecycle.NewManager(logger, nil)
//	if err := manager.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
//	    return err
//	}
//
//	manager.AddWorker()
//	go func() {
//	    defer manager.WorkerDone()
//	    // ... fetch and report ...
//	}()
//
//	if err := manager.WaitWithTimeout(5 * time.Second); err != nil {
//	    // workers still running after the grace period
//	}
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Stopping, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting
package lifecycle
