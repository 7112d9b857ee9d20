// Package resilience guards process launches against transient operating
// system pressure.
//
//   - Retry: re-attempts an operation with exponential backoff while the
//     error is classified as transient (fork returning EAGAIN, ETXTBSY on a
//     freshly written binary).
//   - Bulkhead: caps how many launches run at once so a burst of spawn
//     requests cannot exhaust the process table.
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "launch", MaxConcurrent: 8})
//	pid, err := resilience.ExecuteWithResult(bh, ctx, func() (int, error) {
//	    return resilience.Retry(ctx, cfg, launch)
//	})
package resilience
