// Package progress provides regular progress reporting for long-running loops.
//
// Instead of sprinkling "if i%N == 0" or "if time.Since(last) > T" checks
// through a loop, create a Logger with the criteria and an Action, and call
// Trigger once per unit of work:
//
//	p, err := progress.New(func(s *progress.State) error {
//	    rate, _ := s.LongRate()
//	    log.Info("processed rows", "count", s.Count(), "rate", rate)
//	    return nil
//	}, progress.WithStep(100000), progress.WithMinutes(30))
//
// Every Trigger increments the count. If the count is a multiple of the step,
// or 30 minutes have passed since the last time-based firing, the Action runs
// with a State carrying the count and derived statistics:
//
//   - CountDelta, TimeTotal, TimeDelta
//   - ShortRate / ShortETA, measured since the previous firing; reacts quickly
//     to changes in throughput
//   - LongRate / LongETA, measured since timing started; smooths out a slow
//     start
//
// ETAs need WithMax. Rates and ETAs are undefined (ok == false) when no time
// has passed.
//
// # Reporters
//
// Any Action will do, but ReportTo turns States into Events and hands them
// to Reporter implementations in the reporter subpackage (text, JSON,
// progress bar, logr, Prometheus, OpenTelemetry). To keep slow reporters off
// the work loop, report to a collector.New() collector subscribed to a
// Progress hub.
//
// # Thread Safety
//
// Logger is meant for one goroutine. Reporters and Progress are safe for
// concurrent use.
package progress
