/*
Package stresstest drives a fixed number of HTTP GET requests against one
endpoint in waves of bounded concurrency, and summarizes their latencies.

# Overview

The package consists of three parts:

1. Config (config.go): run configuration and validation
2. Executor (executor.go): wave dispatch over a shared HTTP client
3. Stats (stats.go): summary statistics over the successful latencies

# Executor Design

A run of N requests with concurrency C is split into consecutive waves of
C indices (the last one may be smaller). Every attempt of a wave is
started at once and the executor waits for the whole wave before starting
the next, so concurrency drops between waves while the slowest request of
a wave is outstanding. At most C requests are ever in flight.

Each attempt returns an Attempt value. Attempt goroutines do not share
mutable state: outcomes are sent on a per-wave channel and folded into the
Result by the coordinator after the wave, in completion order.

Failures never stop a run. Transport errors, timeouts and cancellations
all fold into one failure kind carried on Attempt.Err. Status codes are
not inspected unless Config.FailOnHTTPError is set.

# Statistics

Summarize computes mean, min, max and the 50th, 95th and 99th percentiles
(linear interpolation over the sorted samples, rank = p/100*(n-1)), plus
the error rate over the dispatched attempts. A run without any successful
sample yields ErrNoSamples and a Summary that only carries counts.

# Example Usage

	exec, err := NewExecutor(&ExecutionConfig{
		Target: &types.Target{URL: url, Token: token},
		Config: &Config{ConcurrentRequests: 10, TotalRequests: 100},
	}, WithObserver(NewProgressPrinter(os.Stdout)))
	if err != nil {
		return err
	}

	result, err := exec.Run(ctx)
	if err != nil {
		return err
	}

	summary, err := result.Summarize()
	if errors.Is(err, ErrNoSamples) {
		fmt.Println("no successful samples")
	}
	fmt.Printf("P95 latency: %.2fms\n", summary.P95)

# Cancellation

Cancelling the context passed to Run fails the in-flight attempts and
stops dispatching. Result.Interrupted is set and Result.Dispatched tells
how many attempts were started.
*/
package stresstest
