package converter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// BatchOptions tunes how ConvertBatch runs. The zero value converts items one
// at a time without progress reporting.
type BatchOptions struct {
	// Workers > 1 converts items concurrently; results keep input order.
	Workers int
	Updates chan<- ProgressUpdate
	Logger  *slog.Logger
}

type job struct {
	index int
	path  string
}

type outcome struct {
	index  int
	result Result
}

// ConvertBatch converts every path to target and returns one Result per path,
// in input order. A failing item never stops the others; an unknown target or
// invalid settings fail each item individually.
func ConvertBatch(ctx context.Context, paths []string, target string, settings Settings, opts BatchOptions) []Result {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results
	}
	send(opts.Updates, ProgressUpdate{TotalDelta: len(paths)})

	format, err := ParseFormat(target)
	if err == nil {
		if vErr := settings.Validate(); vErr != nil {
			err = newError(KindInvalidSettings, "", vErr)
		}
	}
	if err != nil {
		log.Warn("batch rejected", "target", target, "items", len(paths), "error", err)
		for i, p := range paths {
			results[i] = failed(p, err)
			send(opts.Updates, ProgressUpdate{FailedDelta: 1})
		}
		return results
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan job)
	outcomes := make(chan outcome)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, jobs, outcomes, format, settings, log)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for out := range outcomes {
			results[out.index] = out.result
			report(opts.Updates, out.result)
		}
	}()

	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- job{index: i, path: p}:
			case <-ctx.Done():
				for j := i; j < len(paths); j++ {
					outcomes <- outcome{index: j, result: failed(paths[j], newError(KindCanceled, "", ctx.Err()))}
				}
				return
			}
		}
	}()

	wg.Wait()
	<-producerDone
	close(outcomes)
	<-collectorDone

	return results
}

func worker(ctx context.Context, jobs <-chan job, outcomes chan<- outcome, format Format, settings Settings, log *slog.Logger) {
	for j := range jobs {
		if err := ctx.Err(); err != nil {
			outcomes <- outcome{index: j.index, result: failed(j.path, newError(KindCanceled, "", err))}
			continue
		}
		outcomes <- outcome{index: j.index, result: convertItem(j.path, format, settings, log)}
	}
}

// convertItem turns any failure, including a codec panic, into a failed Result.
func convertItem(source string, format Format, settings Settings, log *slog.Logger) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			log.Error("conversion panicked", "source", source, "panic", r)
			res = failed(source, err)
		}
	}()

	log.Debug("converting", "source", source, "format", format)
	path, size, err := convertFile(source, format, settings)
	if err != nil {
		log.Warn("conversion failed", "source", source, "error", err)
		return failed(source, err)
	}
	log.Info("converted", "source", source, "output", path, "bytes", size)
	return Result{SourcePath: source, OutputPath: path, Success: true, OutputSize: size}
}

func failed(source string, err error) Result {
	return Result{SourcePath: source, Success: false, Error: err.Error()}
}

func report(updates chan<- ProgressUpdate, res Result) {
	if res.Success {
		send(updates, ProgressUpdate{ConvertedDelta: 1, BytesDelta: res.OutputSize})
		return
	}
	send(updates, ProgressUpdate{FailedDelta: 1})
}

func send(updates chan<- ProgressUpdate, u ProgressUpdate) {
	if updates != nil {
		updates <- u
	}
}
