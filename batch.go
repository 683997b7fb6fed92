package image2pce

import (
	"context"
	stdimage "image"
	"runtime"
	"sync"
)

// BatchSource is one image to convert as part of a batch, keyed by its
// origin path for progress reporting and result ordering.
type BatchSource struct {
	Path  string
	Image stdimage.Image
}

// BatchItem is the outcome of converting one BatchSource.
type BatchItem struct {
	Path   string
	Result *Result
	Err    error
}

// BatchProgressFunc receives progress events tagged with the source path
// they belong to.
type BatchProgressFunc func(path string, p Progress)

// ConvertBatch runs a conversion of cfg against every source, fanning the
// work out across a bounded worker pool and fanning results back in the
// same order as sources, adapted from the teacher's directory-walking
// fan-out/fan-in pattern. Each source is converted on its own Converter
// instance, matching spec.md §5's "concurrent conversions operate on
// independent instances." One source's failure does not prevent the others
// from completing; check each BatchItem.Err individually.
//
// workers <= 0 defaults to GOMAXPROCS.
func ConvertBatch(ctx context.Context, sources []BatchSource, cfg Config, workers int, progress BatchProgressFunc) []BatchItem {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(sources) {
		workers = len(sources)
	}

	results := make([]BatchItem, len(sources))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				src := sources[i]
				conv := New()
				res, err := conv.Convert(ctx, src.Image, cfg, func(p Progress) {
					if progress != nil {
						progress(src.Path, p)
					}
				})
				results[i] = BatchItem{Path: src.Path, Result: res, Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range sources {
			select {
			case jobs <- i:
			case <-ctx.Done():
				for ; i < len(sources); i++ {
					results[i] = BatchItem{Path: sources[i].Path, Err: wrapError(Cancelled, ctx.Err(), "batch conversion cancelled")}
				}
				return
			}
		}
	}()

	wg.Wait()
	return results
}
