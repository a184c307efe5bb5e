package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"shadowcast/internal/imageio"
	"shadowcast/internal/shadow"
	"shadowcast/internal/tiles"
)

// Config holds the shared settings for a batch run.
type Config struct {
	Shadow      shadow.Config
	Workers     int // files rendered at once
	BandHeight  int
	JPEGQuality int
}

// Job is one input image and where its shadow goes.
type Job struct {
	Input  string
	Output string
}

// Result holds the outcome of processing one job.
type Result struct {
	Input   string
	Output  string
	Width   int
	Height  int
	Success bool
	Error   string
}

// Jobs lists every supported image directly inside inputDir, mapping each
// to outputDir/<stem><ext>. The result is sorted by input path.
func Jobs(inputDir, outputDir, ext string) ([]Job, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", inputDir, err)
	}
	if !imageio.Writable("x" + ext) {
		return nil, fmt.Errorf("batch: unsupported output extension %q", ext)
	}

	var jobs []Job
	for _, e := range entries {
		if e.IsDir() || !imageio.Supported(e.Name()) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		jobs = append(jobs, Job{
			Input:  filepath.Join(inputDir, e.Name()),
			Output: filepath.Join(outputDir, stem+ext),
		})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Input < jobs[j].Input })
	return jobs, nil
}

// Run processes all jobs using a worker pool. The configuration is
// validated once up front; an invalid one fails every job without
// touching any file.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)

	if err := cfg.Shadow.Validate(); err != nil {
		for i, j := range jobs {
			results[i] = Result{Input: j.Input, Output: j.Output, Error: err.Error()}
		}
		return results
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	var processed atomic.Int64
	start := time.Now()
	log := logger()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Info("batch: progress", "done", p, "total", total, "rate", fmt.Sprintf("%.1f images/sec", float64(p)/elapsed))
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(ctx, cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(ctx context.Context, cfg Config, job Job) Result {
	res := Result{Input: job.Input, Output: job.Output}
	fail := func(err error) Result {
		res.Error = err.Error()
		logger().Warn("batch: skipped", "input", job.Input, "err", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	img, err := imageio.Load(job.Input)
	if err != nil {
		return fail(err)
	}
	src := shadow.FromNRGBA(img)
	dst := shadow.NewSurface(src.Width, src.Height)
	res.Width, res.Height = src.Width, src.Height

	// Files are already spread over the pool, so each one renders serially.
	opts := tiles.Options{Workers: 1, BandHeight: cfg.BandHeight}
	if err := tiles.Render(ctx, dst, src, cfg.Shadow, opts); err != nil {
		return fail(err)
	}

	if err := imageio.Save(job.Output, dst.NRGBA(), imageio.SaveOptions{JPEGQuality: cfg.JPEGQuality}); err != nil {
		return fail(err)
	}

	res.Success = true
	return res
}
