package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"shadowcast/internal/batch"
	"shadowcast/internal/config"
	"shadowcast/internal/imageio"
	"shadowcast/internal/shadow"
	"shadowcast/internal/tiles"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json or .yaml config file")
	input := flag.String("in", "", "Source image, or a directory of images")
	output := flag.String("out", "", "Output image, or a directory in batch mode")
	opacity := flag.Int("opacity", shadow.DefaultOpacity, "Shadow opacity 0-255")
	angle := flag.Int("angle", shadow.DefaultAngle, "Left to right shadow angle in degrees, 1-179")
	depth := flag.Int("depth", shadow.DefaultDepthAngle, "Front to back light angle in degrees, 1-90")
	diffusion := flag.Int("diffusion", 0, "How fast the shadow blurs with distance, 0-100")
	keep := flag.Bool("keep", false, "Keep the original image over the shadow")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	band := flag.Int("band", 0, "Rows per render rectangle (default: 32)")
	quality := flag.Int("quality", 0, "JPEG quality 1-100 (default: 90)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	shadow.SetLogger(log)
	tiles.SetLogger(log)
	batch.SetLogger(log)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Only flags given on the command line override the config file.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	flags := config.Flags{
		Input:       *input,
		Output:      *output,
		Workers:     *workers,
		BandHeight:  *band,
		JPEGQuality: *quality,
	}
	if set["opacity"] {
		flags.Opacity = opacity
	}
	if set["angle"] {
		flags.Angle = *angle
	}
	if set["depth"] {
		flags.DepthAngle = *depth
	}
	if set["diffusion"] {
		flags.Diffusion = diffusion
	}
	if set["keep"] {
		flags.KeepOriginal = keep
	}
	cfg.Resolve(flags)

	if cfg.Input == "" || cfg.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: both -in and -out are required. Use flags or config file.")
		flag.Usage()
		os.Exit(2)
	}

	sc := cfg.Shadow()
	if err := sc.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	info, err := os.Stat(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Shadow: opacity %d, angle %d, depth %d, diffusion %d, keep original %v\n",
		sc.Opacity, sc.Angle, sc.DepthAngle, sc.DiffusionFactor, sc.KeepOriginalImage)

	// Interrupt stops handing out rectangles and files; work in flight finishes.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := 0
	if info.IsDir() {
		code = runBatch(ctx, cfg)
	} else if err := runSingle(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code = 1
	}
	stop()
	os.Exit(code)
}

func runSingle(ctx context.Context, cfg config.Config) error {
	img, err := imageio.Load(cfg.Input)
	if err != nil {
		return err
	}
	src := shadow.FromNRGBA(img)
	dst := shadow.NewSurface(src.Width, src.Height)

	start := time.Now()
	opts := cfg.Tiles()
	if err := tiles.Render(ctx, dst, src, cfg.Shadow(), opts); err != nil {
		return err
	}
	fmt.Printf("Rendered %dx%d in %.2fs (%d workers)\n", src.Width, src.Height, time.Since(start).Seconds(), opts.Workers)

	if err := imageio.Save(cfg.Output, dst.NRGBA(), imageio.SaveOptions{JPEGQuality: cfg.JPEGQuality}); err != nil {
		return err
	}
	fmt.Printf("Output: %s\n", cfg.Output)
	return nil
}

func runBatch(ctx context.Context, cfg config.Config) int {
	jobs, err := batch.Jobs(cfg.Input, cfg.Output, cfg.OutputExt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(jobs) == 0 {
		fmt.Println("No images to render.")
		return 0
	}

	fmt.Printf("Images: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.Output)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	batchCfg := batch.Config{
		Shadow:      cfg.Shadow(),
		Workers:     cfg.Workers,
		BandHeight:  cfg.BandHeight,
		JPEGQuality: cfg.JPEGQuality,
	}
	results := batch.Run(ctx, batchCfg, jobs)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	var failed []batch.Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-len(failed), len(results))

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, r := range failed[:min(len(failed), 20)] {
			fmt.Printf("  %s: %s\n", filepath.Base(r.Input), r.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.Output, "manifest.json")
	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if err := batch.WriteManifest(manifestPath, batchCfg, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if errors.Is(ctx.Err(), context.Canceled) || len(failed) > 0 {
		return 1
	}
	return 0
}
