package warmup

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/baditaflorin/go_asm_preprocess/internal/ports"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Number of source lines in the generated sample program
	SampleLines int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency: runtime.NumCPU(),
		Iterations:  1000,
		SampleLines: 200,
		Duration:    5 * time.Second,
		ForceGC:     true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	normalizers []ports.Normalizer
	strippers   []ports.Stripper
	converters  []ports.RadixConverter
	config      WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// RegisterStripper adds a stripper to be warmed up
func (wm *Manager) RegisterStripper(s ports.Stripper) {
	wm.strippers = append(wm.strippers, s)
}

// RegisterConverter adds a radix converter to be warmed up
func (wm *Manager) RegisterConverter(c ports.RadixConverter) {
	wm.converters = append(wm.converters, c)
}

// WarmUp runs the warmup process for all registered components
func (wm *Manager) WarmUp(ctx context.Context) {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.normalizers)+len(wm.strippers)+len(wm.converters),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	source := GenerateSource(wm.config.SampleLines)
	lines := strings.Split(source, "\n")

	wm.run(warmupCtx, "normalizers", len(wm.normalizers), wm.config.Iterations, func(j int) {
		line := lines[j%len(lines)]
		for _, n := range wm.normalizers {
			_ = n.Normalize(line)
		}
	})

	wm.run(warmupCtx, "converters", len(wm.converters), wm.config.Iterations, func(j int) {
		literal := fmt.Sprintf("%X", j*7919)
		for _, c := range wm.converters {
			_, _ = c.Convert(literal, uint8(2+j%35), 16)
		}
	})

	// Fewer iterations for whole-stream stripping
	wm.run(warmupCtx, "strippers", len(wm.strippers), wm.config.Iterations/10, func(j int) {
		for _, s := range wm.strippers {
			_, _ = s.Strip(warmupCtx, strings.NewReader(source))
		}
	})

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

// run executes fn iterations times on each of Concurrency goroutines, stopping
// early when ctx is done.
func (wm *Manager) run(ctx context.Context, kind string, count, iterations int, fn func(j int)) {
	if count == 0 {
		return
	}

	wm.logger.Debug("Warming up "+kind, "count", count)

	var wg sync.WaitGroup
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				fn(j)
			}
		}()
	}

	wg.Wait()
}

// GenerateSource creates an assembler program of the given number of lines
// mixing labels, instructions, literals in several notations and comments.
func GenerateSource(lines int) string {
	samples := []string{
		"; generated warmup program",
		"start:  ldi r0, 0x30        ; load",
		"        mov r1, r0",
		"        add r1, r2          // accumulate",
		"loop:   sub r3, r4",
		"        jnz loop",
		"        .word $ff",
		"        .string \"hello; world\"",
		"",
		"        ldi r5, 0b1010",
		"        call sub_1          ; 7c10 0018",
		"sub_1:  shl r1, r2",
		"        ret",
	}

	var sb strings.Builder
	for i := 0; i < lines; i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(samples[i%len(samples)])
	}
	return sb.String()
}
