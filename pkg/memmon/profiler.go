package memmon

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"
)

// Profiler writes pprof dumps for after-the-fact analysis of pressure
// incidents. The monitor fires a heap dump on the first emergency cleanup
// when a profile directory is configured.
type Profiler struct {
	outputDir string
}

// NewProfiler creates a profiler writing into outputDir
func NewProfiler(outputDir string) (*Profiler, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile directory: %w", err)
	}
	return &Profiler{outputDir: outputDir}, nil
}

// WriteHeapProfile writes a heap profile to disk
func (p *Profiler) WriteHeapProfile(filename string) error {
	if filename == "" {
		filename = fmt.Sprintf("heap_%d.prof", time.Now().Unix())
	}

	f, err := os.Create(filepath.Join(p.outputDir, filename))
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	defer f.Close()

	// Force GC to get an accurate profile
	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}

// WriteGoroutineProfile writes a goroutine profile to disk
func (p *Profiler) WriteGoroutineProfile(filename string) error {
	if filename == "" {
		filename = fmt.Sprintf("goroutine_%d.prof", time.Now().Unix())
	}

	f, err := os.Create(filepath.Join(p.outputDir, filename))
	if err != nil {
		return fmt.Errorf("create goroutine profile: %w", err)
	}
	defer f.Close()

	if err := pprof.Lookup("goroutine").WriteTo(f, 0); err != nil {
		return fmt.Errorf("write goroutine profile: %w", err)
	}
	return nil
}
