package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"fringe-analysis/internal/spectrum"
)

// SaveSpectrum writes the current spectrum as interchange CSV.
func (c *Coordinator) SaveSpectrum(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.spectrum == nil {
		return fmt.Errorf("no spectrum available")
	}
	return c.writeFile(path, "spectrum", func(w *bufio.Writer) error {
		return spectrum.Write(w, c.spectrum)
	})
}

// LoadSpectrum reads an interchange CSV into the coordinator.
func (c *Coordinator) LoadSpectrum(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open spectrum file: %w", err)
	}
	defer f.Close()

	s, err := spectrum.Read(bufio.NewReader(f))
	if err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "load_spectrum",
			"path":      path,
		})
		return err
	}

	c.mu.Lock()
	c.spectrum = s
	c.baseline = nil
	c.result = nil
	c.mu.Unlock()

	c.logger.Info("Pipeline", "spectrum loaded", map[string]interface{}{
		"points": len(s),
		"path":   path,
	})
	return nil
}

// SaveFit writes the last fit result as CSV.
func (c *Coordinator) SaveFit(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.result == nil {
		return fmt.Errorf("no fit available")
	}
	return c.writeFile(path, "fit result", func(w *bufio.Writer) error {
		return spectrum.WriteFitResult(w, c.result)
	})
}

func (c *Coordinator) writeFile(path, what string, write func(*bufio.Writer) error) error {
	start := time.Now()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "save",
			"path":      path,
		})
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output file: %w", err)
	}

	c.logger.Info("Pipeline", what+" saved", map[string]interface{}{
		"path":      path,
		"save_time": time.Since(start),
	})
	return nil
}
