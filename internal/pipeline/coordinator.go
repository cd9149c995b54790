// Package pipeline chains the analysis stages: image loading, center
// refinement, radial extraction, baseline removal, and the Gaussian
// fit. The coordinator holds the intermediate state so a CLI command
// can run any prefix of the chain.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"fringe-analysis/internal/config"
	"fringe-analysis/internal/fitting"
	"fringe-analysis/internal/logger"
	"fringe-analysis/internal/profile"
	"fringe-analysis/internal/render"
	"fringe-analysis/internal/spectrum"
)

type Coordinator struct {
	mu         sync.RWMutex
	instrument config.Instrument
	logger     logger.Logger

	image      *profile.Image
	background *profile.Image

	center   profile.Center
	profile  profile.RadialProfile
	spectrum spectrum.Spectrum
	baseline *fitting.BaselineModel
	result   *spectrum.FitResult
}

func NewCoordinator(instrument config.Instrument, log logger.Logger) *Coordinator {
	return &Coordinator{
		instrument: instrument,
		logger:     log,
	}
}

// LoadImage decodes the fringe image at path and replaces all derived
// state. Saturated pixels are reported but not rejected.
func (c *Coordinator) LoadImage(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	img, format, err := loadImageFile(path)
	if err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "load_image",
			"path":      path,
		})
		return err
	}

	c.image = profile.FromImage(img)
	c.background = nil
	c.center = c.image.Centroid()
	c.profile = nil
	c.spectrum = nil
	c.baseline = nil
	c.result = nil

	// Saturation is configured as a three-channel sum; intensities are
	// the per-channel mean.
	if n := c.image.SaturatedPixels(c.instrument.Saturation/3 - 1); n > 0 {
		c.logger.Warning("Pipeline", "saturated pixels detected", map[string]interface{}{
			"count": n,
			"path":  path,
		})
	}

	c.logger.Info("Pipeline", "image loaded", map[string]interface{}{
		"width":     c.image.Width(),
		"height":    c.image.Height(),
		"format":    format,
		"load_time": time.Since(start),
	})
	return nil
}

// LoadBackground decodes a background exposure taken with the same
// optics as the fringe image. Once set, radial extraction derives the
// per-point y uncertainty from the background binned around the same
// center.
func (c *Coordinator) LoadBackground(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.image == nil {
		return fmt.Errorf("no image loaded")
	}

	start := time.Now()
	img, format, err := loadImageFile(path)
	if err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "load_background",
			"path":      path,
		})
		return err
	}

	bg := profile.FromImage(img)
	if bg.Width() != c.image.Width() || bg.Height() != c.image.Height() {
		return fmt.Errorf("background size %dx%d does not match image %dx%d",
			bg.Width(), bg.Height(), c.image.Width(), c.image.Height())
	}
	c.background = bg

	c.logger.Info("Pipeline", "background loaded", map[string]interface{}{
		"format":    format,
		"load_time": time.Since(start),
	})
	return nil
}

// RefineCenter locates the ring center starting from seed, or from the
// intensity centroid when seed is nil.
func (c *Coordinator) RefineCenter(seed *profile.Center, opts profile.RefineOptions) (profile.Center, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.image == nil {
		return profile.Center{}, fmt.Errorf("no image loaded")
	}

	s := c.image.Centroid()
	if seed != nil {
		s = *seed
	}

	start := time.Now()
	center, score, err := profile.RefineCenter(c.image, s, opts)
	if err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "refine_center",
		})
		return profile.Center{}, err
	}
	c.center = center

	c.logger.Info("Pipeline", "center refined", map[string]interface{}{
		"x":           center.X,
		"y":           center.Y,
		"score":       score,
		"refine_time": time.Since(start),
	})
	return center, nil
}

// ExtractProfile bins the image radially around the current center and
// converts the result to a spectrum with x in millimeters. normalizeTo,
// when positive, rescales the profile peak to that value first.
func (c *Coordinator) ExtractProfile(opts profile.ExtractOptions, normalizeTo float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.image == nil {
		return fmt.Errorf("no image loaded")
	}

	start := time.Now()
	p, err := profile.Extract(c.image, c.center, opts)
	if err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "extract_profile",
		})
		return err
	}
	yScale := 1.0
	if normalizeTo > 0 {
		peak := p.Peak().Intensity
		if p, err = profile.Normalize(p, normalizeTo); err != nil {
			return err
		}
		yScale = normalizeTo / peak
	}
	c.profile = p

	binWidth := opts.BinWidth
	if binWidth <= 0 {
		binWidth = 1
	}
	s := p.ToSpectrum(binWidth/2, 0)
	if c.background != nil {
		// Bin occupancy depends only on geometry, so the background
		// profile lines up with the signal bins one for one.
		bg, err := profile.Extract(c.background, c.center, opts)
		if err != nil {
			return fmt.Errorf("background profile: %w", err)
		}
		if len(bg) != len(p) {
			return fmt.Errorf("background binning mismatch: %d bins against %d", len(bg), len(p))
		}
		for i := range s {
			s[i].YErr = yScale * bg[i].Intensity
		}
	}
	c.spectrum = profile.Scale(s, c.instrument.PixelPitch)
	c.baseline = nil
	c.result = nil

	c.logger.Info("Pipeline", "profile extracted", map[string]interface{}{
		"bins":         len(p),
		"peak_radius":  p.Peak().Radius,
		"extract_time": time.Since(start),
	})
	return nil
}

// ConvertToFrequency rewrites the spectrum's x axis from millimeters to
// GHz relative to the pattern center using the configured etalon.
func (c *Coordinator) ConvertToFrequency() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spectrum == nil {
		return fmt.Errorf("no spectrum available")
	}

	out, err := profile.ConvertToFrequency(c.spectrum, c.instrument.EtalonProfile())
	if err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "convert_to_frequency",
		})
		return err
	}
	c.spectrum = out

	c.logger.Info("Pipeline", "frequency axis applied", map[string]interface{}{
		"span_ghz": out[len(out)-1].X - out[0].X,
	})
	return nil
}

// SquareAxis rewrites the spectrum's x axis to x squared, the axis on
// which the etalon dispersion is nearly linear. Valid only while x is
// non-negative and increasing, i.e. before any frequency conversion.
func (c *Coordinator) SquareAxis() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spectrum == nil {
		return fmt.Errorf("no spectrum available")
	}

	out := profile.SquareAxis(c.spectrum)
	if err := out.Validate(); err != nil {
		return fmt.Errorf("cannot square x axis: %w", err)
	}
	c.spectrum = out
	return nil
}

// SetSpectrum installs an externally loaded spectrum, clearing any
// image-derived state downstream of it.
func (c *Coordinator) SetSpectrum(s spectrum.Spectrum) error {
	if err := s.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.spectrum = s
	c.baseline = nil
	c.result = nil
	return nil
}

// RemoveBaseline fits a polynomial baseline and subtracts it from the
// current spectrum.
func (c *Coordinator) RemoveBaseline(degree int, opts fitting.BaselineOptions) (*fitting.BaselineModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spectrum == nil {
		return nil, fmt.Errorf("no spectrum available")
	}

	start := time.Now()
	model, err := fitting.FitBaseline(c.spectrum, degree, opts)
	if err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "remove_baseline",
			"degree":    degree,
		})
		return nil, err
	}

	c.baseline = model
	c.spectrum = fitting.SubtractBaseline(c.spectrum, model)
	c.result = nil

	c.logger.Info("Pipeline", "baseline removed", map[string]interface{}{
		"degree":           degree,
		"reduced_chi2":     model.ReducedChiSquare,
		"baseline_time":    time.Since(start),
		"points_remaining": len(c.spectrum),
	})
	return model, nil
}

// AutoWindows detects troughs in the current spectrum and converts them
// to baseline exclusion windows.
func (c *Coordinator) AutoWindows(opts fitting.TroughOptions) ([]fitting.Window, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.spectrum == nil {
		return nil, fmt.Errorf("no spectrum available")
	}

	troughs := fitting.FindTroughs(c.spectrum, opts)
	windows := fitting.Windows(troughs, c.spectrum)

	c.logger.Debug("Pipeline", "troughs detected", map[string]interface{}{
		"count": len(troughs),
	})
	return windows, nil
}

// Fit runs the multi-Gaussian solve over the current spectrum,
// optionally cropped to the given region of interest. A degenerate
// covariance is logged and passed through; the result stays usable.
func (c *Coordinator) Fit(roi *fitting.Window, guesses []spectrum.GaussianComponent, opts fitting.FitOptions) (*spectrum.FitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spectrum == nil {
		return nil, fmt.Errorf("no spectrum available")
	}

	data := c.spectrum
	if roi != nil {
		data = data.Crop(roi.Lo, roi.Hi)
	}

	start := time.Now()
	res, err := fitting.FitGaussians(data, guesses, opts)
	var degErr *spectrum.DegenerateFitError
	if err != nil && !errors.As(err, &degErr) {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "fit",
		})
		return nil, err
	}
	if degErr != nil {
		c.logger.Warning("Pipeline", "fit covariance is singular", map[string]interface{}{
			"detail": degErr.Error(),
		})
	}
	if !res.Converged {
		c.logger.Warning("Pipeline", "fit did not converge", map[string]interface{}{
			"gradient_norm": res.GradientNorm,
		})
	}
	c.result = res

	c.logger.Info("Pipeline", "fit completed", map[string]interface{}{
		"components":   len(res.Components),
		"chi_square":   res.ChiSquare,
		"reduced_chi2": res.ReducedChiSquare,
		"converged":    res.Converged,
		"fit_time":     time.Since(start),
	})
	return res, err
}

// RenderSpectrum writes a scatter plot of the current spectrum, with
// the baseline overlaid when one was fitted before subtraction.
func (c *Coordinator) RenderSpectrum(path, xlabel string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.spectrum == nil {
		return fmt.Errorf("no spectrum available")
	}

	pl := render.NewPlot("spectrum", xlabel, "intensity")
	if err := pl.AddSpectrum("data", c.spectrum); err != nil {
		return err
	}
	if err := pl.SavePNG(path); err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "render_spectrum",
			"path":      path,
		})
		return err
	}

	c.logger.Info("Pipeline", "plot written", map[string]interface{}{"path": path})
	return nil
}

// RenderFit writes the spectrum with the fitted model and each
// component overlaid.
func (c *Coordinator) RenderFit(path, xlabel string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.spectrum == nil || c.result == nil {
		return fmt.Errorf("no fit available")
	}

	pl := render.NewPlot("fit", xlabel, "intensity")
	if err := pl.AddSpectrum("data", c.spectrum); err != nil {
		return err
	}
	if err := pl.AddFit(c.spectrum, c.result); err != nil {
		return err
	}
	if err := pl.SavePNG(path); err != nil {
		c.logger.Error("Pipeline", err, map[string]interface{}{
			"operation": "render_fit",
			"path":      path,
		})
		return err
	}

	c.logger.Info("Pipeline", "plot written", map[string]interface{}{"path": path})
	return nil
}

// Spectrum returns the current working spectrum.
func (c *Coordinator) Spectrum() spectrum.Spectrum {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spectrum
}

// Center returns the current ring center.
func (c *Coordinator) Center() profile.Center {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.center
}

// Baseline returns the last fitted baseline model, or nil.
func (c *Coordinator) Baseline() *fitting.BaselineModel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseline
}

// Result returns the last fit result, or nil.
func (c *Coordinator) Result() *spectrum.FitResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}
