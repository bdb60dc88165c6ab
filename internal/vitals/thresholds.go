// Package vitals holds the clinical cut-offs used to escalate vital signs
// readings to adverse event reporting.
package vitals

import (
	"fmt"

	"github.com/effect-crf-validators/internal/domain"
)

// Default thresholds.
const (
	DefaultSysUpper     = 180
	DefaultDiaUpper     = 110
	DefaultG3FeverLower = 39.3
	DefaultG4FeverLower = 40.0
)

// Thresholds implements domain.VitalsThresholds.
type Thresholds struct {
	sysUpper     int
	diaUpper     int
	g3FeverLower float64
	g4FeverLower float64
}

// Default returns the protocol thresholds.
func Default() *Thresholds {
	return &Thresholds{
		sysUpper:     DefaultSysUpper,
		diaUpper:     DefaultDiaUpper,
		g3FeverLower: DefaultG3FeverLower,
		g4FeverLower: DefaultG4FeverLower,
	}
}

// New builds thresholds from configuration. Zero values fall back to the
// defaults.
func New(cfg domain.VitalsConfig) (*Thresholds, error) {
	t := Default()
	if cfg.SysUpper > 0 {
		t.sysUpper = cfg.SysUpper
	}
	if cfg.DiaUpper > 0 {
		t.diaUpper = cfg.DiaUpper
	}
	if cfg.G3FeverLower > 0 {
		t.g3FeverLower = cfg.G3FeverLower
	}
	if cfg.G4FeverLower > 0 {
		t.g4FeverLower = cfg.G4FeverLower
	}
	if t.g3FeverLower >= t.g4FeverLower {
		return nil, fmt.Errorf("g3 fever threshold %.1f must be below g4 threshold %.1f", t.g3FeverLower, t.g4FeverLower)
	}
	return t, nil
}

// HasSevereHypertension reports whether either reading reaches its upper
// limit.
func (t *Thresholds) HasSevereHypertension(sys, dia int) bool {
	return sys >= t.sysUpper || dia >= t.diaUpper
}

// HasG3Fever reports a grade 3 fever: at or above the G3 limit and below G4.
func (t *Thresholds) HasG3Fever(temperature float64) bool {
	return temperature >= t.g3FeverLower && temperature < t.g4FeverLower
}

// HasG4Fever reports a grade 4 fever.
func (t *Thresholds) HasG4Fever(temperature float64) bool {
	return temperature >= t.g4FeverLower
}

func (t *Thresholds) SysUpper() int         { return t.sysUpper }
func (t *Thresholds) DiaUpper() int         { return t.diaUpper }
func (t *Thresholds) G3FeverLower() float64 { return t.g3FeverLower }
