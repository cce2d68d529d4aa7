// Package device picks where the numeric work runs. Only the host CPU is
// supported; the report lists the vector extensions the backend may use.
package device

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// ErrUnsupported is returned for devices this build cannot drive.
var ErrUnsupported = errors.New("device: unsupported")

// Device describes the selected compute device.
type Device struct {
	Kind     string
	Brand    string
	Vendor   string
	Physical int
	Logical  int
	Features []string
}

var reported = []struct {
	name string
	id   cpuid.FeatureID
}{
	{"sse2", cpuid.SSE2},
	{"avx", cpuid.AVX},
	{"avx2", cpuid.AVX2},
	{"fma3", cpuid.FMA3},
	{"avx512f", cpuid.AVX512F},
	{"avx512dq", cpuid.AVX512DQ},
	{"asimd", cpuid.ASIMD},
}

// Select resolves name to a Device. An empty name means the CPU.
func Select(name string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cpu":
		return hostCPU(), nil
	case "gpu", "cuda":
		return Device{}, fmt.Errorf("%w: %q (this build only runs on the CPU)", ErrUnsupported, name)
	default:
		return Device{}, fmt.Errorf("%w: unknown device %q", ErrUnsupported, name)
	}
}

func hostCPU() Device {
	d := Device{
		Kind:     "cpu",
		Brand:    cpuid.CPU.BrandName,
		Vendor:   cpuid.CPU.VendorString,
		Physical: cpuid.CPU.PhysicalCores,
		Logical:  cpuid.CPU.LogicalCores,
	}
	if d.Brand == "" {
		d.Brand = runtime.GOARCH
	}
	if d.Logical == 0 {
		d.Logical = runtime.NumCPU()
	}
	for _, f := range reported {
		if cpuid.CPU.Supports(f.id) {
			d.Features = append(d.Features, f.name)
		}
	}
	return d
}

// Supports reports whether the device has every named feature.
func (d Device) Supports(features ...string) bool {
	for _, want := range features {
		found := false
		for _, have := range d.Features {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (d Device) String() string {
	features := "none"
	if len(d.Features) > 0 {
		features = strings.Join(d.Features, ",")
	}
	return fmt.Sprintf("device=%s brand=%q cores=%d threads=%d features=%s",
		d.Kind, d.Brand, d.Physical, d.Logical, features)
}
