package miner

import (
	"fmt"
	"runtime"

	"github.com/hadv/nrgminer/nrghash"
	"github.com/shirou/gopsutil/v4/mem"
)

// DeviceInfo describes an enumerated compute device.
type DeviceInfo struct {
	Index            int
	Kind             EngineKind
	Name             string
	Vendor           string
	Platform         string
	PlatformID       int
	Version          string
	ComputeUnits     int
	MaxWorkGroupSize int
	GlobalMemory     uint64
	MaxAlloc         uint64
}

// Label is the short name used in logs and metrics, e.g. "gpu/0".
func (d DeviceInfo) Label() string {
	return fmt.Sprintf("%s/%d", d.Kind, d.Index)
}

// ProgramParams are the compile-time constants of the device programs.
type ProgramParams struct {
	Params       nrghash.Params
	Local        uint32
	DatasetPages uint32
	DatasetItems uint32
	LightRows    uint32
	MaxOutputs   uint32
}

func newProgramParams(p nrghash.Params, spec DatasetSpec, light *nrghash.Cache, g LaunchGeometry) ProgramParams {
	return ProgramParams{
		Params:       p,
		Local:        g.Local,
		DatasetPages: spec.Pages(),
		DatasetItems: spec.Items(),
		LightRows:    light.Rows(),
		MaxOutputs:   MaxSearchResults,
	}
}

// SearchResult is the device result buffer: how many nonces passed the
// boundary and the launch offset of the first one.
type SearchResult struct {
	Count uint32
	Gid   uint32
}

// ListDevices enumerates devices of one kind.
func ListDevices(kind EngineKind, cfg *EngineConfig) ([]DeviceInfo, error) {
	switch kind {
	case EngineGPU:
		return listOpenCLDevices(cfg.PlatformID)
	case EngineCPU:
		return listHostDevices(cfg.CPUDevices)
	}
	return nil, fmt.Errorf("%w: unknown engine %q", ErrDeviceEnumeration, kind)
}

// OpenDevice acquires a device previously returned by ListDevices.
func OpenDevice(info DeviceInfo, cfg *EngineConfig) (Device, error) {
	switch info.Kind {
	case EngineGPU:
		return openOpenCLDevice(info)
	case EngineCPU:
		threads := cfg.CPUThreads
		if threads <= 0 {
			threads = runtime.NumCPU() / max(cfg.CPUDevices, 1)
		}
		return NewHostDevice(info, threads), nil
	}
	return nil, fmt.Errorf("%w: unknown engine %q", ErrDeviceEnumeration, info.Kind)
}

func listHostDevices(count int) ([]DeviceInfo, error) {
	if count <= 0 {
		return nil, nil
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("%w: reading host memory: %v", ErrDeviceEnumeration, err)
	}
	devices := make([]DeviceInfo, 0, count)
	for i := 0; i < count; i++ {
		devices = append(devices, DeviceInfo{
			Index:            i,
			Kind:             EngineCPU,
			Name:             fmt.Sprintf("host %s/%s", runtime.GOOS, runtime.GOARCH),
			Vendor:           "host",
			Platform:         "go",
			ComputeUnits:     runtime.NumCPU(),
			MaxWorkGroupSize: 1 << 20,
			GlobalMemory:     vm.Available,
			MaxAlloc:         vm.Available,
		})
	}
	return devices, nil
}
