//go:build !opencl || !(linux || darwin)

package miner

import "fmt"

func listOpenCLDevices(int) ([]DeviceInfo, error) {
	return nil, fmt.Errorf("%w: OpenCL support not built in, rebuild with -tags opencl", ErrDeviceEnumeration)
}

func openOpenCLDevice(info DeviceInfo) (Device, error) {
	return nil, newDeviceError(ErrDeviceEnumeration, info.Label(), "open",
		fmt.Errorf("OpenCL support not built in"))
}
