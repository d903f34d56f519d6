package miner

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceEnumeration        = errors.New("device enumeration failed")
	ErrInsufficientDeviceMemory = errors.New("insufficient device memory")
	ErrKernelBuild              = errors.New("kernel build failed")
	ErrDeviceRuntime            = errors.New("device runtime error")
	ErrInvalidCandidate         = errors.New("device proposed invalid solution")
	ErrNoDevicesAvailable       = errors.New("no devices available")
	ErrAlreadyMining            = errors.New("plant is already mining")
)

// DeviceError carries the failing device, the operation and any backend code
// alongside one of the sentinel kinds above.
type DeviceError struct {
	Kind   error
	Device string
	Op     string
	Code   int
	Err    error
}

func newDeviceError(kind error, device, op string, err error) *DeviceError {
	e := &DeviceError{Kind: kind, Device: device, Op: op, Err: err}
	var coded interface{ ErrorCode() int }
	if errors.As(err, &coded) {
		e.Code = coded.ErrorCode()
	}
	return e
}

func (e *DeviceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Device, e.Kind)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s %s", e.Device, e.Op, e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeviceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// wrapDevice tags err with kind unless it already is a DeviceError.
func wrapDevice(kind error, device, op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DeviceError
	if errors.As(err, &de) {
		return err
	}
	return newDeviceError(kind, device, op, err)
}

// ErrorCode returns the backend status code carried by err, if any.
func ErrorCode(err error) (int, bool) {
	var de *DeviceError
	if errors.As(err, &de) && de.Code != 0 {
		return de.Code, true
	}
	return 0, false
}
