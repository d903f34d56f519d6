//go:build opencl && (linux || darwin)

package miner

/*
#cgo linux LDFLAGS: -lOpenCL
#cgo darwin LDFLAGS: -framework OpenCL
#cgo CFLAGS: -DCL_TARGET_OPENCL_VERSION=120 -DCL_USE_DEPRECATED_OPENCL_1_2_APIS
#ifdef __APPLE__
#include <OpenCL/opencl.h>
#else
#include <CL/cl.h>
#endif
#include <stdlib.h>

const char* cl_error_string(cl_int error) {
    switch(error) {
        case CL_SUCCESS: return "CL_SUCCESS";
        case CL_DEVICE_NOT_FOUND: return "CL_DEVICE_NOT_FOUND";
        case CL_DEVICE_NOT_AVAILABLE: return "CL_DEVICE_NOT_AVAILABLE";
        case CL_COMPILER_NOT_AVAILABLE: return "CL_COMPILER_NOT_AVAILABLE";
        case CL_MEM_OBJECT_ALLOCATION_FAILURE: return "CL_MEM_OBJECT_ALLOCATION_FAILURE";
        case CL_OUT_OF_RESOURCES: return "CL_OUT_OF_RESOURCES";
        case CL_OUT_OF_HOST_MEMORY: return "CL_OUT_OF_HOST_MEMORY";
        case CL_BUILD_PROGRAM_FAILURE: return "CL_BUILD_PROGRAM_FAILURE";
        case CL_INVALID_VALUE: return "CL_INVALID_VALUE";
        case CL_INVALID_PLATFORM: return "CL_INVALID_PLATFORM";
        case CL_INVALID_DEVICE: return "CL_INVALID_DEVICE";
        case CL_INVALID_CONTEXT: return "CL_INVALID_CONTEXT";
        case CL_INVALID_COMMAND_QUEUE: return "CL_INVALID_COMMAND_QUEUE";
        case CL_INVALID_MEM_OBJECT: return "CL_INVALID_MEM_OBJECT";
        case CL_INVALID_BUILD_OPTIONS: return "CL_INVALID_BUILD_OPTIONS";
        case CL_INVALID_PROGRAM: return "CL_INVALID_PROGRAM";
        case CL_INVALID_PROGRAM_EXECUTABLE: return "CL_INVALID_PROGRAM_EXECUTABLE";
        case CL_INVALID_KERNEL_NAME: return "CL_INVALID_KERNEL_NAME";
        case CL_INVALID_KERNEL: return "CL_INVALID_KERNEL";
        case CL_INVALID_ARG_INDEX: return "CL_INVALID_ARG_INDEX";
        case CL_INVALID_ARG_VALUE: return "CL_INVALID_ARG_VALUE";
        case CL_INVALID_ARG_SIZE: return "CL_INVALID_ARG_SIZE";
        case CL_INVALID_KERNEL_ARGS: return "CL_INVALID_KERNEL_ARGS";
        case CL_INVALID_WORK_GROUP_SIZE: return "CL_INVALID_WORK_GROUP_SIZE";
        case CL_INVALID_BUFFER_SIZE: return "CL_INVALID_BUFFER_SIZE";
        case CL_INVALID_GLOBAL_OFFSET: return "CL_INVALID_GLOBAL_OFFSET";
        default: return "CL_UNKNOWN_ERROR";
    }
}
*/
import "C"

import (
	_ "embed"
	"errors"
	"fmt"
	"unsafe"

	"github.com/ethereum/go-ethereum/common"
)

//go:embed kernel/nrghash.cl
var kernelSource string

// clError is an OpenCL status code from a failed call.
type clError struct {
	op   string
	code C.cl_int
}

func (e *clError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.op, C.GoString(C.cl_error_string(e.code)), int(e.code))
}

func (e *clError) ErrorCode() int { return int(e.code) }

func clCheck(op string, code C.cl_int) error {
	if code == C.CL_SUCCESS {
		return nil
	}
	return &clError{op: op, code: code}
}

type openCLDevice struct {
	info     DeviceInfo
	platform C.cl_platform_id
	device   C.cl_device_id
	context  C.cl_context
	queue    C.cl_command_queue

	program       C.cl_program
	searchKernel  C.cl_kernel
	datasetKernel C.cl_kernel
	prog          ProgramParams

	lightBuf   C.cl_mem
	datasetBuf C.cl_mem
	headerBuf  C.cl_mem
	resultBuf  C.cl_mem
}

func platformIDs() ([]C.cl_platform_id, error) {
	var n C.cl_uint
	if err := clCheck("clGetPlatformIDs", C.clGetPlatformIDs(0, nil, &n)); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("no OpenCL platforms found")
	}
	platforms := make([]C.cl_platform_id, n)
	if err := clCheck("clGetPlatformIDs", C.clGetPlatformIDs(n, &platforms[0], nil)); err != nil {
		return nil, err
	}
	return platforms, nil
}

func platformDevices(platformID int) (C.cl_platform_id, []C.cl_device_id, error) {
	platforms, err := platformIDs()
	if err != nil {
		return nil, nil, err
	}
	if platformID >= len(platforms) {
		return nil, nil, fmt.Errorf("platform %d out of range, %d available", platformID, len(platforms))
	}
	platform := platforms[platformID]
	var types C.cl_device_type = C.CL_DEVICE_TYPE_GPU | C.CL_DEVICE_TYPE_ACCELERATOR
	var n C.cl_uint
	if err := clCheck("clGetDeviceIDs", C.clGetDeviceIDs(platform, types, 0, nil, &n)); err != nil {
		return nil, nil, err
	}
	if n == 0 {
		return platform, nil, nil
	}
	devices := make([]C.cl_device_id, n)
	if err := clCheck("clGetDeviceIDs", C.clGetDeviceIDs(platform, types, n, &devices[0], nil)); err != nil {
		return nil, nil, err
	}
	return platform, devices, nil
}

func listOpenCLDevices(platformID int) ([]DeviceInfo, error) {
	platform, devices, err := platformDevices(platformID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceEnumeration, err)
	}
	platformName := platformString(platform, C.CL_PLATFORM_NAME)
	infos := make([]DeviceInfo, 0, len(devices))
	for i, d := range devices {
		info := deviceInfo(d)
		info.Index = i
		info.PlatformID = platformID
		info.Platform = platformName
		infos = append(infos, info)
	}
	return infos, nil
}

func platformString(p C.cl_platform_id, param C.cl_platform_info) string {
	var size C.size_t
	C.clGetPlatformInfo(p, param, 0, nil, &size)
	if size == 0 {
		return ""
	}
	buf := make([]byte, size)
	C.clGetPlatformInfo(p, param, size, unsafe.Pointer(&buf[0]), nil)
	return string(buf[:size-1])
}

func deviceString(d C.cl_device_id, param C.cl_device_info) string {
	var size C.size_t
	C.clGetDeviceInfo(d, param, 0, nil, &size)
	if size == 0 {
		return ""
	}
	buf := make([]byte, size)
	C.clGetDeviceInfo(d, param, size, unsafe.Pointer(&buf[0]), nil)
	return string(buf[:size-1])
}

func deviceInfo(d C.cl_device_id) DeviceInfo {
	info := DeviceInfo{
		Kind:    EngineGPU,
		Name:    deviceString(d, C.CL_DEVICE_NAME),
		Vendor:  deviceString(d, C.CL_DEVICE_VENDOR),
		Version: deviceString(d, C.CL_DEVICE_VERSION),
	}

	var cu C.cl_uint
	C.clGetDeviceInfo(d, C.CL_DEVICE_MAX_COMPUTE_UNITS, C.size_t(unsafe.Sizeof(cu)), unsafe.Pointer(&cu), nil)
	info.ComputeUnits = int(cu)

	var wg C.size_t
	C.clGetDeviceInfo(d, C.CL_DEVICE_MAX_WORK_GROUP_SIZE, C.size_t(unsafe.Sizeof(wg)), unsafe.Pointer(&wg), nil)
	info.MaxWorkGroupSize = int(wg)

	var global, alloc C.cl_ulong
	C.clGetDeviceInfo(d, C.CL_DEVICE_GLOBAL_MEM_SIZE, C.size_t(unsafe.Sizeof(global)), unsafe.Pointer(&global), nil)
	C.clGetDeviceInfo(d, C.CL_DEVICE_MAX_MEM_ALLOC_SIZE, C.size_t(unsafe.Sizeof(alloc)), unsafe.Pointer(&alloc), nil)
	info.GlobalMemory = uint64(global)
	info.MaxAlloc = uint64(alloc)
	return info
}

func openOpenCLDevice(info DeviceInfo) (Device, error) {
	platform, devices, err := platformDevices(info.PlatformID)
	if err != nil {
		return nil, newDeviceError(ErrDeviceEnumeration, info.Label(), "open", err)
	}
	if info.Index >= len(devices) {
		return nil, newDeviceError(ErrDeviceEnumeration, info.Label(), "open", errors.New("device disappeared"))
	}

	d := &openCLDevice{info: info, platform: platform, device: devices[info.Index]}
	var code C.cl_int
	d.context = C.clCreateContext(nil, 1, &d.device, nil, nil, &code)
	if err := clCheck("clCreateContext", code); err != nil {
		return nil, newDeviceError(ErrDeviceRuntime, info.Label(), "open", err)
	}
	d.queue = C.clCreateCommandQueue(d.context, d.device, 0, &code)
	if err := clCheck("clCreateCommandQueue", code); err != nil {
		C.clReleaseContext(d.context)
		return nil, newDeviceError(ErrDeviceRuntime, info.Label(), "open", err)
	}
	return d, nil
}

func (d *openCLDevice) Info() DeviceInfo { return d.info }

func (d *openCLDevice) Compile(p ProgramParams) error {
	d.Release()

	src := C.CString(kernelSource)
	defer C.free(unsafe.Pointer(src))
	srcLen := C.size_t(len(kernelSource))

	var code C.cl_int
	d.program = C.clCreateProgramWithSource(d.context, 1, &src, &srcLen, &code)
	if err := clCheck("clCreateProgramWithSource", code); err != nil {
		d.program = nil
		return newDeviceError(ErrKernelBuild, d.info.Label(), "compile", err)
	}

	options := C.CString(fmt.Sprintf(
		"-D GROUP_SIZE=%d -D DATASET_PAGES=%dU -D DATASET_ITEMS=%dU -D LIGHT_ROWS=%dU -D ACCESSES=%dU -D DATASET_PARENTS=%dU -D MAX_OUTPUTS=%dU",
		p.Local, p.DatasetPages, p.DatasetItems, p.LightRows, p.Params.Accesses, p.Params.DatasetParents, p.MaxOutputs))
	defer C.free(unsafe.Pointer(options))

	if err := clCheck("clBuildProgram", C.clBuildProgram(d.program, 1, &d.device, options, nil, nil)); err != nil {
		var logSize C.size_t
		C.clGetProgramBuildInfo(d.program, d.device, C.CL_PROGRAM_BUILD_LOG, 0, nil, &logSize)
		buildLog := ""
		if logSize > 0 {
			buf := make([]byte, logSize)
			C.clGetProgramBuildInfo(d.program, d.device, C.CL_PROGRAM_BUILD_LOG, logSize, unsafe.Pointer(&buf[0]), nil)
			buildLog = string(buf[:logSize-1])
		}
		d.Release()
		return newDeviceError(ErrKernelBuild, d.info.Label(), "compile", fmt.Errorf("%w\nbuild log:\n%s", err, buildLog))
	}

	search := C.CString("nrghash_search")
	defer C.free(unsafe.Pointer(search))
	d.searchKernel = C.clCreateKernel(d.program, search, &code)
	if err := clCheck("clCreateKernel", code); err != nil {
		d.searchKernel = nil
		d.Release()
		return newDeviceError(ErrKernelBuild, d.info.Label(), "compile", err)
	}
	dataset := C.CString("nrghash_dataset")
	defer C.free(unsafe.Pointer(dataset))
	d.datasetKernel = C.clCreateKernel(d.program, dataset, &code)
	if err := clCheck("clCreateKernel", code); err != nil {
		d.datasetKernel = nil
		d.Release()
		return newDeviceError(ErrKernelBuild, d.info.Label(), "compile", err)
	}
	d.prog = p
	return nil
}

func (d *openCLDevice) createBuffer(flags C.cl_mem_flags, size uint64, host unsafe.Pointer) (C.cl_mem, error) {
	var code C.cl_int
	buf := C.clCreateBuffer(d.context, flags, C.size_t(size), host, &code)
	if err := clCheck("clCreateBuffer", code); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *openCLDevice) Upload(light []uint32, datasetBytes uint64) error {
	label := d.info.Label()
	if d.program == nil {
		return newDeviceError(ErrDeviceRuntime, label, "upload", errors.New("no program loaded"))
	}
	if d.info.GlobalMemory < datasetBytes {
		return newDeviceError(ErrInsufficientDeviceMemory, label, "upload",
			fmt.Errorf("dataset needs %d bytes, device has %d", datasetBytes, d.info.GlobalMemory))
	}

	var err error
	lightBytes := uint64(len(light)) * 4
	if d.lightBuf, err = d.createBuffer(C.CL_MEM_READ_ONLY|C.CL_MEM_COPY_HOST_PTR, lightBytes, unsafe.Pointer(&light[0])); err != nil {
		return newDeviceError(ErrDeviceRuntime, label, "upload light cache", err)
	}
	if d.datasetBuf, err = d.createBuffer(C.CL_MEM_READ_WRITE, datasetBytes, nil); err != nil {
		var ce *clError
		if errors.As(err, &ce) && ce.code == C.CL_MEM_OBJECT_ALLOCATION_FAILURE {
			return newDeviceError(ErrInsufficientDeviceMemory, label, "allocate dataset", err)
		}
		return newDeviceError(ErrDeviceRuntime, label, "allocate dataset", err)
	}
	if d.headerBuf, err = d.createBuffer(C.CL_MEM_READ_ONLY, 32, nil); err != nil {
		return newDeviceError(ErrDeviceRuntime, label, "allocate header", err)
	}
	if d.resultBuf, err = d.createBuffer(C.CL_MEM_READ_WRITE, uint64(MaxSearchResults+1)*4, nil); err != nil {
		return newDeviceError(ErrDeviceRuntime, label, "allocate results", err)
	}

	errs := []error{
		d.setArg(d.datasetKernel, 1, unsafe.Sizeof(d.lightBuf), unsafe.Pointer(&d.lightBuf)),
		d.setArg(d.datasetKernel, 2, unsafe.Sizeof(d.datasetBuf), unsafe.Pointer(&d.datasetBuf)),
		d.setArg(d.searchKernel, 0, unsafe.Sizeof(d.resultBuf), unsafe.Pointer(&d.resultBuf)),
		d.setArg(d.searchKernel, 1, unsafe.Sizeof(d.headerBuf), unsafe.Pointer(&d.headerBuf)),
		d.setArg(d.searchKernel, 2, unsafe.Sizeof(d.datasetBuf), unsafe.Pointer(&d.datasetBuf)),
	}
	if err := errors.Join(errs...); err != nil {
		return newDeviceError(ErrDeviceRuntime, label, "set kernel args", err)
	}
	return nil
}

func (d *openCLDevice) setArg(k C.cl_kernel, idx int, size uintptr, value unsafe.Pointer) error {
	return clCheck("clSetKernelArg", C.clSetKernelArg(k, C.cl_uint(idx), C.size_t(size), value))
}

func (d *openCLDevice) enqueue(k C.cl_kernel, g LaunchGeometry) error {
	global := C.size_t(g.Global)
	local := C.size_t(g.Local)
	return clCheck("clEnqueueNDRangeKernel", C.clEnqueueNDRangeKernel(d.queue, k, 1, nil, &global, &local, 0, nil, nil))
}

func (d *openCLDevice) GenerateDataset(offset uint32, g LaunchGeometry) error {
	start := C.cl_uint(offset)
	if err := d.setArg(d.datasetKernel, 0, unsafe.Sizeof(start), unsafe.Pointer(&start)); err != nil {
		return newDeviceError(ErrDeviceRuntime, d.info.Label(), "generate dataset", err)
	}
	if err := d.enqueue(d.datasetKernel, g); err != nil {
		return newDeviceError(ErrDeviceRuntime, d.info.Label(), "generate dataset", err)
	}
	return nil
}

func (d *openCLDevice) WriteHeader(header common.Hash) error {
	err := clCheck("clEnqueueWriteBuffer", C.clEnqueueWriteBuffer(d.queue, d.headerBuf, C.CL_TRUE, 0, 32,
		unsafe.Pointer(&header[0]), 0, nil, nil))
	return wrapDevice(ErrDeviceRuntime, d.info.Label(), "write header", err)
}

func (d *openCLDevice) ResetResults() error {
	var zero [MaxSearchResults + 1]C.cl_uint
	err := clCheck("clEnqueueWriteBuffer", C.clEnqueueWriteBuffer(d.queue, d.resultBuf, C.CL_TRUE, 0,
		C.size_t(unsafe.Sizeof(zero)), unsafe.Pointer(&zero[0]), 0, nil, nil))
	return wrapDevice(ErrDeviceRuntime, d.info.Label(), "reset results", err)
}

func (d *openCLDevice) Search(start, boundary uint64, g LaunchGeometry) error {
	nonce := C.cl_ulong(start)
	target := C.cl_ulong(boundary)
	err := errors.Join(
		d.setArg(d.searchKernel, 3, unsafe.Sizeof(nonce), unsafe.Pointer(&nonce)),
		d.setArg(d.searchKernel, 4, unsafe.Sizeof(target), unsafe.Pointer(&target)),
	)
	if err == nil {
		err = d.enqueue(d.searchKernel, g)
	}
	return wrapDevice(ErrDeviceRuntime, d.info.Label(), "search", err)
}

func (d *openCLDevice) ReadResults() (SearchResult, error) {
	var out [MaxSearchResults + 1]C.cl_uint
	err := clCheck("clEnqueueReadBuffer", C.clEnqueueReadBuffer(d.queue, d.resultBuf, C.CL_TRUE, 0,
		C.size_t(unsafe.Sizeof(out)), unsafe.Pointer(&out[0]), 0, nil, nil))
	if err != nil {
		return SearchResult{}, newDeviceError(ErrDeviceRuntime, d.info.Label(), "read results", err)
	}
	return SearchResult{Count: uint32(out[0]), Gid: uint32(out[1])}, nil
}

func (d *openCLDevice) Finish() error {
	return wrapDevice(ErrDeviceRuntime, d.info.Label(), "finish", clCheck("clFinish", C.clFinish(d.queue)))
}

func (d *openCLDevice) Release() {
	for _, m := range []*C.cl_mem{&d.lightBuf, &d.datasetBuf, &d.headerBuf, &d.resultBuf} {
		if *m != nil {
			C.clReleaseMemObject(*m)
			*m = nil
		}
	}
	if d.searchKernel != nil {
		C.clReleaseKernel(d.searchKernel)
		d.searchKernel = nil
	}
	if d.datasetKernel != nil {
		C.clReleaseKernel(d.datasetKernel)
		d.datasetKernel = nil
	}
	if d.program != nil {
		C.clReleaseProgram(d.program)
		d.program = nil
	}
}

func (d *openCLDevice) Close() error {
	d.Release()
	if d.queue != nil {
		C.clReleaseCommandQueue(d.queue)
		d.queue = nil
	}
	if d.context != nil {
		C.clReleaseContext(d.context)
		d.context = nil
	}
	return nil
}
