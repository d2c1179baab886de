//go:build linux

package camera

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// V4L2 UAPI 常量（include/uapi/linux/videodev2.h）
const (
	// vidiocQueryCap _IOR('V', 0, struct v4l2_capability)，结构体 104 字节
	vidiocQueryCap = 0x80685600

	v4l2CapVideoCapture       = 0x00000001
	v4l2CapVideoCaptureMplane = 0x00001000
	v4l2CapDeviceCaps         = 0x80000000
)

// v4l2Capability 对应 struct v4l2_capability
type v4l2Capability struct {
	driver       [16]byte
	card         [32]byte
	busInfo      [32]byte
	version      uint32
	capabilities uint32
	deviceCaps   uint32
	reserved     [3]uint32
}

// queryCapture 打开设备、查询能力并立即关闭
func queryCapture(path string) (bool, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return false, &os.PathError{Op: "open", Path: path, Err: err}
	}
	defer unix.Close(fd)

	var capability v4l2Capability
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(vidiocQueryCap), uintptr(unsafe.Pointer(&capability)))
	if errno != 0 {
		return false, fmt.Errorf("VIDIOC_QUERYCAP %s: %w", path, errno)
	}

	caps := capability.capabilities
	if caps&v4l2CapDeviceCaps != 0 {
		caps = capability.deviceCaps
	}
	return caps&(v4l2CapVideoCapture|v4l2CapVideoCaptureMplane) != 0, nil
}
