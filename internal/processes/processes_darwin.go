//go:build darwin

package processes

/*
#include <libproc.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"
)

func listNative(uid int) ([]Process, error) {
	pids, err := allPIDs()
	if err != nil {
		return nil, err
	}

	var procs []Process
	for _, pid := range pids {
		info, err := bsdInfo(pid)
		if err != nil || info == nil {
			continue
		}
		if int(info.pbi_uid) != uid {
			continue
		}
		cwd, err := workingDir(pid)
		if err != nil || cwd == "" {
			continue
		}
		command := C.GoString(&info.pbi_comm[0])
		procs = append(procs, Process{
			PID:     pid,
			PPID:    int(info.pbi_ppid),
			Command: sanitizeCommand(command, pid),
			CWD:     cwd,
		})
	}
	return procs, nil
}

func allPIDs() ([]int, error) {
	size := C.proc_listpids(C.PROC_ALL_PIDS, 0, nil, 0)
	if size <= 0 {
		return nil, fmt.Errorf("proc_listpids size %d", size)
	}
	buf := make([]C.pid_t, int(size)/int(unsafe.Sizeof(C.pid_t(0))))
	if len(buf) == 0 {
		return nil, nil
	}
	ret := C.proc_listpids(C.PROC_ALL_PIDS, 0, unsafe.Pointer(&buf[0]), size)
	if ret <= 0 {
		return nil, fmt.Errorf("proc_listpids returned %d", ret)
	}
	pids := make([]int, 0, len(buf))
	for _, pid := range buf[:int(ret)/int(unsafe.Sizeof(C.pid_t(0)))] {
		if pid > 0 {
			pids = append(pids, int(pid))
		}
	}
	return pids, nil
}

func bsdInfo(pid int) (*C.struct_proc_bsdinfo, error) {
	var info C.struct_proc_bsdinfo
	size := C.int(unsafe.Sizeof(info))
	ret, err := C.proc_pidinfo(C.int(pid), C.PROC_PIDTBSDINFO, 0, unsafe.Pointer(&info), size)
	if err != nil {
		if deniedOrGone(err) {
			return nil, nil
		}
		return nil, err
	}
	if ret != size {
		return nil, nil
	}
	return &info, nil
}

func workingDir(pid int) (string, error) {
	var info C.struct_proc_vnodepathinfo
	size := C.int(unsafe.Sizeof(info))
	ret, err := C.proc_pidinfo(C.int(pid), C.PROC_PIDVNODEPATHINFO, 0, unsafe.Pointer(&info), size)
	if err != nil {
		if deniedOrGone(err) {
			return "", nil
		}
		return "", err
	}
	if ret <= 0 {
		return "", nil
	}
	if ret != size {
		return "", fmt.Errorf("short proc_pidinfo read: %d", ret)
	}
	return C.GoString(&info.pvi_cdir.vip_path[0]), nil
}

// deniedOrGone reports errors that mean a process is off limits or
// already exited rather than a listing failure.
func deniedOrGone(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == syscall.EPERM || errno == syscall.ESRCH
}
