//go:build linux

package processes

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func listNative(uid int) ([]Process, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrUnsupported
		}
		return nil, err
	}

	var procs []Process
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		proc, ok := readProcess(pid, uid)
		if !ok {
			continue
		}
		procs = append(procs, proc)
	}
	return procs, nil
}

// readProcess assembles one Process from /proc/<pid>. Entries that
// vanish mid-read or belong to other users are skipped.
func readProcess(pid, uid int) (Process, bool) {
	dir := filepath.Join("/proc", strconv.Itoa(pid))

	procUID, ppid, ok := readStatus(filepath.Join(dir, "status"))
	if !ok || procUID != uid {
		return Process{}, false
	}

	cwd, err := os.Readlink(filepath.Join(dir, "cwd"))
	if err != nil || cwd == "" {
		return Process{}, false
	}
	cwd = strings.TrimSuffix(cwd, " (deleted)")

	command := readComm(dir)
	return Process{
		PID:     pid,
		PPID:    ppid,
		Command: sanitizeCommand(command, pid),
		CWD:     cwd,
	}, true
}

// readStatus extracts the real uid and parent pid from a status file.
func readStatus(path string) (uid, ppid int, ok bool) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer file.Close()

	uid = -1
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "Uid:":
			if n, err := strconv.Atoi(fields[1]); err == nil {
				uid = n
			}
		case "PPid:":
			if n, err := strconv.Atoi(fields[1]); err == nil {
				ppid = n
			}
		}
	}
	if scanner.Err() != nil || uid < 0 {
		return 0, 0, false
	}
	return uid, ppid, true
}

// readComm prefers the comm file; kernel threads and zombies may leave
// it empty, in which case argv[0] from cmdline is used.
func readComm(dir string) string {
	if data, err := os.ReadFile(filepath.Join(dir, "comm")); err == nil {
		if name := strings.TrimSpace(string(data)); name != "" {
			return name
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "cmdline"))
	if err != nil {
		return ""
	}
	argv0, _, _ := strings.Cut(string(data), "\x00")
	return strings.TrimSpace(argv0)
}
