// Package bus is the control channel between the readalong CLI and a
// running daemon: one newline-terminated command per unix socket
// connection, answered by one line.
package bus

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const SockName = "control.sock"
const PidName = "readalong.pid"
const ProtoVer = "0.2"

// Command opcodes. Open and Auto carry an argument after a single space.
const (
	CmdOpen    byte = 'o' // o <fileId>
	CmdToggle  byte = 't'
	CmdRetry   byte = 'r'
	CmdAuto    byte = 'a' // a on|off
	CmdStatus  byte = 's'
	CmdCancel  byte = 'c'
	CmdVersion byte = 'v'
	CmdQuit    byte = 'q'
)

var ErrEmptyCommand = errors.New("empty command")

// Command is one request line.
type Command struct {
	Op  byte
	Arg string
}

func (c Command) String() string {
	if c.Arg == "" {
		return string(c.Op)
	}
	return string(c.Op) + " " + c.Arg
}

// ParseCommand decodes a request line without its trailing newline.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Command{}, ErrEmptyCommand
	}
	cmd := Command{Op: line[0]}
	if len(line) > 1 {
		if line[1] != ' ' {
			return Command{}, fmt.Errorf("malformed command %q", line)
		}
		cmd.Arg = strings.TrimSpace(line[2:])
	}
	return cmd, nil
}

// ~/.cache/readalong
func dir() (string, error) {
	d, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "readalong"), nil
}

// ~/.cache/readalong/control.sock
func SockPath() (string, error) {
	return getSockPath()
}

// ~/.cache/readalong/readalong.pid
func PidPath() (string, error) {
	return getPidPath()
}

func getSockPath() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, SockName), nil
}

func getPidPath() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, PidName), nil
}

type socketManager struct {
	path string
}

func defaultSocketManager() (*socketManager, error) {
	p, err := getSockPath()
	if err != nil {
		return nil, err
	}
	return &socketManager{path: p}, nil
}

func (s *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.path) // stale socket from last run
	return net.Listen("unix", s.path)
}

func (s *socketManager) dial() (net.Conn, error) {
	return net.DialTimeout("unix", s.path, 2*time.Second)
}

func (s *socketManager) send(cmd Command) (string, error) {
	c, err := s.dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	if _, err := fmt.Fprintf(c, "%s\n", cmd); err != nil {
		return "", err
	}
	return bufio.NewReader(c).ReadString('\n')
}

func Listen() (net.Listener, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return nil, err
	}
	return sm.listen()
}

func Dial() (net.Conn, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return nil, err
	}
	return sm.dial()
}

// SendCommand sends one command to the daemon and returns its reply line.
func SendCommand(op byte, arg string) (string, error) {
	sm, err := defaultSocketManager()
	if err != nil {
		return "", err
	}
	return sm.send(Command{Op: op, Arg: arg})
}

type pidManager struct {
	path string
}

func defaultPidManager() (*pidManager, error) {
	p, err := getPidPath()
	if err != nil {
		return nil, err
	}
	return &pidManager{path: p}, nil
}

// checkExisting fails when a live daemon owns the pid file. Stale or
// unreadable pid files are removed.
func (p *pidManager) checkExisting() error {
	pidData, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		_ = os.Remove(p.path)
		return nil
	}

	if !p.isProcessAlive(pid) {
		_ = os.Remove(p.path)
		return nil
	}
	return fmt.Errorf("daemon already running with PID %d", pid)
}

func (p *pidManager) isProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func (p *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *pidManager) remove() error {
	return os.Remove(p.path)
}

func CheckExistingDaemon() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.checkExisting()
}

func CreatePidFile() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.create()
}

func RemovePidFile() error {
	pm, err := defaultPidManager()
	if err != nil {
		return err
	}
	return pm.remove()
}
