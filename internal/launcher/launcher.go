// Package launcher resolves which document to open and keeps a single
// interactive instance per state directory. Later invocations hand their
// resolved path to the running instance over a unix socket.
package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrAlreadyRunning = errors.New("launcher: another instance is running")
	ErrNoPath         = errors.New("launcher: no document path")
)

const (
	lockName    = "neptune.lock"
	socketName  = "neptune.sock"
	todoExt     = ".todo"
	maxPathLine = 4096
)

// ResolvePath picks the document named on the command line: the first
// argument ending in .todo, else the first argument, else defaultPath.
func ResolvePath(args []string, defaultPath string) (string, error) {
	candidate := ""
	for _, arg := range args {
		if strings.HasSuffix(strings.ToLower(arg), todoExt) {
			candidate = arg
			break
		}
	}
	if candidate == "" && len(args) > 0 {
		candidate = strings.TrimSpace(args[0])
	}
	if candidate == "" {
		candidate = strings.TrimSpace(defaultPath)
	}
	if candidate == "" {
		return "", ErrNoPath
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("launcher: resolve %s: %w", candidate, err)
	}
	return abs, nil
}

func LockPath(stateDir string) string   { return filepath.Join(stateDir, lockName) }
func SocketPath(stateDir string) string { return filepath.Join(stateDir, socketName) }

// Instance is the lock held by the running interactive process.
type Instance struct {
	lock       *os.File
	listener   net.Listener
	socketPath string
	logger     *log.Logger

	paths     chan string
	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Acquire takes the instance lock in stateDir and starts serving hand-offs.
// It returns ErrAlreadyRunning when another process holds the lock.
func Acquire(stateDir string, logger *log.Logger) (*Instance, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("launcher: create state dir: %w", err)
	}

	lockFile, err := os.OpenFile(LockPath(stateDir), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("launcher: open lock file: %w", err)
	}
	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		lockFile.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("launcher: acquire lock: %w", err)
	}

	// Holding the lock means any socket left behind belongs to a dead process.
	sock := SocketPath(stateDir)
	if err := os.Remove(sock); err != nil && !os.IsNotExist(err) {
		unlock(lockFile)
		return nil, fmt.Errorf("launcher: remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", sock)
	if err != nil {
		unlock(lockFile)
		return nil, fmt.Errorf("launcher: listen on %s: %w", sock, err)
	}

	inst := &Instance{
		lock:       lockFile,
		listener:   listener,
		socketPath: sock,
		logger:     logger,
		paths:      make(chan string, 4),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	go inst.serve()
	return inst, nil
}

// Paths delivers documents handed off by later invocations. It is closed by
// Close.
func (i *Instance) Paths() <-chan string {
	return i.paths
}

func (i *Instance) Close() error {
	var err error
	i.closeOnce.Do(func() {
		close(i.stopCh)
		err = i.listener.Close()
		<-i.doneCh
		close(i.paths)
		_ = os.Remove(i.socketPath)
		unlock(i.lock)
	})
	return err
}

func (i *Instance) serve() {
	defer close(i.doneCh)
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := i.listener.Accept()
		if err != nil {
			select {
			case <-i.stopCh:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			i.logger.Warn("accept hand-off", "err", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			i.handle(conn)
		}()
	}
}

func (i *Instance) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	reader := bufio.NewReaderSize(io.LimitReader(conn, maxPathLine), maxPathLine)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		i.logger.Warn("read hand-off", "err", err)
		return
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return
	}
	i.logger.Info("hand-off received", "path", path)
	select {
	case i.paths <- path:
	case <-i.stopCh:
	}
}

// Handoff sends path to the instance running in stateDir.
func Handoff(ctx context.Context, stateDir, path string) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", SocketPath(stateDir))
	if err != nil {
		return fmt.Errorf("launcher: connect to running instance: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := io.WriteString(conn, path+"\n"); err != nil {
		return fmt.Errorf("launcher: send path: %w", err)
	}
	return nil
}

func unlock(f *os.File) {
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	_ = f.Close()
}
