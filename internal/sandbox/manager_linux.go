//go:build linux

package sandbox

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/criyle/go-sandbox/container"
	"github.com/criyle/go-sandbox/pkg/mount"
	"github.com/criyle/go-sandbox/runner"
	"golang.org/x/sys/unix"

	"openclaw/internal/config"
)

// Interpreter binaries and their libraries are all the worker ever reads.
var defaultReadOnlyPaths = []string{"/bin", "/usr", "/lib", "/lib64"}

// Manager owns a container environment in which executor workers run.
// Executions are stateless: the container filesystem is read-only host
// binds plus a tmpfs, recreated content-free for the worker's lifetime.
type Manager struct {
	cfg      config.Sandbox
	mu       sync.Mutex
	started  bool
	disabled bool
	env      container.Environment
}

// NewManager constructs a sandbox manager from configuration.
func NewManager(cfg config.Sandbox) *Manager {
	return &Manager{
		cfg:      cfg,
		disabled: !cfg.Enabled,
	}
}

// Start builds and initializes the container. It is safe to call multiple times.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started || m.disabled {
		m.started = true
		return nil
	}

	roPaths := m.cfg.ReadOnlyPaths
	if len(roPaths) == 0 {
		roPaths = defaultReadOnlyPaths
	}

	mb := mount.NewBuilder()
	for _, p := range roPaths {
		if p == "" {
			continue
		}
		resolved, err := filepath.EvalSymlinks(p)
		if err != nil {
			// Not every distro has every path (e.g. /lib64).
			continue
		}
		target := strings.TrimPrefix(p, "/")
		if target == "" {
			continue
		}
		mb.Mounts = append(mb.Mounts, mount.Mount{
			Source: resolved,
			Target: target,
			Flags:  readOnlyBindFlags(),
		})
	}

	mb.WithTmpfs("tmp", "")
	mb.WithProc()

	builder := container.Builder{
		Mounts:    mb.Mounts,
		MaskPaths: m.cfg.MaskedPaths,
		WorkDir:   "/tmp",
	}

	if m.cfg.NonRootUser {
		builder.CredGenerator = &credGenerator{
			uid: os.Geteuid(),
			gid: os.Getegid(),
		}
	}

	env, err := builder.Build()
	if err != nil {
		return fmt.Errorf("sandbox: build container: %w", err)
	}

	m.env = env
	m.started = true
	return nil
}

// ExecInSandbox runs the worker inside the container, wiring stdio to the
// provided streams. Errors when the sandbox is disabled; the caller decides
// whether host execution is an acceptable fallback.
func (m *Manager) ExecInSandbox(ctx context.Context, cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) (runner.Result, error) {
	if m.disabled {
		return runner.Result{}, fmt.Errorf("sandbox: disabled")
	}

	if err := m.Start(); err != nil {
		return runner.Result{}, err
	}

	m.mu.Lock()
	env := m.env
	m.mu.Unlock()

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return runner.Result{}, fmt.Errorf("sandbox: stdin pipe: %w", err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return runner.Result{}, fmt.Errorf("sandbox: stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		return runner.Result{}, fmt.Errorf("sandbox: stderr pipe: %w", err)
	}

	wg := sync.WaitGroup{}

	if stdin != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			io.Copy(stdinW, stdin)
			stdinW.Close()
		}()
	} else {
		stdinW.Close()
	}

	if stdout != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			io.Copy(stdout, stdoutR)
		}()
	}

	if stderr != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			io.Copy(stderr, stderrR)
		}()
	}

	param := container.ExecveParam{
		Args: append([]string{cmd}, args...),
		Files: []uintptr{
			stdinR.Fd(),
			stdoutW.Fd(),
			stderrW.Fd(),
		},
	}

	result := env.Execve(ctx, param)

	stdinR.Close()
	stdoutW.Close()
	stderrW.Close()

	wg.Wait()

	stdoutR.Close()
	stderrR.Close()

	return result, nil
}

// Close tears down the container environment.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.env != nil {
		err := m.env.Destroy()
		m.env = nil
		m.started = false
		return err
	}
	return nil
}

func readOnlyBindFlags() uintptr {
	// MS_NOSYMFOLLOW keeps symlink traversal out on supported kernels.
	return uintptr(unix.MS_BIND | unix.MS_NOSUID | unix.MS_PRIVATE | unix.MS_REC |
		unix.MS_RDONLY | unix.MS_NOSYMFOLLOW)
}

type credGenerator struct {
	uid int
	gid int
}

func (c *credGenerator) Get() syscall.Credential {
	return syscall.Credential{
		Uid: uint32(c.uid),
		Gid: uint32(c.gid),
	}
}
