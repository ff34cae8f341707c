package webdriver

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"time"

	"github.com/automationqa/journey-runner/pkg/logger"
)

// DefaultDriverPath is used when no chromedriver binary is configured.
const DefaultDriverPath = "chromedriver"

const (
	startupTimeout = 20 * time.Second
	statusInterval = 100 * time.Millisecond
)

// Service is a chromedriver process listening on a local port.
type Service struct {
	path string
	port int
	cmd  *exec.Cmd
}

// NewService prepares a chromedriver service for the binary at path.
func NewService(path string) *Service {
	if path == "" {
		path = DefaultDriverPath
	}
	return &Service{path: path}
}

// URL returns the base address of the running service.
func (s *Service) URL() string {
	return "http://127.0.0.1:" + strconv.Itoa(s.port)
}

// Start launches chromedriver on a free port and waits until it reports ready.
func (s *Service) Start(ctx context.Context) error {
	port, err := freePort()
	if err != nil {
		return err
	}
	s.port = port

	// not CommandContext: the process must outlive a cancelled run until Quit
	s.cmd = exec.Command(s.path, "--port="+strconv.Itoa(port))
	s.cmd.Stdout = logger.GetWriter()
	s.cmd.Stderr = logger.GetWriter()

	logger.Info("starting %s on port %d", s.path, port)
	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", s.path, err)
	}

	if err := s.waitReady(ctx); err != nil {
		s.Stop()
		return err
	}
	return nil
}

func (s *Service) waitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	client := NewClient(s.URL())
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		ready, err := client.Status(ctx)
		if err == nil && ready {
			return nil
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("%s did not become ready: %w", s.path, err)
			}
			return fmt.Errorf("%s did not become ready: %w", s.path, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Stop terminates the chromedriver process.
func (s *Service) Stop() {
	if s.cmd == nil || s.cmd.Process == nil {
		return
	}
	_ = s.cmd.Process.Kill()
	_ = s.cmd.Wait()
	s.cmd = nil
}

// freePort asks the kernel for an unused loopback port.
func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("no free port: %w", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
