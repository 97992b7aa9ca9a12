package ai_test

import (
	"context"
	"io"
	"os/exec"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wliublackruvy/agent-based-dev/internal/domain"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

// fakeExecutor records invocations and returns canned output.
type fakeExecutor struct {
	mu     sync.Mutex
	args   [][]string
	stdin  []string
	dirs   []string
	stdout string
	stderr string
	err    error
}

func (f *fakeExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.args = append(f.args, cmd.Args)
	f.dirs = append(f.dirs, cmd.Dir)
	if cmd.Stdin != nil {
		data, _ := io.ReadAll(cmd.Stdin)
		f.stdin = append(f.stdin, string(data))
	} else {
		f.stdin = append(f.stdin, "")
	}
	return []byte(f.stdout), []byte(f.stderr), f.err
}

// scriptedProvider returns its answers in order and records requests.
type scriptedProvider struct {
	name     string
	mu       sync.Mutex
	answers  []string
	errs     []error
	requests []*domain.GenerationRequest
}

func (s *scriptedProvider) Name() string { return s.name }

func (s *scriptedProvider) Generate(_ context.Context, req *domain.GenerationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := len(s.requests)
	s.requests = append(s.requests, req)

	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.answers) {
		return s.answers[i], nil
	}
	return "", nil
}

func (s *scriptedProvider) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
