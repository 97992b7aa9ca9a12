package verify_test

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

func testContext() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

// mockCommandRunner records calls and replays scripted responses keyed by argv.
type mockCommandRunner struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	calls     [][]string
	block     bool
}

type mockResponse struct {
	output   string
	exitCode int
	err      error
}

func newMockCommandRunner() *mockCommandRunner {
	return &mockCommandRunner{responses: make(map[string]mockResponse)}
}

func (m *mockCommandRunner) SetResponse(cmd, output string, exitCode int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = mockResponse{output: output, exitCode: exitCode, err: err}
}

func (m *mockCommandRunner) Run(ctx context.Context, _ string, argv []string) (string, int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, argv)
	resp, ok := m.responses[strings.Join(argv, " ")]
	block := m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "partial output", -1, ctx.Err()
	}
	if !ok {
		return "", 0, nil
	}
	return resp.output, resp.exitCode, resp.err
}
