package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-safety/safekb-cli/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("text")}
	e := NewWithRunner(runner)
	require.NotNil(t, e)
	assert.Equal(t, runner, e.runner)
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Error(t, ErrPDFToolNotFound)
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

// Extract consults LookPath before the runner, so the mock tests only
// run where pdftotext is installed.
func TestExtract_WithMockRunner(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not in PATH")
	}

	e := NewWithRunner(&mockRunner{
		output: []byte("FALL PROTECTION\n\nInspect your harness.\n"),
	})

	text, err := e.Extract(context.Background(), "/docs/manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, "FALL PROTECTION\n\nInspect your harness.", text)
}

func TestExtract_RunnerError(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not in PATH")
	}

	e := NewWithRunner(&mockRunner{err: errors.New("exit status 1")})

	_, err := e.Extract(context.Background(), "/docs/manual.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
}
