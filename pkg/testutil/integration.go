package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// IntegrationTest skips the test unless it's running outside -short
// mode, the way a test that shells out to a CLI binary or touches the
// filesystem extensively should.
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// TestEnvironment bundles a scoped context and a scratch directory for
// an end-to-end test of a converter command, with deferred cleanup.
type TestEnvironment struct {
	t       *testing.T
	ctx     context.Context
	cancel  context.CancelFunc
	tempDir string
	cleanup []func()
}

// NewTestEnvironment creates a fresh scratch directory and a
// 30-second-bounded context, registering both for cleanup via t.Cleanup.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	tempDir, err := os.MkdirTemp("", "colbuild-test-*")
	require.NoError(t, err)

	env := &TestEnvironment{
		t:       t,
		ctx:     ctx,
		cancel:  cancel,
		tempDir: tempDir,
	}
	t.Cleanup(env.Cleanup)
	return env
}

// Context returns the test's bounded context.
func (e *TestEnvironment) Context() context.Context {
	return e.ctx
}

// TempDir returns the scratch directory path.
func (e *TestEnvironment) TempDir() string {
	return e.tempDir
}

// WriteFile writes content under the scratch directory and returns the
// full path.
func (e *TestEnvironment) WriteFile(name string, content []byte) string {
	path := filepath.Join(e.tempDir, name)
	require.NoError(e.t, os.WriteFile(path, content, 0o644))
	return path
}

// AddCleanup registers a function to run, in reverse order, when
// Cleanup runs.
func (e *TestEnvironment) AddCleanup(fn func()) {
	e.cleanup = append(e.cleanup, fn)
}

// Cleanup cancels the context and runs registered cleanup functions,
// including removing the scratch directory. Called automatically via
// t.Cleanup; exposed for suites that need to run it early.
func (e *TestEnvironment) Cleanup() {
	e.cancel()
	for i := len(e.cleanup) - 1; i >= 0; i-- {
		e.cleanup[i]()
	}
	os.RemoveAll(e.tempDir)
}

// WriteCSVFixture writes a simple "id,name,value" CSV file with
// numRows data rows under dir and returns its path.
func WriteCSVFixture(t *testing.T, dir string, numRows int) string {
	t.Helper()

	path := filepath.Join(dir, "fixture.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteString("id,name,value\n")
	require.NoError(t, err)
	for i := 0; i < numRows; i++ {
		_, err = fmt.Fprintf(f, "%d,row_%d,%.2f\n", i, i, float64(i)*1.5)
		require.NoError(t, err)
	}
	return path
}
