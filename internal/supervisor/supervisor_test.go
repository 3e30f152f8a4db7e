package supervisor

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hivemindlabs/hivemindd/internal/config"
	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(assertError("boom")))
	assert.Equal(t, 2, ExitCode(engine.ErrSnapshotCorrupt))
}

func TestSupervisorServesAndShutsDownGracefully(t *testing.T) {
	dataDir := t.TempDir()
	cfg := config.Config{
		ListenAddr:        "127.0.0.1:18123",
		DataDir:           dataDir,
		SnapshotInterval:  0,
		EmbeddingModel:    "openai:text-embedding-3-small",
		LLMProvider:       "anthropic",
		EnableReplication: false,
		RequestTimeout:    5 * time.Second,
	}

	sup, err := New(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	// Give the listener a moment to come up.
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://127.0.0.1:18123/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not shut down in time")
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "snapshot.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
}

type assertError string

func (e assertError) Error() string { return string(e) }
