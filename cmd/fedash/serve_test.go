package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fedash/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestServeMissingDataIsFatal(t *testing.T) {
	t.Setenv("FEDASH_ADDR", "127.0.0.1:0")
	dir := t.TempDir()

	done := make(chan error, 1)
	go func() {
		_, err := execute(t, "serve", "--config", filepath.Join(dir, "none.yaml"), "--data", filepath.Join(dir, "missing.csv"), "--log-level", "error")
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "read dataset")
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not exit after a failed load")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	dir := t.TempDir()
	c := config.DefaultConfig()
	c.Server.Addr = "127.0.0.1:0"
	c.Data.Path = writeSample(t, dir)

	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, c, zap.New(core)) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("API fully ready").Len() == 1
	}, 10*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	assert.Zero(t, logs.FilterMessage("Dataset load failed").Len())
}

func TestServeRejectsBadDefaultMetric(t *testing.T) {
	c := config.DefaultConfig()
	c.Dashboard.DefaultMetric = "prevalence"
	assert.Error(t, serve(context.Background(), c, zap.NewNop()))
}
