// Package main tests for the stategraph CLI application
package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/stategraph/pkg/stategraph"
)

// captureOutput captures stdout output during test execution
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestMain_Version(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"stategraph", "version"}
	out := captureOutput(main)
	assert.Equal(t, "stategraph dev (commit: unknown, built: unknown)\n", out)
}

func TestMain_Usage(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"stategraph"}
	out := captureOutput(main)
	assert.Contains(t, out, "usage: stategraph")
}

func TestDemoChainGraph(t *testing.T) {
	g, err := demoChain()
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"first"}, g.Entries())

	rt := stategraph.New()
	defer rt.Close()
	res, err := rt.Run(context.Background(), g, nil, stategraph.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, res.CommitOrder())
}

func TestDemoFanOutGraph(t *testing.T) {
	g, err := demoFanOut()
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())
	assert.Equal(t, []string{"seed"}, g.Entries())

	rt := stategraph.New()
	defer rt.Close()
	res, err := rt.Run(context.Background(), g, nil, stategraph.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.State["gathered"])

	tracks, ok := res.State["tracks"].([]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{"a", "b", "c"}, tracks)
}
