// Copyright (c) 2016 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package config

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	ListenAddress string `yaml:"listenAddress" validate:"nonzero"`
	Buckets       int    `yaml:"buckets" validate:"min=3"`
}

func writeFile(t *testing.T, contents string) string {
	f, err := ioutil.TempFile("", "config")
	require.NoError(t, err)
	_, err = f.WriteString(contents)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestLoadFilesMergesInOrder(t *testing.T) {
	first := writeFile(t, "listenAddress: 0.0.0.0:9000\nbuckets: 37\n")
	defer os.Remove(first)
	second := writeFile(t, "buckets: 101\n")
	defer os.Remove(second)

	var cfg testConfig
	require.NoError(t, LoadFiles(&cfg, []string{first, second}, Options{}))
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress)
	assert.Equal(t, 101, cfg.Buckets)
}

func TestLoadFileValidates(t *testing.T) {
	fname := writeFile(t, "listenAddress: 0.0.0.0:9000\nbuckets: 2\n")
	defer os.Remove(fname)

	var cfg testConfig
	require.Error(t, LoadFile(&cfg, fname, Options{}))
	require.NoError(t, LoadFile(&cfg, fname, Options{DisableValidate: true}))
}

func TestLoadFileStrict(t *testing.T) {
	fname := writeFile(t, "listenAddress: 0.0.0.0:9000\nbuckets: 37\nunknown: 1\n")
	defer os.Remove(fname)

	var cfg testConfig
	require.Error(t, LoadFile(&cfg, fname, Options{}))
	require.NoError(t, LoadFile(&cfg, fname, Options{DisableUnmarshalStrict: true}))
}

func TestLoadFileExpand(t *testing.T) {
	require.NoError(t, os.Setenv("TEST_LISTEN_ADDRESS", "127.0.0.1:1234"))
	defer os.Unsetenv("TEST_LISTEN_ADDRESS")

	fname := writeFile(t, "listenAddress: ${TEST_LISTEN_ADDRESS}\nbuckets: 37\n")
	defer os.Remove(fname)

	var cfg testConfig
	require.NoError(t, LoadFile(&cfg, fname, Options{Expand: true}))
	assert.Equal(t, "127.0.0.1:1234", cfg.ListenAddress)
}

func TestNoFiles(t *testing.T) {
	var cfg testConfig
	require.Equal(t, errNoFilesToLoad, LoadFiles(&cfg, nil, Options{}))
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(testConfig{ListenAddress: "a", Buckets: 3}, &buf))
	assert.Equal(t, "listenAddress: a\nbuckets: 3\n", buf.String())
}
