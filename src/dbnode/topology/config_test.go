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

package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func TestConfigurationNewMap(t *testing.T) {
	var cfg Configuration
	require.NoError(t, yaml.Unmarshal([]byte(`
hosts:
  - id: node1
    address: 10.0.0.1:9100
  - address: 10.0.0.2:9100
tables:
  - name: orders
    primaries: [node1, 10.0.0.2:9100]
`), &cfg))

	m, err := cfg.NewMap()
	require.NoError(t, err)
	assert.Len(t, m.Hosts(), 2)

	addr, err := m.Primary("orders", 0)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:9100", addr)

	addr, err = m.Primary("orders", 1)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:9100", addr)

	_, err = m.Primary("orders", 2)
	require.Error(t, err)
}

func TestConfigurationPartitionCount(t *testing.T) {
	cfg := Configuration{
		Hosts: []Host{{ID: "node1", Address: "a:1"}},
		Tables: []TableConfiguration{
			{Name: "orders", Partitions: 8, Primaries: []string{"node1"}},
			{Name: "users", Primaries: []string{"node1", "node1"}},
		},
	}
	m, err := cfg.NewMap()
	require.NoError(t, err)
	assert.Equal(t, 8, m.PartitionCount("orders"))
	assert.Equal(t, 2, m.PartitionCount("users"))
	assert.Equal(t, 0, m.PartitionCount("events"))
}

func TestConfigurationTooManyPrimaries(t *testing.T) {
	cfg := Configuration{
		Hosts:  []Host{{ID: "node1", Address: "a:1"}},
		Tables: []TableConfiguration{{Name: "orders", Partitions: 1, Primaries: []string{"node1", "node1"}}},
	}
	_, err := cfg.NewMap()
	require.Error(t, err)
}

func TestMapGrowPartitionCount(t *testing.T) {
	m := NewMap(nil)
	m.GrowPartitionCount("orders", 4)
	m.GrowPartitionCount("orders", 2)
	assert.Equal(t, 4, m.PartitionCount("orders"))
	m.GrowPartitionCount("orders", 6)
	assert.Equal(t, 6, m.PartitionCount("orders"))
}

func TestConfigurationUnknownHost(t *testing.T) {
	cfg := Configuration{
		Hosts:  []Host{{ID: "node1", Address: "a:1"}},
		Tables: []TableConfiguration{{Name: "orders", Primaries: []string{"node2"}}},
	}
	_, err := cfg.NewMap()
	require.Error(t, err)
}

func TestMapSetPrimary(t *testing.T) {
	m := NewMap(nil)
	_, err := m.Primary("t", 0)
	require.Error(t, err)

	m.SetPrimary("t", 0, "a:1")
	m.SetPrimary("t", 0, "b:1")
	addr, err := m.Primary("t", 0)
	require.NoError(t, err)
	assert.Equal(t, "b:1", addr)
}
