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

import "fmt"

// Configuration is the static cluster topology.
type Configuration struct {
	// Hosts are the storage nodes of the cluster.
	Hosts []Host `yaml:"hosts" validate:"min=1"`

	// Tables optionally sets partition counts and pins primaries, keyed by
	// host ID.
	Tables []TableConfiguration `yaml:"tables"`
}

// TableConfiguration describes one table.
type TableConfiguration struct {
	Name string `yaml:"name" validate:"nonzero"`

	// Partitions is the partition count of the table. Zero means it is
	// learned from node reports.
	Partitions int `yaml:"partitions" validate:"min=0"`

	// Primaries holds the host ID of the primary of each partition, in
	// partition order.
	Primaries []string `yaml:"primaries"`
}

// NewMap builds a topology map from the configuration.
func (c Configuration) NewMap() (*Map, error) {
	byID := make(map[string]string, len(c.Hosts))
	for _, h := range c.Hosts {
		id := h.ID
		if id == "" {
			id = h.Address
		}
		byID[id] = h.Address
	}

	m := NewMap(c.Hosts)
	for _, table := range c.Tables {
		if table.Partitions > 0 && len(table.Primaries) > table.Partitions {
			return nil, fmt.Errorf("table %s has %d partitions but %d primaries",
				table.Name, table.Partitions, len(table.Primaries))
		}
		m.GrowPartitionCount(table.Name, table.Partitions)
		m.GrowPartitionCount(table.Name, len(table.Primaries))
		for partition, hostID := range table.Primaries {
			address, ok := byID[hostID]
			if !ok {
				return nil, fmt.Errorf("table %s partition %d: unknown host %q",
					table.Name, partition, hostID)
			}
			m.SetPrimary(table.Name, partition, address)
		}
	}
	return m, nil
}
