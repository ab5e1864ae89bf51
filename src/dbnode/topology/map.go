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
	"errors"
	"fmt"
	"sync"
)

var errUnknownPartition = errors.New("no primary known for partition")

type partitionKey struct {
	table     string
	partition int
}

// Map is a Resolver whose primaries are set from configuration and updated
// as nodes report which replicas they lead.
type Map struct {
	sync.RWMutex

	hosts      []Host
	primaries  map[partitionKey]string
	partitions map[string]int
}

// NewMap returns a map of the given hosts with no known primaries.
func NewMap(hosts []Host) *Map {
	return &Map{
		hosts:      hosts,
		primaries:  make(map[partitionKey]string),
		partitions: make(map[string]int),
	}
}

// Hosts returns the hosts of the cluster.
func (m *Map) Hosts() []Host {
	return m.hosts
}

// SetPrimary records the address of a partition's primary replica.
func (m *Map) SetPrimary(table string, partition int, address string) {
	m.Lock()
	m.primaries[partitionKey{table: table, partition: partition}] = address
	m.Unlock()
}

// GrowPartitionCount raises the known partition count of a table to count.
// The count never shrinks, so partitions whose replicas miss a report keep
// their place.
func (m *Map) GrowPartitionCount(table string, count int) {
	m.Lock()
	if count > m.partitions[table] {
		m.partitions[table] = count
	}
	m.Unlock()
}

// PartitionCount returns the known partition count of a table, zero if the
// table was never seen.
func (m *Map) PartitionCount(table string) int {
	m.RLock()
	defer m.RUnlock()
	return m.partitions[table]
}

// Primary implements Resolver.
func (m *Map) Primary(table string, partition int) (string, error) {
	m.RLock()
	address, ok := m.primaries[partitionKey{table: table, partition: partition}]
	m.RUnlock()
	if !ok {
		return "", fmt.Errorf("%v: %s.%d", errUnknownPartition, table, partition)
	}
	return address, nil
}
