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

// Package rrdb defines the replicated row database request types that pass
// through a partition and their msgpack wire bodies.
package rrdb

import "fmt"

// Operation is the wire-level request type tag.
type Operation uint8

const (
	// OperationPut writes a single row addressed by a raw key.
	OperationPut Operation = iota + 1
	// OperationMultiPut writes several sort keys under one hash key.
	OperationMultiPut
	// OperationRemove deletes a single row addressed by a raw key.
	OperationRemove
	// OperationMultiRemove deletes several sort keys under one hash key.
	OperationMultiRemove
	// OperationIncr atomically increments a row addressed by a raw key.
	OperationIncr
	// OperationCheckAndSet conditionally sets a row under one hash key.
	OperationCheckAndSet
	// OperationCheckAndMutate conditionally applies several mutations under one hash key.
	OperationCheckAndMutate
	// OperationGet reads a single row addressed by a raw key.
	OperationGet
	// OperationMultiGet reads several sort keys under one hash key.
	OperationMultiGet
	// OperationTTL reads the time to live of a row addressed by a raw key.
	OperationTTL
	// OperationSortKeyCount counts the sort keys under one hash key.
	OperationSortKeyCount
)

var operationNames = map[Operation]string{
	OperationPut:            "put",
	OperationMultiPut:       "multi-put",
	OperationRemove:         "remove",
	OperationMultiRemove:    "multi-remove",
	OperationIncr:           "incr",
	OperationCheckAndSet:    "check-and-set",
	OperationCheckAndMutate: "check-and-mutate",
	OperationGet:            "get",
	OperationMultiGet:       "multi-get",
	OperationTTL:            "ttl",
	OperationSortKeyCount:   "sortkey-count",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(o))
}

// IsWrite returns whether the operation mutates data.
func (o Operation) IsWrite() bool {
	return o >= OperationPut && o <= OperationCheckAndMutate
}

// IsRead returns whether the operation only reads data.
func (o Operation) IsRead() bool {
	return o >= OperationGet && o <= OperationSortKeyCount
}

// KeyValue is a sort key and value pair.
type KeyValue struct {
	SortKey []byte `msgpack:"sortKey"`
	Value   []byte `msgpack:"value"`
}

// PutRequest writes a value under a raw key.
type PutRequest struct {
	Key           []byte `msgpack:"key"`
	Value         []byte `msgpack:"value"`
	ExpireSeconds int32  `msgpack:"expireSeconds"`
}

// MultiPutRequest writes several rows under one hash key.
type MultiPutRequest struct {
	HashKey       []byte     `msgpack:"hashKey"`
	Kvs           []KeyValue `msgpack:"kvs"`
	ExpireSeconds int32      `msgpack:"expireSeconds"`
}

// RemoveRequest deletes the row under a raw key.
type RemoveRequest struct {
	Key []byte `msgpack:"key"`
}

// MultiRemoveRequest deletes several rows under one hash key.
type MultiRemoveRequest struct {
	HashKey  []byte   `msgpack:"hashKey"`
	SortKeys [][]byte `msgpack:"sortKeys"`
}

// IncrRequest increments the integer stored under a raw key.
type IncrRequest struct {
	Key       []byte `msgpack:"key"`
	Increment int64  `msgpack:"increment"`
}

// CheckAndSetRequest sets a row if a check on another row under the same
// hash key passes.
type CheckAndSetRequest struct {
	HashKey      []byte `msgpack:"hashKey"`
	CheckSortKey []byte `msgpack:"checkSortKey"`
	CheckOperand []byte `msgpack:"checkOperand"`
	SetSortKey   []byte `msgpack:"setSortKey"`
	SetValue     []byte `msgpack:"setValue"`
}

// Mutation is a single put or remove applied by CheckAndMutateRequest.
type Mutation struct {
	Remove  bool   `msgpack:"remove"`
	SortKey []byte `msgpack:"sortKey"`
	Value   []byte `msgpack:"value"`
}

// CheckAndMutateRequest applies mutations if a check on a row under the
// same hash key passes.
type CheckAndMutateRequest struct {
	HashKey      []byte     `msgpack:"hashKey"`
	CheckSortKey []byte     `msgpack:"checkSortKey"`
	CheckOperand []byte     `msgpack:"checkOperand"`
	Mutations    []Mutation `msgpack:"mutations"`
}

// WriteRequest is one element of a write batch applied to a partition.
// Exactly one of the typed fields matching Op is set.
type WriteRequest struct {
	Op             Operation
	Put            *PutRequest
	MultiPut       *MultiPutRequest
	Remove         *RemoveRequest
	MultiRemove    *MultiRemoveRequest
	Incr           *IncrRequest
	CheckAndSet    *CheckAndSetRequest
	CheckAndMutate *CheckAndMutateRequest
}

// ReadRequest is a read served by a partition. Single row reads carry a
// raw key, hash key scoped reads carry the hash key.
type ReadRequest struct {
	Op       Operation `msgpack:"op"`
	Key      []byte    `msgpack:"key,omitempty"`
	HashKey  []byte    `msgpack:"hashKey,omitempty"`
	SortKeys [][]byte  `msgpack:"sortKeys,omitempty"`
}
