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

package partition

import (
	"context"
	"testing"

	"github.com/m3db/m3hotspot/src/dbnode/keys"
	"github.com/m3db/m3hotspot/src/dbnode/rrdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryWriteBatch(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Add("orders", 2, true)
	require.NoError(t, err)

	put, err := rrdb.EncodeWriteRequest(rrdb.WriteRequest{
		Op:  rrdb.OperationPut,
		Put: &rrdb.PutRequest{Key: keys.MustEncode([]byte("user_1"), []byte("a")), Value: []byte("v")},
	})
	require.NoError(t, err)
	multiPut, err := rrdb.EncodeWriteRequest(rrdb.WriteRequest{
		Op: rrdb.OperationMultiPut,
		MultiPut: &rrdb.MultiPutRequest{
			HashKey: []byte("user_2"),
			Kvs:     []rrdb.KeyValue{{SortKey: []byte("a")}, {SortKey: []byte("b")}},
		},
	})
	require.NoError(t, err)

	result, err := r.Write(context.Background(), &Batch{
		Table:     "orders",
		Partition: 2,
		Requests:  [][]byte{put, multiPut, {0xff}},
	})
	require.NoError(t, err)
	assert.Equal(t, &BatchResult{Accepted: 2, Rejected: 1}, result)

	p, ok := r.Get("orders", 2)
	require.True(t, ok)
	assert.Equal(t, uint64(2), p.Stat().WriteCount)
}

func TestRegistryReadBatch(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Add("orders", 0, false)
	require.NoError(t, err)

	get, err := rrdb.EncodeReadRequest(rrdb.ReadRequest{
		Op:  rrdb.OperationGet,
		Key: keys.MustEncode([]byte("user_1"), []byte("a")),
	})
	require.NoError(t, err)

	result, err := r.Read(context.Background(), &Batch{
		Table:    "orders",
		Requests: [][]byte{get, get, nil},
	})
	require.NoError(t, err)
	assert.Equal(t, &BatchResult{Accepted: 2, Rejected: 1}, result)

	p, ok := r.Get("orders", 0)
	require.True(t, ok)
	assert.Equal(t, uint64(2), p.Stat().ReadCount)
}

func TestRegistryBatchUnknownPartition(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Write(context.Background(), &Batch{Table: "orders", Partition: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), errUnknownPartition.Error())

	_, err = r.Read(context.Background(), nil)
	require.Equal(t, errBatchRequired, err)
}
