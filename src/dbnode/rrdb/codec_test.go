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

package rrdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRequestRoundTrip(t *testing.T) {
	req := WriteRequest{
		Op: OperationMultiPut,
		MultiPut: &MultiPutRequest{
			HashKey: []byte("user-1"),
			Kvs: []KeyValue{
				{SortKey: []byte("a"), Value: []byte("1")},
				{SortKey: []byte("b"), Value: []byte("2")},
			},
		},
	}
	data, err := EncodeWriteRequest(req)
	require.NoError(t, err)
	assert.Equal(t, byte(OperationMultiPut), data[0])

	decoded, err := DecodeWriteRequest(data)
	require.NoError(t, err)
	assert.Equal(t, OperationMultiPut, decoded.Op)
	require.NotNil(t, decoded.MultiPut)
	assert.Equal(t, "user-1", string(decoded.MultiPut.HashKey))
	assert.Len(t, decoded.MultiPut.Kvs, 2)
	assert.Nil(t, decoded.Put)
}

func TestDecodeWriteRequestErrors(t *testing.T) {
	_, err := DecodeWriteRequest(nil)
	require.Equal(t, errEmptyBody, err)

	_, err = DecodeWriteRequest([]byte{byte(OperationGet)})
	require.Error(t, err)

	_, err = DecodeWriteRequest([]byte{byte(OperationPut), 0xc1})
	require.Error(t, err)
}

func TestEncodeWriteRequestMissingBody(t *testing.T) {
	_, err := EncodeWriteRequest(WriteRequest{Op: OperationRemove})
	require.Equal(t, errMissingBody, err)
}

func TestReadRequestRoundTrip(t *testing.T) {
	req := ReadRequest{Op: OperationGet, Key: []byte{0, 1, 'k', 's'}}
	data, err := EncodeReadRequest(req)
	require.NoError(t, err)

	decoded, err := DecodeReadRequest(data)
	require.NoError(t, err)
	assert.Equal(t, req.Op, decoded.Op)
	assert.Equal(t, req.Key, decoded.Key)
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "check-and-mutate", OperationCheckAndMutate.String())
	assert.Equal(t, "unknown(99)", Operation(99).String())
	assert.True(t, OperationIncr.IsWrite())
	assert.False(t, OperationIncr.IsRead())
	assert.True(t, OperationMultiGet.IsRead())
}
