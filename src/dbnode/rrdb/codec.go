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
	"errors"
	"fmt"

	"gopkg.in/vmihailenco/msgpack.v2"
)

var (
	errEmptyBody         = errors.New("empty request body")
	errNotWriteOperation = errors.New("operation is not a write")
	errMissingBody       = errors.New("write request has no body for its operation")
)

// EncodeWriteRequest encodes a write request as a one byte operation tag
// followed by the msgpack encoded body.
func EncodeWriteRequest(req WriteRequest) ([]byte, error) {
	body, err := writeBody(req)
	if err != nil {
		return nil, err
	}
	b, err := msgpack.Marshal(body)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(req.Op)}, b...), nil
}

// DecodeWriteRequest decodes a tagged write request body.
func DecodeWriteRequest(data []byte) (WriteRequest, error) {
	if len(data) == 0 {
		return WriteRequest{}, errEmptyBody
	}
	req := WriteRequest{Op: Operation(data[0])}
	body := data[1:]

	var target interface{}
	switch req.Op {
	case OperationPut:
		req.Put = &PutRequest{}
		target = req.Put
	case OperationMultiPut:
		req.MultiPut = &MultiPutRequest{}
		target = req.MultiPut
	case OperationRemove:
		req.Remove = &RemoveRequest{}
		target = req.Remove
	case OperationMultiRemove:
		req.MultiRemove = &MultiRemoveRequest{}
		target = req.MultiRemove
	case OperationIncr:
		req.Incr = &IncrRequest{}
		target = req.Incr
	case OperationCheckAndSet:
		req.CheckAndSet = &CheckAndSetRequest{}
		target = req.CheckAndSet
	case OperationCheckAndMutate:
		req.CheckAndMutate = &CheckAndMutateRequest{}
		target = req.CheckAndMutate
	default:
		return WriteRequest{}, fmt.Errorf("%v: %v", errNotWriteOperation, req.Op)
	}
	if err := msgpack.Unmarshal(body, target); err != nil {
		return WriteRequest{}, err
	}
	return req, nil
}

// EncodeReadRequest encodes a read request with msgpack.
func EncodeReadRequest(req ReadRequest) ([]byte, error) {
	return msgpack.Marshal(&req)
}

// DecodeReadRequest decodes a msgpack encoded read request.
func DecodeReadRequest(data []byte) (ReadRequest, error) {
	if len(data) == 0 {
		return ReadRequest{}, errEmptyBody
	}
	var req ReadRequest
	if err := msgpack.Unmarshal(data, &req); err != nil {
		return ReadRequest{}, err
	}
	return req, nil
}

func writeBody(req WriteRequest) (interface{}, error) {
	var body interface{}
	switch req.Op {
	case OperationPut:
		body = req.Put
	case OperationMultiPut:
		body = req.MultiPut
	case OperationRemove:
		body = req.Remove
	case OperationMultiRemove:
		body = req.MultiRemove
	case OperationIncr:
		body = req.Incr
	case OperationCheckAndSet:
		body = req.CheckAndSet
	case OperationCheckAndMutate:
		body = req.CheckAndMutate
	default:
		return nil, fmt.Errorf("%v: %v", errNotWriteOperation, req.Op)
	}
	if isNilBody(body) {
		return nil, errMissingBody
	}
	return body, nil
}

func isNilBody(body interface{}) bool {
	switch v := body.(type) {
	case *PutRequest:
		return v == nil
	case *MultiPutRequest:
		return v == nil
	case *RemoveRequest:
		return v == nil
	case *MultiRemoveRequest:
		return v == nil
	case *IncrRequest:
		return v == nil
	case *CheckAndSetRequest:
		return v == nil
	case *CheckAndMutateRequest:
		return v == nil
	}
	return true
}
