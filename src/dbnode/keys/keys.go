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

// Package keys implements the composite row key schema. A raw key is the
// 2-byte big-endian length of the hash key, followed by the hash key and
// then the sort key.
package keys

import (
	"encoding/binary"
	"errors"
	"math"
)

const lengthPrefixSize = 2

var errHashKeyTooLong = errors.New("hash key length exceeds 65535 bytes")

// Encode builds a raw key from a hash key and a sort key.
func Encode(hashKey, sortKey []byte) ([]byte, error) {
	if len(hashKey) > math.MaxUint16 {
		return nil, errHashKeyTooLong
	}
	raw := make([]byte, lengthPrefixSize+len(hashKey)+len(sortKey))
	binary.BigEndian.PutUint16(raw, uint16(len(hashKey)))
	copy(raw[lengthPrefixSize:], hashKey)
	copy(raw[lengthPrefixSize+len(hashKey):], sortKey)
	return raw, nil
}

// MustEncode is Encode that panics on error, used for tests and literals.
func MustEncode(hashKey, sortKey []byte) []byte {
	raw, err := Encode(hashKey, sortKey)
	if err != nil {
		panic(err)
	}
	return raw
}

// Decode splits a raw key into its hash key and sort key. It returns false
// when the key is shorter than the length prefix or the declared hash key
// length overflows the key. Returned slices alias raw.
func Decode(raw []byte) (hashKey, sortKey []byte, ok bool) {
	if len(raw) < lengthPrefixSize {
		return nil, nil, false
	}
	n := int(binary.BigEndian.Uint16(raw))
	if lengthPrefixSize+n > len(raw) {
		return nil, nil, false
	}
	hashKey = raw[lengthPrefixSize : lengthPrefixSize+n]
	sortKey = raw[lengthPrefixSize+n:]
	return hashKey, sortKey, true
}

// HashKey returns the hash key of a raw key.
func HashKey(raw []byte) ([]byte, bool) {
	hashKey, _, ok := Decode(raw)
	return hashKey, ok
}
