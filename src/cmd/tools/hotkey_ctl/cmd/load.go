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

package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/m3db/m3hotspot/src/dbnode/keys"
	"github.com/m3db/m3hotspot/src/dbnode/partition"
	"github.com/m3db/m3hotspot/src/dbnode/rrdb"
	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"
	xsync "github.com/m3db/m3hotspot/src/x/sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var errInvalidLoad = errors.New("--requests, --batch and --concurrency must be positive")

type loadFlags struct {
	hashKey     string
	hotEvery    int
	coldKeys    int
	requests    int
	batchSize   int
	concurrency int
}

func newLoadCommand(flags *globalFlags, newClient func() (nodeClient, error)) *cobra.Command {
	var lf loadFlags
	cmd := &cobra.Command{
		Use:   "load",
		Short: "send synthetic reads or writes to a partition",
		Long: `load sends --requests reads or writes, per --type, to one partition.
Every --hot-every request targets --hashkey, the rest cycle through
--cold-keys distinct hash keys.`,
		Example: `# Make user_42 the write hotkey of partition 3:
hotkey_ctl -e 127.0.0.1:9100 -t orders -p 3 --type WRITE load --hashkey user_42 --hot-every 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if lf.requests <= 0 || lf.batchSize <= 0 || lf.concurrency <= 0 {
				return errInvalidLoad
			}
			direction, err := hotkey.ParseDirection(flags.typ)
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}

			send := c.Write
			if direction == hotkey.Read {
				send = c.Read
			}

			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				total partition.BatchResult
				errs  []error
			)
			pool := xsync.NewWorkerPool(lf.concurrency)
			pool.Init()
			for sent := 0; sent < lf.requests; {
				n := lf.batchSize
				if remaining := lf.requests - sent; remaining < n {
					n = remaining
				}
				batch, err := lf.batch(flags, direction, sent, n)
				if err != nil {
					return err
				}
				sent += n

				wg.Add(1)
				pool.Go(func() {
					defer wg.Done()
					result, err := send(context.Background(), flags.endpoint, batch)

					mu.Lock()
					defer mu.Unlock()
					if err != nil {
						errs = append(errs, err)
						return
					}
					total.Accepted += result.Accepted
					total.Rejected += result.Rejected
				})
			}
			wg.Wait()

			if len(errs) > 0 {
				return errors.Wrapf(errs[0], "%d of the load batches failed", len(errs))
			}
			return writeJSON(cmd.OutOrStdout(), total)
		},
	}

	f := cmd.Flags()
	f.StringVar(&lf.hashKey, "hashkey", "", "hash key to make hot, empty sends only cold keys")
	f.IntVar(&lf.hotEvery, "hot-every", 2, "send the hot hash key every n requests")
	f.IntVar(&lf.coldKeys, "cold-keys", 1000, "number of distinct cold hash keys")
	f.IntVar(&lf.requests, "requests", 10000, "number of requests to send")
	f.IntVar(&lf.batchSize, "batch", 100, "requests per batch")
	f.IntVar(&lf.concurrency, "concurrency", 1, "batches in flight at once")
	return cmd
}

func (f loadFlags) batch(
	flags *globalFlags,
	direction hotkey.Direction,
	offset, n int,
) (*partition.Batch, error) {
	batch := &partition.Batch{
		Table:     flags.table,
		Partition: flags.partition,
		Requests:  make([][]byte, 0, n),
	}
	for i := offset; i < offset+n; i++ {
		body, err := encodeLoadRequest(direction, f.keyAt(i), i)
		if err != nil {
			return nil, err
		}
		batch.Requests = append(batch.Requests, body)
	}
	return batch, nil
}

func (f loadFlags) keyAt(i int) []byte {
	if f.hashKey != "" && f.hotEvery > 0 && i%f.hotEvery == 0 {
		return []byte(f.hashKey)
	}
	cold := f.coldKeys
	if cold <= 0 {
		cold = 1
	}
	return []byte(fmt.Sprintf("cold_%d", i%cold))
}

func encodeLoadRequest(direction hotkey.Direction, hashKey []byte, i int) ([]byte, error) {
	sortKey := []byte(fmt.Sprintf("%d", i))
	key, err := keys.Encode(hashKey, sortKey)
	if err != nil {
		return nil, err
	}
	if direction == hotkey.Read {
		return rrdb.EncodeReadRequest(rrdb.ReadRequest{Op: rrdb.OperationGet, Key: key})
	}
	return rrdb.EncodeWriteRequest(rrdb.WriteRequest{
		Op:  rrdb.OperationPut,
		Put: &rrdb.PutRequest{Key: key, Value: []byte(strings.Repeat("v", 8))},
	})
}
