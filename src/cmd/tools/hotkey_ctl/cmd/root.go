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

// Package cmd implements the hotkey_ctl commands.
package cmd

import (
	"context"
	"io"
	"time"

	"github.com/m3db/m3hotspot/src/dbnode/client"
	"github.com/m3db/m3hotspot/src/dbnode/partition"
	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errEndpointRequired = errors.New("--endpoint is required")

// nodeClient is the part of the node client used by the commands.
type nodeClient interface {
	DetectHotkey(ctx context.Context, address string, req *hotkey.DetectRequest) (*hotkey.DetectResponse, error)
	Write(ctx context.Context, address string, batch *partition.Batch) (*partition.BatchResult, error)
	Read(ctx context.Context, address string, batch *partition.Batch) (*partition.BatchResult, error)
}

type globalFlags struct {
	endpoint  string
	table     string
	partition int
	typ       string
	timeout   time.Duration
}

func (f globalFlags) validate() error {
	if f.endpoint == "" {
		return errEndpointRequired
	}
	_, err := hotkey.ParseDirection(f.typ)
	return err
}

// NewRootCommand returns the hotkey_ctl root command writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	var flags globalFlags
	newClient := func() (nodeClient, error) {
		return client.NewClient(client.NewOptions().SetRequestTimeout(flags.timeout))
	}

	root := &cobra.Command{
		Use:   "hotkey_ctl",
		Short: "hotkey_ctl controls hotkey detection on storage nodes",
		Long: `hotkey_ctl starts, stops and queries hotkey detection on one partition
replica of a storage node, and can send synthetic load to it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return flags.validate()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.endpoint, "endpoint", "e", "", "node HTTP address, e.g. 127.0.0.1:9100")
	pf.StringVarP(&flags.table, "table", "t", "", "table name")
	pf.IntVarP(&flags.partition, "partition", "p", 0, "partition index")
	pf.StringVar(&flags.typ, "type", hotkey.Write.String(), "detection type, READ or WRITE")
	pf.DurationVar(&flags.timeout, "timeout", 10*time.Second, "request timeout")

	for _, action := range []hotkey.Action{hotkey.ActionStart, hotkey.ActionStop, hotkey.ActionQuery} {
		root.AddCommand(newDetectCommand(action, &flags, newClient))
	}
	root.AddCommand(newLoadCommand(&flags, newClient))
	return root
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
