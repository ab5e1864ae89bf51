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

	"github.com/m3db/m3hotspot/src/dbnode/storage/hotkey"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var detectDescriptions = map[hotkey.Action]string{
	hotkey.ActionStart: "start hotkey detection",
	hotkey.ActionStop:  "stop hotkey detection and clear its result",
	hotkey.ActionQuery: "query the detected hotkey",
}

func newDetectCommand(
	action hotkey.Action,
	flags *globalFlags,
	newClient func() (nodeClient, error),
) *cobra.Command {
	use := strings.ToLower(string(action))
	return &cobra.Command{
		Use:   use,
		Short: detectDescriptions[action],
		Example: fmt.Sprintf(`# %s on the write collector of partition 3 of table orders:
hotkey_ctl -e 127.0.0.1:9100 -t orders -p 3 --type WRITE %s`, detectDescriptions[action], use),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			resp, err := c.DetectHotkey(context.Background(), flags.endpoint, &hotkey.DetectRequest{
				Table:     flags.table,
				Partition: flags.partition,
				Type:      strings.ToUpper(flags.typ),
				Action:    action,
			})
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if resp.ErrCode != hotkey.ErrCodeOK {
				return errors.Errorf("%s: %s", resp.ErrCode, resp.ErrHint)
			}
			return nil
		},
	}
}
