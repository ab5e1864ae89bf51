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

// Package configflag binds config file loading to command line flags.
package configflag

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m3db/m3hotspot/src/x/config"

	pkgerrors "github.com/pkg/errors"
)

var errNoConfigFiles = errors.New("-f is required (no config files provided)")

// FileList collects repeated -f values, e.g. -f base.yml -f local.yml.
type FileList []string

// String implements flag.Value.
func (l *FileList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

// Set implements flag.Value.
func (l *FileList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// Options holds the parsed config flags.
type Options struct {
	// Files (-f) are loaded in order, later files override earlier ones.
	Files FileList

	// Dump (-d) prints the merged config and exits.
	Dump bool

	// Validate (-z) validates the config and exits.
	Validate bool

	// ExpandEnv (-e) expands ${VAR} references before parsing.
	ExpandEnv bool

	flags  *flag.FlagSet
	stdout io.Writer
	exitFn func(int)
}

// Register registers the config flags on the default flag set.
func (o *Options) Register() {
	o.RegisterFlagSet(flag.CommandLine)
}

// RegisterFlagSet registers the config flags on fs.
func (o *Options) RegisterFlagSet(fs *flag.FlagSet) {
	o.flags = fs
	fs.Var(&o.Files, "f", "configuration file to load, may be repeated")
	fs.BoolVar(&o.Dump, "d", false, "dump the merged configuration and exit")
	fs.BoolVar(&o.Validate, "z", false, "validate the configuration and exit")
	fs.BoolVar(&o.ExpandEnv, "e", false, "expand environment variables in configuration files")
}

// MainLoad loads the files named by -f into target. With -z or -d it
// reports on stdout and exits the process once the config has loaded.
func (o *Options) MainLoad(target interface{}, loadOpts config.Options) error {
	if len(o.Files) == 0 {
		if o.flags != nil {
			o.flags.Usage()
		}
		return errNoConfigFiles
	}

	if o.ExpandEnv {
		loadOpts.Expand = true
	}
	if err := config.LoadFiles(target, o.Files, loadOpts); err != nil {
		return pkgerrors.Wrapf(err, "unable to load config from %s", o.Files.String())
	}

	stdout, exit := o.stdout, o.exitFn
	if stdout == nil {
		stdout = os.Stdout
	}
	if exit == nil {
		exit = os.Exit
	}

	switch {
	case o.Validate:
		fmt.Fprintln(stdout, "config is valid")
		exit(0)
	case o.Dump:
		if err := config.Dump(target, stdout); err != nil {
			return pkgerrors.Wrap(err, "failed to dump config")
		}
		exit(0)
	}
	return nil
}
