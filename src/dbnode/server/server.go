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

// Package server runs the m3hotspot service.
package server

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/m3db/m3hotspot/src/cmd/services/m3hotspot/config"
	"github.com/m3db/m3hotspot/src/dbnode/client"
	"github.com/m3db/m3hotspot/src/dbnode/network/server/httpjson"
	"github.com/m3db/m3hotspot/src/dbnode/network/server/httpjson/node"
	"github.com/m3db/m3hotspot/src/dbnode/partition"
	"github.com/m3db/m3hotspot/src/dbnode/storage/hotspot"
	"github.com/m3db/m3hotspot/src/x/instrument"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RunOptions provides options for running the server.
type RunOptions struct {
	// Config is the service configuration.
	Config config.Configuration

	// InterruptCh is a programmatic interrupt channel to supply to
	// interrupt and shutdown the server.
	InterruptCh <-chan error

	// ListenCh is signalled once the server is listening.
	ListenCh chan<- struct{}
}

// Run runs the server until interrupted by a signal or by InterruptCh.
func Run(runOpts RunOptions) error {
	cfg := runOpts.Config
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	logger, err := cfg.Logging.BuildLogger()
	if err != nil {
		return errors.Wrap(err, "unable to create logger")
	}
	defer logger.Sync() // nolint: errcheck

	scope, scopeCloser, metricsHandler, err := cfg.Metrics.NewRootScopeAndHandler()
	if err != nil {
		return errors.Wrap(err, "could not create metrics scope")
	}
	defer scopeCloser.Close() // nolint: errcheck

	iOpts := instrument.NewOptions().
		SetLogger(logger).
		SetMetricsScope(scope).
		SetReportInterval(cfg.Metrics.ReportIntervalOrDefault())

	var (
		service node.Service
		closers []io.Closer
	)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("error closing component", zap.Error(err))
			}
		}
	}()

	if cfg.Node != nil {
		registry, err := newNode(*cfg.Node, iOpts)
		if err != nil {
			return err
		}
		closers = append(closers, closerFn(registry.Close))
		service = registry
		logger.Info("node partitions open", zap.Int("tables", len(cfg.Node.Tables)))
	}

	if cfg.Collector != nil {
		closer, err := newCollector(*cfg.Collector, iOpts)
		if err != nil {
			return err
		}
		closers = append(closers, closer)
		logger.Info("hotspot collector open",
			zap.Int("hosts", len(cfg.Collector.Topology.Hosts)))
	}

	serverClose, err := node.NewServer(service, cfg.ListenAddress, metricsHandler,
		httpjson.NewServerOptions(), iOpts).ListenAndServe()
	if err != nil {
		return errors.Wrapf(err, "could not listen on %s", cfg.ListenAddress)
	}
	defer serverClose()
	logger.Info("serving", zap.String("address", cfg.ListenAddress))

	if runOpts.ListenCh != nil {
		runOpts.ListenCh <- struct{}{}
	}

	sigCh := interrupt()
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Warn("interrupt received, closing server", zap.Stringer("signal", sig))
	case err := <-runOpts.InterruptCh:
		logger.Warn("interrupt received, closing server", zap.Error(err))
	}
	return nil
}

func newNode(cfg config.NodeConfiguration, iOpts instrument.Options) (*partition.Registry, error) {
	registry, err := cfg.NewRegistry(iOpts)
	if err != nil {
		return nil, errors.Wrap(err, "could not create partition registry")
	}
	if err := registry.Open(); err != nil {
		return nil, errors.Wrap(err, "could not open partition registry")
	}
	return registry, nil
}

// collector is the running hotspot collector.
type collector struct {
	detector *hotspot.Detector
	notifier *hotspot.ReplicaNotifier
}

func newCollector(cfg config.CollectorConfiguration, iOpts instrument.Options) (*collector, error) {
	opts, err := cfg.NewOptions(iOpts)
	if err != nil {
		return nil, errors.Wrap(err, "invalid collector config")
	}
	topo, err := cfg.Topology.NewMap()
	if err != nil {
		return nil, errors.Wrap(err, "invalid topology")
	}

	clientOpts := client.NewOptions().SetInstrumentOptions(iOpts)
	if cfg.RequestTimeout > 0 {
		clientOpts = clientOpts.SetRequestTimeout(cfg.RequestTimeout)
	}
	nodeClient, err := client.NewClient(clientOpts)
	if err != nil {
		return nil, err
	}

	notifier, err := hotspot.NewReplicaNotifier(nodeClient, topo, cfg.Notify.NewOptions(iOpts))
	if err != nil {
		return nil, errors.Wrap(err, "could not create replica notifier")
	}
	puller := hotspot.NewStatsPuller(nodeClient, topo, cfg.SampleInterval, iOpts)
	detector, err := hotspot.NewDetector(puller, notifier, opts)
	if err != nil {
		notifier.Close()
		return nil, errors.Wrap(err, "could not create hotspot detector")
	}
	if err := detector.Open(); err != nil {
		notifier.Close()
		return nil, err
	}
	return &collector{detector: detector, notifier: notifier}, nil
}

func (c *collector) Close() error {
	err := c.detector.Close()
	c.notifier.Close()
	return err
}

type closerFn func() error

func (fn closerFn) Close() error {
	return fn()
}

func interrupt() chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	return c
}
