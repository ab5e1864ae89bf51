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

package node

import (
	"context"
	"net"
	"net/http"

	ns "github.com/m3db/m3hotspot/src/dbnode/network/server"
	"github.com/m3db/m3hotspot/src/dbnode/network/server/httpjson"
	"github.com/m3db/m3hotspot/src/x/instrument"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const metricsRoute = "/metrics"

type server struct {
	service        Service
	address        string
	metricsHandler http.Handler
	opts           httpjson.ServerOptions
	iOpts          instrument.Options
}

// NewServer creates a node HTTP JSON network service. A nil service serves
// only metrics, a nil metrics handler serves only the service.
func NewServer(
	service Service,
	address string,
	metricsHandler http.Handler,
	opts httpjson.ServerOptions,
	iOpts instrument.Options,
) ns.NetworkService {
	if opts == nil {
		opts = httpjson.NewServerOptions()
	}
	requests := iOpts.MetricsScope().SubScope("http")
	opts = opts.SetPostResponseFn(func(_ context.Context, method string, _ interface{}) {
		requests.Tagged(map[string]string{"method": method}).Counter("requests").Inc(1)
	})
	return &server{
		service:        service,
		address:        address,
		metricsHandler: metricsHandler,
		opts:           opts,
		iOpts:          iOpts,
	}
}

func (s *server) router() (*mux.Router, error) {
	router := mux.NewRouter()
	if s.service != nil {
		if err := httpjson.RegisterHandlers(router, NewService(s.service), s.opts); err != nil {
			return nil, err
		}
	}
	if s.metricsHandler != nil {
		router.Handle(metricsRoute, s.metricsHandler).Methods(http.MethodGet)
	}
	return router, nil
}

func (s *server) ListenAndServe() (ns.Close, error) {
	router, err := s.router()
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  s.opts.ReadTimeout(),
		WriteTimeout: s.opts.WriteTimeout(),
	}

	logger := s.iOpts.Logger()
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()

	return func() {
		server.Close() // nolint: errcheck
	}, nil
}
