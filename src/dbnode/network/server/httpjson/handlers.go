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

package httpjson

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	errRequestMustBeGet   = NewInvalidParamsError(errors.New("request without request params must be GET"))
	errRequestMustBePost  = NewInvalidParamsError(errors.New("request with request params must be POST"))
	errInvalidRequestBody = NewInvalidParamsError(errors.New("request contains an invalid request body"))
	errEncodeResponseBody = errors.New("failed to encode response body")
)

var (
	contextInterfaceType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errInterfaceType     = reflect.TypeOf((*error)(nil)).Elem()
)

type respSuccess struct {
}

type respErrorResult struct {
	Error respError `json:"error"`
}

type respError struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// RegisterHandlers will register handlers on the router for a given service and options.
// Every exported method of the form
// - methodName(context.Context, *RequestObject) error
// - methodName(context.Context, *RequestObject) (*ResultObject, error)
// - methodName(context.Context) error
// - methodName(context.Context) (*ResultObject, error)
// is served at /methodname, as POST when it takes a request and GET otherwise.
func RegisterHandlers(router *mux.Router, service interface{}, opts ServerOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	svc := reflect.ValueOf(service)
	t := svc.Type()
	for i := 0; i < t.NumMethod(); i++ {
		h, ok := newMethodHandler(svc, t.Method(i), opts)
		if !ok {
			continue
		}
		router.Handle("/"+strings.ToLower(h.name), h)
	}
	return nil
}

// methodHandler serves one service method.
type methodHandler struct {
	svc            reflect.Value
	fn             reflect.Value
	name           string
	reqIn          reflect.Type
	hasResult       bool
	requestTimeout  time.Duration
	maxRequestBytes int64
	contextFn       ContextFn
	postResponseFn  PostResponseFn
}

func newMethodHandler(
	svc reflect.Value,
	method reflect.Method,
	opts ServerOptions,
) (*methodHandler, bool) {
	mt := method.Type
	numIn, numOut := mt.NumIn(), mt.NumOut()
	if numIn != 2 && numIn != 3 {
		return nil, false
	}
	if numOut != 1 && numOut != 2 {
		return nil, false
	}
	if mt.In(0) != svc.Type() || mt.In(1) != contextInterfaceType {
		return nil, false
	}

	var reqIn reflect.Type
	if numIn == 3 {
		reqIn = mt.In(2)
		if !isStructPtr(reqIn) {
			return nil, false
		}
	}
	if numOut == 2 && !isStructPtr(mt.Out(0)) {
		return nil, false
	}
	resultErr := mt.Out(numOut - 1)
	if resultErr.Kind() != reflect.Interface || !resultErr.Implements(errInterfaceType) {
		return nil, false
	}

	return &methodHandler{
		svc:             svc,
		fn:              method.Func,
		name:            method.Name,
		reqIn:           reqIn,
		hasResult:       numOut == 2,
		requestTimeout:  opts.RequestTimeout(),
		maxRequestBytes: opts.MaxRequestBytes(),
		contextFn:       opts.ContextFn(),
		postResponseFn:  opts.PostResponseFn(),
	}, true
}

func isStructPtr(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct
}

func (h *methodHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	defer r.Body.Close()

	httpMethod := strings.ToUpper(r.Method)
	if h.reqIn == nil && httpMethod != http.MethodGet {
		writeError(w, errRequestMustBeGet)
		return
	}
	if h.reqIn != nil && httpMethod != http.MethodPost {
		writeError(w, errRequestMustBePost)
		return
	}

	args := []reflect.Value{h.svc, reflect.Value{}}
	if h.reqIn != nil {
		in := reflect.New(h.reqIn.Elem())
		body := http.MaxBytesReader(w, r.Body, h.maxRequestBytes)
		if err := json.NewDecoder(body).Decode(in.Interface()); err != nil {
			writeError(w, errInvalidRequestBody)
			return
		}
		args = append(args, in)
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()
	if h.contextFn != nil {
		ctx = h.contextFn(ctx, h.name, firstHeaderValues(r.Header))
	}
	args[1] = reflect.ValueOf(ctx)

	ret := h.fn.Call(args)
	errValue := ret[len(ret)-1]

	var response interface{}
	if h.hasResult && !ret[0].IsNil() {
		response = ret[0].Interface()
	}
	if h.postResponseFn != nil {
		defer h.postResponseFn(ctx, h.name, response)
	}

	if !errValue.IsNil() {
		writeError(w, errValue.Interface())
		return
	}
	if !h.hasResult {
		json.NewEncoder(w).Encode(&respSuccess{}) // nolint: errcheck
		return
	}

	buff := bytes.NewBuffer(nil)
	if err := json.NewEncoder(buff).Encode(response); err != nil {
		writeError(w, errEncodeResponseBody)
		return
	}
	w.Write(buff.Bytes()) // nolint: errcheck
}

func firstHeaderValues(header http.Header) map[string]string {
	headers := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}
	return headers
}

func writeError(w http.ResponseWriter, errValue interface{}) {
	result := respErrorResult{respError{}}
	if value, ok := errValue.(error); ok {
		result.Error.Message = value.Error()
	} else if value, ok := errValue.(fmt.Stringer); ok {
		result.Error.Message = value.String()
	}
	result.Error.Data = errValue

	buff := bytes.NewBuffer(nil)
	if err := json.NewEncoder(buff).Encode(&result); err != nil {
		// Not a JSON returnable error
		w.WriteHeader(http.StatusInternalServerError)
		result.Error.Message = fmt.Sprintf("%v", errValue)
		result.Error.Data = nil
		json.NewEncoder(w).Encode(&result) // nolint: errcheck
		return
	}

	if value, ok := errValue.(error); ok && IsInvalidParams(value) {
		w.WriteHeader(http.StatusBadRequest)
	} else {
		w.WriteHeader(http.StatusInternalServerError)
	}
	w.Write(buff.Bytes()) // nolint: errcheck
}
