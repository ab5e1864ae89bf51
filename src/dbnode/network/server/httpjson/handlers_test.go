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
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callerKey struct{}

type echoRequest struct {
	Message string `json:"message"`
}

type echoResponse struct {
	Message string `json:"message"`
	Caller  string `json:"caller"`
}

type pingResponse struct {
	OK bool `json:"ok"`
}

type testService struct{}

func (testService) Echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	caller, _ := ctx.Value(callerKey{}).(string)
	return &echoResponse{Message: req.Message, Caller: caller}, nil
}

func (testService) Ping(ctx context.Context) (*pingResponse, error) {
	return &pingResponse{OK: true}, nil
}

func (testService) Fail(ctx context.Context, req *echoRequest) error {
	if req.Message == "" {
		return NewInvalidParamsError(errors.New("message is required"))
	}
	return errors.New("boom")
}

func (testService) Plain(value string) error {
	return nil
}

func newTestRouter(t *testing.T, opts ServerOptions) *mux.Router {
	router := mux.NewRouter()
	require.NoError(t, RegisterHandlers(router, testService{}, opts))
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	var result respErrorResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	return result.Error.Message
}

func TestRegisterHandlersRequestResponse(t *testing.T) {
	router := newTestRouter(t, NewServerOptions())

	recorder := serve(router, http.MethodPost, "/echo", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var resp echoResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp.Message)

	recorder = serve(router, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"ok":true}`, recorder.Body.String())
}

func TestRegisterHandlersMethodChecks(t *testing.T) {
	router := newTestRouter(t, NewServerOptions())

	recorder := serve(router, http.MethodGet, "/echo", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errRequestMustBePost.Error(), decodeError(t, recorder))

	recorder = serve(router, http.MethodPost, "/ping", "{}")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errRequestMustBeGet.Error(), decodeError(t, recorder))

	recorder = serve(router, http.MethodPost, "/echo", "{not json")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errInvalidRequestBody.Error(), decodeError(t, recorder))
}

func TestRegisterHandlersMaxRequestBytes(t *testing.T) {
	router := newTestRouter(t, NewServerOptions().SetMaxRequestBytes(32))

	recorder := serve(router, http.MethodPost, "/echo", `{"message":"short"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = serve(router, http.MethodPost, "/echo", `{"message":"`+strings.Repeat("x", 64)+`"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, errInvalidRequestBody.Error(), decodeError(t, recorder))
}

func TestRegisterHandlersInvalidOptions(t *testing.T) {
	for _, test := range []struct {
		opts     ServerOptions
		expected error
	}{
		{NewServerOptions().SetReadTimeout(0), errReadTimeoutNotPositive},
		{NewServerOptions().SetWriteTimeout(-time.Second), errWriteTimeoutNotPositive},
		{NewServerOptions().SetRequestTimeout(0), errRequestTimeoutNotPositive},
		{NewServerOptions().SetMaxRequestBytes(0), errMaxRequestBytesNotPositive},
	} {
		err := RegisterHandlers(mux.NewRouter(), testService{}, test.opts)
		assert.Equal(t, test.expected, err)
	}
}

func TestRegisterHandlersErrors(t *testing.T) {
	router := newTestRouter(t, NewServerOptions())

	recorder := serve(router, http.MethodPost, "/fail", "{}")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "message is required", decodeError(t, recorder))

	recorder = serve(router, http.MethodPost, "/fail", `{"message":"x"}`)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "boom", decodeError(t, recorder))
}

func TestRegisterHandlersSkipsOtherMethods(t *testing.T) {
	router := newTestRouter(t, NewServerOptions())

	recorder := serve(router, http.MethodPost, "/plain", `"x"`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRegisterHandlersContextAndPostResponseFn(t *testing.T) {
	var (
		methods   []string
		responses []interface{}
	)
	opts := NewServerOptions().
		SetContextFn(func(ctx context.Context, method string, headers map[string]string) context.Context {
			return context.WithValue(ctx, callerKey{}, headers["X-Caller"]+"/"+method)
		}).
		SetPostResponseFn(func(_ context.Context, method string, response interface{}) {
			methods = append(methods, method)
			responses = append(responses, response)
		})
	router := newTestRouter(t, opts)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("X-Caller", "hotkey_ctl")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp echoResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "hotkey_ctl/Echo", resp.Caller)

	serve(router, http.MethodPost, "/fail", `{"message":"x"}`)

	assert.Equal(t, []string{"Echo", "Fail"}, methods)
	assert.Equal(t, &echoResponse{Message: "hi", Caller: "hotkey_ctl/Echo"}, responses[0])
	assert.Nil(t, responses[1])
}

func TestIsInvalidParams(t *testing.T) {
	err := NewInvalidParamsError(errors.New("bad"))
	assert.True(t, IsInvalidParams(err))
	assert.Equal(t, "bad", err.Error())
	assert.False(t, IsInvalidParams(errors.New("bad")))
}
