// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package endpoint

import (
	"context"
	"net/http"
)

type injector func(context.Context, http.ResponseWriter, *http.Request) context.Context

func inject(ctx context.Context, w http.ResponseWriter, r *http.Request, injectors ...injector) context.Context {
	for _, injector := range injectors {
		ctx = injector(ctx, w, r)
	}
	return ctx
}

type injectKey string

var (
	injectHeadersKey         = injectKey("injectHeadersKey")
	injectRemoteAddrKey      = injectKey("injectRemoteAddrKey")
	injectResponseHeadersKey = injectKey("injectResponseHeadersKey")
)

func injectRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	ctx = context.WithValue(ctx, injectHeadersKey, r.Header)
	return context.WithValue(ctx, injectRemoteAddrKey, r.RemoteAddr)
}

// HeaderValue returns the first value of the named request header
// or "" if it was not sent.
func HeaderValue(ctx context.Context, name string) string {
	headers, ok := ctx.Value(injectHeadersKey).(http.Header)
	if !ok {
		return ""
	}
	return headers.Get(name)
}

// RemoteAddr returns the network address of the client which sent the request.
func RemoteAddr(ctx context.Context) string {
	addr, _ := ctx.Value(injectRemoteAddrKey).(string)
	return addr
}

// SetResponseHeader allows you set a custom response header.
func SetResponseHeader(ctx context.Context, key, value string) {
	headers, ok := ctx.Value(injectResponseHeadersKey).(http.Header)
	if !ok || headers == nil {
		return
	}

	headers.Set(key, value)
}

func injectResponseHeaders(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, injectResponseHeadersKey, w.Header())
}
