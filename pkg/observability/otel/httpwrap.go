//go:build !otelotlp

// Package otelobs keeps tracing optional. The default build compiles to
// no-ops so services pay nothing unless built with -tags otelotlp.
package otelobs

import (
	"context"
	"net/http"
)

// InitTracer is a no-op by default. Build with -tags otelotlp to enable tracing.
func InitTracer(serviceName string) func(context.Context) error {
	return func(context.Context) error { return nil }
}

// WrapHTTPHandler is a no-op by default.
func WrapHTTPHandler(serviceName string, h http.Handler) http.Handler { return h }

// WrapHTTPTransport is a no-op by default. Build with -tags otelotlp to enable trace propagation.
func WrapHTTPTransport(t http.RoundTripper) http.RoundTripper { return t }
