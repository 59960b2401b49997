// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package explain is the client side of the natural language explanation
// service. The service is an external collaborator: its failures are reported
// as a fallback text and never affect simulation results.
//
package explain

import (
	"context"
	"time"
)

// DefaultFallback is returned when the service cannot be reached.
//
const DefaultFallback = "No explanation is available right now. Please try again later."

// Request is an explanation request.
//
type Request struct {
	Protocol string `json:"protocol"`
	Context  string `json:"context"`            // current simulation parameters
	Question string `json:"question,omitempty"` // optional
}

// Client is implemented by explanation service clients.
//
type Client interface {
	Explain(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface.
//
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Explain implements Client.
//
func (f ClientFunc) Explain(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Logger is the logging interface used by Service.
//
type Logger interface {
	Logf(tag, format string, args ...interface{})
}

// Service wraps a Client and degrades any failure to a fallback text.
//
type Service struct {
	Client   Client
	Log      Logger        // may be nil
	Fallback string        // DefaultFallback if empty
	Timeout  time.Duration // no timeout if 0
}

// Explain returns the explanation for req, or the fallback text and false if
// the client fails, returns an empty text or panics.
//
func (s *Service) Explain(ctx context.Context, req Request) (text string, ok bool) {
	fallback := s.Fallback
	if fallback == "" {
		fallback = DefaultFallback
	}
	if s.Client == nil {
		s.logf("no client configured")
		return fallback, false
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			s.logf("client panic: %v", r)
			text, ok = fallback, false
		}
	}()
	text, err := s.Client.Explain(ctx, req)
	if err != nil {
		s.logf("%s: %v", req.Protocol, err)
		return fallback, false
	}
	if text == "" {
		s.logf("%s: empty response", req.Protocol)
		return fallback, false
	}
	return text, true
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Log != nil {
		s.Log.Logf("explain", format, args...)
	}
}
