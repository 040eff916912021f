package web

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
)

// Request carries one inbound request through the stages of a pipeline.
type Request struct {
	*http.Request

	// Payload is filled by the ParseBody stage.
	Payload Payload
}

// Stage is one link of a route's processing chain. A non-nil error stops the chain.
type Stage func(req *Request) error

// HandlerFunc is the terminal stage of a pipeline. It writes the success response,
// or returns an error without writing anything.
type HandlerFunc func(w http.ResponseWriter, req *Request) error

// PanicError is the failure recorded when a stage or handler panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Pipeline is an ordered list of stages evaluated sequentially with early exit.
// Every failure is handed to the ErrorResponder, which writes the only response.
type Pipeline struct {
	responder *ErrorResponder
	stages    []Stage
}

// NewPipeline creates a pipeline that runs stages in the given order.
func NewPipeline(responder *ErrorResponder, stages ...Stage) Pipeline {
	return Pipeline{
		responder: responder,
		stages:    slices.Clone(stages),
	}
}

// With returns a new pipeline with stages appended. The receiver is not modified.
func (p Pipeline) With(stages ...Stage) Pipeline {
	return Pipeline{
		responder: p.responder,
		stages:    append(slices.Clone(p.stages), stages...),
	}
}

// Then terminates the pipeline with h and returns it as an http.HandlerFunc.
func (p Pipeline) Then(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &Request{Request: r}
		if err := p.run(w, req, h); err != nil {
			p.responder.Respond(w, r, err)
		}
	}
}

func (p Pipeline) run(w http.ResponseWriter, req *Request, h HandlerFunc) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			err = &PanicError{Value: rvr, Stack: debug.Stack()}
		}
	}()

	for _, stage := range p.stages {
		if err := stage(req); err != nil {
			return err
		}
	}
	return h(w, req)
}
