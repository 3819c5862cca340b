// Package host runs expression evaluation on a dedicated worker
// goroutine behind a small request/response protocol. When the worker
// is not running, the same evaluation code runs inline on the caller's
// goroutine; the two paths are behaviorally equivalent and callers
// cannot observe which one served a request.
package host

import (
	"log/slog"
	"sync"

	"github.com/fieldline/fieldline/internal/expr"
)

// RequestKind identifies what the caller wants evaluated.
type RequestKind string

const (
	// KindCompute evaluates a computed-field expression to a scalar.
	KindCompute RequestKind = "compute"
	// KindEvaluateRule evaluates a rule condition to a boolean.
	KindEvaluateRule RequestKind = "evaluate_rule"
)

// ResponseKind mirrors the request kind, or reports a failure.
type ResponseKind string

const (
	KindComputeResult      ResponseKind = "compute_result"
	KindEvaluateRuleResult ResponseKind = "evaluate_rule_result"
	KindError              ResponseKind = "error"
)

// Request is one unit of work for the worker.
type Request struct {
	Kind       RequestKind
	Expression string
	Context    expr.Context
}

// Response is the single reply to a Request. Exactly one Response is
// produced per Request, and it is the next message on the response
// channel after the request was sent.
type Response struct {
	Kind  ResponseKind
	Value expr.Value // set for KindComputeResult
	Bool  bool       // set for KindEvaluateRuleResult
	Err   error      // set for KindError
}

// Host dispatches evaluation requests to a worker goroutine, falling
// back to inline evaluation when the worker is not running. It
// implements engine.Evaluator.
//
// The protocol has no correlation IDs: each response is matched to the
// request that preceded it, so callers are serialized by a mutex.
type Host struct {
	log *slog.Logger

	mu      sync.Mutex // serializes request/response exchanges
	reqs    chan Request
	resps   chan Response
	done    chan struct{}
	running bool
}

// New returns a Host with the worker stopped. All evaluation runs
// inline until Start is called.
func New(logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{log: logger}
}

// Start launches the worker goroutine. Calling Start on a running host
// is a no-op.
func (h *Host) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.reqs = make(chan Request)
	h.resps = make(chan Response)
	h.done = make(chan struct{})
	h.running = true
	go h.serve(h.reqs, h.resps, h.done)
	h.log.Debug("execution host started")
}

// Stop shuts the worker down and waits for it to exit. Subsequent
// requests run inline. Calling Stop on a stopped host is a no-op.
func (h *Host) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	close(h.reqs)
	<-h.done
	h.running = false
	h.log.Debug("execution host stopped")
}

// Running reports whether the worker goroutine is serving requests.
func (h *Host) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Do sends a request and returns its response, using the worker when it
// is running and the inline path otherwise.
func (h *Host) Do(req Request) Response {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return dispatch(req)
	}
	h.reqs <- req
	return <-h.resps
}

// EvaluateCondition implements engine.Evaluator.
func (h *Host) EvaluateCondition(condition string, ctx expr.Context) (bool, error) {
	resp := h.Do(Request{Kind: KindEvaluateRule, Expression: condition, Context: ctx})
	if resp.Kind == KindError {
		return false, resp.Err
	}
	return resp.Bool, nil
}

// EvaluateExpr implements engine.Evaluator.
func (h *Host) EvaluateExpr(expression string, ctx expr.Context) (expr.Value, error) {
	resp := h.Do(Request{Kind: KindCompute, Expression: expression, Context: ctx})
	if resp.Kind == KindError {
		return nil, resp.Err
	}
	return resp.Value, nil
}

func (h *Host) serve(reqs <-chan Request, resps chan<- Response, done chan<- struct{}) {
	defer close(done)
	for req := range reqs {
		resps <- dispatch(req)
	}
}

// dispatch performs the actual evaluation. Both the worker loop and the
// inline fallback call through here, which is what makes the two paths
// equivalent.
func dispatch(req Request) Response {
	switch req.Kind {
	case KindCompute:
		v, err := expr.Evaluate(req.Expression, req.Context)
		if err != nil {
			return Response{Kind: KindError, Err: err}
		}
		return Response{Kind: KindComputeResult, Value: v}
	case KindEvaluateRule:
		b, err := expr.EvaluateCondition(req.Expression, req.Context)
		if err != nil {
			return Response{Kind: KindError, Err: err}
		}
		return Response{Kind: KindEvaluateRuleResult, Bool: b}
	default:
		return Response{Kind: KindError, Err: newBadRequestError(string(req.Kind))}
	}
}
