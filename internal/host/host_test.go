package host

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/fieldline/internal/expr"
)

func TestHost_ComputeOnWorker(t *testing.T) {
	h := New(nil)
	h.Start()
	defer h.Stop()

	v, err := h.EvaluateExpr("price * qty", expr.Context{
		"price": expr.Number(10),
		"qty":   expr.Number(3),
	})
	require.NoError(t, err)
	assert.True(t, expr.Equal(v, expr.Number(30)))
}

func TestHost_EvaluateRuleOnWorker(t *testing.T) {
	h := New(nil)
	h.Start()
	defer h.Stop()

	ok, err := h.EvaluateCondition("age >= 18", expr.Context{"age": expr.Number(20)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.EvaluateCondition("age >= 18", expr.Context{"age": expr.Number(16)})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHost_InlineFallback(t *testing.T) {
	h := New(nil)
	require.False(t, h.Running())

	v, err := h.EvaluateExpr("1 + 2", nil)
	require.NoError(t, err)
	assert.True(t, expr.Equal(v, expr.Number(3)))

	ok, err := h.EvaluateCondition("'x'", nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHost_ErrorResponse(t *testing.T) {
	h := New(nil)
	h.Start()
	defer h.Stop()

	_, err := h.EvaluateExpr("missing + 1", expr.Context{})
	require.Error(t, err)
	assert.True(t, expr.IsUnknownVariableError(err))

	_, err = h.EvaluateExpr("1 +", nil)
	require.Error(t, err)
	assert.True(t, expr.IsParseError(err))
}

func TestHost_BadRequestKind(t *testing.T) {
	h := New(nil)
	resp := h.Do(Request{Kind: "bogus"})
	require.Equal(t, KindError, resp.Kind)
	var bre *BadRequestError
	require.ErrorAs(t, resp.Err, &bre)
	assert.Equal(t, "bogus", bre.Kind)
}

func TestHost_StartStopIdempotent(t *testing.T) {
	h := New(nil)
	h.Stop() // stopping a stopped host is fine
	h.Start()
	h.Start()
	require.True(t, h.Running())
	h.Stop()
	h.Stop()
	require.False(t, h.Running())

	// Still serves inline after shutdown.
	v, err := h.EvaluateExpr("2 * 2", nil)
	require.NoError(t, err)
	assert.True(t, expr.Equal(v, expr.Number(4)))
}

// The worker path and the inline path must be indistinguishable: same
// values, same errors, for the same inputs.
func TestHost_WorkerAndInlineAreEquivalent(t *testing.T) {
	ctx := expr.Context{
		"price": expr.Number(10),
		"qty":   expr.Number(0),
		"name":  expr.String("ada"),
		"flag":  expr.Bool(true),
		"blank": expr.Null{},
	}
	exprs := []string{
		"price * qty",
		"price / qty", // division by zero
		"name + '!'",
		"flag ? price : qty",
		"blank == null",
		"missing",  // unknown variable
		"price >",  // parse error
		"qty || price > 5",
	}

	inline := New(nil)
	worker := New(nil)
	worker.Start()
	defer worker.Stop()

	for _, e := range exprs {
		t.Run(e, func(t *testing.T) {
			iv, ierr := inline.EvaluateExpr(e, ctx)
			wv, werr := worker.EvaluateExpr(e, ctx)
			if ierr != nil {
				require.Error(t, werr)
				assert.Equal(t, ierr.Error(), werr.Error())
				return
			}
			require.NoError(t, werr)
			assert.True(t, expr.Equal(iv, wv), "inline=%v worker=%v", iv, wv)

			ib, ierr := inline.EvaluateCondition(e, ctx)
			wb, werr := worker.EvaluateCondition(e, ctx)
			if ierr != nil {
				require.Error(t, werr)
				assert.Equal(t, ierr.Error(), werr.Error())
				return
			}
			require.NoError(t, werr)
			assert.Equal(t, ib, wb)
		})
	}
}

func TestHost_ConcurrentCallersSerialized(t *testing.T) {
	h := New(nil)
	h.Start()
	defer h.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			want := float64(n * 2)
			v, err := h.EvaluateExpr(fmt.Sprintf("%d * 2", n), nil)
			assert.NoError(t, err)
			assert.True(t, expr.Equal(v, expr.Number(want)))
		}(i)
	}
	wg.Wait()
}
