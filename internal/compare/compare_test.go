package compare

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm_compare/internal/metrics"
	"llm_compare/internal/providers"
)

type fakeResponder struct {
	name   string
	label  string
	result providers.Result
	delay  time.Duration

	mu      sync.Mutex
	prompts []string
	calls   atomic.Int32
}

func (f *fakeResponder) Name() string  { return f.name }
func (f *fakeResponder) Label() string { return f.label }

func (f *fakeResponder) GetResponse(ctx context.Context, prompt string) providers.Result {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.result
}

func threeResponders(text string) []*fakeResponder {
	return []*fakeResponder{
		{name: "Anthropic", label: "claude-3-5-sonnet-20241022(Anthropic)", result: providers.Result{Text: text}},
		{name: "OpenAI", label: "gpt-4-turbo(OpenAI)", result: providers.Result{Text: text}},
		{name: "Fine-tuned OpenAI", label: "Fine-tuned OpenAI", result: providers.Result{Text: text}},
	}
}

func asResponders(fs []*fakeResponder) []Responder {
	out := make([]Responder, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func TestRun_ThreePanelsInOrder(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		fakes := threeResponders("4")
		svc := NewService(asResponders(fakes), concurrent, nil, zerolog.Nop())

		panels := svc.Run(context.Background(), "What is 2+2?")

		require.Len(t, panels, 3)
		assert.Equal(t, []Panel{
			{Provider: "Anthropic", Label: "claude-3-5-sonnet-20241022(Anthropic)", Text: "4"},
			{Provider: "OpenAI", Label: "gpt-4-turbo(OpenAI)", Text: "4"},
			{Provider: "Fine-tuned OpenAI", Label: "Fine-tuned OpenAI", Text: "4"},
		}, panels)
		for _, f := range fakes {
			assert.Equal(t, []string{"What is 2+2?"}, f.prompts)
		}
	}
}

func TestRun_EmptyPromptMakesNoCalls(t *testing.T) {
	fakes := threeResponders("4")
	svc := NewService(asResponders(fakes), false, nil, zerolog.Nop())

	assert.Empty(t, svc.Run(context.Background(), ""))
	for _, f := range fakes {
		assert.Zero(t, f.calls.Load())
	}
}

func TestRun_WhitespacePromptIsSent(t *testing.T) {
	fakes := threeResponders("ok")
	svc := NewService(asResponders(fakes), false, nil, zerolog.Nop())

	assert.Len(t, svc.Run(context.Background(), "  "), 3)
}

func TestRun_FailureDoesNotStopOthers(t *testing.T) {
	fakes := threeResponders("fine")
	fakes[0].result = providers.Failure(providers.ErrNotConfigured, "Error: Anthropic API key not configured")
	svc := NewService(asResponders(fakes), false, nil, zerolog.Nop())

	panels := svc.Run(context.Background(), "hello")

	require.Len(t, panels, 3)
	assert.True(t, panels[0].Failed)
	assert.Equal(t, "Error: Anthropic API key not configured", panels[0].Text)
	assert.False(t, panels[1].Failed)
	assert.Equal(t, "fine", panels[2].Text)
}

// overlapResponder records the highest number of calls in flight at once.
type overlapResponder struct {
	name     string
	inFlight *atomic.Int32
	peak     *atomic.Int32
}

func (o overlapResponder) Name() string  { return o.name }
func (o overlapResponder) Label() string { return o.name }

func (o overlapResponder) GetResponse(ctx context.Context, prompt string) providers.Result {
	n := o.inFlight.Add(1)
	defer o.inFlight.Add(-1)
	for {
		peak := o.peak.Load()
		if n <= peak || o.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return providers.Result{Text: o.name}
}

func TestRun_MaxInFlight(t *testing.T) {
	tests := []struct {
		name       string
		concurrent bool
	}{
		{name: "sequential by default", concurrent: false},
		{name: "concurrent", concurrent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inFlight, peak atomic.Int32
			var rs []Responder
			for _, name := range []string{"Anthropic", "OpenAI", "Fine-tuned OpenAI"} {
				rs = append(rs, overlapResponder{name: name, inFlight: &inFlight, peak: &peak})
			}
			svc := NewService(rs, tt.concurrent, nil, zerolog.Nop())

			panels := svc.Run(context.Background(), "hi")

			require.Len(t, panels, 3)
			if tt.concurrent {
				assert.Greater(t, peak.Load(), int32(1))
			} else {
				assert.Equal(t, int32(1), peak.Load())
			}
		})
	}
}

func TestRun_ConcurrentKeepsOrder(t *testing.T) {
	fakes := threeResponders("")
	fakes[0].delay = 60 * time.Millisecond
	fakes[1].delay = 30 * time.Millisecond
	for _, f := range fakes {
		f.result = providers.Result{Text: "from " + f.name}
	}
	svc := NewService(asResponders(fakes), true, nil, zerolog.Nop())

	start := time.Now()
	panels := svc.Run(context.Background(), "hi")
	elapsed := time.Since(start)

	require.Len(t, panels, 3)
	assert.Equal(t, "from Anthropic", panels[0].Text)
	assert.Equal(t, "from OpenAI", panels[1].Text)
	assert.Equal(t, "from Fine-tuned OpenAI", panels[2].Text)
	assert.Less(t, elapsed, 90*time.Millisecond)
}

func TestRun_RecordsMetrics(t *testing.T) {
	fakes := threeResponders("ok")
	fakes[2].result = providers.Failure(errors.New("boom"), "Error with Fine-tuned OpenAI API: boom")
	m := metrics.NewPrometheusMetrics()
	svc := NewService(asResponders(fakes), false, m, zerolog.Nop())

	svc.Run(context.Background(), "hi")
	svc.Run(context.Background(), "")

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "llm_compare_provider_calls_total" {
			found = true
			assert.Len(t, f.GetMetric(), 3)
		}
	}
	assert.True(t, found)
}

func TestFromProviders(t *testing.T) {
	ps := []*providers.Provider{
		providers.New(providers.Backend{Name: "A", Label: "a"}, nil, zerolog.Nop()),
		providers.New(providers.Backend{Name: "B", Label: "b"}, nil, zerolog.Nop()),
	}

	rs := FromProviders(ps)

	require.Len(t, rs, 2)
	assert.Equal(t, "A", rs[0].Name())
	assert.Equal(t, "b", rs[1].Label())
}
