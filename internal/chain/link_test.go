package chain

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedJitter struct{ v float64 }

func (j fixedJitter) Float64() float64 { return j.v }

// testEnv pins time, skips latency, and keeps jitter out of the pending
// branch unless a test overrides it.
func testEnv() Env {
	return Env{
		Clock:  fixedClock{testTime},
		Sleep:  func(ctx context.Context, d time.Duration) error { return nil },
		Jitter: fixedJitter{0.99},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// stubChannel scripts one layer's behavior.
type stubChannel struct {
	tag       string
	accepts   bool
	outcome   *domain.Outcome
	err       error
	panicWith any
	delivered int
}

func (s *stubChannel) Tag() string                      { return s.tag }
func (s *stubChannel) Accepts(req *domain.Request) bool { return s.accepts }

func (s *stubChannel) Deliver(ctx context.Context, req *domain.Request) (*domain.Outcome, error) {
	s.delivered++
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.outcome, s.err
}

// stubHandler scripts the wrapped side of a link.
type stubHandler struct {
	outcome   *domain.Outcome
	canHandle bool
	channels  string
	sends     int
}

func (s *stubHandler) Send(ctx context.Context, req *domain.Request) *domain.Outcome {
	s.sends++
	return s.outcome
}

func (s *stubHandler) CanHandle(req *domain.Request) bool { return s.canHandle }
func (s *stubHandler) Channels() string                   { return s.channels }

func TestLink_IncapableLayerPassesThrough(t *testing.T) {
	innerOut := domain.SentOutcome("LOG", "ops", "body", testTime)
	inner := &stubHandler{outcome: innerOut}
	ch := &stubChannel{tag: "STUB", accepts: false}
	link := newLink(ch, inner, testEnv(), testLogger())

	out := link.Send(context.Background(), domain.NewRequest("ops", "body"))

	assert.Same(t, innerOut, out, "inner result must be returned unchanged")
	assert.Equal(t, 0, ch.delivered, "incapable layer must not attempt delivery")
	assert.Equal(t, 1, inner.sends)
}

func TestLink_ReconciliationPrefersOuterSuccess(t *testing.T) {
	// Outer succeeds, inner fails: the outer success wins.
	outerOut := domain.SentOutcome("STUB", "dest", "body", testTime)
	inner := &stubHandler{outcome: domain.FailedOutcome("LOG", "dest", "body", "sink gone", testTime)}
	ch := &stubChannel{tag: "STUB", accepts: true, outcome: outerOut}
	link := newLink(ch, inner, testEnv(), testLogger())

	out := link.Send(context.Background(), domain.NewRequest("dest", "body"))

	assert.Same(t, outerOut, out)
	assert.Equal(t, 1, inner.sends, "delegation must still happen after an outer success")
}

func TestLink_ReconciliationFallsBackToInner(t *testing.T) {
	// Outer fails, inner succeeds: the inner success masks the failure.
	innerOut := domain.SentOutcome("LOG", "dest", "body", testTime)
	inner := &stubHandler{outcome: innerOut}
	ch := &stubChannel{
		tag:     "STUB",
		accepts: true,
		outcome: domain.FailedOutcome("STUB", "dest", "body", "gateway down", testTime),
	}
	link := newLink(ch, inner, testEnv(), testLogger())

	out := link.Send(context.Background(), domain.NewRequest("dest", "body"))

	assert.Same(t, innerOut, out)
}

func TestLink_DeliveryErrorBecomesFailedOutcome(t *testing.T) {
	inner := &stubHandler{outcome: domain.FailedOutcome("LOG", "dest", "body", "no sink", testTime)}
	ch := &stubChannel{tag: "STUB", accepts: true, err: errors.New("connection refused")}
	link := newLink(ch, inner, testEnv(), testLogger())

	out := link.Send(context.Background(), domain.NewRequest("dest", "body"))

	// Both layers failed; the inner outcome is returned, and the inner
	// handler was still reached despite the outer error.
	assert.Equal(t, 1, inner.sends)
	assert.False(t, out.Succeeded)
}

func TestLink_PanicIsContainedAndDelegationProceeds(t *testing.T) {
	innerOut := domain.SentOutcome("LOG", "dest", "body", testTime)
	inner := &stubHandler{outcome: innerOut}
	ch := &stubChannel{tag: "STUB", accepts: true, panicWith: "wire exploded"}
	link := newLink(ch, inner, testEnv(), testLogger())

	var out *domain.Outcome
	require.NotPanics(t, func() {
		out = link.Send(context.Background(), domain.NewRequest("dest", "body"))
	})

	assert.Equal(t, 1, inner.sends, "panic at one layer must not skip inner handlers")
	assert.Same(t, innerOut, out, "inner success masks the panicked outer attempt")
}

func TestLink_PanicWithFailingInnerReportsOuterFailure(t *testing.T) {
	inner := &stubHandler{outcome: domain.FailedOutcome("LOG", "", "body", "destination must not be empty", testTime)}
	ch := &stubChannel{tag: "STUB", accepts: true, panicWith: errors.New("boom")}
	link := newLink(ch, inner, testEnv(), testLogger())

	out := link.Send(context.Background(), domain.NewRequest("dest", "body"))

	assert.False(t, out.Succeeded)
	assert.Equal(t, domain.StatusFailed, inner.outcome.Status)
}

func TestLink_CanHandleIsOrAcrossChain(t *testing.T) {
	tests := []struct {
		name    string
		outer   bool
		inner   bool
		want    bool
	}{
		{"both capable", true, true, true},
		{"only outer", true, false, true},
		{"only inner", false, true, true},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &stubHandler{canHandle: tt.inner}
			ch := &stubChannel{tag: "STUB", accepts: tt.outer}
			link := newLink(ch, inner, testEnv(), testLogger())

			assert.Equal(t, tt.want, link.CanHandle(domain.NewRequest("dest", "body")))
		})
	}
}

func TestLink_ChannelsJoinsTags(t *testing.T) {
	inner := &stubHandler{channels: "LOG"}
	ch := &stubChannel{tag: "STUB"}
	link := newLink(ch, inner, testEnv(), testLogger())

	assert.Equal(t, "STUB + LOG", link.Channels())
}

func TestNewLink_NilInnerPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewEmail(nil, EmailConfig{}, testEnv(), testLogger())
	})
	assert.Panics(t, func() {
		NewSMS(nil, SMSConfig{}, testEnv(), testLogger())
	})
	assert.Panics(t, func() {
		NewChat(nil, ChatConfig{}, testEnv(), testLogger())
	})
}
