package chain

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/relaywire/dispatch-chain/internal/domain"
)

func newSMSChain(t *testing.T, env Env) *Link {
	t.Helper()
	term := NewTerminal(TerminalConfig{}, env, testLogger())
	return NewSMS(term, SMSConfig{}, env, testLogger())
}

func TestSMS_AcceptsPhoneShapes(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		want        bool
	}{
		{"e164 with plus", "+15551234567", true},
		{"digits only", "905551234567", true},
		{"short number", "911", true},
		{"leading zero", "05551234567", false},
		{"letters", "call-me", false},
		{"email", "user@example.com", false},
		{"spaces inside", "+1 555 123", false},
	}

	sms := newSMSChain(t, testEnv())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := sms.Send(context.Background(), domain.NewRequest(tt.destination, "body"))
			if tt.want {
				assert.Equal(t, TagSMS, out.Channel)
			} else {
				assert.NotEqual(t, TagSMS, out.Channel)
			}
		})
	}
}

func TestSMS_TruncatesLongBody(t *testing.T) {
	sms := newSMSChain(t, testEnv())

	long := strings.Repeat("a", 200)
	out := sms.Send(context.Background(), domain.NewRequest("+15551234567", long))

	assert.Len(t, out.Body, smsBodyLimit)
	assert.True(t, strings.HasSuffix(out.Body, "..."))
	assert.Equal(t, strings.Repeat("a", smsBodyLimit-3), strings.TrimSuffix(out.Body, "..."))
}

func TestSMS_ShortBodyUnchanged(t *testing.T) {
	sms := newSMSChain(t, testEnv())

	tests := []struct {
		name string
		body string
	}{
		{"well under budget", "short message"},
		{"exactly at budget", strings.Repeat("b", smsBodyLimit)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := sms.Send(context.Background(), domain.NewRequest("+15551234567", tt.body))
			assert.Equal(t, tt.body, out.Body)
		})
	}
}

func TestSMS_TruncationCountsCharactersNotBytes(t *testing.T) {
	sms := newSMSChain(t, testEnv())

	t.Run("multi-byte body under limit unchanged", func(t *testing.T) {
		body := strings.Repeat("€", 100) // 300 bytes, 100 characters
		out := sms.Send(context.Background(), domain.NewRequest("+15551234567", body))
		assert.Equal(t, body, out.Body)
	})

	t.Run("multi-byte body over limit cut on character boundary", func(t *testing.T) {
		body := strings.Repeat("€", 200)
		out := sms.Send(context.Background(), domain.NewRequest("+15551234567", body))
		assert.Equal(t, smsBodyLimit, utf8.RuneCountInString(out.Body))
		assert.True(t, utf8.ValidString(out.Body))
		assert.Equal(t, strings.Repeat("€", smsBodyLimit-3)+"...", out.Body)
	})
}

func TestSMS_NormalPriorityCanLandPending(t *testing.T) {
	env := testEnv()
	env.Jitter = fixedJitter{0.05} // below the pending threshold
	sms := &smsChannel{cfg: SMSConfig{}, env: env, logger: testLogger()}

	out, err := sms.Deliver(context.Background(), domain.NewRequest("+15551234567", "body"))

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusPending, out.Status)
	assert.False(t, out.Succeeded)
	assert.Equal(t, TagSMS, out.Channel)
}

func TestSMS_PendingIsMaskedByInnerSuccess(t *testing.T) {
	env := testEnv()
	env.Jitter = fixedJitter{0.05}
	sms := newSMSChain(t, env)

	out := sms.Send(context.Background(), domain.NewRequest("+15551234567", "body"))

	// A pending attempt did not succeed, so the terminal recorder's sent
	// outcome wins the reconciliation.
	assert.Equal(t, domain.StatusSent, out.Status)
	assert.True(t, out.Succeeded)
	assert.Equal(t, TagLog, out.Channel)
}

func TestSMS_ImmediatePrioritiesNeverPending(t *testing.T) {
	env := testEnv()
	env.Jitter = fixedJitter{0.0} // would queue a normal-priority message
	sms := newSMSChain(t, env)

	for _, p := range []domain.Priority{domain.PriorityHigh, domain.PriorityUrgent} {
		t.Run(string(p), func(t *testing.T) {
			req := domain.NewRequest("+15551234567", "body")
			req.Priority = p

			out := sms.Send(context.Background(), req)
			assert.Equal(t, domain.StatusSent, out.Status)
			assert.True(t, out.Succeeded)
		})
	}
}

func TestSMS_JitterAboveThresholdSends(t *testing.T) {
	env := testEnv()
	env.Jitter = fixedJitter{0.5}
	sms := newSMSChain(t, env)

	out := sms.Send(context.Background(), domain.NewRequest("+15551234567", "body"))
	assert.Equal(t, domain.StatusSent, out.Status)
}

func TestSMS_IdempotenceWithFixedJitter(t *testing.T) {
	env := testEnv()
	env.Jitter = fixedJitter{0.5}
	sms := newSMSChain(t, env)

	first := sms.Send(context.Background(), domain.NewRequest("+15551234567", "same"))
	second := sms.Send(context.Background(), domain.NewRequest("+15551234567", "same"))

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Channel, second.Channel)
	assert.Equal(t, first.Body, second.Body)
}
