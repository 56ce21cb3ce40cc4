package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"transient status", &TransientError{Status: 502}, ErrTransient},
		{"transient wrapped", &TransientError{Err: stderrors.New("dial tcp: timeout")}, ErrTransient},
		{"permanent", &PermanentError{Status: 404, Resource: "/markets/1/orders/"}, ErrPermanent},
		{"integrity", &IntegrityError{Table: "marketorders", Expected: 10, Got: 8}, ErrIntegrity},
		{"stale state", &StaleStateError{Table: "marketstats"}, ErrStaleState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestMatchingSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("history type 34: %w", &TransientError{Status: 503})
	assert.True(t, IsTransient(err))
	assert.False(t, IsRateBudgetExhausted(err))

	wrapped := fmt.Errorf("cycle aborted: %w", ErrRateBudgetExhausted)
	assert.True(t, IsRateBudgetExhausted(wrapped))
}

func TestTransientUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := &TransientError{Err: cause}
	assert.ErrorIs(t, err, cause)
}

func TestMessages(t *testing.T) {
	assert.Equal(t,
		"integrity check failed for marketorders: expected 10 rows, got 8",
		(&IntegrityError{Table: "marketorders", Expected: 10, Got: 8}).Error())
	assert.Equal(t,
		`stale state in marketstats: local watermark "a", remote "b"`,
		(&StaleStateError{Table: "marketstats", Local: "a", Remote: "b"}).Error())
	assert.Equal(t,
		"transient failure: status 502",
		(&TransientError{Status: 502}).Error())
}
