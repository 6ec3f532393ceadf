package xerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err          error
		isValidation bool
		isNotFound   bool
		isConflict   bool
	}{
		{err: ErrValidation, isValidation: true},
		{err: ErrUnbalancedEntry, isValidation: true},
		{err: ErrSameLedgerTransfer, isValidation: true},
		{err: ErrUnknownWithdrawalKind, isValidation: true},
		{err: ErrNotFound, isNotFound: true},
		{err: ErrFineNotFound, isNotFound: true},
		{err: ErrEntryNotFound, isNotFound: true},
		{err: ErrConflict, isConflict: true},
		{err: ErrAlreadyVoided, isConflict: true},
		{err: ErrPostedDelete, isConflict: true},
		{err: ErrAccountInactive, isConflict: true},
		{err: errors.New("something else")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.isValidation, IsValidation(tt.err))
			assert.Equal(t, tt.isNotFound, IsNotFound(tt.err))
			assert.Equal(t, tt.isConflict, IsConflict(tt.err))
		})
	}
}

func TestClassificationSeesWrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("entry 42: %w", ErrAlreadyVoided)
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsValidation(wrapped))

	deep := fmt.Errorf("handler: %w", fmt.Errorf("store: %w", ErrAccountNotFound))
	assert.True(t, IsNotFound(deep))
}
