package outcome

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_Variants(t *testing.T) {
	ok := OK("value")
	assert.True(t, ok.IsOK())
	assert.Equal(t, "value", ok.Value)

	invalid := Invalid[string](FieldErrors{"email": "is required"})
	assert.False(t, invalid.IsOK())
	assert.Equal(t, KindValidationFailed, invalid.Kind)
	assert.Equal(t, "is required", invalid.Fields["email"])

	missing := Missing[int]()
	assert.Equal(t, KindNotFound, missing.Kind)

	boom := errors.New("disk full")
	failed := Failed[int](boom)
	assert.Equal(t, KindStorageError, failed.Kind)
	assert.ErrorIs(t, failed.Err, boom)
}
