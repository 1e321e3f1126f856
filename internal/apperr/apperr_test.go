package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/medias/internal/apperr"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	t.Run("validation", func(t *testing.T) {
		err := apperr.ValidationError("No files")
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		assert.Equal(t, "No files", err.Error())
	})

	t.Run("wrapped storage error keeps kind", func(t *testing.T) {
		cause := errors.New("disk full")
		err := fmt.Errorf("upload: %w", apperr.StorageError("write file", cause))
		assert.Equal(t, apperr.Storage, apperr.KindOf(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "upload: write file: disk full", err.Error())
	})

	t.Run("plain error is unknown", func(t *testing.T) {
		assert.Equal(t, apperr.Unknown, apperr.KindOf(errors.New("boom")))
	})

	t.Run("nil cause", func(t *testing.T) {
		require.NoError(t, apperr.E(apperr.Storage, "op", nil))
		assert.False(t, apperr.Is(nil, apperr.Unknown))
	})
}
