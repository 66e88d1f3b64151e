package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendError(t *testing.T) {
	t.Parallel()
	e1 := errors.New("one")
	e2 := errors.New("two")
	e3 := errors.New("three")

	assert.Nil(t, AppendError(nil, nil))
	assert.Equal(t, e1, AppendError(nil, e1))
	assert.Equal(t, e1, AppendError(e1, nil))

	err := AppendError(e1, e2)
	err = AppendError(err, e3)
	require.Error(t, err)
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
	assert.ErrorIs(t, err, e3)
	assert.Equal(t, "one, two, three", err.Error())
}
