package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiError(t *testing.T) {
	var m MultiError
	assert.NoError(t, m.ErrorOrNil())

	m.Append(nil)
	assert.NoError(t, m.ErrorOrNil(), "nil errors are ignored")

	m.Append(io.EOF)
	require.Error(t, m.ErrorOrNil())
	assert.Equal(t, "EOF", m.Error())

	m.Append(stderrors.New("redis closed"))
	assert.Equal(t, "2 errors: EOF; redis closed", m.Error())
	assert.ErrorIs(t, m.ErrorOrNil(), io.EOF)
}

func TestTransientError(t *testing.T) {
	err := NewTransientError("draft flush", io.ErrUnexpectedEOF)
	assert.Equal(t, "draft flush: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, IsTransient(err))
	assert.False(t, IsTransient(io.EOF))
}

func TestRecover(t *testing.T) {
	err := Recover(func() error { panic("boom") })
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.StackTrace)

	assert.ErrorIs(t, Recover(func() error { return io.EOF }), io.EOF)
	assert.NoError(t, Recover(func() error { return nil }))
}
