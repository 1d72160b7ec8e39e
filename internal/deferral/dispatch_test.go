package deferral

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n    int
	tags []string
}

var counterOps = Table[*counter]{
	"add": func(c *counter, args []any) error {
		n, err := ArgInt(args, 0)
		if err != nil {
			return err
		}
		c.n += n
		return nil
	},
	"tag": func(c *counter, args []any) error {
		tags, err := ArgStrings(args, 0)
		if err != nil {
			return err
		}
		c.tags = append(c.tags, tags...)
		return nil
	},
}

func TestTableDispatch(t *testing.T) {
	c := &counter{}

	require.NoError(t, counterOps.Dispatch(c, "add", []any{2}))
	require.NoError(t, counterOps.Dispatch(c, "add", []any{int64(3)}))
	require.NoError(t, counterOps.Dispatch(c, "add", []any{float64(1)}))
	require.NoError(t, counterOps.Dispatch(c, "tag", []any{"a", []string{"b"}, []any{"c"}}))

	assert.Equal(t, 6, c.n)
	assert.Equal(t, []string{"a", "b", "c"}, c.tags)

	err := counterOps.Dispatch(c, "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownOperation)
	assert.True(t, IsUnknownOperation(err))

	assert.True(t, counterOps.Has("add"))
	assert.Equal(t, []string{"add", "tag"}, counterOps.Methods())
}

func TestArgHelpers(t *testing.T) {
	s, err := Arg[string]([]any{"x"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	_, err = Arg[string]([]any{1}, 0)
	var ae *ArgError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "string", ae.Want)
	assert.False(t, ae.Missing)

	_, err = Arg[string](nil, 0)
	require.True(t, errors.As(err, &ae))
	assert.True(t, ae.Missing)

	b, err := OptArg([]any{}, 0, true)
	require.NoError(t, err)
	assert.True(t, b)

	b, err = OptArg([]any{false}, 0, true)
	require.NoError(t, err)
	assert.False(t, b)

	_, err = ArgInt([]any{1.5}, 0)
	assert.Error(t, err)

	_, err = ArgStrings([]any{"a", 1}, 0)
	assert.Error(t, err)

	assert.NoError(t, MaxArgs([]any{1}, 1))
	assert.Error(t, MaxArgs([]any{1, 2}, 1))
}

func TestSafeDispatch(t *testing.T) {
	var trace []string
	b := &traceBuilder{key: "k", trace: &trace}

	require.NoError(t, SafeDispatch(b, "alpha", []any{1}))
	assert.EqualError(t, SafeDispatch(b, "boom", nil), "boom failed")

	var err error
	assert.NotPanics(t, func() { err = SafeDispatch(b, "panic", nil) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Equal(t, []string{"k:alpha(1)", "k:boom()"}, trace)
}
