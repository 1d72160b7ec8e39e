package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"form", CategoryForm},
		{"postType", CategoryPostType},
		{"post_type", CategoryPostType},
		{"post-type", CategoryPostType},
		{" Settings ", CategorySettings},
		{"ajax", CategoryAjax},
		{"rest", CategoryRest},
		{"filter", CategoryFilter},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCategory("widget")
	assert.Error(t, err)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 6)
	cats[0] = "mutated"
	assert.Equal(t, CategoryForm, Categories()[0])
}

func TestCallLogPreservesOrder(t *testing.T) {
	var log CallLog
	require.NoError(t, log.Append(CallRecord{Seq: 1, Method: "alpha", Args: []any{1}}))
	require.NoError(t, log.Append(CallRecord{Seq: 2, Method: "beta", Args: []any{"x"}}))
	require.NoError(t, log.Append(CallRecord{Seq: 3, Method: "alpha", Args: []any{2}}))

	assert.Equal(t, 3, log.Len())
	assert.Equal(t, []string{"alpha", "beta", "alpha"}, log.Methods())

	recs := log.Records()
	assert.Equal(t, []any{1}, recs[0].Args)
	assert.Equal(t, []any{"x"}, recs[1].Args)
	assert.Equal(t, []any{2}, recs[2].Args)
}

func TestCallLogSealRejectsAppend(t *testing.T) {
	var log CallLog
	require.NoError(t, log.Append(CallRecord{Method: "alpha"}))

	log.Seal()
	log.Seal()

	assert.True(t, log.Sealed())
	assert.ErrorIs(t, log.Append(CallRecord{Method: "beta"}), ErrLogSealed)
	assert.Equal(t, 1, log.Len())
}

func TestCallLogRecordsIsCopy(t *testing.T) {
	var log CallLog
	require.NoError(t, log.Append(CallRecord{Method: "alpha"}))

	recs := log.Records()
	recs[0].Method = "changed"

	assert.Equal(t, []string{"alpha"}, log.Methods())
}

func TestEntryIDDeterminism(t *testing.T) {
	id1 := EntryID(CategoryForm, "contact", 0)
	id2 := EntryID(CategoryForm, "contact", 0)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestEntryIDChangesWithInput(t *testing.T) {
	base := EntryID(CategoryForm, "contact", 0)

	assert.NotEqual(t, base, EntryID(CategoryAjax, "contact", 0), "category")
	assert.NotEqual(t, base, EntryID(CategoryForm, "contact2", 0), "key")
	assert.NotEqual(t, base, EntryID(CategoryForm, "contact", 1), "ordinal")
}

func TestEntryIDNormalizesKey(t *testing.T) {
	composed := Key("caf\u00e9")
	decomposed := Key("cafe\u0301")

	assert.Equal(t, EntryID(CategoryForm, composed, 0), EntryID(CategoryForm, decomposed, 0))
}

func TestFormatArgs(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{"empty", nil, ""},
		{"string", []any{"x"}, `"x"`},
		{"int", []any{1}, "1"},
		{"mixed", []any{"a", 2, true}, `"a", 2, true`},
		{"nil", []any{nil}, "nil"},
		{"func", []any{func() {}}, "func"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatArgs(tt.args))
		})
	}
}

func TestCallRecordString(t *testing.T) {
	r := CallRecord{Method: "beta", Args: []any{"x", 2}}
	assert.Equal(t, `beta("x", 2)`, r.String())
}
