package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyType(t *testing.T) {
	tests := []struct {
		name    string
		cleaned int
		custom  bool
		want    Type
	}{
		{name: "none", cleaned: 0, want: TypeQuick},
		{name: "at threshold", cleaned: 5, want: TypeQuick},
		{name: "above threshold", cleaned: 6, want: TypeDeep},
		{name: "custom wins", cleaned: 12, custom: true, want: TypeCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyType(tt.cleaned, DefaultDeepThreshold, tt.custom))
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, ClassifyStatus(nil))
	assert.Equal(t, StatusWarning, ClassifyStatus([]string{"Failed to delete /x: busy"}))
}

func TestJoinErrors_RoundTrip(t *testing.T) {
	assert.Empty(t, JoinErrors(nil))

	r := Record{Errors: JoinErrors([]string{"a", "b"})}
	assert.Equal(t, "a; b", r.Errors)
	assert.Equal(t, []string{"a", "b"}, r.ErrorList())
	assert.Nil(t, Record{}.ErrorList())
}

func TestRecord_Stamp(t *testing.T) {
	var r Record
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	r.Stamp(ts)

	assert.Equal(t, "2025-01-02", r.Date)
	assert.Equal(t, "03:04:05", r.Time)
	assert.Equal(t, ts, r.CreatedAt)
}

func TestParseType(t *testing.T) {
	for _, want := range []Type{TypeQuick, TypeDeep, TypeCustom} {
		got, err := ParseType(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseType("all")
	require.Error(t, err)
}
