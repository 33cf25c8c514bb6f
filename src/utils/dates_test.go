package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2020-01-02", "2020-1-2", "2020-01-02T00:00:00Z"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDate("02/01/2020")
	assert.Error(t, err)
}

func TestNormalizeDateKeepsLocalDay(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	late := time.Date(2020, 1, 2, 21, 0, 0, 0, ny) // already Jan 3 in UTC

	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), NormalizeDate(late))
	assert.Equal(t, "2020-01-02", FormatDate(NormalizeDate(late)))
}
