package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		label string
	}{
		{"january", time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), "2021-T1"},
		{"march", time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC), "2021-T1"},
		{"april", time.Date(2021, 4, 1, 0, 0, 0, 0, time.UTC), "2021-T2"},
		{"june", time.Date(2019, 6, 30, 0, 0, 0, 0, time.UTC), "2019-T2"},
		{"july", time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC), "2021-T3"},
		{"september", time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC), "2020-T3"},
		{"october", time.Date(2022, 10, 12, 0, 0, 0, 0, time.UTC), "2022-T4"},
		{"december", time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC), "2016-T4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.label, QuarterOf(tt.date).String())
		})
	}
}

func TestParseQuarter(t *testing.T) {
	q, err := ParseQuarter("2022-T2")
	require.NoError(t, err)
	assert.Equal(t, Quarter{Year: 2022, T: 2}, q)

	for _, bad := range []string{"", "2022", "2022-T5", "2022-T0", "abcd-T1", "2022-Tx"} {
		_, err := ParseQuarter(bad)
		assert.Error(t, err, "label %q", bad)
	}
}

func TestQuarterBefore(t *testing.T) {
	assert.True(t, Quarter{2021, 4}.Before(Quarter{2022, 1}))
	assert.True(t, Quarter{2022, 1}.Before(Quarter{2022, 2}))
	assert.False(t, Quarter{2022, 2}.Before(Quarter{2022, 2}))
	assert.False(t, Quarter{2022, 2}.Before(Quarter{2021, 4}))
}

func TestNormalizeIRISCode(t *testing.T) {
	assert.Equal(t, "000123456", NormalizeIRISCode("123456"))
	assert.Equal(t, "751010101", NormalizeIRISCode("751010101"))
	assert.Equal(t, "000123456", NormalizeIRISCode(" 123456"))
}

func TestTransactionGroupKey(t *testing.T) {
	tx := NewTransaction()
	tx.MutationID = "2021-100"
	tx.Date = time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2021-1002021-07-15", tx.GroupKey())
}

func TestTransactionHasLocation(t *testing.T) {
	tx := NewTransaction()
	assert.False(t, tx.HasLocation())
	tx.Latitude = 48.85
	assert.False(t, tx.HasLocation())
	tx.Longitude = 2.35
	assert.True(t, tx.HasLocation())
}
