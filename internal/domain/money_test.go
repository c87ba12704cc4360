package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorefolk/heritage-ledger/internal/domain"
)

func TestDisplayAmount(t *testing.T) {
	testCases := []struct {
		name       string
		minorUnits string
		expected   string
		wantErr    bool
	}{
		{name: "one token", minorUnits: "1000000000000000000", expected: "1"},
		{name: "one and a half", minorUnits: "1500000000000000000", expected: "1.5"},
		{name: "one wei", minorUnits: "1", expected: "0.000000000000000001"},
		{name: "zero", minorUnits: "0", expected: "0"},
		{name: "negative rejected", minorUnits: "-1", wantErr: true},
		{name: "decimal rejected", minorUnits: "1.5", wantErr: true},
		{name: "empty rejected", minorUnits: "", wantErr: true},
		{name: "hex rejected", minorUnits: "0xff", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.DisplayAmount(tc.minorUnits)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got.String())
		})
	}
}

func TestSumMinorUnits(t *testing.T) {
	sum, err := domain.SumMinorUnits("1000000000000000000", "500000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", sum)

	// Amounts beyond uint64 must not overflow
	sum, err = domain.SumMinorUnits("99999999999999999999999999", "1")
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000000000000", sum)

	_, err = domain.SumMinorUnits("12", "abc")
	assert.Error(t, err)
}

func TestSplitMinorUnits(t *testing.T) {
	shares, err := domain.SplitMinorUnits("10", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "3"}, shares)

	shares, err = domain.SplitMinorUnits("9", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "3", "3"}, shares)

	shares, err = domain.SplitMinorUnits("2", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "0", "0", "0"}, shares)

	_, err = domain.SplitMinorUnits("10", 0)
	assert.Error(t, err)

	_, err = domain.SplitMinorUnits("x", 2)
	assert.Error(t, err)
}

func TestCompareMinorUnits(t *testing.T) {
	cmp, err := domain.CompareMinorUnits("100", "99")
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	cmp, err = domain.CompareMinorUnits("100", "100")
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	_, err = domain.CompareMinorUnits("100", "")
	assert.Error(t, err)
}
