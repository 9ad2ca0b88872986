package common_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/common"
)

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{0, "R$ 0,00"},
		{950, "R$ 9,50"},
		{300000, "R$ 3.000,00"},
		{123456789, "R$ 1.234.567,89"},
		{-750, "-R$ 7,50"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, common.FormatBRL(tc.minor))
	}
}

func TestFormatKg(t *testing.T) {
	require.Equal(t, "0 kg", common.FormatKg(0))
	require.Equal(t, "7.500 kg", common.FormatKg(7500))
	require.Equal(t, "12.500 kg", common.FormatKg(12500))
	require.Equal(t, "102,5 kg", common.FormatKg(102.5))
}

func TestAtoiDefault(t *testing.T) {
	require.Equal(t, 7, common.AtoiDefault("", 7))
	require.Equal(t, 7, common.AtoiDefault("x", 7))
	require.Equal(t, 42, common.AtoiDefault("42", 7))
}
