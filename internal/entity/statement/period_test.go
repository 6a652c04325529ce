package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OnPeriod_ShouldZeroPadMonthAndYear(t *testing.T) {
	assert.Equal(t, "08-2026", Period(8, 2026))
	assert.Equal(t, "12-0980", Period(12, 980))
}

func Test_OnPeriodOfDate_ShouldMapISODates(t *testing.T) {
	assert.Equal(t, "08-2026", PeriodOfDate("2026-08-15"))
	assert.Equal(t, "", PeriodOfDate("not-a-date"))
}
