package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rheyna/duncord/pkg/ranking/shared"
)

func TestYearMonthAndDateInt(t *testing.T) {
	at := time.Date(2014, time.March, 21, 13, 37, 0, 0, time.UTC)
	assert.Equal(t, 201403, shared.YearMonth(at))
	assert.Equal(t, 20140321, shared.DateInt(at))
}

func TestPrevMonth(t *testing.T) {
	tests := []struct {
		name string
		ym   int
		want int
	}{
		{name: "mid year", ym: 201507, want: 201506},
		{name: "january wraps to december", ym: 201501, want: 201412},
		{name: "february stays in year", ym: 201502, want: 201501},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.PrevMonth(tt.ym))
		})
	}
}

func TestValidYearMonth(t *testing.T) {
	now := time.Date(2015, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ym   int
		want bool
	}{
		{name: "current month", ym: 201506, want: true},
		{name: "launch month", ym: shared.ServiceLaunchMonth, want: true},
		{name: "before launch", ym: 201202, want: false},
		{name: "future month", ym: 201507, want: false},
		{name: "month zero", ym: 201400, want: false},
		{name: "month thirteen", ym: 201413, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.ValidYearMonth(tt.ym, now))
		})
	}
}

func TestMonthsBackward(t *testing.T) {
	assert.Equal(t, []int{201502, 201501, 201412}, shared.MonthsBackward(201502, 201412, 10))
	assert.Equal(t, []int{201502, 201501}, shared.MonthsBackward(201502, 201412, 2))
	assert.Empty(t, shared.MonthsBackward(201202, shared.ServiceLaunchMonth, 5))
}
