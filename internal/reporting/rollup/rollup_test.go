package rollup

import (
	"testing"

	schooldomain "github.com/franqia/console/internal/school/domain"
	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	cases := []struct {
		name                    string
		received, open, overdue int64
		want                    float64
	}{
		{"zero total", 0, 0, 0, 0},
		{"negative total", -100, 0, 0, 0},
		{"no overdue", 10000, 5000, 0, 0},
		{"all overdue", 0, 0, 3200, 100},
		{"one decimal rounding", 6000, 0, 4000, 40},
		{"rounds half up", 99875, 0, 125, 0.1},
		{"typical mix", 80000, 12000, 8000, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Rate(tc.received, tc.open, tc.overdue))
		})
	}
}

func TestStatusOf(t *testing.T) {
	row := func(received, open, overdue int64) schooldomain.FinancialRow {
		return schooldomain.FinancialRow{ReceivedCents: received, OpenCents: open, OverdueCents: overdue}
	}

	assert.Equal(t, StatusPaid, StatusOf(row(5000, 0, 0)))
	assert.Equal(t, StatusOpen, StatusOf(row(5000, 2000, 0)))
	assert.Equal(t, StatusOverdue, StatusOf(row(0, 0, 3200)))
	assert.Equal(t, StatusOverdue, StatusOf(row(5000, 2000, 100)))

	// No activity at all belongs to no class.
	assert.Equal(t, StatusNone, StatusOf(row(0, 0, 0)))
	assert.False(t, MatchesStatus(row(0, 0, 0), StatusPaid))
	assert.False(t, MatchesStatus(row(0, 0, 0), StatusOpen))
	assert.False(t, MatchesStatus(row(0, 0, 0), StatusOverdue))
	assert.True(t, MatchesStatus(row(0, 0, 0), StatusAll))
}

func testRows() []schooldomain.FinancialRow {
	return []schooldomain.FinancialRow{
		{SchoolID: 1, SchoolName: "e1", SchoolStatus: schooldomain.StatusActive, FranchisorID: 1, FranchisorName: "Rede Um",
			ReceivedCents: 10000, OpenCents: 2000, OverdueCents: 800, OverdueItemsCount: 2, MaxOverdueDays: 12},
		{SchoolID: 2, SchoolName: "e2", SchoolStatus: schooldomain.StatusActive, FranchisorID: 1, FranchisorName: "Rede Um",
			ReceivedCents: 0, OpenCents: 0, OverdueCents: 3200, OverdueItemsCount: 4, MaxOverdueDays: 45},
		{SchoolID: 3, SchoolName: "e3", SchoolStatus: schooldomain.StatusSuspended, FranchisorID: 1, FranchisorName: "Rede Um",
			ReceivedCents: 7000, OpenCents: 0, OverdueCents: 0},
		{SchoolID: 4, SchoolName: "e4", SchoolStatus: schooldomain.StatusActive, FranchisorID: 1, FranchisorName: "Rede Um",
			ReceivedCents: 0, OpenCents: 1500, OverdueCents: 0},
		{SchoolID: 5, SchoolName: "f1", SchoolStatus: schooldomain.StatusActive, FranchisorID: 2, FranchisorName: "Rede Dois",
			ReceivedCents: 20000, OpenCents: 0, OverdueCents: 5000, OverdueItemsCount: 1, MaxOverdueDays: 30},
	}
}

func TestBySchoolStatusFilter(t *testing.T) {
	rows := testRows()

	overdue := BySchool(rows, StatusOverdue)
	names := make([]string, len(overdue))
	for i, school := range overdue {
		names[i] = school.SchoolName
	}
	assert.Equal(t, []string{"e1", "e2", "f1"}, names)

	paid := BySchool(rows, StatusPaid)
	assert.Len(t, paid, 1)
	assert.Equal(t, "e3", paid[0].SchoolName)

	all := BySchool(rows, StatusAll)
	assert.Len(t, all, 5)
	assert.Equal(t, float64(100), all[1].DelinquencyRate)
	assert.Equal(t, int64(12800), all[0].TotalCents)
}

func TestByFranchisorSumsThenRates(t *testing.T) {
	rows := testRows()
	groups := ByFranchisor(rows, StatusAll)
	assert.Len(t, groups, 2)

	// Name ascending: "Rede Dois" before "Rede Um".
	assert.Equal(t, "Rede Dois", groups[0].FranchisorName)
	assert.Equal(t, "Rede Um", groups[1].FranchisorName)

	um := groups[1]
	assert.Equal(t, 4, um.SchoolCount)
	assert.Equal(t, 3, um.ActiveSchoolCount)
	assert.Equal(t, int64(4000), um.OverdueCents)
	assert.Equal(t, int64(17000), um.ReceivedCents)
	assert.Equal(t, int64(24500), um.TotalCents)
	assert.Equal(t, 45, um.MaxOverdueDays)

	// Rate comes from the summed totals, not the average of member rates.
	assert.Equal(t, Rate(17000, 3500, 4000), um.DelinquencyRate)
	memberAverage := (Rate(10000, 2000, 800) + Rate(0, 0, 3200) + Rate(7000, 0, 0) + Rate(0, 1500, 0)) / 4
	assert.NotEqual(t, memberAverage, um.DelinquencyRate)
}

func TestRollupConsistency(t *testing.T) {
	rows := testRows()
	groups := ByFranchisor(rows, StatusAll)

	for _, group := range groups {
		var overdue int64
		for _, row := range rows {
			if row.FranchisorID == group.FranchisorID {
				overdue += row.OverdueCents
			}
		}
		assert.Equal(t, overdue, group.OverdueCents)
	}
}

func TestTotals(t *testing.T) {
	summary := Totals(testRows())
	assert.Equal(t, 5, summary.SchoolCount)
	assert.Equal(t, 3, summary.SchoolsWithOverdue)
	assert.Equal(t, int64(9000), summary.OverdueCents)
	assert.Equal(t, int64(49500), summary.TotalCents)
	assert.Equal(t, Rate(37000, 3500, 9000), summary.DelinquencyRate)
}

func TestBucketBoundaries(t *testing.T) {
	row := func(days int, overdue int64) schooldomain.FinancialRow {
		return schooldomain.FinancialRow{OverdueCents: overdue, MaxOverdueDays: days}
	}

	cases := []struct {
		days int
		want BucketKey
	}{
		{1, Bucket1To7},
		{7, Bucket1To7},
		{8, Bucket8To30},
		{30, Bucket8To30},
		{31, Bucket31To60},
		{60, Bucket31To60},
		{61, Bucket61Plus},
		{400, Bucket61Plus},
	}
	for _, tc := range cases {
		got, ok := BucketOf(row(tc.days, 1000))
		assert.True(t, ok)
		assert.Equal(t, tc.want, got)
	}

	// Zero overdue days or zero overdue amount never land in a band.
	_, ok := BucketOf(row(0, 1000))
	assert.False(t, ok)
	_, ok = BucketOf(row(15, 0))
	assert.False(t, ok)
}

func TestBucketsPartition(t *testing.T) {
	buckets := Buckets(testRows())
	assert.Len(t, buckets, 4)

	byKey := make(map[BucketKey]BucketCount, len(buckets))
	total := 0
	for _, bucket := range buckets {
		byKey[bucket.Bucket] = bucket
		total += bucket.SchoolCount
	}

	// e1 (12 days) and f1 (exactly 30) share 8-30; e2 (45 days) is 31-60.
	assert.Equal(t, 2, byKey[Bucket8To30].SchoolCount)
	assert.Equal(t, int64(5800), byKey[Bucket8To30].OverdueCents)
	assert.Equal(t, 1, byKey[Bucket31To60].SchoolCount)
	assert.Equal(t, 0, byKey[Bucket1To7].SchoolCount)
	assert.Equal(t, 0, byKey[Bucket61Plus].SchoolCount)

	// Schools without overdue appear in no bucket.
	assert.Equal(t, 3, total)
}
