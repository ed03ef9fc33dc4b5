package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse_Labels(t *testing.T) {
	tests := []struct {
		label string
		want  Window
	}{
		{"1 Month", OneMonth},
		{"3 Months", ThreeMonths},
		{"6 Months", SixMonths},
		{"1 Year", OneYear},
		{"5 Years", FiveYears},
		{"All Time", AllTime},
		{"  all   time ", AllTime},
		{"1 MONTH", OneMonth},
		{"3m", ThreeMonths},
		{"1y", OneYear},
		{"ALL", AllTime},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.label)
		assert.True(t, ok, "Parse(%q) should be known", tt.label)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.label)
	}
}

func TestParse_UnknownFailsClosed(t *testing.T) {
	for _, label := range []string{"", "2 Weeks", "0", "forever"} {
		got, ok := Parse(label)
		assert.False(t, ok, "Parse(%q)", label)
		assert.Equal(t, AllTime, got, "unknown %q should be unbounded", label)
		assert.Equal(t, AllTime, Lookup(label))
	}
}

func TestDuration(t *testing.T) {
	d, ok := OneMonth.Duration()
	assert.True(t, ok)
	assert.Equal(t, 30*24*time.Hour, d)

	d, ok = FiveYears.Duration()
	assert.True(t, ok)
	assert.Equal(t, 1825*24*time.Hour, d)

	_, ok = AllTime.Duration()
	assert.False(t, ok)
}

func TestIncludes(t *testing.T) {
	assert.True(t, OneMonth.Includes(30*24*time.Hour), "boundary is inclusive")
	assert.False(t, OneMonth.Includes(30*24*time.Hour+time.Nanosecond))
	assert.True(t, OneMonth.Includes(-48*time.Hour), "future dates are included")
	assert.True(t, AllTime.Includes(100*365*24*time.Hour))
}

func TestAllIsOrdered(t *testing.T) {
	ws := All()
	assert.Len(t, ws, 6)
	for i := 1; i < len(ws); i++ {
		assert.True(t, ws[i-1].Less(ws[i]), "%s should be shorter than %s", ws[i-1], ws[i])
		assert.False(t, ws[i].Less(ws[i-1]))
	}
	assert.False(t, AllTime.Less(AllTime))
	assert.Equal(t, []string{"1 Month", "3 Months", "6 Months", "1 Year", "5 Years", "All Time"}, Labels())
}

func TestValid(t *testing.T) {
	for _, w := range All() {
		assert.True(t, w.Valid(), w.Label)
	}
	assert.False(t, Window{}.Valid(), "zero window")
	assert.False(t, Window{Label: "Never", Days: -1}.Valid())
	_, found := Parse("")
	assert.False(t, found)
	assert.True(t, Lookup("").Valid(), "empty label falls back to a usable window")
}
