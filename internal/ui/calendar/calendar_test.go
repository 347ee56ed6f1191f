package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

func TestRender(t *testing.T) {
	month := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	current, ok := timecalc.ResolveISO("2024-09-21")
	require.True(t, ok)

	out := Render(month, map[string]bool{"2024-09-21": true, "2024-09-25": true}, current)

	assert.Contains(t, out, "September 2024")
	assert.Contains(t, out, "Su ")
	assert.Contains(t, out, "21"+marker)
	assert.Contains(t, out, "25"+marker)
	assert.NotContains(t, out, "22"+marker)
	assert.Contains(t, out, "Thu 09/19 → Fri 09/27")
	assert.Contains(t, out, "payday Thu 10/03")

	// Title, weekday header, five weeks and the legend.
	assert.Len(t, strings.Split(out, "\n"), 8)
}
