package display

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/laptimer/internal/testutil"
)

func TestSerial_Commands(t *testing.T) {
	rec := &testutil.RecordingCommander{}
	lcd := NewSerial(rec)

	require.NoError(t, Show(lcd, "Lap 1/5 2.34", "Time 00:03"))

	want := []string{"LC", "LS0,0", "LWLap 1/5 2.34", "LS0,1", "LWTime 00:03"}
	if diff := cmp.Diff(want, rec.Commands()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestSerial_PrintStripsNewlines(t *testing.T) {
	rec := &testutil.RecordingCommander{}
	lcd := NewSerial(rec)

	require.NoError(t, lcd.Print("a\nb\rc"))
	assert.Equal(t, []string{"LWa b c"}, rec.Commands())
}

func TestSerial_CursorOutOfRange(t *testing.T) {
	rec := &testutil.RecordingCommander{}
	lcd := NewSerial(rec)

	for _, pos := range [][2]int{{-1, 0}, {16, 0}, {0, 2}, {0, -1}} {
		assert.Error(t, lcd.SetCursor(pos[0], pos[1]), "pos %v", pos)
	}
	assert.Empty(t, rec.Commands())
}

func TestShow_PropagatesError(t *testing.T) {
	rec := &testutil.RecordingCommander{Err: errors.New("write failed")}
	err := Show(NewSerial(rec), "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear display")
}

func TestMemory_ShowAndTruncate(t *testing.T) {
	m := NewMemory()
	require.NoError(t, Show(m, "this line is far too long", "ok"))

	assert.Equal(t, [Rows]string{"this line is far", "ok"}, m.Lines())
	assert.Equal(t, 1, m.Clears())
}

func TestMemory_ClearBlanks(t *testing.T) {
	m := NewMemory()
	require.NoError(t, Show(m, "old", "text"))
	require.NoError(t, m.Clear())

	assert.Equal(t, [Rows]string{"", ""}, m.Lines())
	assert.Equal(t, "", m.Line(5))
}

func TestMemory_PrintAtCursor(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.SetCursor(14, 1))
	require.NoError(t, m.Print("abcd"))

	assert.Equal(t, "              ab", m.Line(1))
}

func TestShowLine_Pads(t *testing.T) {
	m := NewMemory()
	require.NoError(t, Show(m, "Lap 3/5 2.34", "Time 00:59"))
	require.NoError(t, ShowLine(m, 1, "Time 1"))

	assert.Equal(t, [Rows]string{"Lap 3/5 2.34", "Time 1"}, m.Lines())
	assert.Equal(t, 1, m.Clears())
}

func TestFit(t *testing.T) {
	assert.Equal(t, "short", Fit("short"))
	assert.Equal(t, "0123456789abcdef", Fit("0123456789abcdefXYZ"))
	assert.Len(t, []rune(Fit("ééééééééééééééééé")), Columns)
}
