// Package display drives the two-row, sixteen-column character display on
// the timing gate.
package display

import (
	"fmt"
	"strings"
	"sync"
)

const (
	Columns = 16
	Rows    = 2
)

// LCD is the character display contract.
type LCD interface {
	Clear() error
	SetCursor(col, row int) error
	Print(text string) error
}

// Commander sends one command line to the device that owns the display.
type Commander interface {
	SendCommand(string) error
}

// Serial is an LCD whose operations are forwarded to the timing-gate
// microcontroller as LC / LS<col>,<row> / LW<text> commands.
type Serial struct {
	cmd Commander
}

// NewSerial returns a display backed by cmd.
func NewSerial(cmd Commander) *Serial {
	return &Serial{cmd: cmd}
}

func (s *Serial) Clear() error {
	return s.cmd.SendCommand("LC")
}

func (s *Serial) SetCursor(col, row int) error {
	if err := checkCursor(col, row); err != nil {
		return err
	}
	return s.cmd.SendCommand(fmt.Sprintf("LS%d,%d", col, row))
}

func (s *Serial) Print(text string) error {
	// the device protocol is line based
	text = strings.NewReplacer("\r", " ", "\n", " ").Replace(text)
	return s.cmd.SendCommand("LW" + text)
}

func checkCursor(col, row int) error {
	if col < 0 || col >= Columns || row < 0 || row >= Rows {
		return fmt.Errorf("cursor (%d,%d) outside %dx%d display", col, row, Columns, Rows)
	}
	return nil
}

// Memory is an in-process LCD that keeps the visible characters. It is used
// in dev mode and by tests.
type Memory struct {
	mu     sync.Mutex
	cells  [Rows][Columns]rune
	col    int
	row    int
	clears int
}

// NewMemory returns a blank display.
func NewMemory() *Memory {
	m := &Memory{}
	m.blank()
	return m
}

func (m *Memory) blank() {
	for r := range m.cells {
		for c := range m.cells[r] {
			m.cells[r][c] = ' '
		}
	}
	m.col, m.row = 0, 0
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blank()
	m.clears++
	return nil
}

func (m *Memory) SetCursor(col, row int) error {
	if err := checkCursor(col, row); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.col, m.row = col, row
	return nil
}

// Print writes text at the cursor. Characters past the end of the row are
// discarded, as on the hardware.
func (m *Memory) Print(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range text {
		if m.col >= Columns {
			break
		}
		m.cells[m.row][m.col] = r
		m.col++
	}
	return nil
}

// Line returns the visible text of row with trailing blanks removed.
func (m *Memory) Line(row int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row < 0 || row >= Rows {
		return ""
	}
	return strings.TrimRight(string(m.cells[row][:]), " ")
}

// Lines returns both rows, trimmed.
func (m *Memory) Lines() [Rows]string {
	return [Rows]string{m.Line(0), m.Line(1)}
}

// Clears reports how many times Clear was called.
func (m *Memory) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// Fit truncates text to the display width.
func Fit(text string) string {
	r := []rune(text)
	if len(r) > Columns {
		r = r[:Columns]
	}
	return string(r)
}

// Show clears lcd and writes one line per row. The first error is returned
// and the remaining writes are skipped.
func Show(lcd LCD, top, bottom string) error {
	if err := lcd.Clear(); err != nil {
		return fmt.Errorf("clear display: %w", err)
	}
	for row, text := range []string{top, bottom} {
		if err := lcd.SetCursor(0, row); err != nil {
			return fmt.Errorf("set cursor row %d: %w", row, err)
		}
		if err := lcd.Print(Fit(text)); err != nil {
			return fmt.Errorf("print row %d: %w", row, err)
		}
	}
	return nil
}

// ShowLine overwrites a single row without clearing the other. The row is
// padded with blanks so shorter text hides what was there before.
func ShowLine(lcd LCD, row int, text string) error {
	if err := lcd.SetCursor(0, row); err != nil {
		return fmt.Errorf("set cursor row %d: %w", row, err)
	}
	text = Fit(text)
	if pad := Columns - len([]rune(text)); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	if err := lcd.Print(text); err != nil {
		return fmt.Errorf("print row %d: %w", row, err)
	}
	return nil
}
