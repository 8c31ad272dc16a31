package serialmux

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/laptimer/internal/monitoring"
)

// MockSerialPort implements SerialPorter for dev mode. Reads come from a
// simulated gate controller; writes are logged.
type MockSerialPort struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (m *MockSerialPort) Read(p []byte) (int, error) {
	return m.r.Read(p)
}

func (m *MockSerialPort) Write(p []byte) (int, error) {
	monitoring.Logf("mock device <- %s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Close stops the simulated device.
func (m *MockSerialPort) Close() error {
	m.w.CloseWithError(io.EOF)
	return m.r.Close()
}

// MockScript controls the simulated race the mock device produces.
type MockScript struct {
	// Laps is the number of sensor edges emitted after each start press,
	// including the calibration edge.
	Laps int
	// MinLap and MaxLap bound the random spacing between edges.
	MinLap, MaxLap time.Duration
	// Lead is the delay between the start press and the first edge, which
	// must cover the countdown.
	Lead time.Duration
	// Rest is the pause between races.
	Rest time.Duration
}

// DefaultMockScript produces laps straddling the default speed limit.
func DefaultMockScript() MockScript {
	return MockScript{
		Laps:   6,
		MinLap: 1000 * time.Millisecond,
		MaxLap: 1200 * time.Millisecond,
		Lead:   4 * time.Second,
		Rest:   10 * time.Second,
	}
}

// NewMockSerialMux creates a SerialMux instance backed by a simulated gate
// controller that runs races according to script until the mux is closed.
func NewMockSerialMux(script MockScript) *SerialMux[*MockSerialPort] {
	r, w := io.Pipe()
	mockPort := &MockSerialPort{r: r, w: w}

	go func() {
		for {
			if err := runMockRace(w, script); err != nil {
				return
			}
		}
	}()

	return NewSerialMux(mockPort)
}

func runMockRace(w io.Writer, script MockScript) error {
	emit := func(line string) error {
		_, err := fmt.Fprintln(w, line)
		return err
	}

	if err := emit("B start 1"); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	if err := emit("B start 0"); err != nil {
		return err
	}
	time.Sleep(script.Lead)

	for i := 0; i < script.Laps; i++ {
		if i > 0 {
			time.Sleep(mockLapInterval(script))
		}
		if err := emit(fmt.Sprintf("E %d", time.Now().UnixMilli())); err != nil {
			return err
		}
	}
	time.Sleep(script.Rest)
	return nil
}

func mockLapInterval(script MockScript) time.Duration {
	spread := script.MaxLap - script.MinLap
	if spread <= 0 {
		return script.MinLap
	}
	return script.MinLap + rand.N(spread)
}

// TestableSerialPort implements SerialPorter with configurable behaviour for testing.
type TestableSerialPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// WriteError is returned by the next Write call if set
	WriteError error

	// ShortWrite makes Write report one byte fewer than it was given
	ShortWrite bool

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	readCond *sync.Cond
}

// NewTestableSerialPort creates a new TestableSerialPort for testing.
func NewTestableSerialPort() *TestableSerialPort {
	tsp := &TestableSerialPort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
	tsp.readCond = sync.NewCond(&tsp.mu)
	return tsp
}

// Read blocks until data is available or the port is closed.
func (t *TestableSerialPort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for !t.Closed && t.ReadBuffer.Len() == 0 {
		t.readCond.Wait()
	}
	if t.Closed {
		return 0, errors.New("serial port closed")
	}
	return t.ReadBuffer.Read(p)
}

func (t *TestableSerialPort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Closed {
		return 0, errors.New("serial port closed")
	}
	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}
	n, err := t.WriteBuffer.Write(p)
	if t.ShortWrite && n > 0 {
		n--
	}
	return n, err
}

// Close marks the port as closed.
func (t *TestableSerialPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Closed = true
	t.readCond.Broadcast() // Wake up any blocked readers

	return t.CloseError
}

// AddReadData adds data to be returned by subsequent Read calls.
func (t *TestableSerialPort) AddReadData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ReadBuffer.WriteString(data)
	t.readCond.Signal()
}

// GetWrittenData returns all data written to the port.
func (t *TestableSerialPort) GetWrittenData() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.WriteBuffer.String()
}
