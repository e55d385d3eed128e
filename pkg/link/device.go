package link

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/itohio/boostgauge/pkg/sample"
)

const (
	// DefaultBaudRate matches the firmware UART configuration.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// RawSample is one line streamed by the firmware.
type RawSample struct {
	Timestamp  time.Time  // Host receive time
	Ticks      uint32     // MCU millisecond counter, wraps
	Boost      sample.Raw // Boost sensor ADC reading
	Thermistor sample.Raw // Oil thermistor divider ADC reading
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads the sample stream of the gauge firmware.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		samples:  make(chan RawSample, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list serial ports")
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return errors.New("already connected")
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", d.port)
	}

	d.conn = port
	d.connected = true

	go d.readSamples()

	return nil
}

// Close closes the connection and stops reading samples. The samples channel
// is closed by the reader once it has stopped.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.WithError(err).WithField("port", d.port).Warn("error closing serial port")
		}
		d.conn = nil
	}

	d.connected = false

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

func (d *Serial) readSamples() {
	d.mu.RLock()
	conn := d.conn
	d.mu.RUnlock()

	pump(d.ctx, conn, d.samples)
}

// pump runs readLines and closes out when it returns. It is the only sender
// on out.
func pump(ctx context.Context, r io.Reader, out chan<- RawSample) {
	defer close(out)
	readLines(ctx, r, out)
}

// readLines parses r line by line and forwards samples until ctx is done or r ends.
func readLines(ctx context.Context, r io.Reader, out chan<- RawSample) {
	scanner := bufio.NewScanner(r)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("error reading sample stream")
			}
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		s, err := parseLine(line)
		if err != nil {
			log.WithError(err).WithField("line", line).Debug("skipping malformed line")
			continue
		}
		s.Timestamp = time.Now()

		select {
		case out <- s:
		case <-ctx.Done():
			return
		default:
			log.Debug("samples channel full, dropping sample")
		}
	}
}

// parseLine parses a line from the firmware into a RawSample.
// Format: ticks_ms,boost,thermistor
// Example: 53687,13050,51999
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return RawSample{}, errors.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	ticks, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return RawSample{}, errors.Wrap(err, "invalid ticks")
	}

	boost, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return RawSample{}, errors.Wrap(err, "invalid boost reading")
	}

	thermistor, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return RawSample{}, errors.Wrap(err, "invalid thermistor reading")
	}

	return RawSample{
		Ticks:      uint32(ticks),
		Boost:      sample.Raw(boost),
		Thermistor: sample.Raw(thermistor),
	}, nil
}

// FormatLine renders a sample in the firmware wire format.
func FormatLine(s RawSample) string {
	return strconv.FormatUint(uint64(s.Ticks), 10) + "," +
		strconv.FormatUint(uint64(s.Boost), 10) + "," +
		strconv.FormatUint(uint64(s.Thermistor), 10) + "\n"
}
