package serialline

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

const (
	DefaultPort        = "/dev/ttyS1"
	DefaultBaud        = 9600
	DefaultReadTimeout = time.Second
)

type Config struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
}

// Reader yields newline-terminated text lines from a serial device.
type Reader struct {
	buf    *bufio.Reader
	closer io.Closer
}

// Open opens the serial port described by cfg. Zero fields fall back to the defaults.
func Open(cfg Config) (*Reader, error) {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open serial port %s", cfg.Port)
	}

	log.Debugf("opened serial port %s (baud %d, read timeout %s)", cfg.Port, cfg.Baud, cfg.ReadTimeout)
	r := NewReader(port)
	r.closer = port
	return r, nil
}

func NewReader(src io.Reader) *Reader {
	r := &Reader{buf: bufio.NewReader(src)}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// ReadLine blocks until a full line arrives or the port read times out.
// On timeout it returns whatever was received so far (usually nothing) and a nil error.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.buf.ReadString('\n')
	// the port reports a read timeout as io.EOF
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "failed to read serial line")
	}
	return strings.TrimSpace(strings.ToValidUTF8(line, "�")), nil
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
