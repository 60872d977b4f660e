package airquality

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// LinePrefix marks a sensor line carrying a PM2.5 value, e.g. "PM25:47".
	LinePrefix = "PM25:"

	// Unit is appended to human-readable PM2.5 values.
	Unit = "ug/m3"
)

var ErrMalformedReading = errors.New("malformed PM2.5 reading")

type Reading struct {
	// units: micrograms per cubic meter
	PM25 int
}

func (r Reading) String() string {
	return strconv.Itoa(r.PM25) + " " + Unit
}

// ParseLine extracts a Reading from a trimmed sensor line.
// matched is false for lines without the PM25 prefix; those are not an error.
// A matching line with a bad value returns an error whose cause is ErrMalformedReading.
func ParseLine(line string) (reading Reading, matched bool, err error) {
	if !strings.HasPrefix(line, LinePrefix) {
		return Reading{}, false, nil
	}

	fields := strings.Split(line, ":")
	raw := strings.TrimSpace(fields[1])

	value, err := strconv.Atoi(raw)
	if err != nil {
		return Reading{}, true, errors.Wrapf(ErrMalformedReading, "line %q", line)
	}
	if value < 0 {
		return Reading{}, true, errors.Wrapf(ErrMalformedReading, "negative value in line %q", line)
	}

	return Reading{PM25: value}, true, nil
}
