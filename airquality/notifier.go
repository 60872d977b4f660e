package airquality

import "fmt"

type Notifier interface {
	Name() string
	Notify(reading Reading) error
}

// StatusError is returned by a notifier when the endpoint answers with anything but 200 OK.
type StatusError struct {
	Leg        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status code %d", e.Leg, e.StatusCode)
}
