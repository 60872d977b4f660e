package thingspeak

import (
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/pm25relay/airquality"
)

const (
	DefaultURL = "https://api.thingspeak.com/update"

	// field1 of the channel holds PM2.5
	fieldPM25 = "field1"
)

// Client posts readings to a ThingSpeak channel through the update API.
type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

func New(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		URL:    endpoint,
		APIKey: apiKey,
		HTTP:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string {
	return "ThingSpeak"
}

func (c *Client) Notify(reading airquality.Reading) error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.Wrapf(err, "invalid ThingSpeak url %q", c.URL)
	}
	q := u.Query()
	if c.APIKey != "" {
		q.Set("api_key", c.APIKey)
	}
	q.Set(fieldPM25, strconv.Itoa(reading.PM25))
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodPost, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "couldn't build ThingSpeak request")
	}
	req.Close = true

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return errors.Wrap(err, "error sending data to ThingSpeak")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(ioutil.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &airquality.StatusError{Leg: c.Name(), StatusCode: resp.StatusCode}
	}

	log.Infof("Data sent to ThingSpeak: PM2.5 = %d", reading.PM25)
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}
