package linenotify

import (
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/alepar/pm25relay/airquality"
)

const DefaultURL = "https://notify-api.line.me/api/notify"

// Client pushes a text message per reading to a LINE Notify compatible endpoint.
type Client struct {
	URL   string
	Token string
	HTTP  *http.Client
}

func New(endpoint, token string, timeout time.Duration) *Client {
	return &Client{
		URL:   endpoint,
		Token: token,
		HTTP:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string {
	return "LINE Notify"
}

// Message renders the notification text for a reading.
func Message(reading airquality.Reading) string {
	return fmt.Sprintf("PM2.5 Level: %s", reading)
}

func (c *Client) Notify(reading airquality.Reading) error {
	form := url.Values{}
	form.Set("message", Message(reading))

	req, err := http.NewRequest(http.MethodPost, c.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "couldn't build LINE Notify request")
	}
	req.Close = true
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return errors.Wrap(err, "error sending notification to LINE")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(ioutil.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &airquality.StatusError{Leg: c.Name(), StatusCode: resp.StatusCode}
	}

	log.Infof("PM2.5 notification sent to LINE: %s", reading)
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}
