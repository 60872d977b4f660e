package linenotify

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alepar/pm25relay/airquality"
)

func TestMessage(t *testing.T) {
	assert.Equal(t, "PM2.5 Level: 47 ug/m3", Message(airquality.Reading{PM25: 47}))
}

func TestNotify_PostsBearerAndMessage(t *testing.T) {
	var (
		hits          int
		method        string
		authorization string
		contentType   string
		message       string
		closeConn     bool
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		method = r.Method
		authorization = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		closeConn = r.Close
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		message = r.PostForm.Get("message")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL, "TOKEN", 5*time.Second)
	require.NoError(t, c.Notify(airquality.Reading{PM25: 47}))

	assert.Equal(t, 1, hits)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "Bearer TOKEN", authorization)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "PM2.5 Level: 47 ug/m3", message)
	assert.True(t, closeConn)
}

func TestNotify_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(ts.Close)

	err := New(ts.URL, "BAD", 5*time.Second).Notify(airquality.Reading{PM25: 47})

	var statusErr *airquality.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "LINE Notify", statusErr.Leg)
}

func TestNotify_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	err := New(ts.URL, "TOKEN", time.Second).Notify(airquality.Reading{PM25: 47})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error sending notification to LINE")
}
