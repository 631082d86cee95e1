package hibp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashParts(t *testing.T) {
	prefix, suffix := HashParts("password")
	assert.Equal(t, "5BAA6", prefix)
	assert.Equal(t, "1E4C9B93F3F0682250B6CF8331B7EE68FD8", suffix)
}

func TestBreachCount(t *testing.T) {
	prefix, suffix := HashParts("password")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.Header.Get("Add-Padding"))
		if r.URL.Path != "/range/"+prefix {
			fmt.Fprint(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n")
			return
		}
		fmt.Fprintf(w, "0018A45C4D1DEF81644B54AB7F969B88D65:1\r\n%s:3861493\r\n00D4F6E8FA6EECAD2A3AA415EEC418D38EC:0\r\n", suffix)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	n, err := c.BreachCount(context.Background(), "password")
	require.NoError(t, err)
	assert.Equal(t, 3861493, n)

	n, err = c.BreachCount(context.Background(), "Un1que&Unbreached#Phrase")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestBreachCountUnavailable(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, nil).WithRetry(1, time.Millisecond)
	_, err := c.BreachCount(context.Background(), "password")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestBreachCountNotFoundIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, nil).WithRetry(3, time.Millisecond)
	_, err := c.BreachCount(context.Background(), "password")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCountSuffix(t *testing.T) {
	n, err := countSuffix([]byte("AAA:1\r\nbbb:42\r\n"), "BBB")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = countSuffix([]byte("BBB:many\r\n"), "BBB")
	assert.Error(t, err)
}
