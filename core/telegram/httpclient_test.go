package telegram

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type flakyTransport struct {
	failures int
	calls    int
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, &net.OpError{Op: "dial", Err: errors.New("refused")}
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestRetryTransportRecoversFromDialErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	flaky := &flakyTransport{failures: 2}
	client := &http.Client{Transport: &retryTransport{base: flaky, maxRetries: 3, backoff: time.Millisecond}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if flaky.calls != 3 {
		t.Fatalf("calls = %d, want 3", flaky.calls)
	}
}

func TestBuildHTTPClientTimeoutExceedsLongPoll(t *testing.T) {
	c := BuildHTTPClient(10 * time.Second)
	if c.Timeout <= 10*time.Second {
		t.Fatalf("client timeout %s must exceed long poll", c.Timeout)
	}
}
