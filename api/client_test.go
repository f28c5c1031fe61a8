package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

func newTestServer(t *testing.T, handler func(resp http.ResponseWriter, r *http.Request)) (*httptest.Server, chan recordedRequest) {
	t.Helper()
	ch := make(chan recordedRequest, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ch <- recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		}
		handler(resp, r)
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func TestRequest_Headers(t *testing.T) {
	srv, ch := newTestServer(t, func(resp http.ResponseWriter, r *http.Request) {
		_, _ = resp.Write([]byte(`[]`))
	})

	userAgent := fmt.Sprintf("truenas-cert-sync/1.2.3 (testing; %v/%v)", runtime.GOOS, runtime.GOARCH)

	t.Run("api key", func(t *testing.T) {
		c := Client{Name: "testing", Version: "1.2.3", URL: srv.URL, APIKey: "1-the-api-key"}
		_, err := c.ListCertificates(context.Background())
		assert.NilError(t, err)

		req := <-ch
		assert.Equal(t, req.Method, http.MethodGet)
		assert.Equal(t, req.Path, "/certificate")
		assert.Equal(t, req.Header.Get("Authorization"), "Bearer 1-the-api-key")
		assert.Equal(t, req.Header.Get("Accept"), "application/json")
		assert.Equal(t, req.Header.Get("User-Agent"), userAgent)
	})

	t.Run("username and password", func(t *testing.T) {
		c := Client{Name: "testing", Version: "1.2.3", URL: srv.URL, Username: "root", Password: "hunter2"}
		_, err := c.ListCertificateAuthorities(context.Background())
		assert.NilError(t, err)

		req := <-ch
		assert.Equal(t, req.Path, "/certificateauthority")
		r := &http.Request{Header: req.Header}
		user, pass, ok := r.BasicAuth()
		assert.Assert(t, ok)
		assert.Equal(t, user, "root")
		assert.Equal(t, pass, "hunter2")
	})
}

func TestRequest_Errors(t *testing.T) {
	srv, ch := newTestServer(t, func(resp http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/certificate":
			resp.WriteHeader(http.StatusUnauthorized)
		case "/certificateauthority":
			resp.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(resp).Encode(map[string]string{"message": "name already in use"})
		case "/core/get_jobs":
			resp.WriteHeader(http.StatusInternalServerError)
			_, _ = resp.Write([]byte("Traceback (most recent call last)"))
		default:
			_, _ = resp.Write([]byte(`not json`))
		}
	})
	c := Client{URL: srv.URL, APIKey: "key"}
	ctx := context.Background()

	t.Run("unauthorized", func(t *testing.T) {
		_, err := c.ListCertificates(ctx)
		assert.Assert(t, errors.Is(err, ErrUnauthorized), err)
		assert.Equal(t, ErrorStatusCode(err), int32(http.StatusUnauthorized))
		assert.Error(t, err, `GET "/certificate" responded 401 unauthorized`)
		<-ch
	})

	t.Run("message from json body", func(t *testing.T) {
		_, err := c.CreateCertificateAuthority(ctx, &CreateCertificateAuthorityRequest{Name: "ca"})
		assert.Assert(t, errors.Is(err, ErrBadRequest), err)
		assert.Error(t, err, `POST "/certificateauthority" responded 422 unprocessable entity: name already in use`)
		<-ch
	})

	t.Run("message from text body", func(t *testing.T) {
		_, err := c.GetJob(ctx, 4)
		assert.Assert(t, errors.Is(err, ErrInternal), err)
		assert.ErrorContains(t, err, "Traceback (most recent call last)")
		<-ch
	})

	t.Run("invalid json", func(t *testing.T) {
		err := c.SetUICertificate(ctx, 3)
		assert.ErrorContains(t, err, `PUT "/system/general": parsing json response`)
		<-ch
	})

	t.Run("connection failure", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		closed.Close()

		c := Client{URL: closed.URL, APIKey: "key"}
		_, err := c.ListCertificates(ctx)

		var connErr *ConnectionError
		assert.Assert(t, errors.As(err, &connErr), err)
		assert.Equal(t, connErr.Method, http.MethodGet)
		assert.Equal(t, connErr.Path, "/certificate")
		assert.Equal(t, ErrorStatusCode(err), int32(0))
	})
}

func TestCertificateMutations(t *testing.T) {
	srv, ch := newTestServer(t, func(resp http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/certificateauthority":
			_, _ = resp.Write([]byte(`{"id": 7, "name": "root_ca", "certificate": "PEM"}`))
		case r.URL.Path == "/system/general/ui_restart":
			resp.WriteHeader(http.StatusOK)
		case r.URL.Path == "/system/general":
			_, _ = resp.Write([]byte(`{"ui_certificate": {"id": 12}}`))
		default:
			_, _ = resp.Write([]byte(`42`))
		}
	})
	c := Client{URL: srv.URL, APIKey: "key"}
	ctx := context.Background()

	t.Run("create certificate authority", func(t *testing.T) {
		ca, err := c.CreateCertificateAuthority(ctx, &CreateCertificateAuthorityRequest{
			Name:              "root_ca",
			CreateType:        CreateTypeImportedCA,
			AddToTrustedStore: true,
			Certificate:       "PEM",
		})
		assert.NilError(t, err)
		assert.DeepEqual(t, ca, &CertificateAuthority{ID: 7, Name: "root_ca", Certificate: "PEM"})

		req := <-ch
		assert.Equal(t, req.Method, http.MethodPost)
		assert.Equal(t, req.Body, `{"name":"root_ca","create_type":"CA_CREATE_IMPORTED","add_to_trusted_store":true,"certificate":"PEM"}`)
	})

	t.Run("create certificate", func(t *testing.T) {
		id, err := c.CreateCertificate(ctx, &CreateCertificateRequest{
			Name:        "nas",
			CreateType:  CreateTypeImportedCertificate,
			Certificate: "CERT",
			PrivateKey:  "KEY",
		})
		assert.NilError(t, err)
		assert.Equal(t, id, JobID(42))

		req := <-ch
		assert.Equal(t, req.Method, http.MethodPost)
		assert.Equal(t, req.Path, "/certificate")
		assert.Equal(t, req.Body, `{"name":"nas","create_type":"CERTIFICATE_CREATE_IMPORTED","certificate":"CERT","privatekey":"KEY"}`)
	})

	t.Run("rename certificate", func(t *testing.T) {
		id, err := c.UpdateCertificate(ctx, 5, &UpdateCertificateRequest{Name: "nas_old_1700000000"})
		assert.NilError(t, err)
		assert.Equal(t, id, JobID(42))

		req := <-ch
		assert.Equal(t, req.Method, http.MethodPut)
		assert.Equal(t, req.Path, "/certificate/id/5")
		assert.Equal(t, req.Body, `{"name":"nas_old_1700000000"}`)
	})

	t.Run("delete certificate", func(t *testing.T) {
		id, err := c.DeleteCertificate(ctx, 5)
		assert.NilError(t, err)
		assert.Equal(t, id, JobID(42))

		req := <-ch
		assert.Equal(t, req.Method, http.MethodDelete)
		assert.Equal(t, req.Path, "/certificate/id/5")
		assert.Equal(t, req.Body, "")
	})

	t.Run("set ui certificate", func(t *testing.T) {
		assert.NilError(t, c.SetUICertificate(ctx, 12))

		req := <-ch
		assert.Equal(t, req.Method, http.MethodPut)
		assert.Equal(t, req.Path, "/system/general")
		assert.Equal(t, req.Body, `{"ui_certificate":12}`)
	})

	t.Run("restart ui with empty response", func(t *testing.T) {
		assert.NilError(t, c.RestartUI(ctx))

		req := <-ch
		assert.Equal(t, req.Method, http.MethodPost)
		assert.Equal(t, req.Path, "/system/general/ui_restart")
	})
}

func TestGetJob(t *testing.T) {
	srv, ch := newTestServer(t, func(resp http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "9":
			_, _ = resp.Write([]byte(`[{"id": 9, "method": "certificate.create", "state": "SUCCESS", "result": {"id": 31, "name": "nas"}, "error": null}]`))
		default:
			_, _ = resp.Write([]byte(`[]`))
		}
	})
	c := Client{URL: srv.URL, APIKey: "key"}
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		job, err := c.GetJob(ctx, 9)
		assert.NilError(t, err)
		assert.Equal(t, job.ID, JobID(9))
		assert.Equal(t, job.State, JobStateSuccess)
		assert.Assert(t, job.State.Terminal())

		var cert Certificate
		assert.NilError(t, json.Unmarshal(job.Result, &cert))
		assert.Equal(t, cert.ID, 31)

		req := <-ch
		assert.Equal(t, req.Path, "/core/get_jobs")
		assert.Equal(t, req.Query, "id=9")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.GetJob(ctx, 10)
		assert.Assert(t, errors.Is(err, ErrNotFound), err)
		assert.Error(t, err, "job 10: record not found")
		<-ch
	})
}

func TestObserveFunc(t *testing.T) {
	srv, _ := newTestServer(t, func(resp http.ResponseWriter, r *http.Request) {
		resp.WriteHeader(http.StatusForbidden)
	})

	var observed []int
	c := Client{
		URL:    srv.URL,
		APIKey: "key",
		ObserveFunc: func(start time.Time, req *http.Request, resp *http.Response, err error) {
			assert.Check(t, !start.IsZero())
			assert.Check(t, err == nil)
			observed = append(observed, resp.StatusCode)
		},
	}

	_, err := c.ListCertificates(context.Background())
	assert.Assert(t, errors.Is(err, ErrForbidden), err)
	assert.DeepEqual(t, observed, []int{http.StatusForbidden})
}

func TestJobState_Terminal(t *testing.T) {
	for _, state := range []JobState{JobStateWaiting, JobStateRunning, "PENDING"} {
		assert.Assert(t, !state.Terminal(), state)
	}
	for _, state := range []JobState{JobStateSuccess, JobStateFailed, JobStateAborted} {
		assert.Assert(t, state.Terminal(), state)
	}
}

func TestBaseURL(t *testing.T) {
	type testCase struct {
		raw      string
		expected string
	}

	testCases := []testCase{
		{raw: "nas.example.com", expected: "http://nas.example.com/api/v2.0"},
		{raw: "https://nas.example.com", expected: "https://nas.example.com/api/v2.0"},
		{raw: "https://nas.example.com:8443/", expected: "https://nas.example.com:8443/api/v2.0"},
		{raw: "wss://nas.example.com/api/current", expected: "https://nas.example.com/api/v2.0"},
		{raw: "ws://10.0.0.2/websocket", expected: "http://10.0.0.2/api/v2.0"},
		{raw: "https://nas.example.com/api/v2.0/", expected: "https://nas.example.com/api/v2.0"},
		{raw: "https://proxy.example.com/truenas/api/v2.0", expected: "https://proxy.example.com/truenas/api/v2.0"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			actual, err := BaseURL(tc.raw)
			assert.NilError(t, err)
			assert.Equal(t, actual, tc.expected)
		})
	}
}
