// Package integrationtest provides helpers to run the http api against a real store.
package integrationtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/trade-ledger/cmd/httpserver"
	"github.com/go-petr/trade-ledger/internal/accountdelivery"
	"github.com/go-petr/trade-ledger/internal/middleware"
	"github.com/go-petr/trade-ledger/internal/test"
	"github.com/go-petr/trade-ledger/pkg/configpkg"
	"github.com/go-petr/trade-ledger/pkg/web"
)

// SetupServer returns a test server backed by a private in-memory database.
func SetupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	config.DBDriver = "sqlite3"

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(test.SetupDB(t), logger, config, nil)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config, nil) returned error: %v`, err)
	}

	return server
}

// Client sends authorized requests on behalf of one owner.
type Client struct {
	Server *httpserver.Server
	Owner  string
}

// Do sends a request with an optional json body and idempotency key and
// decodes the response envelope, with its data, into data.
func (c Client) Do(t *testing.T, method, url string, body any, key string, data any) (int, web.Response) {
	t.Helper()

	recorder := c.Raw(t, method, url, body, key)

	res := web.Response{Data: data}
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding %s %s response body error: %v", method, url, err)
	}

	return recorder.Code, res
}

// Raw sends a request and returns the recorded response as is.
func (c Client) Raw(t *testing.T, method, url string, body any, key string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	if key != "" {
		req.Header.Set(accountdelivery.IdempotencyKeyHeader, key)
	}

	err = middleware.AddAuthorization(req, c.Server.TokenMaker, middleware.AuthTypeBearer, c.Owner, time.Minute)
	if err != nil {
		t.Fatalf("middleware.AddAuthorization returned error: %v", err)
	}

	recorder := httptest.NewRecorder()
	c.Server.ServeHTTP(recorder, req)

	return recorder
}
