package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"

	"github.com/wolfman30/salescoach-api/cmd/mainconfig"
	"github.com/wolfman30/salescoach-api/internal/app/bootstrap"
	appconfig "github.com/wolfman30/salescoach-api/internal/config"
	"github.com/wolfman30/salescoach-api/pkg/logging"
)

// flushTimeout bounds how long an invocation waits for deferred session
// writes before returning.
const flushTimeout = 5 * time.Second

// flusher drains deferred work before the invocation returns; the runtime
// may freeze the process as soon as it does.
type flusher interface {
	Flush(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	awsCfg := aws.Config{}
	if mainconfig.NeedsAWS(cfg) {
		var err error
		awsCfg, err = mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			panic(err)
		}
	}

	app, err := bootstrap.BuildApp(ctx, cfg, awsCfg, logger)
	if err != nil {
		panic(err)
	}

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, app.Handler, app.Sessions, logger, evt)
	})
}

func handle(ctx context.Context, handler http.Handler, sessions flusher, logger *logging.Logger, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := toRequest(ctx, evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: `{"error":"invalid body"}`}, nil
	}

	rw := newResponseBuffer()
	handler.ServeHTTP(rw, req)

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	if err := sessions.Flush(flushCtx); err != nil {
		logger.Warn("session writes still pending at return", "error", err)
	}
	return rw.event(), nil
}

func toRequest(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body, err := decodeBody(evt)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if path == "" {
		path = "/"
	}

	u := &url.URL{Path: path, RawQuery: evt.RawQueryString}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if len(evt.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(evt.Cookies, "; "))
	}
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		req.RemoteAddr = ip
		if req.Header.Get("X-Forwarded-For") == "" {
			req.Header.Set("X-Forwarded-For", ip)
		}
	}
	if host := strings.TrimSpace(evt.RequestContext.DomainName); host != "" {
		req.Host = host
	}
	return req, nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// responseBuffer collects a handler's response for the API Gateway reply.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}}
}

func (r *responseBuffer) Header() http.Header { return r.header }

func (r *responseBuffer) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *responseBuffer) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *responseBuffer) event() events.APIGatewayV2HTTPResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(r.header))
	multi := map[string][]string{}
	for k, v := range r.header {
		if len(v) == 1 {
			headers[k] = v[0]
			continue
		}
		multi[k] = v
	}
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       r.body.String(),
	}
	if len(multi) > 0 {
		out.MultiValueHeaders = multi
	}
	return out
}
