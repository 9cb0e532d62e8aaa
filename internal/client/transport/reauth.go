// Package transport provides an http.RoundTripper that retries a request
// once after a silent access token refresh.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/itemkeeper/internal/client/session"
	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/logging"
)

// RefreshFunc exchanges the refresh credential for a new access token. It
// must not route through a ReauthTransport.
type RefreshFunc func(ctx context.Context) (string, error)

// ReauthTransport attaches the stored access token to every request. On a
// 401 it refreshes once: a new token triggers a single retry whose result is
// returned as is, while a failed refresh clears the store and hands back the
// original 401. Concurrent 401s each refresh on their own.
type ReauthTransport struct {
	base    http.RoundTripper
	store   *session.Store
	refresh RefreshFunc
	logger  logging.Logger
}

func NewReauthTransport(base http.RoundTripper, store *session.Store, refresh RefreshFunc, logger logging.Logger) *ReauthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &ReauthTransport{base: base, store: store, refresh: refresh, logger: logger.With("module", "reauth_transport")}
}

func (t *ReauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	first, err := withBearer(req, body, t.store.AccessToken())
	if err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	ctx := req.Context()
	t.store.BeginRefresh()

	token, rerr := t.refresh(ctx)
	if rerr != nil || token == "" {
		t.logger.Info(ctx, "refresh failed, logging out", "error", rerr)
		t.store.Clear()
		return resp, nil
	}
	t.store.SetAccessToken(token)

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	retry, err := withBearer(req, body, token)
	if err != nil {
		return nil, err
	}
	return t.base.RoundTrip(retry)
}

// replayableBody returns a source of fresh copies of the request body, or nil
// when there is no body. A body without GetBody is read and closed once.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		return req.GetBody, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

// withBearer clones req with a fresh body and the given access token. The
// caller's request is never modified.
func withBearer(req *http.Request, body func() (io.ReadCloser, error), token string) (*http.Request, error) {
	out := req.Clone(req.Context())
	if body != nil {
		rc, err := body()
		if err != nil {
			return nil, fmt.Errorf("replay request body: %w", err)
		}
		out.Body = rc
		out.GetBody = body
	}
	if token != "" {
		out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return out, nil
}
