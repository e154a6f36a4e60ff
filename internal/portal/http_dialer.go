// Package portal implements the external accounting portal gateway. The
// portal is a legacy form-driven web UI without an API; this client scripts
// its login and entry forms over plain HTTP, one cookie-backed session per
// login.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/haneulsoft/kinderledger/internal/core/domain"
	"github.com/haneulsoft/kinderledger/internal/core/ports/gateways"
)

const (
	loginPath  = "/login"
	entryPath  = "/ledger/entry"
	logoutPath = "/logout"

	portalDateFormat = "2006-01-02"
)

// HTTPDialer opens portal sessions against a configured base URL.
type HTTPDialer struct {
	baseURL string
	timeout time.Duration
}

var _ gateways.PortalDialer = (*HTTPDialer)(nil)

// NewHTTPDialer creates a dialer for the portal at baseURL. timeout bounds
// every individual portal request.
func NewHTTPDialer(baseURL string, timeout time.Duration) *HTTPDialer {
	return &HTTPDialer{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (d *HTTPDialer) Login(ctx context.Context, loginID, secret string) (gateways.PortalSession, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	session := &httpSession{
		baseURL: d.baseURL,
		client: &http.Client{
			Jar:     jar,
			Timeout: d.timeout,
		},
	}

	form := url.Values{
		"userId":   {loginID},
		"password": {secret},
	}
	body, status, err := session.postForm(ctx, loginPath, form)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: login rejected with status %d", apperrors.ErrPortalRejection, status)
	}
	// The portal answers 200 with an error page on bad credentials.
	if strings.Contains(body, "loginError") {
		return nil, fmt.Errorf("%w: invalid portal credentials", apperrors.ErrPortalRejection)
	}
	return session, nil
}

type httpSession struct {
	baseURL string
	client  *http.Client
}

var _ gateways.PortalSession = (*httpSession)(nil)

func (s *httpSession) SubmitEntry(ctx context.Context, entry gateways.PortalEntry) error {
	kind := "expense"
	if entry.Kind == domain.Income {
		kind = "income"
	}
	form := url.Values{
		"entryDate":   {entry.Date.Format(portalDateFormat)},
		"entryKind":   {kind},
		"accountCode": {entry.AccountCode},
		"amount":      {strconv.FormatInt(entry.Amount, 10)},
		"description": {entry.Description},
	}

	body, status, err := s.postForm(ctx, entryPath, form)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK && strings.Contains(body, "saved"):
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: portal session expired", apperrors.ErrPortalRejection)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: portal returned status %d", apperrors.ErrPortalUnreachable, status)
	default:
		return fmt.Errorf("%w: portal rejected entry %s: %s", apperrors.ErrPortalRejection, entry.EntryID, firstLine(body))
	}
}

func (s *httpSession) Logout(ctx context.Context) error {
	_, _, err := s.postForm(ctx, logoutPath, url.Values{})
	return err
}

// postForm submits a form and classifies transport failures as
// ErrPortalUnreachable. HTTP-level outcomes are left to the caller.
func (s *httpSession) postForm(ctx context.Context, path string, form url.Values) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build portal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		if isTransportError(err) {
			return "", 0, fmt.Errorf("%w: %v", apperrors.ErrPortalUnreachable, err)
		}
		return "", 0, fmt.Errorf("portal request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to read portal response: %v", apperrors.ErrPortalUnreachable, err)
	}
	return string(bodyBytes), resp.StatusCode, nil
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return strings.TrimSpace(s)
}
