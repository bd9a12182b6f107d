// Package graph implements the role directory on top of the Microsoft Graph service principal API.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	domainauth "github.com/target/shortener/internal/domain/auth"
	"github.com/target/shortener/internal/ports"
)

const (
	defaultTimeout = 10 * time.Second
	// maxPages bounds @odata.nextLink traversal of assignment listings.
	maxPages = 50
	// maxErrorBodyBytes bounds how much of a failed response is kept for the error message.
	maxErrorBodyBytes = 512
)

var _ ports.DirectoryClient = (*Directory)(nil)

// Options configures a Directory.
type Options struct {
	// BaseURL is the Graph API root, e.g. https://graph.microsoft.com/v1.0.
	BaseURL string
	Timeout time.Duration
	// HTTPClient is the base client whose transport carries the bearer credential.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Directory reads app roles and their assignments from a service principal, authenticating
// every call with the caller's own credential.
type Directory struct {
	baseURL string
	timeout time.Duration
	base    *http.Client
	logger  *slog.Logger
}

// NewDirectory creates a new Graph-backed directory.
func NewDirectory(opts Options) (*Directory, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("graph base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse graph base URL: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		baseURL: base,
		timeout: timeout,
		base:    client,
		logger:  logger.With("component", "graph_directory"),
	}, nil
}

type appRole struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type servicePrincipal struct {
	AppRoles []appRole `json:"appRoles"`
}

type appRoleAssignment struct {
	PrincipalID string `json:"principalId"`
	AppRoleID   string `json:"appRoleId"`
}

type assignmentPage struct {
	Value    []appRoleAssignment `json:"value"`
	NextLink string              `json:"@odata.nextLink"`
}

// FetchRoles lists the app roles defined on the service principal appObjectID.
func (d *Directory) FetchRoles(ctx context.Context, appObjectID, credential string) ([]domainauth.Role, error) {
	var sp servicePrincipal
	if err := d.get(ctx, d.principalURL(appObjectID), credential, &sp); err != nil {
		return nil, fmt.Errorf("fetch app roles: %w", err)
	}

	roles := make([]domainauth.Role, 0, len(sp.AppRoles))
	for _, r := range sp.AppRoles {
		roles = append(roles, domainauth.Role{ID: r.ID, Name: r.DisplayName})
	}
	return roles, nil
}

// FetchAssignments lists every principal assigned an app role of appObjectID.
func (d *Directory) FetchAssignments(
	ctx context.Context,
	appObjectID, credential string,
) ([]domainauth.RoleAssignment, error) {
	var out []domainauth.RoleAssignment
	next := d.principalURL(appObjectID) + "/appRoleAssignedTo"

	for page := 0; next != ""; page++ {
		if page == maxPages {
			d.logger.WarnContext(ctx, "assignment listing truncated", "pages", maxPages)
			break
		}
		var p assignmentPage
		if err := d.get(ctx, next, credential, &p); err != nil {
			return nil, fmt.Errorf("fetch app role assignments: %w", err)
		}
		for _, a := range p.Value {
			out = append(out, domainauth.RoleAssignment{PrincipalID: a.PrincipalID, RoleID: a.AppRoleID})
		}
		next = p.NextLink
	}
	return out, nil
}

func (d *Directory) principalURL(appObjectID string) string {
	return d.baseURL + "/serviceprincipals/" + url.PathEscape(appObjectID)
}

// client returns an HTTP client that authenticates with credential.
func (d *Directory) client(ctx context.Context, credential string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, d.base)
	c := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	}))
	c.Timeout = d.timeout
	return c
}

func (d *Directory) get(ctx context.Context, target, credential string, into any) error {
	if credential == "" {
		return errors.New("credential is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client(ctx, credential).Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
