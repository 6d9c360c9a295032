package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"collection-manager/core/httpclient"
	"collection-manager/core/reconcile"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 200
	// idBatchSize bounds the ids sent in one query string.
	idBatchSize = 100
)

// ErrLibraryNotFound is returned when no virtual folder has the requested name.
var ErrLibraryNotFound = errors.New("library not found")

// Client is a Jellyfin API client.
type Client struct {
	http     *httpclient.Client
	pageSize int
	logger   *zap.Logger
}

// NewClient creates a Jellyfin client.
func NewClient(cfg Config, logger *zap.Logger, opts ...httpclient.Option) (*Client, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, errors.New("jellyfin url and api key are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	base := []httpclient.Option{
		httpclient.WithLogger(logger),
		httpclient.WithTimeout(cfg.Timeout()),
		httpclient.WithHeader("X-Emby-Token", cfg.APIKey),
	}
	if cfg.Retries > 0 {
		base = append(base, httpclient.WithRetries(cfg.Retries))
	}
	c, err := httpclient.New(cfg.URL, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create jellyfin client: %w", err)
	}
	return &Client{http: c, pageSize: pageSize, logger: logger}, nil
}

// VirtualFolder is a library as returned by /Library/VirtualFolders.
type VirtualFolder struct {
	Name           string `json:"Name"`
	ItemID         string `json:"ItemId"`
	CollectionType string `json:"CollectionType"`
}

type itemsPage struct {
	Items            []item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
}

type item struct {
	ID             string            `json:"Id"`
	Name           string            `json:"Name"`
	Type           string            `json:"Type"`
	ProductionYear int               `json:"ProductionYear"`
	ProviderIDs    map[string]string `json:"ProviderIds"`
}

func (i item) libraryItem() reconcile.LibraryItem {
	ids := make(map[string]string, len(i.ProviderIDs))
	for k, v := range i.ProviderIDs {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		switch strings.ToLower(k) {
		case reconcile.NamespaceTMDb, reconcile.NamespaceIMDb, reconcile.NamespaceTVDb:
			ids[strings.ToLower(k)] = v
		}
	}
	return reconcile.LibraryItem{EntryID: i.ID, Title: i.Name, Year: i.ProductionYear, ExternalIDs: ids}
}

// Ping checks connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	var info map[string]any
	if err := c.http.Get(ctx, "/System/Info", nil, &info); err != nil {
		return wrap("ping", err)
	}
	return nil
}

// Libraries returns the virtual folders of the server.
func (c *Client) Libraries(ctx context.Context) ([]VirtualFolder, error) {
	var folders []VirtualFolder
	if err := c.http.Get(ctx, "/Library/VirtualFolders", nil, &folders); err != nil {
		return nil, wrap("list libraries", err)
	}
	return folders, nil
}

func (c *Client) libraryID(ctx context.Context, name string) (string, error) {
	folders, err := c.Libraries(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range folders {
		if strings.EqualFold(f.Name, name) {
			return f.ItemID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrLibraryNotFound, name)
}

// ListLibrary implements reconcile.LibraryReader.
func (c *Client) ListLibrary(ctx context.Context, library string) ([]reconcile.LibraryItem, error) {
	id, err := c.libraryID(ctx, library)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("ParentId", id)
	q.Set("Recursive", "true")
	q.Set("IncludeItemTypes", "Movie,Series")
	q.Set("Fields", "ProviderIds,ProductionYear")

	items, err := c.paged(ctx, q)
	if err != nil {
		return nil, wrap("list library "+library, err)
	}
	out := make([]reconcile.LibraryItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.libraryItem())
	}
	c.logger.Debug("Listed library", zap.String("library", library), zap.Int("items", len(out)))
	return out, nil
}

func (c *Client) paged(ctx context.Context, q url.Values) ([]item, error) {
	var out []item
	for start := 0; ; start += c.pageSize {
		q.Set("StartIndex", strconv.Itoa(start))
		q.Set("Limit", strconv.Itoa(c.pageSize))

		var page itemsPage
		if err := c.http.Get(ctx, "/Items", q, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if len(page.Items) < c.pageSize || len(out) >= page.TotalRecordCount {
			return out, nil
		}
	}
}

// wrap marks transport failures and server errors as unavailability.
func wrap(op string, err error) error {
	var se *httpclient.StatusError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("jellyfin %s: %w", op, err)
	}
	if !errors.As(err, &se) || se.Temporary() {
		return fmt.Errorf("jellyfin %s: %w: %w", op, reconcile.ErrUnavailable, err)
	}
	return fmt.Errorf("jellyfin %s: %w", op, err)
}
