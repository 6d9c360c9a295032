package arr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"collection-manager/core/httpclient"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when a request needs an instance that has no settings.
var ErrNotConfigured = errors.New("arr instance not configured")

type qualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type rootFolder struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
}

type tag struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// client covers the API shared by Radarr and Sonarr. Profile, folder and tag
// lookups are cached for the lifetime of the client.
type client struct {
	name   string
	http   *httpclient.Client
	cfg    Config
	logger *zap.Logger

	mu        sync.Mutex
	profileID int
	folder    string
	tags      map[string]int
}

func newClient(name string, cfg Config, logger *zap.Logger, opts ...httpclient.Option) (*client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := []httpclient.Option{
		httpclient.WithLogger(logger),
		httpclient.WithTimeout(cfg.timeout()),
		httpclient.WithHeader("X-Api-Key", cfg.APIKey),
	}
	h, err := httpclient.New(cfg.URL, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}
	return &client{name: name, http: h, cfg: cfg, logger: logger, tags: map[string]int{}}, nil
}

func (c *client) qualityProfileID(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profileID != 0 {
		return c.profileID, nil
	}

	var profiles []qualityProfile
	if err := c.http.Get(ctx, "/api/v3/qualityprofile", nil, &profiles); err != nil {
		return 0, fmt.Errorf("list quality profiles: %w", err)
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, c.cfg.QualityProfile) {
			c.profileID = p.ID
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("quality profile %q not found", c.cfg.QualityProfile)
}

// rootFolderPath returns the configured folder when the server knows it (or a
// parent of it), else the first folder of the server.
func (c *client) rootFolderPath(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.folder != "" {
		return c.folder, nil
	}

	var folders []rootFolder
	if err := c.http.Get(ctx, "/api/v3/rootfolder", nil, &folders); err != nil {
		return "", fmt.Errorf("list root folders: %w", err)
	}
	if len(folders) == 0 {
		return "", errors.New("no root folder configured")
	}
	c.folder = folders[0].Path
	for _, f := range folders {
		if c.cfg.RootFolder != "" && (f.Path == c.cfg.RootFolder || strings.HasPrefix(c.cfg.RootFolder, f.Path)) {
			c.folder = f.Path
			break
		}
	}
	return c.folder, nil
}

// tagIDs resolves tag labels, creating the missing ones. No labels means the default tag.
func (c *client) tagIDs(ctx context.Context, labels []string) ([]int, error) {
	if len(labels) == 0 && c.cfg.DefaultTag != "" {
		labels = []string{c.cfg.DefaultTag}
	}
	if len(labels) == 0 {
		return []int{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int, 0, len(labels))
	for _, label := range labels {
		key := strings.ToLower(label)
		if id, ok := c.tags[key]; ok {
			ids = append(ids, id)
			continue
		}
		if len(c.tags) == 0 {
			var existing []tag
			if err := c.http.Get(ctx, "/api/v3/tag", nil, &existing); err != nil {
				return nil, fmt.Errorf("list tags: %w", err)
			}
			for _, t := range existing {
				c.tags[strings.ToLower(t.Label)] = t.ID
			}
			if id, ok := c.tags[key]; ok {
				ids = append(ids, id)
				continue
			}
		}

		var created tag
		if err := c.http.Post(ctx, "/api/v3/tag", nil, tag{Label: label}, &created); err != nil {
			return nil, fmt.Errorf("create tag %q: %w", label, err)
		}
		c.tags[key] = created.ID
		ids = append(ids, created.ID)
		c.logger.Info("Created tag", zap.String("service", c.name), zap.String("tag", label))
	}
	return ids, nil
}
