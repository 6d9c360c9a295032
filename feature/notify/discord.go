package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"collection-manager/core/httpclient"
	"collection-manager/core/reconcile"

	"go.uber.org/zap"
)

type event string

const (
	eventError    event = "error"
	eventRunStart event = "run_start"
	eventRunEnd   event = "run_end"
	eventChanges  event = "changes"
)

// Embed colors.
const (
	colorBlue   = 3447003
	colorGreen  = 3066993
	colorYellow = 16776960
	colorRed    = 15158332
)

const (
	maxListed      = 10
	maxDescription = 2000
)

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp"`
}

type payload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []embed `json:"embeds"`
}

// Discord sends run notifications to Discord webhooks.
type Discord struct {
	cfg     Config
	clients map[event]*httpclient.Client
	logger  *zap.Logger
	now     func() time.Time
}

// NewDiscord creates a Discord notifier.
func NewDiscord(cfg Config, logger *zap.Logger, opts ...httpclient.Option) (*Discord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Discord{cfg: cfg, clients: map[event]*httpclient.Client{}, logger: logger, now: time.Now}
	for _, e := range []event{eventError, eventRunStart, eventRunEnd, eventChanges} {
		u := cfg.url(e)
		if u == "" {
			continue
		}
		c, err := httpclient.New(u, append([]httpclient.Option{
			httpclient.WithLogger(logger),
			httpclient.WithTimeout(10 * time.Second),
		}, opts...)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s webhook: %w", e, err)
		}
		d.clients[e] = c
	}
	return d, nil
}

func (d *Discord) send(ctx context.Context, e event, embeds ...embed) error {
	c, ok := d.clients[e]
	if !ok || len(embeds) == 0 {
		return nil
	}
	if err := c.Post(ctx, "", nil, payload{Username: d.cfg.Username, Embeds: embeds}, nil); err != nil {
		return fmt.Errorf("discord %s webhook: %w", e, err)
	}
	return nil
}

func (d *Discord) timestamp() string {
	return d.now().UTC().Format(time.RFC3339)
}

// ReportStart implements reconcile.RunStartReporter.
func (d *Discord) ReportStart(ctx context.Context, start reconcile.RunStart) error {
	libraries := "All"
	if len(start.Libraries) > 0 {
		libraries = "- " + strings.Join(start.Libraries, "\n- ")
	}
	trigger := "Manual"
	if start.Scheduled {
		trigger = "Scheduled"
	}
	fields := []embedField{
		{Name: "Libraries", Value: libraries},
		{Name: "Trigger", Value: trigger, Inline: true},
	}
	if start.DryRun {
		fields = append(fields, embedField{Name: "Mode", Value: "Dry run", Inline: true})
	}
	return d.send(ctx, eventRunStart, embed{
		Title:       "Collection Update Started",
		Description: fmt.Sprintf("Processing %d libraries", len(start.Libraries)),
		Color:       colorBlue,
		Fields:      fields,
		Timestamp:   d.timestamp(),
	})
}

// Report implements reconcile.RunReporter. All events are attempted; failures are joined.
func (d *Discord) Report(ctx context.Context, summary *reconcile.RunSummary) error {
	var errs []error
	if err := d.send(ctx, eventRunEnd, d.runEnd(summary)); err != nil {
		errs = append(errs, err)
	}
	for _, c := range summary.Collections {
		if c.Added == 0 && c.Removed == 0 {
			continue
		}
		if err := d.send(ctx, eventChanges, d.changes(c)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.send(ctx, eventError, d.errorEmbeds(summary)...); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		d.logger.Warn("Discord notification failed", zap.Error(err))
		return err
	}
	return nil
}

func (d *Discord) runEnd(s *reconcile.RunSummary) embed {
	color := colorGreen
	if s.Totals.Failed > 0 || s.Error != "" {
		color = colorRed
	}
	title := "Collection Update Completed"
	switch {
	case s.Failed():
		title = "Collection Update Failed"
	case s.Cancelled:
		title = "Collection Update Cancelled"
	case s.DryRun:
		title = "Collection Update Completed (dry run)"
	}
	fields := []embedField{
		{Name: "Duration", Value: formatDuration(s.Duration()), Inline: true},
		{Name: "Collections Updated", Value: fmt.Sprint(s.Totals.Synced), Inline: true},
		{Name: "Items Added", Value: fmt.Sprint(s.Totals.Added), Inline: true},
		{Name: "Items Removed", Value: fmt.Sprint(s.Totals.Removed), Inline: true},
		{Name: "Unmatched", Value: fmt.Sprint(s.Totals.Unmatched), Inline: true},
	}
	if s.Totals.Failed > 0 {
		fields = append(fields, embedField{Name: "Errors", Value: fmt.Sprint(s.Totals.Failed), Inline: true})
	}
	return embed{Title: title, Color: color, Fields: fields, Timestamp: d.timestamp()}
}

func (d *Discord) changes(c reconcile.CollectionReport) embed {
	titles := make(map[string]string, len(c.Items))
	for _, it := range c.Items {
		if it.Result.Matched {
			titles[it.Result.EntryID] = it.Item.Title
		}
	}
	label := func(id string) string {
		if t, ok := titles[id]; ok {
			return t
		}
		return id
	}

	var fields []embedField
	if c.Added > 0 {
		fields = append(fields, embedField{
			Name:  fmt.Sprintf("Added (%d)", len(c.Diff.ToAdd)),
			Value: list("+", c.Diff.ToAdd, label),
		})
	}
	if c.Removed > 0 {
		fields = append(fields, embedField{
			Name:  fmt.Sprintf("Removed (%d)", len(c.Diff.ToRemove)),
			Value: list("-", c.Diff.ToRemove, label),
		})
	}
	return embed{
		Title:       "Collection Updated: " + c.Collection,
		Description: "Library: " + c.Library,
		Color:       colorYellow,
		Fields:      fields,
		Timestamp:   d.timestamp(),
	}
}

func (d *Discord) errorEmbeds(s *reconcile.RunSummary) []embed {
	var out []embed
	if s.Error != "" {
		out = append(out, embed{
			Title:       "Error: run " + s.RunID,
			Description: truncate(s.Error, maxDescription),
			Color:       colorRed,
			Timestamp:   d.timestamp(),
		})
	}
	for _, c := range s.Collections {
		if !c.Status.Failed() {
			continue
		}
		out = append(out, embed{
			Title:       fmt.Sprintf("Error: %s / %s", c.Library, c.Collection),
			Description: truncate(c.Error, maxDescription),
			Color:       colorRed,
			Timestamp:   d.timestamp(),
		})
	}
	// Discord accepts at most 10 embeds per message.
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

func list(prefix string, ids []string, label func(string) string) string {
	var b strings.Builder
	for i, id := range ids {
		if i == maxListed {
			fmt.Fprintf(&b, "... and %d more", len(ids)-maxListed)
			break
		}
		fmt.Fprintf(&b, "%s %s\n", prefix, label(id))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
