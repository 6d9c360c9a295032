package jellyfin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"collection-manager/core/reconcile"

	"go.uber.org/zap"
)

// findCollection returns the id of the BoxSet with the given name, or "" when absent.
func (c *Client) findCollection(ctx context.Context, name string) (string, error) {
	q := url.Values{}
	q.Set("IncludeItemTypes", "BoxSet")
	q.Set("Recursive", "true")
	q.Set("SearchTerm", name)

	var page itemsPage
	if err := c.http.Get(ctx, "/Items", q, &page); err != nil {
		return "", wrap("find collection "+name, err)
	}
	for _, it := range page.Items {
		if strings.EqualFold(it.Name, name) {
			return it.ID, nil
		}
	}
	return "", nil
}

// GetMembership implements reconcile.CollectionStore.
func (c *Client) GetMembership(ctx context.Context, _ string, collection string) (reconcile.Membership, error) {
	id, err := c.findCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return reconcile.NewMembership(), nil
	}

	q := url.Values{}
	q.Set("ParentId", id)
	q.Set("Fields", "ProviderIds")
	items, err := c.paged(ctx, q)
	if err != nil {
		return nil, wrap("list collection "+collection, err)
	}
	m := reconcile.NewMembership()
	for _, it := range items {
		m[it.ID] = struct{}{}
	}
	return m, nil
}

type createResponse struct {
	ID string `json:"Id"`
}

// ApplyDiff implements reconcile.CollectionStore. Adds run before removals; a
// failure after the first successful call returns *reconcile.PartialFailureError.
func (c *Client) ApplyDiff(ctx context.Context, library, collection string, diff reconcile.Diff) error {
	if diff.Empty() {
		return nil
	}
	id, err := c.findCollection(ctx, collection)
	if err != nil {
		return err
	}

	done := 0
	fail := func(op string, err error) error {
		err = wrap(op+" "+collection, err)
		if done == 0 {
			return err
		}
		return &reconcile.PartialFailureError{
			Collection: collection,
			Detail:     fmt.Sprintf("%s failed after %d successful batch(es)", op, done),
			Err:        err,
		}
	}

	adds := batches(diff.ToAdd, idBatchSize)
	if id == "" {
		if len(adds) == 0 {
			return nil
		}
		q := url.Values{}
		q.Set("Name", collection)
		q.Set("Ids", strings.Join(adds[0], ","))
		var created createResponse
		if err := c.http.Post(ctx, "/Collections", q, nil, &created); err != nil {
			return fail("create", err)
		}
		id = created.ID
		done++
		adds = adds[1:]
		c.logger.Info("Created collection", zap.String("library", library), zap.String("collection", collection), zap.String("id", id))
	}

	for _, batch := range adds {
		q := url.Values{}
		q.Set("Ids", strings.Join(batch, ","))
		if err := c.http.Post(ctx, "/Collections/"+id+"/Items", q, nil, nil); err != nil {
			return fail("add", err)
		}
		done++
	}
	for _, batch := range batches(diff.ToRemove, idBatchSize) {
		q := url.Values{}
		q.Set("Ids", strings.Join(batch, ","))
		if err := c.http.Delete(ctx, "/Collections/"+id+"/Items", q); err != nil {
			return fail("remove", err)
		}
		done++
	}
	return nil
}

// UpdateMetadata implements reconcile.MetadataUpdater. Empty fields are left as is.
func (c *Client) UpdateMetadata(ctx context.Context, _ string, collection string, metadata reconcile.CollectionMetadata) error {
	if metadata.IsZero() {
		return nil
	}
	id, err := c.findCollection(ctx, collection)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("jellyfin update metadata: collection %q not found", collection)
	}

	var current map[string]any
	if err := c.http.Get(ctx, "/Items/"+id, nil, &current); err != nil {
		return wrap("get collection "+collection, err)
	}
	if current == nil {
		current = map[string]any{}
	}
	if metadata.Summary != "" {
		current["Overview"] = metadata.Summary
	}
	if metadata.SortTitle != "" {
		current["SortName"] = metadata.SortTitle
		current["ForcedSortName"] = metadata.SortTitle
	}
	if err := c.http.Post(ctx, "/Items/"+id, nil, current, nil); err != nil {
		return wrap("update collection "+collection, err)
	}
	return nil
}

func batches(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > 0 {
		n := min(size, len(ids))
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}
