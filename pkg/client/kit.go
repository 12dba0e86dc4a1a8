package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kittrack/kittrack/pkg/whttp"
	"github.com/tidwall/gjson"
)

// ValidateKit checks kitID against the backend. A valid id is cached in the
// local store and the user is sent to the tracking form.
func (c *Client) ValidateKit(ctx context.Context, kitID string) error {
	kitID = strings.TrimSpace(kitID)
	if kitID == "" {
		c.alert.Alert("Please enter a Kit ID")
		return ErrEmptyKitID
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "GET",
		URL:    c.baseURL + "/validate-kit/" + url.PathEscape(kitID),
	}, c.reads)
	if err != nil {
		c.log.Errorf("Error validating kit: %v", err)
		c.alert.Alert("Failed to validate Kit ID")
		return fmt.Errorf("validating kit: %w", err)
	}
	if !gjson.Valid(res.BodyString) {
		c.log.Errorf("Error validating kit: %s", res.Summary())
		c.alert.Alert("Failed to validate Kit ID")
		return fmt.Errorf("validating kit: unexpected response %s", res.Summary())
	}

	if !gjson.Get(res.BodyString, "valid").Bool() {
		c.alert.Alert("Invalid Kit ID")
		return ErrInvalidKit
	}

	if c.store != nil {
		if err := c.store.SetKitID(ctx, kitID); err != nil {
			c.log.Errorf("Could not cache kit id: %v", err)
			c.alert.Alert("Could not save Kit ID")
			return fmt.Errorf("caching kit id: %w", err)
		}
	}
	c.nav.Navigate("/track")
	return nil
}

// GenerateKit asks the backend for a new kit id.
func (c *Client) GenerateKit(ctx context.Context) (string, error) {
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method:  "POST",
		URL:     c.baseURL + "/generate-kit",
		Headers: []whttp.WHTTPHeader{{Name: "Content-Type", Value: "application/json"}},
	}, c.writes)
	if err != nil {
		return "", fmt.Errorf("generating kit: %w", err)
	}
	kitID := gjson.Get(res.BodyString, "kit_id").String()
	if res.StatusCode != 200 || kitID == "" {
		return "", fmt.Errorf("generating kit: unexpected response %s", res.Summary())
	}
	return kitID, nil
}
