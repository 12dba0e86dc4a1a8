package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/kittrack/kittrack/pkg/tracking"
	"github.com/kittrack/kittrack/pkg/whttp"
	"github.com/tidwall/gjson"
)

const (
	saveTrackingPath = "/save-tracking"
	saveMealPath     = "/save-meal"
	saveMoodPath     = "/save-mood"
	saveStoolPath    = "/save-stool"
)

// Submit sends a full tracking record. On success the user is sent to the
// insights view of the kit. On failure exactly one alert is raised and
// nothing is written locally; the caller keeps its form state so the user
// can resubmit.
func (c *Client) Submit(ctx context.Context, rec tracking.TrackingRecord) error {
	if err := c.postJSON(ctx, saveTrackingPath, rec); err != nil {
		c.log.Errorf("Error saving tracking data: %v", err)
		c.alert.Alert("Failed to save data")
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	if c.offlineLog && c.store != nil {
		if err := c.store.AppendRecord(ctx, rec); err != nil {
			c.log.Warnf("Saved remotely but could not append to local history: %v", err)
		}
	}
	c.nav.Navigate(InsightsPath(rec.KitID))
	return nil
}

// SaveMeal sends the selections of one meal.
func (c *Client) SaveMeal(ctx context.Context, kitID string, meal tracking.MealType, foods tracking.CategoryMap) error {
	if kitID == "" {
		c.alert.Alert("Please enter a Kit ID")
		return ErrEmptyKitID
	}
	foods = foods.Normalize()
	if len(foods) == 0 {
		c.alert.Alert("Please select at least one food item")
		return ErrNoFoodSelected
	}

	body := tracking.MealSubmission{KitID: kitID, Type: meal, Foods: foods}
	if err := c.postJSON(ctx, saveMealPath, body); err != nil {
		c.log.Errorf("Error saving meal data: %v", err)
		c.alert.Alert("Failed to save meal data")
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	c.nav.Navigate("/dashboard")
	return nil
}

// SaveStool sends the stool section on its own.
func (c *Client) SaveStool(ctx context.Context, kitID string, stool tracking.Stool) error {
	if kitID == "" {
		c.alert.Alert("Please enter a Kit ID")
		return ErrEmptyKitID
	}

	body := tracking.StoolSubmission{KitID: kitID, Date: c.now(), Stool: stool}
	if err := c.postJSON(ctx, saveStoolPath, body); err != nil {
		c.log.Errorf("Error saving stool data: %v", err)
		c.alert.Alert("Failed to save stool data")
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	c.nav.Navigate("/dashboard")
	return nil
}

// SaveMood sends the mood on its own. Only one mood submission per
// calendar day is allowed; the gate is kept in the local store.
func (c *Client) SaveMood(ctx context.Context, kitID string, mood tracking.Mood) error {
	if kitID == "" {
		c.alert.Alert("Please enter a Kit ID")
		return ErrEmptyKitID
	}

	now := c.now()
	if c.store != nil {
		done, err := c.store.MoodSubmittedToday(ctx, now)
		if err != nil {
			c.log.Warnf("Could not read mood gate: %v", err)
		}
		if done {
			c.alert.Alert("You have already submitted your mood today")
			return ErrMoodAlreadySubmitted
		}
	}

	body := tracking.MoodSubmission{KitID: kitID, Date: now, Mood: mood}
	if err := c.postJSON(ctx, saveMoodPath, body); err != nil {
		c.log.Errorf("Error saving mood data: %v", err)
		c.alert.Alert("Failed to save mood data")
		return fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	if c.store != nil {
		if err := c.store.MarkMoodSubmitted(ctx, now); err != nil {
			c.log.Warnf("Could not record mood submission date: %v", err)
		}
	}
	c.nav.Navigate("/dashboard")
	return nil
}

// Insights fetches the mood trend of a kit.
func (c *Client) Insights(ctx context.Context, kitID string) ([]tracking.MoodPoint, error) {
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "GET",
		URL:    c.baseURL + "/insights/" + url.PathEscape(kitID),
	}, c.reads)
	if err != nil {
		return nil, fmt.Errorf("fetching insights: %w", err)
	}
	if res.StatusCode != 200 || !gjson.Valid(res.BodyString) {
		return nil, fmt.Errorf("fetching insights: unexpected response %s", res.Summary())
	}

	var points []tracking.MoodPoint
	for _, p := range gjson.Get(res.BodyString, "mood").Array() {
		date, err := time.Parse(time.RFC3339, p.Get("date").String())
		if err != nil {
			c.log.Warnf("Skipping mood point with bad date %q", p.Get("date").String())
			continue
		}
		points = append(points, tracking.MoodPoint{Date: date, Mood: int(p.Get("mood").Int())})
	}
	return points, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method:  "POST",
		URL:     c.baseURL + path,
		Headers: []whttp.WHTTPHeader{{Name: "Content-Type", Value: "application/json"}},
		Body:    string(payload),
	}, c.writes)
	if err != nil {
		return err
	}

	if !gjson.Valid(res.BodyString) {
		return &ResponseError{StatusCode: res.StatusCode, Message: res.Summary()}
	}
	if !gjson.Get(res.BodyString, "success").Bool() {
		return &ResponseError{StatusCode: res.StatusCode, Message: gjson.Get(res.BodyString, "error").String()}
	}
	return nil
}
