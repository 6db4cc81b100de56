package api

import "context"

const RouteTrips = "/trips/"

// Trip is the summary the trips listing returns
type Trip struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Destination string `json:"destination,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// ListTrips returns the trips visible to the current user
func (c *Client) ListTrips(ctx context.Context) ([]Trip, error) {
	var trips []Trip
	if err := c.GetJSON(ctx, RouteTrips, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}
