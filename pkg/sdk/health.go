package realitycheck

import (
	"context"
	"net/http"
)

// Health returns the aggregated service health. A degraded service answers
// 503 with a regular report, which is returned without error.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	cl := newCall("health")
	defer func() { c.obs.observe(cl, err) }()

	resp, err := c.send(ctx, http.MethodGet, "/health", http.NoBody, "")
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeError(resp)
	}
	err = decodeBody(resp, &h)
	return h, err
}

// Usage returns the embedding token report for the given period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (u UsageReport, err error) {
	cl := newCall("usage")
	defer func() { c.obs.observe(cl, err) }()

	err = c.do(ctx, cl, http.MethodGet, "/v1/usage?period="+string(period), http.NoBody, "", &u)
	return u, err
}
