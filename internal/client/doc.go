// Package client reads from the HTTP API of a running ampwatch instance.
//
// It is used by `ampwatch scan` to report the status of discovered feeds and by
// `ampwatch history --remote` to list readings stored on another host.
//
//	c := client.NewClient(inst.BaseURL())
//	health, err := c.Health(ctx)
//	readings, err := c.Readings(ctx, 20)
//
// # Error Handling
//
// Failures are returned as *APIError, classified by ErrorType. Network errors,
// timeouts and 500/502/504 responses are retried with exponential backoff;
// other status codes are returned immediately:
//
//	if client.IsHTTPError(err) && client.StatusCode(err) == http.StatusServiceUnavailable {
//	    // the instance runs without a reading store
//	}
package client
