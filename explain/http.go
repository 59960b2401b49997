// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package explain

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// HTTPClient posts requests as JSON to an HTTP endpoint and expects a JSON
// response of the form {"text": "..."}.
//
// Credentials are provided by the caller; the client never reads them from
// the environment.
//
type HTTPClient struct {
	Endpoint string
	APIKey   string       // sent as a bearer token if not empty
	HTTP     *http.Client // http.DefaultClient if nil
}

type response struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Explain implements Client.
//
func (c *HTTPClient) Explain(ctx context.Context, req Request) (string, error) {
	if c.Endpoint == "" {
		return "", errors.New("no endpoint")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode request")
	}
	hr, err := http.NewRequest(http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "new request")
	}
	hr = hr.WithContext(ctx)
	hr.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		hr.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(hr)
	if err != nil {
		return "", errors.Wrap(err, "post")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}
	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", errors.Errorf("%s", resp.Status)
		}
		return "", errors.Wrap(err, "decode response")
	}
	if resp.StatusCode != http.StatusOK {
		if r.Error != "" {
			return "", errors.Errorf("%s: %s", resp.Status, r.Error)
		}
		return "", errors.Errorf("%s", resp.Status)
	}
	return r.Text, nil
}
