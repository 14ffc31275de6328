// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package pep503

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/net/html"

	"github.com/pydist-tools/distcheck/pkg/htmlutil"
)

const PyPIBaseURL = "https://pypi.org/simple/"

// Client talks to a PEP 503 "simple" package index.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string

	// Backoff configures retries of transient failures; leave nil for the
	// default of 4 exponentially-spaced attempts.
	Backoff func() retry.Backoff
}

func (c *Client) fillDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = PyPIBaseURL
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.UserAgent == "" {
		c.UserAgent = "github.com/pydist-tools/distcheck/pkg/python/pep503"
	}
	if c.Backoff == nil {
		c.Backoff = func() retry.Backoff {
			b := retry.NewExponential(250 * time.Millisecond)
			b = retry.WithJitterPercent(10, b)
			b = retry.WithMaxRetries(3, b)
			return b
		}
	}
}

type HTTPError struct {
	Status     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s", e.Status)
}

// get performs a GET, retrying server errors and network failures, and
// verifying any checksum in the URL fragment (e.g. "#sha256=...").
func (c Client) get(ctx context.Context, requestURL string) (_ *url.URL, _ []byte, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("GET %q => %w", requestURL, err)
		}
	}()
	c.fillDefaults()

	var location *url.URL
	var content []byte
	err = retry.Do(ctx, c.Backoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.UserAgent)

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		content, err = io.ReadAll(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return retry.RetryableError(err)
		}
		if err := resp.Body.Close(); err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			httpErr := &HTTPError{Status: resp.Status, StatusCode: resp.StatusCode}
			if resp.StatusCode >= 500 {
				return retry.RetryableError(httpErr)
			}
			return httpErr
		}
		location = resp.Request.URL
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if u, err := url.Parse(requestURL); err == nil && u.Fragment != "" {
		if keyvals, err := url.ParseQuery(u.Fragment); err == nil {
			for key, vals := range keyvals {
				for _, val := range vals {
					sum := hashContent(key, content)
					if sum != "" && sum != val {
						return nil, nil, fmt.Errorf("checksum mismatch: %s: expected=%s actual=%s",
							key, val, sum)
					}
				}
			}
		}
	}

	return location, content, nil
}

func hashContent(algo string, content []byte) string {
	var sum []byte
	switch algo {
	case "md5":
		s := md5.Sum(content)
		sum = s[:]
	case "sha1":
		s := sha1.Sum(content)
		sum = s[:]
	case "sha224":
		s := sha256.Sum224(content)
		sum = s[:]
	case "sha256":
		s := sha256.Sum256(content)
		sum = s[:]
	case "sha384":
		s := sha512.Sum384(content)
		sum = s[:]
	case "sha512":
		s := sha512.Sum512(content)
		sum = s[:]
	default:
		return ""
	}
	return hex.EncodeToString(sum)
}

// A FileLink is one artifact link on a project's simple-API page.
type FileLink struct {
	client Client

	// Text is the link text; by convention, the artifact filename.
	Text string
	// HRef is the (absolute) download URL, possibly with a checksum fragment.
	HRef string
	// RequiresPython is the link's data-requires-python attribute, if any.
	RequiresPython string
	// Yanked is whether the link carries a PEP 592 data-yanked attribute.
	Yanked bool
	// YankedReason is the value of the data-yanked attribute.
	YankedReason string
}

// Get downloads the linked file, verifying any checksum fragment in the URL.
func (l FileLink) Get(ctx context.Context) ([]byte, error) {
	_, content, err := l.client.get(ctx, l.HRef)
	return content, err
}

// ListPackageFiles fetches the simple-API page for the named project and
// returns its artifact links.  The name is normalized before building the
// URL.
func (c Client) ListPackageFiles(ctx context.Context, name string) ([]FileLink, error) {
	c.fillDefaults()

	pageURL := strings.TrimSuffix(c.BaseURL, "/") + "/" + NormalizeName(name) + "/"
	location, content, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var links []FileLink
	if err := htmlutil.VisitHTML(doc, nil, func(node *html.Node) error {
		if node.Type != html.ElementNode || node.Data != "a" {
			return nil
		}
		link := FileLink{
			client: c,
			Text:   htmlutil.Text(node),
		}
		if href, ok := htmlutil.GetAttr(node, "", "href"); ok {
			abs, err := location.Parse(href)
			if err != nil {
				return err
			}
			link.HRef = abs.String()
		}
		if val, ok := htmlutil.GetAttr(node, "", "data-requires-python"); ok {
			link.RequiresPython = val
		}
		if val, ok := htmlutil.GetAttr(node, "", "data-yanked"); ok {
			link.Yanked = true
			link.YankedReason = val
		}
		links = append(links, link)
		return nil
	}); err != nil {
		return nil, err
	}

	return links, nil
}
