package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultEndpoint = "https://www.googleapis.com/youtube/v3/videos"

// YouTube fetches video statistics from the YouTube Data API v3
// (videos.list with part=statistics).
type YouTube struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewYouTube returns a Source backed by the public Data API.
func NewYouTube(apiKey string) *YouTube {
	return &YouTube{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type statisticsResponse struct {
	Items []struct {
		ID         string            `json:"id"`
		Statistics map[string]string `json:"statistics"`
	} `json:"items"`
}

// Fetch requests statistics for up to one provider batch of IDs. Videos
// missing from the response (deleted, private) are left out of the map.
func (y *YouTube) Fetch(ctx context.Context, ids []string) (map[string]Snapshot, error) {
	stats := make(map[string]Snapshot, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	q := url.Values{}
	q.Set("part", "statistics")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("youtube returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var body statisticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode youtube response: %w", err)
	}

	for _, item := range body.Items {
		snap := Snapshot{
			Views: parseCount(item.Statistics["viewCount"]),
			Likes: parseCount(item.Statistics["likeCount"]),
		}
		for k, v := range item.Statistics {
			if k == "viewCount" || k == "likeCount" {
				continue
			}
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				continue
			}
			if snap.Extra == nil {
				snap.Extra = make(map[string]any)
			}
			snap.Extra[k] = n
		}
		stats[item.ID] = snap
	}
	return stats, nil
}

// parseCount reads the API's string-encoded counters; absent or garbled
// values count as 0.
func parseCount(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
