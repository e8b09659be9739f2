// Package headhunter adapts the hh.ru vacancy search API.
package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobscout/internal/search/apiclient"
	"github.com/spigell/jobscout/internal/utils"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "spigell/jobscout (spigelly@gmail.com)"
	// Max value for search per page.
	perPage = 100
)

type ItemResponse struct {
	Items   []Item
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

type Item map[string]any

type Client struct {
	token     string
	logger    *zap.Logger
	api       *apiclient.Client
	APIURL    string
	PageDelay time.Duration
}

func NewClient(logger *zap.Logger, token string, api *apiclient.Client) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if api == nil {
		api = apiclient.New(logger)
	}
	return &Client{
		token:  token,
		logger: logger,
		api:    api,
		APIURL: apiURL,
	}
}

// GetItems makes GET requests to the HeadHunter API and returns items from up to
// maxPages pages, stopping early once limit items are collected.
func (c *Client) GetItems(ctx context.Context, path string, q url.Values, maxPages, limit int) ([]Item, error) {
	if q == nil {
		q = url.Values{}
	}
	endpoint := c.APIURL + path

	var items []Item
	for page := 0; ; page++ {
		q.Set("page", strconv.Itoa(page))

		var response ItemResponse
		if err := c.api.GetJSON(ctx, endpoint, q, c.headers(), &response); err != nil {
			return nil, err
		}
		items = append(items, response.Items...)

		c.logger.Debug("got response from HH.ru",
			zap.Int("page", response.Page),
			zap.Int("pages", response.Pages),
			zap.Int("found", response.Found),
		)

		switch {
		case response.Page >= response.Pages-1:
			return items, nil
		case maxPages > 0 && page+1 >= maxPages:
			return items, nil
		case limit > 0 && len(items) >= limit:
			return items, nil
		}

		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))
		if err := utils.WaitFor(ctx, c.PageDelay); err != nil {
			return nil, err
		}
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	h.Set("User-Agent", userAgent)
	return h
}
