package llm

import (
	"context"
	"errors"

	"github.com/wolfman30/salescoach-api/internal/scoring"
)

// ErrNotJSON is returned when a reply holds no decodable JSON object.
var ErrNotJSON = errors.New("llm: response is not a JSON object")

// CompleteJSON requests a JSON reply and decodes the first object found in
// it. The raw text is returned alongside for callers with a text fallback.
func CompleteJSON(ctx context.Context, c Client, req Request) (map[string]any, string, error) {
	req.JSON = true
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return nil, "", err
	}
	obj := scoring.ParseJSONObject(resp.Text)
	if obj == nil {
		return nil, resp.Text, ErrNotJSON
	}
	return obj, resp.Text, nil
}
