package request

import (
	"fmt"
	"net/http"
	"strconv"
)

// Limit reads the optional "limit" query parameter. A missing parameter
// yields 0, which lets the service apply its default.
func Limit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
	}
	return n, nil
}

// SpawnBotRequest is the request body for adding a house bot
type SpawnBotRequest struct {
	Strategy string `json:"strategy"`
}
