package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/joestump/room-reviews/internal/store"
)

const maxLimit = 200

// parsePagination extracts cursor and limit from query parameters.
// limit is optional and silently capped at 200; without it every item is returned.
func parsePagination(r *http.Request) (store.ListOptions, error) {
	var opts store.ListOptions

	if c := r.URL.Query().Get("cursor"); c != "" {
		after, err := decodeCursor(c)
		if err != nil {
			return opts, fmt.Errorf("%w: invalid cursor", store.ErrInvalidPayload)
		}
		opts.After = after
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			return opts, fmt.Errorf("%w: limit must be a positive integer", store.ErrInvalidPayload)
		}
		opts.Limit = min(parsed, maxLimit)
	}
	return opts, nil
}

// encodeCursor encodes an opaque pagination cursor from the last item's id.
func encodeCursor(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
