package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"mktintel/internal/dataprocessing"
	apierrors "mktintel/internal/errors"
	"mktintel/internal/services"
	"mktintel/pkg/contracts/domain"
)

const queryDateLayout = "2006-01-02"

// parseQuery reads the shared dashboard filters: from/to date bounds,
// a comma-separated platform list and an optional group_by tuple.
func parseQuery(r *http.Request) (services.Query, error) {
	var q services.Query
	values := r.URL.Query()

	if raw := values.Get("from"); raw != "" {
		from, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return q, apierrors.ErrValidation("from", "must be a YYYY-MM-DD date")
		}
		q.From = from
	}
	if raw := values.Get("to"); raw != "" {
		to, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return q, apierrors.ErrValidation("to", "must be a YYYY-MM-DD date")
		}
		q.To = to
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return q, apierrors.ErrValidation("to", "must not precede from")
	}

	if raw := values.Get("platforms"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			platform, err := domain.ParsePlatform(strings.TrimSpace(part))
			if err != nil {
				return q, apierrors.ErrValidation("platforms", fmt.Sprintf("unknown platform %q", part))
			}
			q.Platforms = append(q.Platforms, platform)
		}
	}

	if raw := values.Get("group_by"); raw != "" {
		keys, ok := dataprocessing.ParseGroupKeys(raw)
		if !ok {
			return q, apierrors.ErrValidation("group_by", "allowed keys: date, platform, tactic, state, campaign")
		}
		q.GroupBy = keys
	}

	return q, nil
}
