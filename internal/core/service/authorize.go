package service

import (
	"github.com/rs/zerolog"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/policy"
	"github.com/quillpress/blog-system/internal/pkg/metrics"
)

// authorize consults the permission policy on behalf of a service and
// records the decision.
func authorize(log zerolog.Logger, action policy.Action, actor domain.Actor, target policy.Target) error {
	d := policy.CanPerform(action, actor, target)
	metrics.ObserveDecision("service", string(action), d.Allowed, string(d.Reason))
	if d.Allowed {
		return nil
	}
	log.Debug().
		Str("action", string(action)).
		Str("actor_id", actor.ID).
		Str("role", string(actor.Role)).
		Str("owner_id", target.OwnerID).
		Str("reason", string(d.Reason)).
		Msg("permission denied")
	return &domain.PermissionError{Action: string(action), Reason: d.Reason}
}
