package authgate

import (
	"context"
	"strings"

	"github.com/tripora/authgate/permission"
)

// DefaultCriticalAttributes are the profile attributes whose mutation must
// be reflected everywhere immediately: the role itself and the approval
// gates. Extending this list is a product decision; do not add attributes
// without re-confirming the requirement.
var DefaultCriticalAttributes = []string{
	permission.AttrRole,
	permission.AttrOperatorApproved,
	permission.AttrPromoterApproved,
}

// HandleAttributeMutation is called after profile attributes were mutated.
// It records the profile-update marker, forces a credential renewal
// (bypassing the dedup window), and classifies the mutation: a critical
// attribute (role, approval flags) additionally requires a full reload of
// already-rendered state, an ordinary one only the renewal.
func (e *Engine) HandleAttributeMutation(ctx context.Context, mutated []string) AttributeChange {
	if e.recorder != nil {
		if err := e.recorder.RecordProfileUpdate(ctx, e.now()); err != nil && e.logger != nil {
			e.logger.Printf("authgate: profile update marker not recorded: %v", err)
		}
	}

	var critical []string
	for _, name := range mutated {
		if e.critical[name] {
			critical = append(critical, name)
		}
	}

	renewed := e.coordinator.ForceRefresh(ctx)

	e.metrics.Inc(MetricProfileMutation)
	if len(critical) > 0 {
		e.metrics.Inc(MetricCriticalMutation)
	}
	if e.audit != nil {
		e.audit.Emit(ctx, AuditEvent{
			Timestamp: e.now(),
			EventType: EventProfileMutation,
			IP:        clientIPFromContext(ctx),
			Success:   renewed,
			Metadata: map[string]string{
				"mutated":  strings.Join(mutated, ","),
				"critical": strings.Join(critical, ","),
			},
		})
	}

	return AttributeChange{
		Renewed:        renewed,
		ReloadRequired: len(critical) > 0,
		Critical:       critical,
	}
}
