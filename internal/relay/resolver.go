package relay

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"dmrelay/internal/constants"
	apperrors "dmrelay/pkg/errors"
	"dmrelay/pkg/metrics"
	"dmrelay/pkg/tracing"
)

// Resolver turns a TargetSpec into recipient ids. Every call re-reads the
// directory.
type Resolver struct {
	directory Directory
}

func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve returns recipient ids in directory order. Bots are dropped from
// group and everyone targets but not from single targets.
func (r *Resolver) Resolve(ctx context.Context, spec TargetSpec) ([]string, error) {
	ctx, span := tracing.GetTracer(constants.ServiceName).Start(ctx, "relay.resolve")
	defer span.End()
	span.SetAttributes(attribute.String("relay.target", spec.Kind.String()))

	var (
		ids []string
		err error
	)
	switch spec.Kind {
	case TargetSingle:
		ids, err = r.resolveSingle(ctx, spec.RecipientID)
	case TargetGroup:
		ids, err = r.resolveGroup(ctx, spec)
	case TargetEveryone:
		ids, err = r.resolveEveryone(ctx)
	default:
		err = apperrors.ErrInvalidTarget.WithDetail("target", spec.Kind.String())
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("relay.recipients", len(ids)))
	metrics.ObserveResolvedRecipients(spec.Kind.String(), len(ids))
	return ids, nil
}

func (r *Resolver) resolveSingle(ctx context.Context, id string) ([]string, error) {
	if id == "" {
		return nil, apperrors.ErrInvalidTarget.WithMessage("recipient id is required")
	}

	user, err := r.directory.User(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, errRecipientNotFound(id)
		}
		return nil, errDirectory(err)
	}
	if user == nil {
		return nil, errRecipientNotFound(id)
	}
	return []string{id}, nil
}

func (r *Resolver) resolveGroup(ctx context.Context, spec TargetSpec) ([]string, error) {
	if spec.Group == "" {
		return nil, apperrors.ErrInvalidTarget.WithMessage("role is required")
	}

	roles, err := r.directory.Roles(ctx)
	if err != nil {
		return nil, errDirectory(err)
	}

	role, ok := findRole(roles, spec)
	if !ok {
		return nil, errRoleNotFound(spec.Group)
	}

	members, err := r.directory.Members(ctx)
	if err != nil {
		return nil, errDirectory(err)
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.Bot {
			continue
		}
		if role.Everyone || m.HasRole(role.ID) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// findRole returns the first role matching by id or by exact name.
func findRole(roles []Role, spec TargetSpec) (Role, bool) {
	for _, role := range roles {
		if spec.GroupByID && role.ID == spec.Group {
			return role, true
		}
		if !spec.GroupByID && role.Name == spec.Group {
			return role, true
		}
	}
	return Role{}, false
}

func (r *Resolver) resolveEveryone(ctx context.Context) ([]string, error) {
	members, err := r.directory.Members(ctx)
	if err != nil {
		return nil, errDirectory(err)
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		if !m.Bot {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// GroupNames lists selectable role names: the implicit everyone role and
// integration-managed roles are left out.
func (r *Resolver) GroupNames(ctx context.Context) ([]string, error) {
	roles, err := r.directory.Roles(ctx)
	if err != nil {
		return nil, errDirectory(err)
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		if role.Everyone || role.Managed {
			continue
		}
		names = append(names, role.Name)
	}
	return names, nil
}
