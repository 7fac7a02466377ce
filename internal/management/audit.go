package management

import (
	"context"
	"strings"
)

const defaultActor = "system"

// Actor identifies who made a change. The handler derives it from the
// request and the service copies it onto versions and audit logs.
type Actor struct {
	ChangedBy    string
	ChangeReason string
	IPAddress    string
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	if strings.TrimSpace(actor.ChangedBy) == "" {
		actor.ChangedBy = defaultActor
	}
	return actor
}

func ruleAuditValue(rule *Rule) map[string]interface{} {
	if rule == nil {
		return nil
	}
	return map[string]interface{}{
		"id":       rule.ID,
		"name":     rule.Name,
		"dsl":      rule.DSL,
		"severity": rule.Severity.String(),
	}
}

func newAuditLog(actor Actor, action string, ruleID *int64, oldRule, newRule *Rule) *AuditLog {
	return &AuditLog{
		RuleID:       ruleID,
		Action:       action,
		OldValue:     ruleAuditValue(oldRule),
		NewValue:     ruleAuditValue(newRule),
		ChangedBy:    actor.ChangedBy,
		ChangeReason: actor.ChangeReason,
		IPAddress:    actor.IPAddress,
	}
}
