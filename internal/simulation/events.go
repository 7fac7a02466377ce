package simulation

import (
	"teagate/internal/config_handler"
	"teagate/internal/logger"
	"teagate/pkg/models"
)

// NewConfigEventHandler reloads rules on rule_changed events. updater may be
// nil.
func NewConfigEventHandler(rules *RuleSet, updater config_handler.ConfigUpdater, log logger.Logger) *config_handler.Handler {
	h := config_handler.NewHandler(models.EventTypeRuleChanged, models.ServiceTypeSimulation, log).
		WithReloader(rules)
	if updater != nil {
		h = h.WithUpdater(updater)
	}
	return h
}
