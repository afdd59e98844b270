package manifest

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/flipcat/catalog-bundler/internal/fam"
	"github.com/flipcat/catalog-bundler/internal/logger"
)

// ErrConflict is returned when a must-match field carries different
// non-empty values in the manifest and in the build declaration.
var ErrConflict = errors.New("manifest value conflicts with build declaration")

// ReconcileOptions adjust the per-field must-match classification.
type ReconcileOptions struct {
	// AllowVersionMismatch demotes a version conflict from fatal to a
	// warning. Must stay unset for release bundling.
	AllowVersionMismatch bool
}

// fieldRule binds one manifest field to its build-declaration counterpart.
type fieldRule struct {
	name      string
	current   *string
	declared  string
	mustMatch bool
}

// Reconcile merges build-declaration metadata into the manifest under the
// canonical rules: a conflict on a must-match field is fatal, a conflict on
// any other field keeps the manifest value with a warning, and an empty
// manifest value adopts the declared one. Reconciling an already reconciled
// manifest against the same target changes nothing.
func Reconcile(ctx context.Context, m *Manifest, app *fam.Application, opts ReconcileOptions) error {
	// The rule order and must-match classification mirror the catalog's
	// published merge contract; do not reorder.
	rules := []fieldRule{
		{name: "name", current: &m.Name, declared: app.Name, mustMatch: true},
		{name: "id", current: &m.ID, declared: app.ID, mustMatch: true},
		{name: "author", current: &m.Author, declared: app.Author},
		{name: "category", current: &m.Category, declared: app.Category},
		{name: "icon", current: &m.Icon, declared: app.Icon},
		{name: "short_description", current: &m.ShortDescription, declared: app.Description},
	}

	for _, rule := range rules {
		if err := applyRule(ctx, rule); err != nil {
			return err
		}
	}

	if err := reconcileTargets(ctx, m, app); err != nil {
		return err
	}

	return applyRule(ctx, fieldRule{
		name:      "version",
		current:   &m.Version,
		declared:  app.VersionString(),
		mustMatch: !opts.AllowVersionMismatch,
	})
}

func applyRule(ctx context.Context, rule fieldRule) error {
	cur, declared := *rule.current, rule.declared

	if cur != "" && declared != "" && cur != declared {
		if rule.mustMatch {
			return fmt.Errorf("%w: field %q: manifest has %q, declaration has %q",
				ErrConflict, rule.name, cur, declared)
		}

		logger.WarnKV(ctx, "Manifest value differs from build declaration, keeping manifest value",
			"field", rule.name, "manifest", cur, "declared", declared)

		return nil
	}

	if cur == "" && declared != "" {
		logger.InfoKV(ctx, "Manifest value is empty, adopting value from build declaration",
			"field", rule.name, "declared", declared)

		*rule.current = declared
	}

	return nil
}

// reconcileTargets applies the same law to the hardware target list, which
// is never must-match.
func reconcileTargets(ctx context.Context, m *Manifest, app *fam.Application) error {
	if len(m.Targets) > 0 && len(app.Targets) > 0 && !slices.Equal(m.Targets, app.Targets) {
		logger.WarnKV(ctx, "Manifest targets differ from build declaration, keeping manifest targets",
			"manifest", m.Targets, "declared", app.Targets)

		return nil
	}

	if len(m.Targets) == 0 && len(app.Targets) > 0 {
		logger.InfoKV(ctx, "Manifest targets are empty, adopting targets from build declaration",
			"declared", app.Targets)

		m.Targets = slices.Clone(app.Targets)
	}

	return nil
}
