// Package authz is the tenant access guard: every handler that touches
// jamia-scoped data asks it for a decision before reading or writing.
//
// The guard is stateless. Each decision is recomputed from the current
// jamia and user state, so toggling a module or deactivating a jamia takes
// effect on the next request without any cache invalidation.
package authz

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Mahanoorfarooq/Madrassa-Management-System-sub002/internal/model"
)

// ErrNilPrincipal is returned by ScopeFor when called without a principal.
// List handlers sit behind the auth middleware, so hitting this means a
// route was wired without it.
var ErrNilPrincipal = errors.New("authz: nil principal")

// Scoped is any record that carries an optional jamia reference. A nil
// reference marks a record created before multi-tenancy was introduced.
type Scoped interface {
	JamiaRef() *uint
}

// JamiaDirectory supplies the read-only jamia lookups the guard needs.
// Implementations must hide soft-deleted jamias (return nil, nil).
type JamiaDirectory interface {
	// JamiaByID returns the jamia or (nil, nil) when it does not exist.
	JamiaByID(ctx context.Context, id uint) (*model.Jamia, error)
	// HasJamias reports whether any jamia is configured. False puts the
	// deployment in single-tenant fallback mode.
	HasJamias(ctx context.Context) (bool, error)
}

// Policy holds the explicit backward-compatibility switches. They exist as
// named flags, not silent defaults, so tests and operators can see them.
type Policy struct {
	// LegacyUnscopedReadable lets records without a jamia reference pass
	// ownership checks for every principal. This mirrors the migration
	// affordance of the original data set; turn it off once backfill is
	// done.
	LegacyUnscopedReadable bool
	// MissingModuleEnabled treats a module key absent from a jamia's flags
	// as enabled, so jamias created before a module existed keep working.
	MissingModuleEnabled bool
	// StrictModuleNames makes an unknown module name surface as an error
	// instead of a defensive ModuleDisabled denial. On outside production.
	StrictModuleNames bool
}

// DefaultPolicy matches the behavior of the original deployment.
func DefaultPolicy() Policy {
	return Policy{
		LegacyUnscopedReadable: true,
		MissingModuleEnabled:   true,
		StrictModuleNames:      true,
	}
}

// StrictPolicy denies everything the explicit flags would otherwise let
// through. Intended for deployments with fully backfilled data.
func StrictPolicy() Policy {
	return Policy{StrictModuleNames: true}
}

// Authorizer composes the module gate and the tenant scope filter into the
// single decision point handlers call. It performs no writes and may be
// called several times per request.
type Authorizer struct {
	dir    JamiaDirectory
	policy Policy
	log    *zap.Logger
}

// NewAuthorizer creates an Authorizer backed by the given directory.
func NewAuthorizer(dir JamiaDirectory, policy Policy, log *zap.Logger) *Authorizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authorizer{dir: dir, policy: policy, log: log}
}

// Authorize runs the module gate first (a disabled module denies access
// even to the jamia's own data), then the ownership check. The first denial
// wins and is logged for audit. Pass ModuleNone or a nil entity to skip the
// respective check.
//
// A non-nil error means a lookup against the store failed; that is an
// infrastructure problem and must surface as a server error, never as a
// denial.
func (a *Authorizer) Authorize(ctx context.Context, p *Principal, m Module, entity Scoped) (Decision, error) {
	if p == nil {
		return a.audit(p, m, Deny(ReasonUnauthenticated)), nil
	}

	if m != ModuleNone {
		d, err := a.CheckModule(ctx, p, m)
		if err != nil {
			return d, err
		}
		if !d.Allowed {
			return a.audit(p, m, d), nil
		}
	}

	if entity != nil {
		d, err := a.CheckOwnership(ctx, p, entity)
		if err != nil {
			return d, err
		}
		if !d.Allowed {
			return a.audit(p, m, d), nil
		}
	}

	return Allow, nil
}

// CheckModule decides whether the named module is enabled for the
// principal's jamia. Super admins are not subject to module gating.
func (a *Authorizer) CheckModule(ctx context.Context, p *Principal, m Module) (Decision, error) {
	if p == nil {
		return Deny(ReasonUnauthenticated), nil
	}

	if !m.Valid() {
		if a.policy.StrictModuleNames {
			return Deny(ReasonModuleDisabled), ErrUnknownModule
		}
		// Defensive production behavior: deny as if disabled, but make the
		// bug visible in the logs.
		a.log.Error("module check with unknown module name",
			zap.String("module", string(m)),
			zap.Uint("user_id", p.UserID))
		return Deny(ReasonModuleDisabled), nil
	}

	if p.IsSuperAdmin() {
		return Allow, nil
	}

	if p.JamiaID == nil {
		fallback, err := a.fallbackMode(ctx)
		if err != nil {
			return Decision{}, err
		}
		if fallback {
			return Allow, nil
		}
		// Jamias exist but this principal belongs to none of them.
		return Deny(ReasonTenantInactive), nil
	}

	jamia, err := a.dir.JamiaByID(ctx, *p.JamiaID)
	if err != nil {
		return Decision{}, err
	}
	if jamia == nil || jamia.DeletedAt.Valid || !jamia.Active {
		return Deny(ReasonTenantInactive), nil
	}

	enabled, present := jamia.Modules[string(m)]
	if present && !enabled {
		return Deny(ReasonModuleDisabled), nil
	}
	if !present && !a.policy.MissingModuleEnabled {
		return Deny(ReasonModuleDisabled), nil
	}
	return Allow, nil
}

// CheckOwnership decides whether the entity belongs to the principal's
// jamia. It never consults the jamia record itself; the module gate already
// covers jamia liveness.
func (a *Authorizer) CheckOwnership(ctx context.Context, p *Principal, entity Scoped) (Decision, error) {
	if p == nil {
		return Deny(ReasonUnauthenticated), nil
	}
	if entity == nil || p.IsSuperAdmin() {
		return Allow, nil
	}

	ref := entity.JamiaRef()

	if p.JamiaID == nil {
		fallback, err := a.fallbackMode(ctx)
		if err != nil {
			return Decision{}, err
		}
		if fallback {
			return Allow, nil
		}
		if ref == nil && a.policy.LegacyUnscopedReadable {
			return Allow, nil
		}
		return Deny(ReasonCrossTenant), nil
	}

	if ref == nil {
		if a.policy.LegacyUnscopedReadable {
			return Allow, nil
		}
		return Deny(ReasonCrossTenant), nil
	}

	if *ref != *p.JamiaID {
		return Deny(ReasonCrossTenant), nil
	}
	return Allow, nil
}

// ScopeFor computes the collection narrowing for the principal, so scans
// are partitioned at the query rather than filtered after the fact. Apply
// the result to every Find/Count that is not preceded by a single-entity
// ownership check.
func (a *Authorizer) ScopeFor(ctx context.Context, p *Principal) (QueryScope, error) {
	if p == nil {
		return QueryScope{}, ErrNilPrincipal
	}
	if p.IsSuperAdmin() {
		return QueryScope{All: true}, nil
	}
	if p.JamiaID == nil {
		fallback, err := a.fallbackMode(ctx)
		if err != nil {
			return QueryScope{}, err
		}
		if fallback {
			return QueryScope{All: true}, nil
		}
		// Jamias exist; an unscoped principal only sees unscoped rows.
		return QueryScope{}, nil
	}
	return QueryScope{
		JamiaID:       p.JamiaID,
		IncludeLegacy: a.policy.LegacyUnscopedReadable,
	}, nil
}

func (a *Authorizer) fallbackMode(ctx context.Context) (bool, error) {
	has, err := a.dir.HasJamias(ctx)
	if err != nil {
		return false, err
	}
	return !has, nil
}

func (a *Authorizer) audit(p *Principal, m Module, d Decision) Decision {
	fields := []zap.Field{
		zap.String("reason", string(d.Reason)),
		zap.String("module", string(m)),
	}
	if p != nil {
		fields = append(fields,
			zap.Uint("user_id", p.UserID),
			zap.String("role", string(p.Role)))
		if p.JamiaID != nil {
			fields = append(fields, zap.Uint("jamia_id", *p.JamiaID))
		}
	}
	a.log.Warn("access denied", fields...)
	return d
}

// QueryScope is the partition a collection query must be narrowed to.
// The zero value matches only rows without a jamia reference.
type QueryScope struct {
	// All leaves the query unchanged (super admin or fallback mode).
	All bool
	// JamiaID is the partition key; nil restricts to unscoped rows.
	JamiaID *uint
	// IncludeLegacy additionally admits rows without a jamia reference.
	IncludeLegacy bool
}

// Apply narrows a gorm query to the scope. Applying the same scope twice
// repeats an identical equality constraint and does not change the result
// set.
func (s QueryScope) Apply(db *gorm.DB) *gorm.DB {
	if s.All {
		return db
	}
	if s.JamiaID == nil {
		return db.Where("jamia_id IS NULL")
	}
	if s.IncludeLegacy {
		return db.Where("jamia_id = ? OR jamia_id IS NULL", *s.JamiaID)
	}
	return db.Where("jamia_id = ?", *s.JamiaID)
}
