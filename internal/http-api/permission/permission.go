// Package permission is the single authorization decision surface for the API.
// It is a pure function of the acting identity, the HTTP method class, the
// resource kind and (for object-level checks) the resolved target. It never
// touches storage and never mutates anything.
package permission

import (
	"net/http"

	"reviewhub/internal/http-api/models"
)

// Kind classifies the resource families the engine knows about.
type Kind int

const (
	// Registration is the anonymous signup/token surface.
	Registration Kind = iota
	// ProfileSelf is a user's own profile record.
	ProfileSelf
	// ProfileAdmin is the manage-any-user surface.
	ProfileAdmin
	// WorkFamily covers titles, genres and categories.
	WorkFamily
	// ReviewOrComment covers user-authored reviews and comments.
	ReviewOrComment
)

// Reason explains a deny so handlers can pick the right status code.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonUnauthenticated maps to 401.
	ReasonUnauthenticated
	// ReasonForbidden maps to 403.
	ReasonForbidden
)

// Actor is the acting identity as established by the auth middleware.
// A zero Actor is an anonymous request.
type Actor struct {
	Authenticated bool
	ID            string
	Username      string
	Role          models.Role
}

// Target carries the ownership facts of an already resolved object.
// A nil Target means the operation creates a new object.
type Target struct {
	// OwnerUsername is the identity attribute checked for object-level
	// permissions: the author of a review/comment, or the subject of a
	// profile record.
	OwnerUsername string
}

// Verdict is the engine's decision.
type Verdict struct {
	Allowed bool
	Reason  Reason
}

var allow = Verdict{Allowed: true}

func deny(actor Actor) Verdict {
	if !actor.Authenticated {
		return Verdict{Reason: ReasonUnauthenticated}
	}
	return Verdict{Reason: ReasonForbidden}
}

// safeMethod reports whether the method is read-only.
func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Decide returns the verdict for actor performing method on a resource of the
// given kind. target must be the fully resolved object for object-level
// checks and nil for create operations, where no object exists yet.
//
// Role and ownership are independent grounds: for ReviewOrComment writes
// either authorship or a moderator-or-above role suffices, never both.
func Decide(actor Actor, method string, kind Kind, target *Target) Verdict {
	switch kind {
	case Registration:
		// Signup and token requests belong to anonymous callers only.
		if !safeMethod(method) && !actor.Authenticated {
			return allow
		}
		return Verdict{Reason: ReasonForbidden}

	case ProfileSelf:
		if !actor.Authenticated {
			return deny(actor)
		}
		if target != nil && target.OwnerUsername != actor.Username {
			return deny(actor)
		}
		return allow

	case ProfileAdmin:
		if actor.Authenticated && actor.Role == models.RoleAdmin {
			return allow
		}
		return deny(actor)

	case WorkFamily:
		if safeMethod(method) {
			return allow
		}
		if actor.Authenticated && actor.Role == models.RoleAdmin {
			return allow
		}
		return deny(actor)

	case ReviewOrComment:
		if safeMethod(method) {
			return allow
		}
		if !actor.Authenticated {
			return deny(actor)
		}
		if target == nil {
			// Create: any authenticated user may add new content.
			return allow
		}
		if actor.Username == target.OwnerUsername {
			return allow
		}
		if actor.Role.Level() >= models.RoleModerator.Level() {
			return allow
		}
		return deny(actor)
	}
	return deny(actor)
}
