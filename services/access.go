package services

import (
	"vexa/models"
	"vexa/utils"
)

// Requirement is the access requirement of an operation.
type Requirement int

const (
	// RequireMember admits any roster entry regardless of level.
	RequireMember Requirement = iota
	// RequireManage admits Owner, Admin and Editor.
	RequireManage
	// RequireOwner admits exactly Owner.
	RequireOwner
)

// MemberAccess scans a loaded roster for the given user and returns their
// access level. Absent users, and entries carrying an unknown level, are
// AccessNone.
func MemberAccess(p *models.Project, userID uint) models.AccessLevel {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Access
		}
	}
	return models.AccessNone
}

// Authorize decides whether the actor may perform an operation with the given
// requirement on the project. It is a pure predicate over the loaded roster:
// no store access, no side effects. Callers must not reveal project contents
// when it fails.
func Authorize(p *models.Project, actorUserID uint, req Requirement) error {
	access := MemberAccess(p, actorUserID)

	allowed := false
	switch req {
	case RequireOwner:
		allowed = access.CanDelete()
	case RequireManage:
		allowed = access.CanManage()
	case RequireMember:
		allowed = access.IsMember()
	}

	if !allowed {
		return utils.ForbiddenError("You are not allowed to perform this action")
	}
	return nil
}
