package models

import (
	"database/sql/driver"
	"fmt"
)

// AccessLevel is the authorization tier of a project member. Role strings on a
// membership are purely descriptive; only the access level is consulted when
// deciding what a member may do.
type AccessLevel string

const (
	AccessOwner  AccessLevel = "Owner"
	AccessAdmin  AccessLevel = "Admin"
	AccessEditor AccessLevel = "Editor"
	AccessNone   AccessLevel = ""
)

// ParseAccessLevel maps a wire value onto the closed enum. Anything outside the
// three positive levels collapses to AccessNone.
func ParseAccessLevel(s string) AccessLevel {
	switch AccessLevel(s) {
	case AccessOwner, AccessAdmin, AccessEditor:
		return AccessLevel(s)
	default:
		return AccessNone
	}
}

// CanManage reports whether the level permits mutating operations on a project:
// updating fields, changing member access, removing members, inviting, adding work.
func (a AccessLevel) CanManage() bool {
	switch a {
	case AccessOwner, AccessAdmin, AccessEditor:
		return true
	default:
		return false
	}
}

// CanDelete reports whether the level permits deleting the project entirely.
// Only owners may delete.
func (a AccessLevel) CanDelete() bool {
	return a == AccessOwner
}

// IsMember reports whether the level represents any membership at all.
func (a AccessLevel) IsMember() bool {
	return a != AccessNone
}

func (a AccessLevel) String() string {
	if a == AccessNone {
		return "None"
	}
	return string(a)
}

// Value implements driver.Valuer so gorm stores the level as plain text.
func (a AccessLevel) Value() (driver.Value, error) {
	return string(a), nil
}

// Scan implements sql.Scanner. Unknown stored values scan as AccessNone rather
// than failing the row load.
func (a *AccessLevel) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*a = ParseAccessLevel(v)
	case []byte:
		*a = ParseAccessLevel(string(v))
	case nil:
		*a = AccessNone
	default:
		return fmt.Errorf("cannot scan %T into AccessLevel", src)
	}
	return nil
}
