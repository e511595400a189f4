package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Role is the caller's capability, taken from a verified access token.
type Role string

const (
	RoleAnonymous Role = ""
	RoleStudent   Role = "student"
	RoleChef      Role = "chef"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleChef || r == RoleAdmin
}

// SeesAllRecipes reports whether the role bypasses the published-only filter.
func (r Role) SeesAllRecipes() bool { return r == RoleAdmin }

// Package is a student's subscription tier.
type Package string

const (
	PackageBasic Package = "basic"
	PackagePro   Package = "pro"
)

type RecipeStatus string

const (
	RecipePending   RecipeStatus = "pending"
	RecipePublished RecipeStatus = "published"
	RecipeRejected  RecipeStatus = "rejected"
)

func (s RecipeStatus) Valid() bool {
	return s == RecipePending || s == RecipePublished || s == RecipeRejected
}

type ConsultStatus string

const (
	ConsultPending   ConsultStatus = "pending"
	ConsultAccepted  ConsultStatus = "accepted"
	ConsultRejected  ConsultStatus = "rejected"
	ConsultCompleted ConsultStatus = "completed"
	ConsultCancelled ConsultStatus = "cancelled"
	ConsultFailed    ConsultStatus = "failed"
)

var consultTransitions = map[ConsultStatus][]ConsultStatus{
	ConsultPending:  {ConsultAccepted, ConsultRejected, ConsultCancelled},
	ConsultAccepted: {ConsultCompleted, ConsultCancelled, ConsultFailed},
}

// CanMoveTo reports whether a consult in status s may move to next.
func (s ConsultStatus) CanMoveTo(next ConsultStatus) bool {
	return slices.Contains(consultTransitions[s], next)
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// ReceiptTitle names what a payment was for.
type ReceiptTitle string

const (
	ReceiptProPackage  ReceiptTitle = "student/pro-pkg"
	ReceiptChefSupport ReceiptTitle = "student/chef-support"
)

func (t ReceiptTitle) Valid() bool {
	return t == ReceiptProPackage || t == ReceiptChefSupport
}

const PaymentSucceeded = "succeeded"

// Claims is the authenticated identity carried by access tokens.
type Claims struct {
	UserID        uuid.UUID `json:"userId"`
	ExternalID    string    `json:"firebaseId"`
	Email         string    `json:"userEmail"`
	EmailVerified bool      `json:"emailVerified"`
	Role          Role      `json:"role"`
	Package       Package   `json:"pkg,omitempty"`
}

// RequestContext is what handlers pass down about the caller.
type RequestContext struct {
	Claims    *Claims
	RequestID string
}

// Role returns the caller's role, RoleAnonymous when unauthenticated.
func (rc RequestContext) Role() Role {
	if rc.Claims == nil {
		return RoleAnonymous
	}
	return rc.Claims.Role
}

// UserID returns the caller's id, uuid.Nil when unauthenticated.
func (rc RequestContext) UserID() uuid.UUID {
	if rc.Claims == nil {
		return uuid.Nil
	}
	return rc.Claims.UserID
}

// ParseID validates an identifier before it reaches the store.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ValidationError{Field: field, Msg: "must be a valid id", Err: err}
	}
	return id, nil
}
