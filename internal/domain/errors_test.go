package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	base := errors.New("boom")
	wrapped := fmt.Errorf("saving rating: %w", ConflictError{Resource: "rating", Err: base})

	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "saving rating: rating already exists", wrapped.Error())

	assert.True(t, IsNotFound(NotFoundError{Resource: "recipe"}))
	assert.Equal(t, "recipe not found", NotFoundError{Resource: "recipe"}.Error())
	assert.True(t, IsValidation(ValidationError{Field: "page"}))
	assert.Equal(t, "invalid page", ValidationError{Field: "page"}.Error())
	assert.True(t, IsForbidden(ForbiddenError{}))
	assert.True(t, IsUnauthorized(UnauthorizedError{}))
	assert.True(t, IsInternal(InternalError{Err: base}))
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID("recipeId", id.String())
	assert.NoError(t, err)
	assert.Equal(t, id, got)

	for _, raw := range []string{"", "abc", uuid.Nil.String()} {
		_, err := ParseID("recipeId", raw)
		assert.True(t, IsValidation(err), raw)
	}
}

func TestConsultTransitions(t *testing.T) {
	assert.True(t, ConsultPending.CanMoveTo(ConsultAccepted))
	assert.True(t, ConsultAccepted.CanMoveTo(ConsultCompleted))
	assert.False(t, ConsultCompleted.CanMoveTo(ConsultPending))
	assert.False(t, ConsultPending.CanMoveTo(ConsultCompleted))
	assert.False(t, ConsultCancelled.CanMoveTo(ConsultAccepted))
}

func TestRequestContextAnonymous(t *testing.T) {
	var rc RequestContext
	assert.Equal(t, RoleAnonymous, rc.Role())
	assert.Equal(t, uuid.Nil, rc.UserID())
	assert.False(t, RoleAnonymous.SeesAllRecipes())
	assert.True(t, RoleAdmin.SeesAllRecipes())
}
