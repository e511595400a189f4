package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madchef/internal/domain"
	"madchef/internal/query"
)

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ValidationError{Field: "rating", Msg: "must be no greater than 5"}, http.StatusBadRequest, "validation_error"},
		{domain.UnauthorizedError{Msg: "token expired"}, http.StatusUnauthorized, "unauthorized"},
		{domain.ForbiddenError{}, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("load: %w", domain.NotFoundError{Resource: "recipe"}), http.StatusNotFound, "not_found"},
		{domain.ConflictError{Msg: "already subscribed"}, http.StatusConflict, "conflict"},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondDomainError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Code)
		if tc.status == http.StatusInternalServerError {
			assert.NotContains(t, body.Message, "refused")
		}
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondDomainError(c, domain.ValidationError{Field: "recipeId", Msg: "must be a valid id"})

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "recipeId", body.Field)
	assert.Equal(t, "recipeId: must be a valid id", body.Message)
}

func TestShapeKeepsProjectedFields(t *testing.T) {
	type doc struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Likes int    `json:"likes"`
	}
	v := doc{ID: "1", Title: "Pho", Likes: 3}

	out, err := shape(v, query.Projection{})
	require.NoError(t, err)
	assert.Equal(t, v, out)

	out, err = shape(v, query.BuildProjection("title", ""))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1", "title": "Pho"}, out)

	out, err = shape(v, query.BuildProjection("", "likes"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1", "title": "Pho"}, out)
}

func TestListParamsAliases(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?p=2&limit=5&sort=title&order=desc&include=title", nil)

	p := listParams(c)
	assert.Equal(t, "2", p.Page)
	assert.Equal(t, "5", p.Limit)
	assert.Equal(t, "title", p.Sort)
	assert.Equal(t, "desc", p.Order)
	assert.Equal(t, "title", p.Include)
}
