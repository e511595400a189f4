package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/domain"
	"madchef/internal/http/middleware"
	"madchef/internal/query"
	"madchef/internal/services"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondDomainError(c, domain.ValidationError{Msg: "request body is empty"})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondDomainError(c, domain.ValidationError{Msg: "invalid payload", Err: err})
		return false
	}
	return true
}

func rc(c *gin.Context) domain.RequestContext {
	return middleware.RequestContext(c)
}

// firstQuery returns the first non-empty value among the given query keys.
func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}

func listParams(c *gin.Context) services.ListParams {
	return services.ListParams{
		Page:    firstQuery(c, "p", "page"),
		Limit:   firstQuery(c, "l", "limit"),
		Sort:    c.Query("sort"),
		Order:   c.Query("order"),
		Include: c.Query("include"),
		Exclude: c.Query("exclude"),
	}
}

// shape renders v as a JSON object and keeps only the projected fields.
func shape(v any, p query.Projection) (any, error) {
	if p.IsEmpty() {
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return p.Shape(doc), nil
}

type listMeta struct {
	Page       *string `json:"page"`
	TotalCount int64   `json:"totalCount"`
}

func respondList[T any](c *gin.Context, res *services.ListResult[T]) {
	data := make([]any, 0, len(res.Items))
	for _, item := range res.Items {
		doc, err := shape(item, res.Projection)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		data = append(data, doc)
	}
	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": listMeta{Page: res.Page, TotalCount: res.TotalCount},
	})
}

func respondData(c *gin.Context, status int, message string, data any) {
	body := gin.H{"data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondShaped(c *gin.Context, data any, p query.Projection) {
	doc, err := shape(data, p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "", doc)
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// statusBody is the body of every status change request.
type statusBody struct {
	Status string `json:"status"`
}

func bindStatus(c *gin.Context) (string, bool) {
	var body statusBody
	if !BindJSONOrError(c, &body) {
		return "", false
	}
	return body.Status, true
}
