package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"madchef/internal/services"
)

type authBody struct {
	ReqType string `json:"reqType"`
}

type authResponse struct {
	User        any    `json:"user"`
	AccessToken string `json:"accessToken,omitempty"`
}

func (h *Handler) setRefreshCookie(c *gin.Context, pair *services.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, pair.RefreshToken, int(h.Cookie.TTL.Seconds()), "/", "", h.Cookie.Secure, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(h.Cookie.Name, "", -1, "/", "", h.Cookie.Secure, true)
}

// Authenticate exchanges an identity provider token, sent as a bearer
// token, for an access token and a refresh cookie.
// POST /api/auth
func (h *Handler) Authenticate(c *gin.Context) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	idToken := ""
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		idToken = header[7:]
	}

	var body authBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "invalid payload", "")
			return
		}
	}
	registration := body.ReqType == "registration"

	res, err := h.Auth.Authenticate(c.Request.Context(), idToken, registration)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if registration {
		c.JSON(http.StatusCreated, gin.H{"message": "registration successful"})
		return
	}
	h.setRefreshCookie(c, res.Tokens)
	respondData(c, http.StatusOK, "successful", authResponse{User: res.User, AccessToken: res.Tokens.AccessToken})
}

// GET /api/auth/refresh-token
func (h *Handler) RefreshToken(c *gin.Context) {
	raw, _ := c.Cookie(h.Cookie.Name)
	res, err := h.Auth.Refresh(c.Request.Context(), raw)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "successful", authResponse{User: res.User, AccessToken: res.Tokens.AccessToken})
}

// DELETE /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), rc(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	respondMessage(c, "logout successful")
}
