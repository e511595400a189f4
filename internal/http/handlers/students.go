package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"madchef/internal/domain"
	"madchef/internal/services"
)

const maxPictureSize = 5 << 20

// GET /api/students
func (h *Handler) ListStudents(c *gin.Context) {
	res, err := h.Students.List(c.Request.Context(), rc(c), listParams(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, res)
}

// GET /api/students/:id
func (h *Handler) GetStudent(c *gin.Context) {
	st, projection, err := h.Students.Get(c.Request.Context(), c.Param("id"), c.Query("include"), c.Query("exclude"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondShaped(c, st, projection)
}

// VerifyEmail marks the student's email verified once the identity
// provider confirms it, then sends the browser back to the app.
// GET /api/students/verify-email?uid=
func (h *Handler) VerifyEmail(c *gin.Context) {
	if err := h.Students.VerifyEmail(c.Request.Context(), c.Query("uid")); err != nil {
		RespondDomainError(c, err)
		return
	}
	if h.EmailVerifiedRedirect == "" {
		respondMessage(c, "email verified")
		return
	}
	c.Redirect(http.StatusFound, h.EmailVerifiedRedirect)
}

// PATCH /api/students/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var body services.StudentPatch
	if !BindJSONOrError(c, &body) {
		return
	}
	st, err := h.Students.UpdateMe(c.Request.Context(), rc(c), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "profile updated", st)
}

// POST /api/students/me/profile-picture (multipart field "img")
func (h *Handler) UploadProfilePicture(c *gin.Context) {
	fh, err := c.FormFile("img")
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "img", Msg: "image file is required", Err: err})
		return
	}
	if fh.Size > maxPictureSize {
		RespondDomainError(c, domain.ValidationError{Field: "img", Msg: "image must be at most 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	defer f.Close()

	st, err := h.Students.UploadPicture(c.Request.Context(), rc(c), fh.Filename, f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondData(c, http.StatusOK, "profile picture updated", st)
}

// PATCH /api/students/me/package
func (h *Handler) UpgradePackage(c *gin.Context) {
	res, err := h.Students.UpgradePackage(c.Request.Context(), rc(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !res.Updated {
		respondData(c, http.StatusOK, "package already active", authResponse{User: res.User})
		return
	}
	h.setRefreshCookie(c, res.Tokens)
	respondData(c, http.StatusOK, "package upgraded", authResponse{User: res.User, AccessToken: res.Tokens.AccessToken})
}
