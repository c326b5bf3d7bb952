// Package httpapi is the JSON HTTP front end of the account service. It
// decodes requests, calls the services and maps their errors to status
// codes; it holds no business rules of its own.
package httpapi

import (
	"context"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/gophaccount/internal/logging"
	"github.com/dmitrijs2005/gophaccount/internal/server/models"
	"github.com/dmitrijs2005/gophaccount/internal/server/services"
)

// Services groups what the handlers call.
type Services struct {
	Credentials *services.CredentialService
	Sessions    *services.SessionService
	Reset       *services.PasswordResetService
	Profiles    *services.ProfileService
	Archive     *services.ArchiveService
}

type Handler struct {
	svc          Services
	log          logging.Logger
	cookieSecure bool

	// work started by handlers that outlives the request
	background sync.WaitGroup
}

func NewHandler(svc Services, log logging.Logger, cookieSecure bool) *Handler {
	return &Handler{svc: svc, log: log.With("module", "http"), cookieSecure: cookieSecure}
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID.String(), Username: u.Username, Email: u.Email, PhoneNumber: u.PhoneNumber}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type checkTokenRequest struct {
	Token string `json:"token"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req services.Registration
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Credentials.CreateUser(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Credentials.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		if isUnauthorized(err) {
			respondError(w, http.StatusUnauthorized, msgLoginFailed)
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	tok, err := h.svc.Sessions.IssueSession(r.Context(), user, req.Remember)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, tok)
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Sessions.EndSession(r.Context(), sessionToken(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// requestReset answers the same way whether or not the email is known, and
// also when sending fails.
func (h *Handler) requestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Reset.ValidateRequest(req.Email); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// The lookup and the mail run after the response so known and unknown
	// addresses answer in the same time.
	h.goBackground(r.Context(), func(ctx context.Context) {
		if err := h.svc.Reset.RequestReset(ctx, req.Email); err != nil {
			h.log.Error(ctx, "password reset request failed", "error", err)
		}
	})

	respondJSON(w, http.StatusAccepted, messageResponse{Message: msgResetEmailSent})
}

func (h *Handler) checkResetToken(w http.ResponseWriter, r *http.Request) {
	var req checkTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.Reset.CheckToken(r.Context(), req.Token); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Password != req.ConfirmPassword {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"confirm_password": "must match password"},
		})
		return
	}

	if err := h.svc.Reset.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "Your password has been updated! You are now able to log in"})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	view, err := h.svc.Profiles.LoadProfile(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req services.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Profiles.UpdateProfile(r.Context(), user.ID, req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	view, err := h.svc.Profiles.LoadProfile(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) getDetails(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	d, err := h.svc.Profiles.Details(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *Handler) addSocialProfile(w http.ResponseWriter, r *http.Request) {
	var req services.SocialProfileInput
	addDetail(h, w, r, &req, h.svc.Profiles.AddSocialProfile)
}

func (h *Handler) addEducation(w http.ResponseWriter, r *http.Request) {
	var req services.EducationInput
	addDetail(h, w, r, &req, h.svc.Profiles.AddEducation)
}

func (h *Handler) addWorkExperience(w http.ResponseWriter, r *http.Request) {
	var req services.WorkExperienceInput
	addDetail(h, w, r, &req, h.svc.Profiles.AddWorkExperience)
}

func (h *Handler) addSkill(w http.ResponseWriter, r *http.Request) {
	var req services.SkillInput
	addDetail(h, w, r, &req, h.svc.Profiles.AddSkill)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if _, err := h.svc.Archive.ArchiveUser(r.Context(), user.ID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// the archive already dropped the user's sessions; this covers stores
	// without cascading deletes
	if err := h.svc.Sessions.EndSession(r.Context(), sessionToken(r)); err != nil {
		h.log.Warn(r.Context(), "ending session after archive failed", "error", err)
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
