package handler

import (
	"net/http"

	"github.com/kusina-api/internal/application/auth"
	"github.com/kusina-api/internal/domain"
)

// AuthHandler serves the email-code and Google sign-in flows plus the
// password and profile endpoints of the signed-in user.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if !decode(w, r, &req) {
		return
	}
	devCode, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Success: true,
		Message: "Verification code sent to your email",
		Email:   req.Email,
		DevCode: devCode,
	})
}

func (h *AuthHandler) VerifySignup(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.VerifySignup(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{
		Success: true,
		Message: "Account created successfully",
		Token:   sess.Token,
		User:    sess.User,
	})
}

func (h *AuthHandler) ResendSignupCode(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	devCode, err := h.svc.ResendSignupCode(r.Context(), req.Email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Success: true,
		Message: "New verification code sent to your email",
		Email:   req.Email,
		DevCode: devCode,
	})
}

func (h *AuthHandler) SendLoginCode(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.SendLoginCode(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if res.SkipVerification {
		writeJSON(w, http.StatusOK, LoginEnvelope{
			Success:          true,
			SkipVerification: true,
			Message:          "Admin login successful",
			Token:            res.Session.Token,
			User:             res.Session.User,
		})
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Success: true,
		Message: "Verification code sent to your email",
		Email:   req.Email,
		DevCode: res.DevCode,
	})
}

func (h *AuthHandler) VerifyLoginCode(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.VerifyLoginCode(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Success: true, Message: "Login successful", Token: sess.Token, User: sess.User})
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleAuthRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.svc.GoogleAuth(r.Context(), req.Token)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Success: true, Message: "Google authentication successful", Token: sess.Token, User: sess.User})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	devCode, err := h.svc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Success: true,
		Message: "If an account exists with this email, a reset code has been sent",
		DevCode: devCode,
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Password reset successfully, you can now sign in"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Me(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Success: true, User: u})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req domain.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Success: true, Message: "Profile updated successfully", User: u})
}

func (h *AuthHandler) RequestPasswordChange(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	email, devCode, err := h.svc.RequestPasswordChange(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Success: true,
		Message: "Verification code sent to your email",
		Email:   email,
		DevCode: devCode,
	})
}

func (h *AuthHandler) VerifyPasswordChangeCode(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req domain.PasswordChangeCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.VerifyPasswordChangeCode(r.Context(), claims.UserID, req.Code); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Code verified"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req domain.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ChangePasswordWithCode(r.Context(), claims.UserID, req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Password changed successfully"})
}
