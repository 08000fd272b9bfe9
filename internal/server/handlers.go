package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altonlabs/authd/internal/auth"
	"github.com/altonlabs/authd/internal/session"
)

type signUpRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleSignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, auth.ErrMissingFields)
		return
	}

	profile, err := s.svc.SignUp(c.Request.Context(), auth.SignUpInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	if _, err := s.issuer.Issue(c.Writer, profile.ID); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "user created successfully",
		"user":    profile,
	})
}

func (s *Server) handleVerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, auth.ErrInvalidOrExpiredCode)
		return
	}

	profile, err := s.svc.VerifyEmail(c.Request.Context(), req.Code)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "email verified successfully",
		"user":    profile,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, auth.ErrMissingFields)
		return
	}

	profile, err := s.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password are indistinguishable to the
		// client.
		if errors.Is(err, auth.ErrAccountNotFound) || errors.Is(err, auth.ErrWrongPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid credentials"})
			return
		}
		s.fail(c, err)
		return
	}

	tok, err := s.issuer.Issue(c.Writer, profile.ID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "logged in successfully",
		"token":   tok,
		"user":    profile,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.issuer.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "logged out successfully",
	})
}

func (s *Server) handleForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, auth.ErrMissingFields)
		return
	}

	if err := s.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "password reset link sent to your email",
	})
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, auth.ErrMissingFields)
		return
	}

	if err := s.svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "password reset successful",
	})
}

func (s *Server) handleCheckAuth(c *gin.Context) {
	accountID, err := s.svc.CheckAuth(session.TokenFromRequest(c.Request))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"isAuthenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isAuthenticated": true,
		"user":            gin.H{"userId": accountID},
	})
}

// fail maps a service error to an HTTP status. Domain failures are 400,
// session failures 401, everything else 500 with a generic message so
// internals do not leak.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, auth.ErrAccountNotFound),
		errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrInvalidOrExpiredCode),
		errors.Is(err, auth.ErrInvalidOrExpiredToken):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, auth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
	}
}
