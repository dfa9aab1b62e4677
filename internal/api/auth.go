package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"finance-tracker-backend/internal/auth"
	"finance-tracker-backend/internal/model"
	"finance-tracker-backend/internal/validate"
)

// SessionCookie names the cookie carrying the session token.
const SessionCookie = "session"

// sessionToken reads the token from the Authorization header, falling back
// to the session cookie.
func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	token, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return token
}

// requireUser rejects requests without a valid session and stores the
// user in the request context.
func (s *Server) requireUser(c *gin.Context) {
	user, err := s.auth.Authenticate(c.Request.Context(), sessionToken(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
	c.Next()
}

// currentUser returns the user set by requireUser.
func currentUser(c *gin.Context) model.User {
	user, ok := auth.UserFrom(c.Request.Context())
	if !ok {
		panic("api: handler mounted without requireUser")
	}
	return user
}

func (s *Server) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", s.opts.SecureCookie, true)
}

func (s *Server) register(c *gin.Context) {
	var in validate.RegisterInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	user, err := s.auth.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (s *Server) login(c *gin.Context) {
	var in validate.LoginInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	token, user, err := s.auth.Login(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	s.setSessionCookie(c, token, int(s.opts.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		fail(c, err)
		return
	}
	s.setSessionCookie(c, "", -1)
	success(c)
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c).Summary()})
}

// forgotPassword answers identically whether or not the email is known.
func (s *Server) forgotPassword(c *gin.Context) {
	var in validate.ForgotPasswordInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	if err := s.auth.ForgotPassword(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": auth.ForgotPasswordMessage})
}

func (s *Server) resetPassword(c *gin.Context) {
	var in validate.ResetPasswordInput
	if err := validate.Bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	if err := s.auth.ResetPassword(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": auth.ResetPasswordMessage})
}
