package httpapi

import (
	"dailyon/internal/auth"
	"dailyon/internal/response"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	LoginID  string `json:"loginId" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type signupRequest struct {
	LoginID     string `json:"loginId" binding:"required,max=100"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"displayName" binding:"max=100"`
}

// Login exchanges credentials for a token pair. Every credential failure
// yields the same LOGIN_FAILED response.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}
	pair, err := h.Auth.Login(c.Request.Context(), auth.LoginInput{
		LoginID:  req.LoginID,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, pair)
}

func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bind(c, &req) {
		return
	}
	pair, err := h.Auth.Refresh(c.Request.Context(), req.RefreshToken, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, pair)
}

func (h Handlers) Signup(c *gin.Context) {
	var req signupRequest
	if !bind(c, &req) {
		return
	}
	pair, err := h.Auth.Signup(c.Request.Context(), auth.SignupInput{
		LoginID:     req.LoginID,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		IP:          c.ClientIP(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, pair)
}
