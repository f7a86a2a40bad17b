package handlers

import (
	"net/http"

	"github.com/Nanpapu/eventhub-sub001/internal/middleware"
	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	refreshTokenCookie = "refresh_token"
	refreshTokenMaxAge = 3600 * 24 * 30
)

func setAuthCookies(c *gin.Context, tokenRes *types.TokenResponse, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, tokenRes.AccessToken, tokenRes.ExpiresIn, "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, tokenRes.RefreshToken, refreshTokenMaxAge, "/", "", secure, true)
}

// tokenBody returns the session to bearer clients; browser clients can
// ignore it and rely on the cookies.
func tokenBody(tokenRes *types.TokenResponse) gin.H {
	return gin.H{
		"user":        tokenRes.User,
		"accessToken": tokenRes.AccessToken,
		"tokenType":   tokenRes.TokenType,
		"expiresIn":   tokenRes.ExpiresIn,
	}
}

func Signup(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}
		created, err := u.CreateUser(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "account created, check your email to confirm"))
	}
}

func Login(u *services.UserService, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.Credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload: "+err.Error())
			return
		}

		authResponse, err := u.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("invalid email or password"))
			return
		}
		tokenRes, ok := authResponse.(*types.TokenResponse)
		if !ok || tokenRes.AccessToken == "" {
			c.Error(errInvalidTokenResponse)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid token response"))
			return
		}

		setAuthCookies(c, tokenRes, secure)
		c.JSON(http.StatusOK, models.SuccessResponse(tokenBody(tokenRes), "logged in"))
	}
}

// RefreshToken takes the refresh token from the cookie or the JSON body.
func RefreshToken(u *services.UserService, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(refreshTokenCookie)
		if token == "" {
			var body struct {
				RefreshToken string `json:"refreshToken"`
			}
			_ = c.ShouldBindJSON(&body)
			token = body.RefreshToken
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("refresh token not provided"))
			return
		}

		refreshed, err := u.RefreshToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("token refresh failed"))
			return
		}
		tokenRes, ok := refreshed.(*types.TokenResponse)
		if !ok || tokenRes.AccessToken == "" {
			c.Error(errInvalidTokenResponse)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse("invalid token response"))
			return
		}

		setAuthCookies(c, tokenRes, secure)
		c.JSON(http.StatusOK, models.SuccessResponse(tokenBody(tokenRes), "token refreshed"))
	}
}

func Logout(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secure, true)
		c.SetCookie(refreshTokenCookie, "", -1, "/", "", secure, true)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}

func Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.Claims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"userId":   claims.Subject,
			"email":    claims.Email,
			"fullName": claims.FullName(),
			"isAdmin":  claims.IsAdmin(),
		}, ""))
	}
}
