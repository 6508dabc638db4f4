package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"AreYouIn/internal/model/dto"
	"AreYouIn/pkg/response"
	"AreYouIn/pkg/token"
)

// RefreshToken 管理端令牌续期
// POST /v1/auth/token/refresh
// 管理账号的签发在外部账号系统，这里只做续期
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	adminID, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(consts.StatusUnauthorized, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "UNAUTHORIZED",
				"message": "Invalid refresh token",
			},
		})
		return
	}

	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(adminID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.TokenPairData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}
