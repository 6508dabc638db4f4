package dto

// RefreshTokenRequest 令牌续期请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPairData 令牌续期响应
type TokenPairData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
