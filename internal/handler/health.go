package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"AreYouIn/config"
)

// Health 存活探针
// GET /healthz
func Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": config.Cfg.Environment,
	})
}
