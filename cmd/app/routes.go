package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/middleware"
)

const apiPrefix = "/api/v1"

// apiGroups - группы /api/v1 с разными цепочками middleware
type apiGroups struct {
	// public лимитируется по IP
	public *gin.RouterGroup
	// signIn аутентифицирован, но не отклоняет отозванные устройства
	signIn *gin.RouterGroup
	// authed дополнительно отслеживает сессию устройства
	authed *gin.RouterGroup
}

func newAPIGroups(
	router *gin.Engine,
	authn gin.HandlerFunc,
	tracker middleware.DeviceTracker,
	ipLimiter, userLimiter *middleware.RateLimiter,
	logger *zap.Logger,
) apiGroups {
	public := router.Group(apiPrefix)
	public.Use(ipLimiter.Handler())

	// Лимит по пользователю ставится после Auth, иначе ключом остается IP
	signIn := router.Group(apiPrefix)
	signIn.Use(
		authn,
		middleware.DeviceID(logger),
		userLimiter.Handler(),
	)

	authed := router.Group(apiPrefix)
	authed.Use(
		authn,
		middleware.DeviceID(logger),
		userLimiter.Handler(),
		middleware.SessionTracker(tracker, logger),
	)

	return apiGroups{public: public, signIn: signIn, authed: authed}
}
