package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	v1 := s.router.Group("/api/v1")

	// Token and ledger reads
	v1.GET("/token", s.tokenInfo)
	v1.GET("/supply", s.totalSupply)
	v1.GET("/balance/:address", s.balanceOf)
	v1.GET("/allowance", s.allowanceOf)
	v1.GET("/account/:address", s.accountInfo)

	// Ledger mutations
	v1.POST("/transfer", s.transfer)
	v1.POST("/approve", s.approve)
	v1.POST("/transfer_from", s.transferFrom)
	v1.POST("/mint", s.mint)
	v1.POST("/burn", s.burn)

	// Administration
	admin := v1.Group("/admin")
	admin.POST("/transfer_ownership", s.transferOwnership)
	admin.POST("/set_minter", s.setMinter)
	admin.POST("/pause", s.pause)
	admin.POST("/unpause", s.unpause)
	admin.POST("/kyc", s.setKYC)
	admin.POST("/daily_limit", s.setDailyLimit)
	admin.POST("/rate", s.updateRate)
	admin.POST("/collateral", s.setCollateral)
	admin.GET("/status", s.adminStatus)

	// Rates and collateral reads
	v1.GET("/rates/:currency", s.conversionRate)
	v1.GET("/convert", s.convertToFiat)
	v1.GET("/collateral", s.collateralStatus)

	// Savings groups
	savings := v1.Group("/savings/groups")
	savings.POST("", s.createSavingsGroup)
	savings.GET("/:id", s.savingsGroupInfo)
	savings.POST("/:id/join", s.joinSavingsGroup)
	savings.POST("/:id/contribute", s.contributeToSavings)
	savings.GET("/:id/members/:address", s.memberContribution)

	// Event journal
	v1.GET("/events", s.listEvents)
	v1.GET("/events/ws", s.eventsWebsocket)

	s.router.GET("/health", s.health)
}
