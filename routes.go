package artistsite

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static(publicPrefix, a.staticDir)
	e.GET(faviconPath, a.handleFavicon)
	e.GET(robotsPath, a.handleRobots)
	e.GET(sitemapPath, a.handleSitemap)
	e.GET(feedPath, a.handleFeed)

	// Public pages
	e.GET("/", a.handleHome)
	e.GET("/bio/", a.handleBio)
	e.GET("/work/", a.handleWork)
	e.GET("/live/", a.handleLive)
	e.GET("/contact/", a.handleContact)
	e.GET("/lab/", a.handleLab)
	e.GET("/lab/:slug/", a.handleLabPage)

	// Admin
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)

	api := e.Group("/admin/api", requireAdmin, a.requireStore)
	api.GET("/draft/", a.handleGetDraft)
	api.PUT("/draft/", a.handlePutDraft)
	api.PUT("/draft/bio/paragraphs/", a.handlePutParagraphs)
	api.POST("/draft/list/", a.handleListOp)
	api.PUT("/draft/:section/", a.handlePutSection)
	api.POST("/save/", a.handleSave)
	api.POST("/seed/", a.handleSeed)
	api.GET("/events/", a.handleEvents)
	api.GET("/media/", a.handleMediaList)
	api.POST("/media/", a.handleMediaUpload)
	api.DELETE("/media/", a.handleMediaDelete)
}
