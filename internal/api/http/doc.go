/*
Package http exposes the app lifecycle over gin.

Page routes:

	GET  /             landing page
	GET  /:name        the app's HTML (thaws a cold app)
	GET  /edit/:name   editor (creates a placeholder for a new app)
	POST /edit/:name   save the "code" field, redirect to the editor

JSON routes live under /api, plus /health and /metrics. Lifecycle errors map
to 404, 400, 413 and 500; unknown apps get the plain text "App not found.".
*/
package http
