package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	"github.com/goliatone/go-audience-dashboard/components/dashboard"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/queries"
)

const channelRouter = "router"

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the audience dashboard controller, API, and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	// BasePath defaults to the controller's base path so rendered links resolve.
	BasePath string
	Routes   RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Entry       string
	Page        string
	Sessions    string
	Session     string
	Generate    string
	SelectTab   string
	Apply       string
	Layout      string
	Insights    string
	Area        string
	Widgets     string
	WidgetID    string
	Reorder     string
	Refresh     string
	Preferences string
	WebSocket   string
}

// Register mounts dashboard routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api executor is required")
	}
	routes := cfg.routes()
	base := strings.TrimSuffix(cfg.BasePath, "/")
	if base == "" {
		base = cfg.Controller.BasePath()
	}
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)
	h := handlers{api: cfg.API, controller: cfg.Controller, viewer: resolver, basePath: base}

	group.Get(routes.Entry, router.WrapHandler(h.entry))
	group.Get(routes.Page, router.WrapHandler(h.page))
	group.Post(routes.Sessions, router.WrapHandler(h.openSession))
	group.Get(routes.Session, router.WrapHandler(h.session))
	group.Delete(routes.Session, router.WrapHandler(h.closeSession))
	group.Post(routes.Generate, router.WrapHandler(h.generate))
	group.Post(routes.SelectTab, router.WrapHandler(h.selectTab))
	group.Post(routes.Apply, router.WrapHandler(h.apply))
	group.Get(routes.Layout, router.WrapHandler(h.layout))
	group.Get(routes.Insights, router.WrapHandler(h.insights))
	group.Get(routes.Area, router.WrapHandler(h.area))
	group.Post(routes.Widgets, router.WrapHandler(h.assign))
	group.Delete(routes.WidgetID, router.WrapHandler(h.remove))
	group.Post(routes.Reorder, router.WrapHandler(h.reorder))
	group.Post(routes.Refresh, router.WrapHandler(h.refresh))
	group.Post(routes.Preferences, router.WrapHandler(h.preferences))

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

type handlers struct {
	api        httpapi.Executor
	controller *dashboard.Controller
	viewer     ViewerResolver
	basePath   string
}

func (h handlers) pageURL(sessionID string) string {
	return h.basePath + "/sessions/" + url.PathEscape(sessionID) + "/view"
}

func (h handlers) actor(ctx router.Context, viewer dashboard.ViewerContext) commands.Actor {
	return commands.Actor{
		ActorID:   viewer.UserID,
		RequestID: ctx.Header(httpapi.HeaderRequestID),
		Channel:   channelRouter,
	}
}

// entry opens a session and redirects the browser to its page.
func (h handlers) entry(ctx router.Context) error {
	viewer := h.viewer(ctx)
	var view dashboard.SessionView
	input := commands.OpenSessionInput{Viewer: viewer, Actor: h.actor(ctx, viewer), Result: &view}
	if err := h.api.OpenSession(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.Redirect(h.pageURL(view.ID), http.StatusSeeOther)
}

func (h handlers) page(ctx router.Context) error {
	viewer := h.viewer(ctx)
	sessionID := ctx.Param("id")
	if tab := ctx.Query("tab"); tab != "" {
		err := h.api.SelectTab(ctx.Context(), commands.SelectTabInput{
			SessionID: sessionID,
			Tab:       tab,
			Viewer:    viewer,
			Actor:     h.actor(ctx, viewer),
		})
		if err != nil && !audience.IsTabLocked(err) {
			return respondError(ctx, err)
		}
	}
	return h.render(ctx, viewer, sessionID)
}

func (h handlers) render(ctx router.Context, viewer dashboard.ViewerContext, sessionID string) error {
	var buf bytes.Buffer
	if err := h.controller.RenderTemplate(ctx.Context(), viewer, sessionID, &buf); err != nil {
		return respondError(ctx, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func (h handlers) openSession(ctx router.Context) error {
	viewer := h.viewer(ctx)
	var view dashboard.SessionView
	input := commands.OpenSessionInput{Viewer: viewer, Actor: h.actor(ctx, viewer), Result: &view}
	if err := h.api.OpenSession(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (h handlers) session(ctx router.Context) error {
	view, err := h.api.Session(ctx.Context(), queries.SessionInput{Viewer: h.viewer(ctx), SessionID: ctx.Param("id")})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (h handlers) closeSession(ctx router.Context) error {
	input := commands.CloseSessionInput{SessionID: ctx.Param("id"), Actor: h.actor(ctx, h.viewer(ctx))}
	if err := h.api.CloseSession(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "closed"})
}

// generate accepts JSON or a form post. Form posts render the session page.
func (h handlers) generate(ctx router.Context) error {
	viewer := h.viewer(ctx)
	sessionID := ctx.Param("id")
	form := isForm(ctx)
	var targeting audience.TargetingInput
	if form {
		values, err := url.ParseQuery(string(ctx.Body()))
		if err != nil {
			return respondBadRequest(ctx, err)
		}
		targeting = audience.TargetingInputFromForm(values)
	} else if err := json.Unmarshal(ctx.Body(), &targeting); err != nil {
		return respondBadRequest(ctx, err)
	}

	wait, _ := strconv.ParseBool(ctx.Query("wait"))
	var result commands.GenerateAudiencesResult
	input := commands.GenerateAudiencesInput{
		SessionID: sessionID,
		Input:     targeting,
		Wait:      wait && !form,
		Actor:     h.actor(ctx, viewer),
		Result:    &result,
	}
	if err := h.api.Generate(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	switch {
	case form:
		return h.render(ctx, viewer, sessionID)
	case input.Wait:
		return ctx.JSON(http.StatusOK, result)
	default:
		return ctx.JSON(http.StatusAccepted, result)
	}
}

func (h handlers) selectTab(ctx router.Context) error {
	viewer := h.viewer(ctx)
	var view dashboard.SessionView
	input := commands.SelectTabInput{
		SessionID: ctx.Param("id"),
		Tab:       ctx.Param("tab"),
		Viewer:    viewer,
		Actor:     h.actor(ctx, viewer),
		Result:    &view,
	}
	if err := h.api.SelectTab(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (h handlers) apply(ctx router.Context) error {
	viewer := h.viewer(ctx)
	sessionID := ctx.Param("id")
	var view dashboard.SessionView
	input := commands.ApplyAudiencesInput{
		SessionID: sessionID,
		Viewer:    viewer,
		Actor:     h.actor(ctx, viewer),
		Result:    &view,
	}
	if err := h.api.Apply(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	if isForm(ctx) {
		return h.render(ctx, viewer, sessionID)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (h handlers) layout(ctx router.Context) error {
	layout, err := h.api.Layout(ctx.Context(), queries.LayoutInput{Viewer: h.viewer(ctx), SessionID: ctx.Param("id")})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dashboard.LayoutPayload(layout))
}

func (h handlers) insights(ctx router.Context) error {
	insights, err := h.api.Insights(ctx.Context(), queries.SessionInput{Viewer: h.viewer(ctx), SessionID: ctx.Param("id")})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, insights)
}

func (h handlers) area(ctx router.Context) error {
	input := queries.WidgetAreaInput{Viewer: h.viewer(ctx), SessionID: ctx.Param("id"), AreaCode: ctx.Param("area")}
	area, err := h.api.Area(ctx.Context(), input)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, area)
}

func (h handlers) assign(ctx router.Context) error {
	var payload dashboard.AddWidgetRequest
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondBadRequest(ctx, err)
	}
	var instance dashboard.WidgetInstance
	input := commands.AddWidgetInput{Request: payload, Actor: h.actor(ctx, h.viewer(ctx)), Result: &instance}
	if err := h.api.Assign(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, instance)
}

func (h handlers) remove(ctx router.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return respondBadRequest(ctx, errors.New("widget id is required"))
	}
	input := commands.RemoveWidgetInput{WidgetID: id, Actor: h.actor(ctx, h.viewer(ctx))}
	if err := h.api.Remove(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "removed"})
}

func (h handlers) reorder(ctx router.Context) error {
	var payload commands.ReorderWidgetsInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondBadRequest(ctx, err)
	}
	payload.Actor = h.actor(ctx, h.viewer(ctx))
	if err := h.api.Reorder(ctx.Context(), payload); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
}

func (h handlers) refresh(ctx router.Context) error {
	var payload commands.RefreshDashboardInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondBadRequest(ctx, err)
	}
	if err := h.api.Refresh(ctx.Context(), payload); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h handlers) preferences(ctx router.Context) error {
	var payload commands.SavePreferencesInput
	if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
		return respondBadRequest(ctx, err)
	}
	payload.Viewer = h.viewer(ctx)
	payload.Actor = h.actor(ctx, payload.Viewer)
	if err := h.api.Preferences(ctx.Context(), payload); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

// registerWebSocket streams every session's events; pages filter on session_id.
func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe("")
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	} else {
		viewer.UserID = strings.TrimSpace(ctx.Header(httpapi.HeaderUserID))
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return dashboard.LocaleFromAcceptLanguage(ctx.Header("Accept-Language"))
}

func isForm(ctx router.Context) bool {
	return strings.HasPrefix(ctx.Header("Content-Type"), "application/x-www-form-urlencoded")
}

func respondError(ctx router.Context, err error) error {
	status, body := httpapi.ErrorResponse(err)
	return ctx.JSON(status, body)
}

func respondBadRequest(ctx router.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, httpapi.ErrorBody{Error: err.Error(), TextCode: "BAD_REQUEST"})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	defaults := map[*string]string{
		&routes.Entry:       "/",
		&routes.Page:        "/sessions/:id/view",
		&routes.Sessions:    "/sessions",
		&routes.Session:     "/sessions/:id",
		&routes.Generate:    "/sessions/:id/generate",
		&routes.SelectTab:   "/sessions/:id/tabs/:tab",
		&routes.Apply:       "/sessions/:id/apply",
		&routes.Layout:      "/sessions/:id/layout",
		&routes.Insights:    "/sessions/:id/insights",
		&routes.Area:        "/sessions/:id/areas/:area",
		&routes.Widgets:     "/widgets",
		&routes.WidgetID:    "/widgets/:id",
		&routes.Reorder:     "/widgets/reorder",
		&routes.Refresh:     "/refresh",
		&routes.Preferences: "/preferences",
		&routes.WebSocket:   "/ws",
	}
	for field, value := range defaults {
		if *field == "" {
			*field = value
		}
	}
	return routes
}
