package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-audience-dashboard/components/audience"
	"github.com/goliatone/go-audience-dashboard/components/dashboard"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-audience-dashboard/components/dashboard/queries"
)

// Request headers read by the default viewer resolver.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRoles = "X-User-Roles"
	HeaderRequestID = "X-Request-ID"
)

const channelHTTP = "http"

// ViewerFunc resolves the viewer of a request.
type ViewerFunc func(*http.Request) dashboard.ViewerContext

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	API Executor
	// Page renders the HTML dashboard. HTML endpoints answer 404 without it.
	Page *dashboard.Controller
	// Live streams session events over SSE and WebSocket.
	Live   *dashboard.BroadcastHook
	Viewer ViewerFunc
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return DefaultViewer(r)
}

func (h *Handlers) basePath() string {
	if h.Page != nil {
		return h.Page.BasePath()
	}
	return dashboard.DefaultBasePath
}

func (h *Handlers) pageURL(sessionID string) string {
	return h.basePath() + "/sessions/" + sessionID + "/view"
}

// HandleEntry opens a session and redirects the browser to its page.
func (h *Handlers) HandleEntry(w http.ResponseWriter, r *http.Request) {
	viewer := h.viewer(r)
	var view dashboard.SessionView
	input := commands.OpenSessionInput{Viewer: viewer, Actor: actorFor(r, viewer), Result: &view}
	if err := h.API.OpenSession(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, h.pageURL(view.ID), http.StatusSeeOther)
}

// HandlePage renders the HTML page of a session, switching tabs first when the
// tab query parameter names one. Locked tabs leave the active tab unchanged.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request, sessionID string) {
	if h.Page == nil {
		http.NotFound(w, r)
		return
	}
	viewer := h.viewer(r)
	if tab := r.URL.Query().Get("tab"); tab != "" {
		err := h.API.SelectTab(r.Context(), commands.SelectTabInput{
			SessionID: sessionID,
			Tab:       tab,
			Viewer:    viewer,
			Actor:     actorFor(r, viewer),
		})
		if err != nil && !audience.IsTabLocked(err) {
			writeError(w, err)
			return
		}
	}
	var buf bytes.Buffer
	if err := h.Page.RenderTemplate(r.Context(), viewer, sessionID, &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleOpenSession creates a session and returns its view.
func (h *Handlers) HandleOpenSession(w http.ResponseWriter, r *http.Request) {
	viewer := h.viewer(r)
	var view dashboard.SessionView
	input := commands.OpenSessionInput{Viewer: viewer, Actor: actorFor(r, viewer), Result: &view}
	if err := h.API.OpenSession(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	view, err := h.API.Session(r.Context(), queries.SessionInput{Viewer: h.viewer(r), SessionID: sessionID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleCloseSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	input := commands.CloseSessionInput{SessionID: sessionID, Actor: actorFor(r, h.viewer(r))}
	if err := h.API.CloseSession(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGenerate submits the targeting form. JSON clients receive the batch number
// (202) or, with ?wait=true, the generated records (200). Form posts are redirected
// back to the session page.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request, sessionID string) {
	form := isFormRequest(r)
	var targeting audience.TargetingInput
	if form {
		if err := r.ParseForm(); err != nil {
			writeBadRequest(w, err)
			return
		}
		targeting = audience.TargetingInputFromForm(r.PostForm)
	} else if err := json.NewDecoder(r.Body).Decode(&targeting); err != nil {
		writeBadRequest(w, err)
		return
	}

	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	var result commands.GenerateAudiencesResult
	input := commands.GenerateAudiencesInput{
		SessionID: sessionID,
		Input:     targeting,
		Wait:      wait && !form,
		Actor:     actorFor(r, h.viewer(r)),
		Result:    &result,
	}
	if err := h.API.Generate(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	switch {
	case form:
		http.Redirect(w, r, h.pageURL(sessionID), http.StatusSeeOther)
	case input.Wait:
		writeJSON(w, http.StatusOK, result)
	default:
		writeJSON(w, http.StatusAccepted, result)
	}
}

func (h *Handlers) HandleSelectTab(w http.ResponseWriter, r *http.Request, sessionID, tab string) {
	viewer := h.viewer(r)
	var view dashboard.SessionView
	input := commands.SelectTabInput{
		SessionID: sessionID,
		Tab:       tab,
		Viewer:    viewer,
		Actor:     actorFor(r, viewer),
		Result:    &view,
	}
	if err := h.API.SelectTab(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleApply(w http.ResponseWriter, r *http.Request, sessionID string) {
	viewer := h.viewer(r)
	var view dashboard.SessionView
	input := commands.ApplyAudiencesInput{
		SessionID: sessionID,
		Viewer:    viewer,
		Actor:     actorFor(r, viewer),
		Result:    &view,
	}
	if err := h.API.Apply(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	if isFormRequest(r) {
		http.Redirect(w, r, h.pageURL(sessionID), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request, sessionID string) {
	layout, err := h.API.Layout(r.Context(), queries.LayoutInput{Viewer: h.viewer(r), SessionID: sessionID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.LayoutPayload(layout))
}

func (h *Handlers) HandleInsights(w http.ResponseWriter, r *http.Request, sessionID string) {
	insights, err := h.API.Insights(r.Context(), queries.SessionInput{Viewer: h.viewer(r), SessionID: sessionID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// HandleArea resolves one tab area of a session. Locked tabs resolve too, so
// clients can prefetch them.
func (h *Handlers) HandleArea(w http.ResponseWriter, r *http.Request, sessionID, areaCode string) {
	area, err := h.API.Area(r.Context(), queries.WidgetAreaInput{Viewer: h.viewer(r), SessionID: sessionID, AreaCode: areaCode})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, area)
}

// HandleEvents streams the events of one session as Server-Sent Events.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request, sessionID string) {
	if h.Live == nil {
		http.NotFound(w, r)
		return
	}
	h.Live.ServeSessionSSE(w, r, sessionID)
}

// HandleWebSocket streams events over a WebSocket, filtered by ?session=.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.Live == nil {
		http.NotFound(w, r)
		return
	}
	h.Live.ServeWebSocket(w, r)
}

func (h *Handlers) HandleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var payload commands.SavePreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	payload.Viewer = h.viewer(r)
	payload.Actor = actorFor(r, payload.Viewer)
	if err := h.API.Preferences(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleAssignWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.AddWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	var instance dashboard.WidgetInstance
	input := commands.AddWidgetInput{Request: payload, Actor: actorFor(r, h.viewer(r)), Result: &instance}
	if err := h.API.Assign(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, instance)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	if strings.TrimSpace(widgetID) == "" {
		writeBadRequest(w, errors.New("widget id is required"))
		return
	}
	input := commands.RemoveWidgetInput{WidgetID: widgetID, Actor: actorFor(r, h.viewer(r))}
	if err := h.API.Remove(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderWidgetsInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	payload.Actor = actorFor(r, h.viewer(r))
	if err := h.API.Reorder(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshDashboardInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.API.Refresh(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// DefaultViewer reads the viewer from X-User-ID / X-User-Roles and the locale from
// ?locale or Accept-Language.
func DefaultViewer(r *http.Request) dashboard.ViewerContext {
	viewer := dashboard.ViewerContext{
		UserID: strings.TrimSpace(r.Header.Get(HeaderUserID)),
		Roles:  splitList(r.Header.Get(HeaderUserRoles)),
	}
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		viewer.Locale = strings.ToLower(locale)
	} else {
		viewer.Locale = dashboard.LocaleFromAcceptLanguage(r.Header.Get("Accept-Language"))
	}
	return viewer
}

func actorFor(r *http.Request, viewer dashboard.ViewerContext) commands.Actor {
	return commands.Actor{
		ActorID:   viewer.UserID,
		RequestID: r.Header.Get(HeaderRequestID),
		Channel:   channelHTTP,
	}
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
