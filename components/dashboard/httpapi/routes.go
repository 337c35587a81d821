package httpapi

import (
	"net/http"
	"strings"
)

// Register mounts the dashboard endpoints on mux under basePath (DefaultBasePath
// of the page controller when empty).
//
//	GET    {base}                          open a session, redirect to its page
//	GET    {base}/sessions/{id}/view       HTML page (?tab= switches tabs)
//	POST   {base}/sessions                 open a session (JSON)
//	GET    {base}/sessions/{id}            session view
//	DELETE {base}/sessions/{id}            close session
//	POST   {base}/sessions/{id}/generate   submit targeting form
//	POST   {base}/sessions/{id}/tabs/{tab} select tab
//	POST   {base}/sessions/{id}/apply      apply audiences
//	GET    {base}/sessions/{id}/layout     active tab layout
//	GET    {base}/sessions/{id}/insights   derived insights
//	GET    {base}/sessions/{id}/areas/{area} one tab area with widget data
//	GET    {base}/sessions/{id}/events     Server-Sent Events
//	GET    {base}/ws                       WebSocket events
//	POST   {base}/preferences              save viewer preferences
//	POST   {base}/widgets                  add widget
//	DELETE {base}/widgets/{id}             remove widget
//	POST   {base}/widgets/reorder          reorder an area
//	POST   {base}/refresh                  notify refresh hooks
func (h *Handlers) Register(mux *http.ServeMux, basePath string) {
	base := strings.TrimSuffix(basePath, "/")
	if base == "" {
		base = h.basePath()
	}
	route := func(method, path string, fn http.HandlerFunc) {
		mux.HandleFunc(method+" "+base+path, fn)
	}
	withID := func(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, r.PathValue("id"))
		}
	}

	route(http.MethodGet, "", h.HandleEntry)
	route(http.MethodGet, "/sessions/{id}/view", withID(h.HandlePage))
	route(http.MethodPost, "/sessions", h.HandleOpenSession)
	route(http.MethodGet, "/sessions/{id}", withID(h.HandleSession))
	route(http.MethodDelete, "/sessions/{id}", withID(h.HandleCloseSession))
	route(http.MethodPost, "/sessions/{id}/generate", withID(h.HandleGenerate))
	route(http.MethodPost, "/sessions/{id}/tabs/{tab}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSelectTab(w, r, r.PathValue("id"), r.PathValue("tab"))
	})
	route(http.MethodPost, "/sessions/{id}/apply", withID(h.HandleApply))
	route(http.MethodGet, "/sessions/{id}/layout", withID(h.HandleLayout))
	route(http.MethodGet, "/sessions/{id}/insights", withID(h.HandleInsights))
	route(http.MethodGet, "/sessions/{id}/areas/{area}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleArea(w, r, r.PathValue("id"), r.PathValue("area"))
	})
	route(http.MethodGet, "/sessions/{id}/events", withID(h.HandleEvents))
	route(http.MethodGet, "/ws", h.HandleWebSocket)
	route(http.MethodPost, "/preferences", h.HandleSavePreferences)
	route(http.MethodPost, "/widgets", h.HandleAssignWidget)
	route(http.MethodDelete, "/widgets/{id}", withID(h.HandleRemoveWidget))
	route(http.MethodPost, "/widgets/reorder", h.HandleReorderWidgets)
	route(http.MethodPost, "/refresh", h.HandleRefresh)
}

// NewMux returns a ServeMux with every dashboard endpoint registered.
func NewMux(h *Handlers, basePath string) *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux, basePath)
	return mux
}
