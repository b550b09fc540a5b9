package events

import (
	"encoding/json"
	"net/http"
	"strings"
)

func SetupHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/events", handleEvents)
	mux.HandleFunc("/events/list", handleEventsList)
}

// HTMX Handlers

func handleEventsList(w http.ResponseWriter, r *http.Request) {
	eventsList := GetEvents()

	// Reverse the events to show newest first
	reversed := make([]Event, len(eventsList))
	for i, j := 0, len(eventsList)-1; i < len(eventsList); i, j = i+1, j-1 {
		reversed[i] = eventsList[j]
	}

	w.Header().Set("Content-Type", "text/html")
	err := EventsList(reversed).Render(r.Context(), w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetEvents())
}

// Helper functions for templates

func formatEventType(eventType string) string {
	parts := strings.Split(eventType, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func getEventTypeClass(eventType string) string {
	switch eventType {
	case FileLoaded, PlaybackStarted:
		return "bg-green-100 text-green-800"
	case LoadFailed:
		return "bg-red-100 text-red-800"
	case PlaybackStopped:
		return "bg-orange-100 text-orange-800"
	case PlaybackFinished:
		return "bg-purple-100 text-purple-800"
	case ParamsApplied:
		return "bg-indigo-100 text-indigo-800"
	default:
		return "bg-blue-100 text-blue-800"
	}
}
