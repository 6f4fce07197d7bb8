package web

import (
	"encoding/json"
	"net/http"
)

// JSONRenderer writes the template name and context as a JSON document.
// It stands in for a real template engine in tooling and tests.
type JSONRenderer struct{}

type renderedPage struct {
	Template string         `json:"template"`
	Context  map[string]any `json:"context"`
}

func (JSONRenderer) Render(w http.ResponseWriter, _ *http.Request, status int, template string, context map[string]any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(renderedPage{Template: template, Context: context})
}

var _ Renderer = JSONRenderer{}
