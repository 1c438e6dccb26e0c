package server

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

func TestSwaggerCoversRoutes(t *testing.T) {
	app := setupApp(t)

	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("Failed to read swagger doc: %v", err)
	}
	var spec struct {
		BasePath string                            `json:"basePath"`
		Paths    map[string]map[string]interface{} `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("Swagger doc is not valid JSON: %v", err)
	}

	documented := 0
	for _, route := range app.Router.Routes() {
		if !strings.HasPrefix(route.Path, spec.BasePath+"/") {
			continue
		}
		path := pathParam.ReplaceAllString(strings.TrimPrefix(route.Path, spec.BasePath), "{$1}")
		if _, ok := spec.Paths[path][strings.ToLower(route.Method)]; !ok {
			t.Errorf("%s %s is missing from the swagger doc", route.Method, path)
			continue
		}
		documented++
	}

	operations := 0
	for _, methods := range spec.Paths {
		operations += len(methods)
	}
	if documented != operations {
		t.Errorf("Expected %d documented operations to match routes, got %d", operations, documented)
	}
}
