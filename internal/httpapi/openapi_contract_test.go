package httpapi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const errorResponseRef = "#/components/responses/Error"

var openAPIMethods = map[string]struct{}{
	"get": {}, "post": {}, "put": {}, "patch": {}, "delete": {},
}

type openAPIDoc struct {
	Paths      map[string]map[string]any `yaml:"paths"`
	Components struct {
		Responses map[string]struct {
			Content map[string]struct {
				Schema struct {
					Properties map[string]struct {
						Properties map[string]struct {
							Enum []string `yaml:"enum"`
						} `yaml:"properties"`
					} `yaml:"properties"`
				} `yaml:"schema"`
			} `yaml:"content"`
		} `yaml:"responses"`
	} `yaml:"components"`
}

// operation is one method on one documented path.
type operation struct {
	key    string
	public bool
	body   map[string]any
}

func loadOpenAPI(t *testing.T) openAPIDoc {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "api", "openapi.yaml")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var doc openAPIDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return doc
}

func (d openAPIDoc) operations() []operation {
	var out []operation
	for p, item := range d.Paths {
		for m, raw := range item {
			if _, ok := openAPIMethods[strings.ToLower(m)]; !ok {
				continue
			}
			body, _ := raw.(map[string]any)
			sec, hasSec := body["security"].([]any)
			out = append(out, operation{
				key:    strings.ToUpper(m) + " " + p,
				public: hasSec && len(sec) == 0,
				body:   body,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func (d openAPIDoc) errorCodes() map[string]struct{} {
	out := make(map[string]struct{})
	resp := d.Components.Responses["Error"]
	for _, c := range resp.Content {
		for _, code := range c.Schema.Properties["error"].Properties["code"].Enum {
			out[code] = struct{}{}
		}
	}
	return out
}

func TestOpenAPIDoesNotDriftFromRouter(t *testing.T) {
	doc := loadOpenAPI(t)

	documented := make(map[string]struct{})
	for _, op := range doc.operations() {
		documented[op.key] = struct{}{}
	}

	h := NewHandler(NewLogger("error"), nil, Config{})
	mux, ok := h.Router().(*chi.Mux)
	if !ok {
		t.Fatalf("expected *chi.Mux from Router(), got %T", h.Router())
	}
	routed := make(map[string]struct{})
	err := chi.Walk(mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if _, ok := openAPIMethods[strings.ToLower(method)]; !ok {
			return nil
		}
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		routed[method+" "+route] = struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("walk router: %v", err)
	}

	var problems []string
	for _, k := range missingKeys(documented, routed) {
		problems = append(problems, "documented but not routed: "+k)
	}
	for _, k := range missingKeys(routed, documented) {
		problems = append(problems, "routed but not documented: "+k)
	}
	if len(problems) > 0 {
		t.Fatalf("api/openapi.yaml and the router disagree:\n  %s", strings.Join(problems, "\n  "))
	}
}

func TestOpenAPIDataRoutesDocumentErrorEnvelope(t *testing.T) {
	doc := loadOpenAPI(t)

	for _, op := range doc.operations() {
		if op.public {
			continue
		}
		responses, _ := op.body["responses"].(map[string]any)
		def, _ := responses["default"].(map[string]any)
		if ref, _ := def["$ref"].(string); ref != errorResponseRef {
			t.Errorf("%s: default response should be %s, got %v", op.key, errorResponseRef, responses["default"])
		}
	}
}

func TestOpenAPIListsEveryErrorCodeTheHandlerSends(t *testing.T) {
	codes := loadOpenAPI(t).errorCodes()
	if len(codes) == 0 {
		t.Fatal("no error codes documented on the Error response")
	}

	h, _ := newTestHandler(t)
	id := uuid.NewString()
	cases := []struct {
		router       http.Handler
		method, path string
		body         string
	}{
		{h.Router(), http.MethodPatch, "/entities/not-a-uuid", `{}`},
		{h.Router(), http.MethodPost, "/groups", `{}`},
		{h.Router(), http.MethodPost, "/groups", `{"name":"x","unknown":1}`},
		{h.Router(), http.MethodDelete, "/groups/" + id, ""},
		{h.Router(), http.MethodPost, "/edges", fmt.Sprintf(`{"a_id":%q,"b_id":%q}`, id, id)},
		{NewHandler(NewLogger("error"), nil, Config{DisableRateLimit: true}).Router(), http.MethodGet, "/graph", ""},
	}
	for _, tc := range cases {
		rr := doRequest(t, tc.router, tc.method, tc.path, tc.body)
		if rr.Code < 400 {
			t.Fatalf("%s %s: expected an error, got %d", tc.method, tc.path, rr.Code)
		}
		code := errorCode(t, rr)
		if _, ok := codes[code]; !ok {
			t.Errorf("%s %s: error code %q is not documented", tc.method, tc.path, code)
		}
	}
}

func missingKeys(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
