package server

import (
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"bookstore/internal/response"
)

type openApiDoc struct {
	Paths map[string]map[string]any `yaml:"paths"`
}

func TestOpenApiDocumentsEveryRoute(t *testing.T) {
	bs, err := os.ReadFile("../../api/openapi.yaml")
	require.NoError(t, err)

	var doc openApiDoc
	require.NoError(t, yaml.Unmarshal(bs, &doc))

	rr := &response.Responder{}

	r := chi.NewRouter()
	r.Mount("/", Handler(newMemRepo(), rr))
	Ops(r, nil, prometheus.NewRegistry(), rr)

	routes := 0
	err = chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes++

		ops, ok := doc.Paths[route]
		if assert.True(t, ok, "route %s is not documented", route) {
			assert.Contains(t, ops, strings.ToLower(method), "%s %s is not documented", method, route)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 8, routes)
}
