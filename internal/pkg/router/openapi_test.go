package router

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The served OpenAPI document must stay valid and cover the routes the
// routers actually register.
func TestOpenAPIDocumentIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile("../../../public/docs/v1/openapi.yml")
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	expected := []string{
		"/webhooks/billing",
		"/connect/social",
		"/connect/social/callback",
		"/connect/social/disconnect",
		"/api/internal/social/exchange",
		"/api/internal/social/preview",
		"/api/internal/social/publish",
		"/api/internal/users/{id}/subscription",
		"/api/internal/users/{id}/payments",
		"/api/internal/users/{id}/connection",
		"/api/internal/users/{id}/publish-attempts",
	}
	for _, path := range expected {
		assert.NotNil(t, doc.Paths.Find(path), "path %s missing from openapi.yml", path)
	}

	webhook := doc.Paths.Find("/webhooks/billing")
	require.NotNil(t, webhook)
	require.NotNil(t, webhook.Post)
	assert.NotNil(t, webhook.Post.Responses.Status(200))
	assert.NotNil(t, webhook.Post.Responses.Status(400))
	assert.NotNil(t, webhook.Post.Responses.Status(500))
}
