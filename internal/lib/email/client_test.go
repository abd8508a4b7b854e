package email

import (
	"testing"

	"github.com/deppfellow/commerce-admin/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	logger := zerolog.Nop()
	cfg := &config.Config{Integration: config.IntegrationConfig{
		ResendAPIKey: "re_test",
		EmailFrom:    config.DefaultEmailFrom,
	}}
	return NewClient(cfg, &logger)
}

// sampleData holds variables for every template.
var sampleData = map[Template]map[string]string{
	TemplateWelcome: {
		"UserFirstName": "Ada",
	},
}

func TestRenderSampleData(t *testing.T) {
	c := newTestClient()

	for name, data := range sampleData {
		html, err := c.Render(name, data)
		require.NoError(t, err, name)
		for _, v := range data {
			assert.Contains(t, html, v)
		}
	}
}

func TestRenderEscapesData(t *testing.T) {
	html, err := newTestClient().Render(TemplateWelcome, map[string]string{
		"UserFirstName": "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := newTestClient().Render(Template("missing"), nil)
	assert.Error(t, err)
}
