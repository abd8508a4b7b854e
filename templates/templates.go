// Package templates embeds the HTML templates rendered by the email client.
package templates

import "embed"

// Emails holds emails/<name>.html.
//
//go:embed emails/*.html
var Emails embed.FS
