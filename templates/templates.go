// Package templates embeds the default email templates used when no
// on-disk template directory is configured.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
