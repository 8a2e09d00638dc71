// Package migrations embeds the task board schema
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
