package schemas

import "embed"

// SchemasFS содержит JSON-схемы событий, вшитые в бинарник.
//
//go:embed events
var SchemasFS embed.FS
