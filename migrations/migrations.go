// Package migrations содержит SQL-схему сервиса
package migrations

import "embed"

// FS файлы миграций, применяются командой crm migrate в порядке имён
//
//go:embed *.sql
var FS embed.FS
