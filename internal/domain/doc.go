// Package domain defines the core business types for the partner console.
//
// Types in this package are value objects shared by the adoption engine, the
// outreach composer, the roster sources and the HTTP layer. They carry no
// database or HTTP concerns.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/YAML tags are allowed (they're metadata, not behavior)
//   - Validation and parsing methods are allowed (they're pure functions on the type)
//   - Constants and enums belong here
package domain
