// Package services holds the curriculum engine's business logic.
//
// Services defined in this package:
//   - CatalogService: read-only catalog lookups and the program enrichment join
//   - EnrollmentService: resolves a student's program and builds their snapshot
//   - ProgressService: reads and mutates a student's snapshot
package services
