// Package services holds the business logic of the document issuer.
//
// Services defined in this package:
//   - SequenceAllocator: issues certificate sequence numbers per (year, course code)
//   - CertificateService / LetterService: single document creation and lookup
//   - ImportService: bulk CSV and XLSX imports into batches
//   - BatchService: batch listing and membership
//   - DocumentService: on-demand PDF, ZIP and export rendering
//   - AuthService / StatsService: operator login and dashboard counters
package services
