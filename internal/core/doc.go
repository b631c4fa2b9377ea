// Package core provides the validation and import logic for spreadsheet
// uploads.
//
// This package contains the domain logic independent of any transport or
// storage layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Flow
//
// An uploaded workbook arrives as a list of [Sheet] values, each a sheet
// name plus untyped [RawRow] cells keyed by header text. For every sheet:
//
//  1. The schema registry resolves the sheet name to a rule set, falling
//     back to the Default schema for unconfigured names.
//  2. [Processor.Process] runs [RowValidator.ValidateRow] over each data row.
//     Every field is coerced by [Coerce]; all field errors of a row are
//     collected, not just the first.
//  3. Rows with no errors become a [Record]; rows with errors become a
//     [RowError] carrying the 1-based row position.
//
// [Orchestrator.RunBatch] then hands each sheet's records to an [Inserter]
// as one batch and assembles the [BatchResponse].
//
// # Coercion
//
//   - number: commas stripped, must parse as a finite decimal, and must be
//     greater than zero unless the rule sets allowZero
//   - date: a structured date or DD-MM-YYYY text; must fall in the current
//     month unless the rule sets allowPreviousMonth
//   - boolean: exact match against the rule's two valid values, the first
//     meaning true
//   - string: trimmed cell text
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: File errors (size, format, missing, empty)
//   - UPL002-UPL005: Upload errors (busy, cancelled, timeout)
//   - DB001-DB008: Storage errors (connection, persist failure)
package core
