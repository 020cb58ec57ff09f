// Package dataset defines the subject-level survival table, the CSV
// loader that validates it, and the cohort simulator that produces it.
//
// A loaded Table is read-only: every downstream stage (describe, surv,
// report) consumes it without mutation. Missing covariate values are
// represented as NaN for numeric columns and "" for treatment; time and
// event are never missing in a valid table.
package dataset
