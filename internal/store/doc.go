// Package store is the run-provenance ledger: a SQLite database that
// records, for every pipeline run, what was analyzed (input path and
// digest, row and event counts), how the fit behaved (convergence
// diagnostics, PH verdict), and which artifacts were written.
//
// The ledger sits outside the analysis path. A provenance write failure
// is logged by the caller and never invalidates the statistics already
// on disk.
package store
