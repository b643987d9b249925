// Package aggregates composes table-level repos from internal/data/repos into
// read models and owns transaction boundaries for multi-row writes.
package aggregates
