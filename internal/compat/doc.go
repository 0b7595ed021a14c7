// Package compat holds the compatibility data model and the pure functions
// that reduce a compatibility table to a badge status and to the ranked
// detail view.
//
// # Classification
//
// Every add-on of the table falls in at most one risk class, checked in
// this order:
//
//   - release-incompatible: no release entry, or no compatible version on it
//   - ESR-only experiment: release support relies on an experiment without
//     dedicated release support
//   - unknown: the add-on is not listed in the report
//
// Records built by NewRecord for add-ons missing from the report carry no
// compat entries, so they classify as release-incompatible and the unknown
// class stays empty. Only records that are flagged unknown yet list a
// compatible release entry reach it.
//
// # Badge
//
// ReduceStatus turns the class counts into a badge:
//
//	no risk                    ✓  green
//	only ESR-only experiments  ✓  policy color (red by default)
//	anything else              -N red, N = release-incompatible + unknown
//
// # Ranking
//
// Rank orders add-ons for the detail view, most concerning first. Ranks are
// additive weights and are never persisted.
package compat
