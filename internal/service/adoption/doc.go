// Package adoption implements the campaign adoption analytics engine.
//
// A roster is built in four pure steps: Normalize merges the retailer
// directory with per-campaign override records, Classify enforces the
// engagement invariants and derives reach, Summarize and BuildWatchlists
// reduce the roster into KPIs and ranked watchlists, and View filters, sorts
// and pages it for table display.
//
// Every function takes its roster as an argument. Nothing in this package
// holds a module-level roster; Service only wires a Source to the pure steps.
package adoption
