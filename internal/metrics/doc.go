// Package metrics holds the Prometheus recorder for grid reductions and a
// small runtime memory collector used by the CLI details view.
package metrics
