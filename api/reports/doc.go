// Package reports exposes stored day reports and an on-demand single day
// simulation over HTTP.
package reports
