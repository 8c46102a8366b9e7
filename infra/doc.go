// Package infra contains technical adapters: CSV and PVGIS readers, the
// MQTT publisher, report stores and metrics exporters. These packages
// depend only on the interfaces defined in the core packages.
package infra
