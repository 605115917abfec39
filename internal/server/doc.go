// Package server provides the HTTP API of the echo agent: health and status
// monitoring, a toggle endpoint mirroring the physical switch, configuration
// inspection and Prometheus metrics.
package server
