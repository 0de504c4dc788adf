// Package gen orchestrates a full generation run: extract the exported
// surface from parsed modules, build the canonical model, order its
// dependencies, then map and render each requested backend.
//
// Backends render concurrently but never share mutable state: the model
// and graph are read-only after construction, and each backend collects
// its own diagnostics. A run is stateless; nothing persists between runs.
package gen
