// Package blockgrid owns the block min/max engine: lattice sizing,
// coordinate mapping, per-cell aggregation and triplet formatting.
//
// Responsibilities: turn a continuous (x, y) into a cell index under one of
// three addressing policies, fold z values into a dense lattice with a
// min/max update rule, and walk occupied cells in row-major order.
// Key types: Region, Lattice, Mapper, Aggregator, Formatter, Engine.
//
// Dependency rule: no file or stream I/O beyond io.Writer. Line parsing
// lives in internal/xyzio, file handling in internal/pipeline.
package blockgrid
