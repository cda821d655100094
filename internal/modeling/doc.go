// SPDX-License-Identifier: MPL-2.0

// Package modeling is the host-bundled modeling library scripts reach with
// require("modeling"). It builds primitive solids and outlines as plain Lua tables in
// the shape the geometry normalizer reads, and records transforms as column-major
// 4x4 matrices without ever applying them to vertices.
//
// The embedded Lua helper module "modeling.extras" is layered on top and is served
// through Source.
package modeling
