// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms the interleaved mesh layout (position, normal, texcoord).
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader samples the mesh texture with simple directional lighting.
//
//go:embed mesh.frag
var MeshFragmentShader string
