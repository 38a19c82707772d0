// Package formats parses the asset files the loader consumes: Wavefront-style
// mesh text (OBJ subset) and DXT-compressed DDS textures.
//
// Parsers take the whole file as a byte slice and return freshly allocated
// values. They hold no package state and are safe to call concurrently.
package formats
