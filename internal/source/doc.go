// Package source defines the parsed syntax trees the engine consumes.
//
// A front end (parser, build tool plugin) produces source.Module values and
// hands them to the engine. The engine performs structural extraction only;
// it never parses host-language text. This package contains type definitions
// only and imports nothing internal, keeping it the foundational input layer.
package source
