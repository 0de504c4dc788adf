// Package ir provides the canonical interface model for bindweave.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal except source markers. This keeps
// IR the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The model is immutable once built: a single build pass, no
//     incremental mutation afterwards.
//   - Struct field order is preserved verbatim (layout-significant).
//   - Enum discriminant values are stable and never reassigned silently.
//   - Every Named reference in a built model resolves to a declaration
//     present in the model.
package ir
