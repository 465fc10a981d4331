// Package core defines the shared language of eslintcfg.
//
// This package contains:
//   - Severity and RuleSpec, the value shapes of an ESLint rule entry
//   - Document, the unit of composition (a shareable config or one of its groups)
//   - EffectiveConfig, the merged result handed to ESLint
//
// The Golden Rule: pkg/core imports ONLY stdlib and its decoding libraries
// (yaml.v3, mapstructure). Composition, presets and the CLI depend on core,
// not the reverse.
package core
