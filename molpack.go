// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package molpack reads molecular geometry files.
//
// The XYZ grammar lives in chemfile/xyz, the source-annotated error
// reporting in diagnostics, and multi-frame handling in trajectory.
package molpack
