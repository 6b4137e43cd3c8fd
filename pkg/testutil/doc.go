// Package testutil provides shared fixtures for keyfactory tests.
//
// Key components:
//   - FileTree: declarative directory layout written to any afero.Fs
//   - OverlayFs: copy-on-write view of the real tree, so tests can run
//     generation against checked-in packages without touching them
//   - RepoRoot: locates the module root for tests that load real packages
//
// All test data should be defined inline, not in external files.
package testutil
