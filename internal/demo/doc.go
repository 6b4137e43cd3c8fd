// Package demo holds small packages whose types register themselves with
// keyfactory markers. Their *_factory.go files are produced by running
// keyfactory generate from the repository root, and the tests in each
// package exercise the resulting registrations.
package demo
