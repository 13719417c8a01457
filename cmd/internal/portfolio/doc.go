// Package portfolio serves the resume upload and portfolio generation routes.
//
// Both routes require an Authenticated CrossCheck outcome. Resume parsing and
// site generation are delegated to ResumeParser and Generator; the defaults
// are stubs.
package portfolio
