// Package flows contains the pure orchestration logic behind the root
// authgate APIs: session validation and refresh-timing decisions.
//
// Flow functions take a deps struct of closures and values so the root
// package can wire its configured collaborators without this package
// importing authgate (no import cycles). Flow functions never perform I/O of
// their own and classify every failure into a kind the root package maps to
// its public result and error taxonomy.
package flows
