// Package permission maps a caller's role, group memberships, and profile
// attributes to a capability set.
//
// # Design
//
// Role is a closed enumeration; loosely-typed role strings and attribute maps
// from the identity provider are converted at the boundary by [ParseRole] and
// [ParseAttributes], never passed through. [Build] is a pure function: no I/O,
// no error conditions, always a fully-populated [Set].
//
// # Approval gate
//
// The operator role requires manual approval before receiving write
// capabilities. Approval is fail-closed: only the boolean true or the exact
// string "true" count as approved ([ApprovedValue]); absence, false, "false",
// and any other representation deny.
//
// # What this package must NOT do
//
//   - Perform I/O or consult any store.
//   - Import authgate or any sibling package.
package permission
