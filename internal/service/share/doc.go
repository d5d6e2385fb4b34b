// Package share implements public share-link resolution and management.
//
// A share token is an opaque bearer credential granting anonymous read
// access to one snapshot's rendered data. Resolution enforces the validity
// invariants (active, unexpired, complete snapshot); all failure kinds look
// identical to the end caller so tokens cannot be enumerated by probing.
package share
