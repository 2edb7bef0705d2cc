// Package plan computes the rename plan that flattens a directory one level deep.
//
// Build is a pure function over a directory snapshot: it never touches the
// filesystem beyond the questions it asks its Prober, so the same Listing always
// yields the same Plan. A Plan holds three disjoint action sets that must be
// applied in order:
//
//  1. Create - directories that must exist before any move
//  2. Moves  - source to destination renames, destinations unique
//  3. Delete - emptied directories removed after all moves
//
// Name collisions are resolved by inserting underscores between the stem and
// extension of the later claimant ("photo.jpg", "photo_.jpg", "photo__.jpg").
package plan
