// Package analysis derives genre statistics from top artists.
//
// Genre tags are counted exactly as the provider spells them. Ordering is by count, highest first, and genres
// with equal counts keep the order in which they were first seen while walking the artists in ranking order.
package analysis
