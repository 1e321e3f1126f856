// Package format holds stateless display helpers: prices, dates, byte sizes,
// slugs, letter case and name initials.
package format
