// Package types defines the store contracts and the values that commands
// and request handlers pass between each other.
package types
