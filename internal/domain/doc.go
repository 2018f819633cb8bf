// Package domain contains the core business entities of the book exchange:
// users, the books they own, and the trades they propose to each other.
// It is independent of any storage technology or delivery mechanism.
package domain
