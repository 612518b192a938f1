// Package hosts loads a hosts file into fixed cache entries. Fixed entries
// never expire and are consulted before anything learned from the network.
package hosts
