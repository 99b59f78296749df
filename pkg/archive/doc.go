// Package archive packs a backup tree into a single zip file.
//
// With a password every file entry is AES-256 encrypted; directory entries are
// stored so that extraction reproduces empty category directories.
package archive
