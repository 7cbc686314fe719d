// Package index reads and writes song index files.
//
// # Overview
//
// The crawler summarizes playlists into a plain-text index that counts songs
// per album (and optionally per artist). The cluster builder reads it back
// to weight each album cover:
//
//	Album Index:
//	  Abbey Road: 12 songs
//	  Revolver: 3 songs
//	Artist Index:
//	  The Beatles: 15 songs
//
//	Total songs: 15
//
// Entry lines match `<name>: <N> songs`. A name may itself contain colons;
// it ends at the first `: <N> songs` on the line. Lines before
// the first section header are ignored.
//
// # Encodings
//
// Index files have been written by hand and by tools on several platforms,
// so [Decode] tries a list of encodings in order (UTF-8, Windows-1252 and
// ISO-8859-1 by default) and rejects any that cannot represent the bytes.
// When all of them fail the text is decoded as UTF-8 with invalid bytes
// replaced by U+FFFD.
package index
