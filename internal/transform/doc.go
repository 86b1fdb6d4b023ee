// Package transform holds the pure content utilities used by the file
// operations: the XOR/Base64 obfuscation cipher, name and content
// classifiers, line sorting and searching, and the fixed-ratio size scaling
// applied by compress and decompress.
//
// None of this is real cryptography or real compression.
package transform
