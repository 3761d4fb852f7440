// Package libretro holds the vocabulary shared by every part of the
// extractor: environment command codes, the entry points a core must
// export, the system info a core reports, and the identity derived from a
// core's file name.
package libretro
