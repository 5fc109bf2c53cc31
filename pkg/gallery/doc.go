// Package gallery provides the list, upload and download services of an
// image gallery whose persistence layer is a remote, version-controlled
// content store (a GitHub repository by default).
//
// Images are kept at images/<filename> and every image has a JSON sidecar at
// metadata/<id>.json describing it. The two entries are written as two
// independent commits; the Service never rolls the first one back, so a
// failed metadata write leaves an orphaned binary that is reported through the
// EventSink.
//
// Store implementations live under store/ (github, memory, fs, s3). The HTTP
// surface is in api/, and the gallery state engine used by viewers is in view/.
package gallery
