// Package paths provides the on-disk layout for apps.
//
// # Directory Structure
//
//	<public-root>/
//	  └── <name>/
//	      └── index.html   (active app, directly servable)
//	<storage-root>/
//	  └── <name>.gz        (cold app, gzip archive)
//
// In-flight writes land in hidden siblings named ".<base>.<unique>.tmp" and
// are renamed into place once complete. Anything matching TempPattern at
// startup is a leftover from an interrupted transition.
//
// # Usage
//
//	layout := paths.New("public", "storage")
//	active := layout.ActivePath("demo")   // public/demo/index.html
//	archive := layout.ArchivePath("demo") // storage/demo.gz
package paths
