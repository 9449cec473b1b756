/*
Package lifecycle owns the storage state of every app.

An app is Active (plain index.html under the public root), Cold (gzip
archive under the storage root) or Absent. The state is never stored; it is
derived from which files exist, and every transition goes through a Manager.

# Transitions

	Absent --edit--> Active (placeholder)
	Cold   --read/edit--> Active (thaw)
	Active --save--> Active --(after FreezeDelay)--> Cold (freeze)

# Concurrency

All work on one name is serialized by a per-name lock; different names never
contend. A save records a new generation for its app and schedules a freeze.
When the freeze fires it takes the lock and only runs if no newer save has
happened since, so an archive always holds the most recent completed write.

# Crash safety

Files are written to hidden temp siblings and renamed into place. A freeze
removes the active copy only after the archive has been written, fsynced and
read back with a matching length and CRC. If both copies exist the active
one wins. RecoverOnStartup removes leftover temp files and stale archives and
leaves cold apps cold until they are requested.
*/
package lifecycle
