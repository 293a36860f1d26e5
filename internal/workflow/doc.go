// Package workflow runs the single transcode worker.
//
// The Worker repeatedly peeks the oldest queue entry, probes the source,
// builds and runs the ffmpeg command, classifies the result and then either
// replaces the source with the transcoded file, drops the entry, or leaves it
// at the head of the queue for a later retry. Entries are removed only after
// their outcome is final, so a crash mid-encode repeats the work instead of
// losing it.
//
// Every collaborator (store, prober, encoder, rescanner, notifier) is an
// interface so tests can drive RunOnce without ffmpeg. The Waker shortens
// idle polling when another process writes to the queue database.
package workflow
