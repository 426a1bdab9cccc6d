// Package timeline compares save timelines and derives read-only views from
// them.
//
// Diff classifies a freshly fetched log against the held one as an append,
// a rollback or a no-op. ComputeProgress summarises a save per chapter.
package timeline
