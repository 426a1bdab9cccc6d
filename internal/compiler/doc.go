// Package compiler turns save timelines into playback instruction queues.
//
// Replay folds a range of timeline lines into the queue, attaching ending,
// chapter-end and QTE affordances as it goes. Rewind and TrimChapters then
// cut the queue to the requested start and the playable chapter range.
//
// Every function here is pure: the queue is passed in, transformed and
// returned, and no package state is kept between calls.
package compiler
