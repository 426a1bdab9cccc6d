// Package graph loads the content manifest and answers story-graph lookups:
// which videos a storylet plays, which storylet owns a video, which videos
// end a chapter or award an ending.
//
// Manifests may be written as JSON, YAML or CUE; all three decode into the
// same Manifest and go through the same validation before indexing.
package graph
